package log

import (
	"context"
	"crypto/rand"
	"time"
)

type contextKey string

const requestContextKey contextKey = "lockerlink_request_context"

// RequestContext 存储一次请求或一次交互的追踪信息
type RequestContext struct {
	RequestID string    // 10 位 base36 短 ID
	UserID    string    // Discord 用户 ID（如有）
	StartTime time.Time // 请求开始时间
}

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateRequestID 生成 10 位 base36 请求 ID，例如 mgrn0zfqda
func GenerateRequestID() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	for i := range b {
		b[i] = base36Chars[int(b[i])%len(base36Chars)]
	}
	return string(b)
}

// WithRequestContext 将追踪信息注入 Context
func WithRequestContext(ctx context.Context, requestID, userID string) context.Context {
	return context.WithValue(ctx, requestContextKey, &RequestContext{
		RequestID: requestID,
		UserID:    userID,
		StartTime: time.Now(),
	})
}

// GetRequestContext 从 Context 中提取追踪信息，缺失时返回 RequestID 为 unknown 的默认值
func GetRequestContext(ctx context.Context) *RequestContext {
	if ctx != nil {
		if reqCtx, ok := ctx.Value(requestContextKey).(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{RequestID: "unknown"}
}

// GetRequestID 从 Context 中提取 Request ID
func GetRequestID(ctx context.Context) string {
	return GetRequestContext(ctx).RequestID
}
