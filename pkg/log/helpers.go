package log

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// slowRequestThresholdMs 超过该耗时的请求额外记录一条警告
const slowRequestThresholdMs = 1000

// LogHelper 扩展 Kratos log.Helper
// 每个方法自动附带 "type" 字段，触发 EmojiConsoleEncoder 的表情符号映射
type LogHelper struct {
	*log.Helper
}

// NewLogHelper 创建增强的日志辅助器
func NewLogHelper(logger log.Logger) *LogHelper {
	return &LogHelper{Helper: log.NewHelper(logger)}
}

func typed(logType, msg string, kvs []interface{}) []interface{} {
	all := make([]interface{}, 0, len(kvs)+4)
	all = append(all, "msg", msg)
	all = append(all, kvs...)
	return append(all, "type", logType)
}

// OAuth 记录 OAuth 授权流程日志（🔐）
func (h *LogHelper) OAuth(msg string, kvs ...interface{}) {
	h.Infow(typed("oauth", msg, kvs)...)
}

// Token 记录凭据刷新、交换相关日志（🎫）
func (h *LogHelper) Token(msg string, kvs ...interface{}) {
	h.Infow(typed("token", msg, kvs)...)
}

// Link 记录账户绑定/解绑日志（🔗）
func (h *LogHelper) Link(msg string, kvs ...interface{}) {
	h.Infow(typed("link", msg, kvs)...)
}

// Locker 记录 Locker 会话生命周期日志（🎒）
func (h *LogHelper) Locker(msg string, kvs ...interface{}) {
	h.Infow(typed("locker", msg, kvs)...)
}

// Interaction 记录聊天交互事件日志（🕹️）
func (h *LogHelper) Interaction(msg string, kvs ...interface{}) {
	h.Infow(typed("interaction", msg, kvs)...)
}

// Scheduler 记录定时任务日志（🎯）
func (h *LogHelper) Scheduler(msg string, kvs ...interface{}) {
	h.Infow(typed("scheduler", msg, kvs)...)
}

// Startup 记录启动日志（🚀）
func (h *LogHelper) Startup(msg string, kvs ...interface{}) {
	h.Infow(typed("startup", msg, kvs)...)
}

// Security 记录被拒绝的访问（🔒）
func (h *LogHelper) Security(msg string, kvs ...interface{}) {
	h.Warnw(typed("security", msg, kvs)...)
}

// RequestWithContext 记录 HTTP 请求日志，自动带上 Request ID，并检测慢请求
func (h *LogHelper) RequestWithContext(ctx context.Context, method, url string, status int, durationMs int64, kvs ...interface{}) {
	requestID := GetRequestID(ctx)
	msg := fmt.Sprintf("%s %s - %d (%dms) | RequestID: %s", method, url, status, durationMs, requestID)

	all := typed("request", msg, kvs)
	all = append(all,
		"request_id", requestID,
		"method", method,
		"url", url,
		"status", status,
		"duration_ms", durationMs,
	)
	h.Infow(all...)

	if durationMs > slowRequestThresholdMs {
		h.Warnw(
			"msg", fmt.Sprintf("[%s] Slow request detected | %s %s | %dms", requestID, method, url, durationMs),
			"request_id", requestID,
			"duration_ms", durationMs,
			"threshold_ms", slowRequestThresholdMs,
		)
	}
}
