package data

import (
	"context"
	"errors"
	"time"

	"LockerLink/internal/conf"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrPendingNotFound state 不存在、已被消费或已过期
var ErrPendingNotFound = errors.New("pending authorization not found")

// PendingAuthorization 已签发但尚未兑换的授权请求
type PendingAuthorization struct {
	State     string
	OwnerID   string
	CreatedAt time.Time
}

// PendingAuthorizationRepo state → PendingAuthorization
//
// 底层 LRU 自带 TTL 与容量上限，只负责限制内存；
// 过期语义以 CreatedAt + ttl 为准，由 Take 和 Sweep 基于调用方传入的时间判断。
type PendingAuthorizationRepo struct {
	cache *expirable.LRU[string, *PendingAuthorization]
	ttl   time.Duration
}

// NewPendingAuthorizationRepo creates the registry from the OAuth settings.
func NewPendingAuthorizationRepo(c *conf.OAuth) *PendingAuthorizationRepo {
	ttl := 10 * time.Minute
	size := 10000
	if c != nil {
		if c.StateTTL > 0 {
			ttl = c.StateTTL
		}
		if c.MaxPending > 0 {
			size = c.MaxPending
		}
	}
	// LRU 的 TTL 稍长于业务 TTL，过期判断不依赖它
	return &PendingAuthorizationRepo{
		cache: expirable.NewLRU[string, *PendingAuthorization](size, nil, ttl+time.Minute),
		ttl:   ttl,
	}
}

// TTL 返回 state 有效期
func (r *PendingAuthorizationRepo) TTL() time.Duration {
	return r.ttl
}

// Save 记录新签发的 state
func (r *PendingAuthorizationRepo) Save(_ context.Context, p *PendingAuthorization) {
	r.cache.Add(p.State, p)
}

// Take 原子地取出并删除 state
// 并发调用时只有 Remove 成功的一方拿到记录；过期记录同样被删除并视为不存在
func (r *PendingAuthorizationRepo) Take(_ context.Context, state string, now time.Time) (*PendingAuthorization, error) {
	p, ok := r.cache.Peek(state)
	if !ok {
		return nil, ErrPendingNotFound
	}
	if !r.cache.Remove(state) {
		return nil, ErrPendingNotFound
	}
	if r.expired(p, now) {
		return nil, ErrPendingNotFound
	}
	return p, nil
}

// Sweep 删除所有过期记录，返回删除数量
func (r *PendingAuthorizationRepo) Sweep(now time.Time) int {
	removed := 0
	for _, state := range r.cache.Keys() {
		p, ok := r.cache.Peek(state)
		if !ok || !r.expired(p, now) {
			continue
		}
		if r.cache.Remove(state) {
			removed++
		}
	}
	return removed
}

// Len 当前待兑换数量
func (r *PendingAuthorizationRepo) Len() int {
	return r.cache.Len()
}

func (r *PendingAuthorizationRepo) expired(p *PendingAuthorization, now time.Time) bool {
	return !now.Before(p.CreatedAt.Add(r.ttl))
}
