package data

import (
	"context"
	"sync"
	"time"
)

// CosmeticItem 单个外观物品，创建后不可变
type CosmeticItem struct {
	ID       string
	Name     string
	Rarity   string
	IconURL  string
	ImageURL string
}

// LockerSession 一个分页浏览会话
// 游标读写必须持有会话锁；Items 创建后只读
type LockerSession struct {
	sync.Mutex

	ID      string
	OwnerID string
	Title   string
	Items   []CosmeticItem
	Cursor  int
	// Surface 已渲染消息的不透明句柄（Discord interaction token）
	Surface   string
	CreatedAt time.Time
	ExpiresAt time.Time
	// Retired 已从会话表移除，之后的事件一律拒绝
	Retired bool
}

// Expired reports whether the session's absolute deadline has passed.
func (s *LockerSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// LockerSessionRepo 活跃会话表
type LockerSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*LockerSession
}

// NewLockerSessionRepo creates an empty session table.
func NewLockerSessionRepo() *LockerSessionRepo {
	return &LockerSessionRepo{sessions: make(map[string]*LockerSession)}
}

// Create 登记新会话
func (r *LockerSessionRepo) Create(_ context.Context, s *LockerSession) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

// Get 按 ID 查找会话
func (r *LockerSessionRepo) Get(_ context.Context, id string) (*LockerSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove 删除会话；返回 true 的调用方是唯一的回收者
func (r *LockerSessionRepo) Remove(_ context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Expired 列出已到期的会话
func (r *LockerSessionRepo) Expired(_ context.Context, now time.Time) []*LockerSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*LockerSession
	for _, s := range r.sessions {
		if s.Expired(now) {
			out = append(out, s)
		}
	}
	return out
}

// Len 活跃会话数
func (r *LockerSessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
