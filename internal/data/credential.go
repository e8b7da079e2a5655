package data

import (
	"context"
	"sync"
	"time"
)

// Credential 用户绑定后缓存的 Epic 令牌，每个用户最多一份
type Credential struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type,omitempty"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	ExpiresAt        time.Time `json:"expires_at,omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
	AccountID        string    `json:"account_id,omitempty"`
	DisplayName      string    `json:"display_name,omitempty"`
	Scope            string    `json:"scope,omitempty"`
	LinkedAt         time.Time `json:"linked_at"`
}

// CredentialRepo 内存凭据存储，按用户 ID 索引，重启即丢失
type CredentialRepo struct {
	mu    sync.RWMutex
	creds map[string]*Credential
}

// NewCredentialRepo creates an empty credential store.
func NewCredentialRepo() *CredentialRepo {
	return &CredentialRepo{creds: make(map[string]*Credential)}
}

// Get 返回凭据副本，不存在时返回 nil
func (r *CredentialRepo) Get(_ context.Context, ownerID string) *Credential {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.creds[ownerID]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// Save 写入或覆盖（重新绑定）
func (r *CredentialRepo) Save(_ context.Context, ownerID string, cred *Credential) {
	cp := *cred
	r.mu.Lock()
	r.creds[ownerID] = &cp
	r.mu.Unlock()
}

// Replace 仅当当前凭据的访问令牌仍为 expectedAccessToken 时写入
// 刷新期间用户重新绑定或解绑时放弃写入
func (r *CredentialRepo) Replace(_ context.Context, ownerID, expectedAccessToken string, cred *Credential) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.creds[ownerID]
	if !ok || cur.AccessToken != expectedAccessToken {
		return false
	}
	cp := *cred
	r.creds[ownerID] = &cp
	return true
}

// Delete 删除凭据，返回删除前是否存在
func (r *CredentialRepo) Delete(_ context.Context, ownerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.creds[ownerID]
	delete(r.creds, ownerID)
	return ok
}

// ListExpiring 列出访问令牌在 before 之前过期且持有 refresh token 的用户
func (r *CredentialRepo) ListExpiring(_ context.Context, before time.Time) map[string]*Credential {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Credential)
	for id, c := range r.creds {
		if c.RefreshToken == "" || c.ExpiresAt.IsZero() {
			continue
		}
		if c.ExpiresAt.Before(before) {
			cp := *c
			out[id] = &cp
		}
	}
	return out
}

// Count 当前已绑定的用户数
func (r *CredentialRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.creds)
}
