package data

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"LockerLink/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewCredentialRepo()

	assert.Nil(t, repo.Get(ctx, "42"))
	assert.False(t, repo.Delete(ctx, "42"))

	repo.Save(ctx, "42", &Credential{AccessToken: "a"})
	repo.Save(ctx, "42", &Credential{AccessToken: "b"})
	assert.Equal(t, 1, repo.Count())
	assert.Equal(t, "b", repo.Get(ctx, "42").AccessToken)

	// 返回副本，调用方修改不影响存储
	got := repo.Get(ctx, "42")
	got.AccessToken = "mutated"
	assert.Equal(t, "b", repo.Get(ctx, "42").AccessToken)

	assert.True(t, repo.Delete(ctx, "42"))
	assert.Nil(t, repo.Get(ctx, "42"))
}

func TestCredentialRepo_ListExpiring(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := NewCredentialRepo()

	repo.Save(ctx, "soon", &Credential{AccessToken: "a", RefreshToken: "r", ExpiresAt: now.Add(5 * time.Minute)})
	repo.Save(ctx, "later", &Credential{AccessToken: "b", RefreshToken: "r", ExpiresAt: now.Add(2 * time.Hour)})
	repo.Save(ctx, "no-refresh", &Credential{AccessToken: "c", ExpiresAt: now.Add(time.Minute)})

	expiring := repo.ListExpiring(ctx, now.Add(30*time.Minute))
	require.Len(t, expiring, 1)
	assert.Contains(t, expiring, "soon")
}

func newPendingRepo(ttl time.Duration) *PendingAuthorizationRepo {
	return NewPendingAuthorizationRepo(&conf.OAuth{StateTTL: ttl, MaxPending: 100})
}

func TestPendingAuthorizationRepo_TakeOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := newPendingRepo(10 * time.Minute)

	repo.Save(ctx, &PendingAuthorization{State: "s1", OwnerID: "42", CreatedAt: now})
	assert.Equal(t, 1, repo.Len())

	p, err := repo.Take(ctx, "s1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "42", p.OwnerID)

	_, err = repo.Take(ctx, "s1", now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrPendingNotFound)
	assert.Equal(t, 0, repo.Len())
}

func TestPendingAuthorizationRepo_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := newPendingRepo(10 * time.Minute)

	repo.Save(ctx, &PendingAuthorization{State: "old", OwnerID: "1", CreatedAt: now})
	_, err := repo.Take(ctx, "old", now.Add(10*time.Minute+time.Millisecond))
	assert.ErrorIs(t, err, ErrPendingNotFound)
	// 过期记录在 Take 中一并删除
	assert.Equal(t, 0, repo.Len())
}

func TestPendingAuthorizationRepo_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := newPendingRepo(10 * time.Minute)

	repo.Save(ctx, &PendingAuthorization{State: "a", OwnerID: "1", CreatedAt: now.Add(-11 * time.Minute)})
	repo.Save(ctx, &PendingAuthorization{State: "b", OwnerID: "2", CreatedAt: now.Add(-9 * time.Minute)})
	repo.Save(ctx, &PendingAuthorization{State: "c", OwnerID: "3", CreatedAt: now})

	assert.Equal(t, 1, repo.Sweep(now))
	assert.Equal(t, 2, repo.Len())
	assert.Equal(t, 2, repo.Sweep(now.Add(10*time.Minute)))
	assert.Equal(t, 0, repo.Len())
}

func TestPendingAuthorizationRepo_ConcurrentTake(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := newPendingRepo(10 * time.Minute)
	repo.Save(ctx, &PendingAuthorization{State: "race", OwnerID: "42", CreatedAt: now})

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Take(ctx, "race", now); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestPendingAuthorizationRepo_Defaults(t *testing.T) {
	repo := NewPendingAuthorizationRepo(nil)
	assert.Equal(t, 10*time.Minute, repo.TTL())
}

func TestLockerSessionRepo(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := NewLockerSessionRepo()

	repo.Create(ctx, &LockerSession{ID: "a", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)})
	repo.Create(ctx, &LockerSession{ID: "b", CreatedAt: now, ExpiresAt: now.Add(time.Minute)})

	s, ok := repo.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "a", s.ID)

	expired := repo.Expired(ctx, now.Add(2*time.Minute))
	require.Len(t, expired, 1)
	assert.Equal(t, "b", expired[0].ID)

	assert.True(t, repo.Remove(ctx, "b"))
	assert.False(t, repo.Remove(ctx, "b"))
	assert.Equal(t, 1, repo.Len())
}

func TestNewData_WithoutToken(t *testing.T) {
	d, cleanup, err := NewData(&conf.Discord{AppID: "app"}, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, d.Discord())
	assert.Equal(t, "app", d.AppID())

	surface := NewDiscordSurface(d)
	assert.ErrorIs(t, surface.WithdrawControls(context.Background(), "token"), ErrSurfaceUnavailable)
}

func TestNewData_WithToken(t *testing.T) {
	d, cleanup, err := NewData(&conf.Discord{Token: "not-a-real-token"}, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, d.Discord())
	assert.Equal(t, "Bot not-a-real-token", d.Discord().Token)
}
