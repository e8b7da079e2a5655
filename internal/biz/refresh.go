package biz

import (
	"context"
	"fmt"
	"time"

	"LockerLink/internal/conf"
	"LockerLink/internal/data"
	pkglog "LockerLink/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
)

// CredentialRefreshTask 凭据自动刷新任务
type CredentialRefreshTask struct {
	creds  CredentialRepo
	oauth  OAuthClient
	window time.Duration
	logger *pkglog.LogHelper

	now func() time.Time
}

// NewCredentialRefreshTask 创建凭据刷新任务
func NewCredentialRefreshTask(c *conf.Scheduler, creds CredentialRepo, client OAuthClient, logger log.Logger) *CredentialRefreshTask {
	window := 30 * time.Minute
	if c != nil && c.RefreshWindow > 0 {
		window = c.RefreshWindow
	}
	return &CredentialRefreshTask{
		creds:  creds,
		oauth:  client,
		window: window,
		logger: pkglog.NewLogHelper(log.With(logger, "module", "biz/refresh")),
		now:    time.Now,
	}
}

// RefreshExpiring 刷新访问令牌即将在 window 内过期的凭据
// 单个用户失败只记录日志，不影响其他用户
func (t *CredentialRefreshTask) RefreshExpiring(ctx context.Context) (refreshed, failed int) {
	now := t.now()
	expiring := t.creds.ListExpiring(ctx, now.Add(t.window))
	if len(expiring) == 0 {
		t.logger.Debug("No credentials need refresh")
		return 0, 0
	}

	t.logger.Infof("Found %d credentials expiring within %s", len(expiring), t.window)

	for ownerID, cred := range expiring {
		if !cred.RefreshExpiresAt.IsZero() && !now.Before(cred.RefreshExpiresAt) {
			// refresh token 也已过期，只能等用户重新绑定
			t.logger.Warnw("msg", "refresh token expired, credential left as is", "owner_id", ownerID)
			failed++
			continue
		}
		if err := t.refreshOne(ctx, ownerID, cred); err != nil {
			t.logger.Errorw("msg", "failed to refresh credential", "owner_id", ownerID, "error", err)
			failed++
			continue
		}
		refreshed++
	}

	t.logger.Token("Credential refresh task completed",
		"total", len(expiring),
		"success", refreshed,
		"error", failed)
	return refreshed, failed
}

func (t *CredentialRefreshTask) refreshOne(ctx context.Context, ownerID string, cred *data.Credential) error {
	tok, err := t.oauth.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	next := credentialFromToken(tok, cred.LinkedAt)
	if next.AccountID == "" {
		next.AccountID = cred.AccountID
	}
	if next.DisplayName == "" {
		next.DisplayName = cred.DisplayName
	}
	if next.Scope == "" {
		next.Scope = cred.Scope
	}
	if next.RefreshExpiresAt.IsZero() {
		next.RefreshExpiresAt = cred.RefreshExpiresAt
	}

	if !t.creds.Replace(ctx, ownerID, cred.AccessToken, next) {
		t.logger.Debugw("msg", "credential changed during refresh, result dropped", "owner_id", ownerID)
		return nil
	}
	t.logger.Token("successfully refreshed credential", "owner_id", ownerID, "new_expires_at", next.ExpiresAt)
	return nil
}
