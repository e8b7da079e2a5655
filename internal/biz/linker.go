package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"LockerLink/internal/data"
	"LockerLink/internal/metrics"
	pkglog "LockerLink/pkg/log"
	"LockerLink/pkg/oauth"
	"LockerLink/pkg/oauth/util"

	"github.com/go-kratos/kratos/v2/log"
)

// LinkUsecase 账户绑定：签发授权地址、兑换授权码、管理已缓存的凭据
type LinkUsecase struct {
	creds   CredentialRepo
	pending PendingRepo
	oauth   OAuthClient
	metrics *metrics.Metrics
	log     *pkglog.LogHelper

	now func() time.Time
}

// NewLinkUsecase creates the link usecase.
func NewLinkUsecase(creds CredentialRepo, pending PendingRepo, client OAuthClient, m *metrics.Metrics, logger log.Logger) *LinkUsecase {
	return &LinkUsecase{
		creds:   creds,
		pending: pending,
		oauth:   client,
		metrics: m,
		log:     pkglog.NewLogHelper(log.With(logger, "module", "biz/link")),
		now:     time.Now,
	}
}

// IssueAuthorizationURL 为 ownerID 签发一次性 state 并返回授权地址
func (uc *LinkUsecase) IssueAuthorizationURL(ctx context.Context, ownerID string) (string, error) {
	if ownerID == "" {
		return "", ErrMissingOwner
	}
	state, err := util.GenerateState()
	if err != nil {
		return "", fmt.Errorf("issue authorization url: %w", err)
	}
	uc.pending.Save(ctx, &data.PendingAuthorization{
		State:     state,
		OwnerID:   ownerID,
		CreatedAt: uc.now(),
	})
	uc.metrics.IncrementLinksIssued()
	uc.log.OAuth("authorization url issued", "owner_id", ownerID, "state", state)
	return uc.oauth.AuthCodeURL(state), nil
}

// Redeem 兑换授权码
// state 在任何网络调用之前被删除，同一 state 的并发或重放请求最多成功一次
func (uc *LinkUsecase) Redeem(ctx context.Context, code, state string) (*data.Credential, error) {
	if code == "" || state == "" {
		return nil, ErrMissingParameters
	}

	p, err := uc.pending.Take(ctx, state, uc.now())
	if err != nil {
		uc.metrics.IncrementRedemption(metrics.ResultRejected)
		if stderrors.Is(err, data.ErrPendingNotFound) {
			uc.log.Security("unknown or expired state presented", "state", state)
			return nil, ErrUnknownOrExpiredState
		}
		return nil, ErrUnknownOrExpiredState.WithCause(err)
	}

	tok, err := uc.oauth.Exchange(ctx, code)
	if err != nil {
		uc.metrics.IncrementRedemption(metrics.ResultFailure)
		status, body := 0, ""
		var exErr *oauth.ExchangeError
		if stderrors.As(err, &exErr) {
			status, body = exErr.StatusCode, exErr.Body
		}
		uc.log.Errorw("msg", "token exchange failed", "owner_id", p.OwnerID, "status", status, "error", err)
		return nil, ErrTokenExchangeFailed(status, body, err)
	}

	cred := credentialFromToken(tok, uc.now())
	uc.creds.Save(ctx, p.OwnerID, cred)
	uc.metrics.IncrementRedemption(metrics.ResultSuccess)
	uc.log.Link("account linked", "owner_id", p.OwnerID, "account_id", cred.AccountID)
	return cred, nil
}

// FetchAccountIdentity 用缓存的凭据查询账户
// 上游拒绝时返回 (nil, nil)，调用方提示重新绑定
func (uc *LinkUsecase) FetchAccountIdentity(ctx context.Context, cred *data.Credential) (*oauth.AccountIdentity, error) {
	if cred == nil {
		return nil, ErrNotLinked
	}
	return uc.oauth.FetchAccount(ctx, cred.AccessToken)
}

// Unlink 删除凭据，返回删除前是否已绑定
func (uc *LinkUsecase) Unlink(ctx context.Context, ownerID string) bool {
	existed := uc.creds.Delete(ctx, ownerID)
	if existed {
		uc.log.Link("account unlinked", "owner_id", ownerID)
	}
	return existed
}

// Credential 返回已缓存的凭据，未绑定时返回 nil
func (uc *LinkUsecase) Credential(ctx context.Context, ownerID string) *data.Credential {
	return uc.creds.Get(ctx, ownerID)
}

// IsLinked reports whether ownerID has a stored credential.
func (uc *LinkUsecase) IsLinked(ctx context.Context, ownerID string) bool {
	return uc.creds.Get(ctx, ownerID) != nil
}

// SweepExpired 清理过期的待兑换 state
func (uc *LinkUsecase) SweepExpired(_ context.Context) int {
	n := uc.pending.Sweep(uc.now())
	uc.metrics.AddExpiredPending(n)
	if n > 0 {
		uc.log.Scheduler("expired pending authorizations removed", "count", n)
	}
	return n
}

func credentialFromToken(tok *oauth.Token, now time.Time) *data.Credential {
	return &data.Credential{
		AccessToken:      tok.AccessToken,
		TokenType:        tok.TokenType,
		RefreshToken:     tok.RefreshToken,
		ExpiresAt:        tok.ExpiresAt,
		RefreshExpiresAt: tok.RefreshExpiresAt,
		AccountID:        tok.AccountID,
		DisplayName:      tok.DisplayName,
		Scope:            tok.Scope,
		LinkedAt:         now,
	}
}
