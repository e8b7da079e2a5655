package biz

import (
	"context"
	"time"

	"LockerLink/internal/data"
	"LockerLink/pkg/catalog"
	"LockerLink/pkg/oauth"
)

// CredentialRepo defines the credential store used by the link flow.
type CredentialRepo interface {
	Get(ctx context.Context, ownerID string) *data.Credential
	Save(ctx context.Context, ownerID string, cred *data.Credential)
	// Replace swaps the credential only if the stored access token still matches.
	Replace(ctx context.Context, ownerID, expectedAccessToken string, cred *data.Credential) bool
	Delete(ctx context.Context, ownerID string) bool
	ListExpiring(ctx context.Context, before time.Time) map[string]*data.Credential
}

// PendingRepo defines the pending authorization registry.
type PendingRepo interface {
	Save(ctx context.Context, p *data.PendingAuthorization)
	// Take removes and returns the entry; a consumed or expired state returns data.ErrPendingNotFound.
	Take(ctx context.Context, state string, now time.Time) (*data.PendingAuthorization, error)
	Sweep(now time.Time) int
}

// SessionRepo defines the table of live locker sessions.
type SessionRepo interface {
	Create(ctx context.Context, s *data.LockerSession)
	Get(ctx context.Context, id string) (*data.LockerSession, bool)
	// Remove reports true to exactly one caller per session.
	Remove(ctx context.Context, id string) bool
	Expired(ctx context.Context, now time.Time) []*data.LockerSession
}

// OAuthClient is the outbound side of the authorization-code flow.
type OAuthClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error)
	FetchAccount(ctx context.Context, accessToken string) (*oauth.AccountIdentity, error)
}

// CatalogClient fetches the cosmetic items of an account.
type CatalogClient interface {
	FetchLocker(ctx context.Context, req *catalog.Request) (*catalog.Locker, error)
}

// SurfaceEditor edits an already rendered locker message.
type SurfaceEditor interface {
	WithdrawControls(ctx context.Context, ref string) error
}
