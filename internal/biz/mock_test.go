package biz

import (
	"context"
	"sync"
	"time"

	"LockerLink/internal/conf"
	"LockerLink/internal/data"
	"LockerLink/pkg/catalog"
	"LockerLink/pkg/oauth"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/mock"
)

// MockOAuthClient is a mock implementation of OAuthClient for testing.
type MockOAuthClient struct {
	mock.Mock
}

func (m *MockOAuthClient) AuthCodeURL(state string) string {
	return "https://www.epicgames.com/id/authorize?state=" + state
}

func (m *MockOAuthClient) Exchange(ctx context.Context, code string) (*oauth.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.Token), args.Error(1)
}

func (m *MockOAuthClient) Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.Token), args.Error(1)
}

func (m *MockOAuthClient) FetchAccount(ctx context.Context, accessToken string) (*oauth.AccountIdentity, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.AccountIdentity), args.Error(1)
}

// MockCatalogClient is a mock implementation of CatalogClient for testing.
type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) FetchLocker(ctx context.Context, req *catalog.Request) (*catalog.Locker, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Locker), args.Error(1)
}

// MockSurfaceEditor is a mock implementation of SurfaceEditor for testing.
type MockSurfaceEditor struct {
	mock.Mock
}

func (m *MockSurfaceEditor) WithdrawControls(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testDeps struct {
	clock    *fakeClock
	creds    *data.CredentialRepo
	pending  *data.PendingAuthorizationRepo
	sessions *data.LockerSessionRepo
	oauth    *MockOAuthClient
	catalog  *MockCatalogClient
	surface  *MockSurfaceEditor

	link      *LinkUsecase
	paginator *LockerPaginator
	locker    *LockerUsecase
}

func setupTestDeps() *testDeps {
	d := &testDeps{
		clock:    newFakeClock(),
		creds:    data.NewCredentialRepo(),
		pending:  data.NewPendingAuthorizationRepo(&conf.OAuth{StateTTL: 10 * time.Minute, MaxPending: 100}),
		sessions: data.NewLockerSessionRepo(),
		oauth:    &MockOAuthClient{},
		catalog:  &MockCatalogClient{},
		surface:  &MockSurfaceEditor{},
	}
	logger := log.DefaultLogger

	d.link = NewLinkUsecase(d.creds, d.pending, d.oauth, nil, logger)
	d.link.now = d.clock.Now

	d.paginator = NewLockerPaginator(&conf.Locker{SessionTTL: 5 * time.Minute}, d.sessions, d.surface, nil, logger)
	d.paginator.now = d.clock.Now

	d.locker = NewLockerUsecase(d.link, d.catalog, d.paginator, nil, logger)
	return d
}

func items(names ...string) []data.CosmeticItem {
	out := make([]data.CosmeticItem, 0, len(names))
	for _, n := range names {
		out = append(out, data.CosmeticItem{ID: "id-" + n, Name: n, Rarity: "rare"})
	}
	return out
}
