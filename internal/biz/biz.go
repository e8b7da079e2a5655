// Package biz contains business logic layer implementations.
// It holds the account link flow and the paginated locker viewer.
package biz

import (
	"LockerLink/internal/data"
	"LockerLink/internal/metrics"
	"LockerLink/pkg/catalog"
	"LockerLink/pkg/oauth"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewLinkUsecase,
	NewLockerPaginator,
	NewLockerUsecase,
	NewCredentialRefreshTask,
	metrics.New,
	// Outbound clients
	oauth.NewClient,
	catalog.NewClient,
	// Bind data layer implementations to biz layer interfaces
	wire.Bind(new(CredentialRepo), new(*data.CredentialRepo)),
	wire.Bind(new(PendingRepo), new(*data.PendingAuthorizationRepo)),
	wire.Bind(new(SessionRepo), new(*data.LockerSessionRepo)),
	wire.Bind(new(SurfaceEditor), new(*data.DiscordSurface)),
	wire.Bind(new(OAuthClient), new(*oauth.Client)),
	wire.Bind(new(CatalogClient), new(*catalog.Client)),
)
