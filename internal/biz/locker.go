package biz

import (
	"context"
	"fmt"
	"time"

	"LockerLink/internal/data"
	"LockerLink/internal/metrics"
	"LockerLink/pkg/catalog"
	pkglog "LockerLink/pkg/log"
	"LockerLink/pkg/oauth"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
)

// LockerUsecase 拉取已绑定账户的外观并打开分页会话
type LockerUsecase struct {
	link      *LinkUsecase
	catalog   CatalogClient
	paginator *LockerPaginator
	metrics   *metrics.Metrics
	log       *pkglog.LogHelper
}

// NewLockerUsecase creates the locker usecase.
func NewLockerUsecase(link *LinkUsecase, client CatalogClient, paginator *LockerPaginator, m *metrics.Metrics, logger log.Logger) *LockerUsecase {
	return &LockerUsecase{
		link:      link,
		catalog:   client,
		paginator: paginator,
		metrics:   m,
		log:       pkglog.NewLogHelper(log.With(logger, "module", "biz/locker")),
	}
}

// Open 为 ownerID 打开 Locker 会话，surface 为渲染消息的句柄
// 账户 ID 已知时身份查询与目录拉取并发进行
func (uc *LockerUsecase) Open(ctx context.Context, ownerID, surface string) (*data.LockerSession, *View, error) {
	cred := uc.link.Credential(ctx, ownerID)
	if cred == nil {
		return nil, nil, ErrNotLinked
	}

	var (
		identity *oauth.AccountIdentity
		locker   *catalog.Locker
	)

	fetchIdentity := func(ctx context.Context) error {
		id, err := uc.link.FetchAccountIdentity(ctx, cred)
		if err != nil {
			return ErrAccountLookupFailed.WithCause(err)
		}
		if id == nil {
			return ErrAccountLookupFailed
		}
		identity = id
		return nil
	}
	fetchCatalog := func(ctx context.Context, accountID string) error {
		start := time.Now()
		l, err := uc.catalog.FetchLocker(ctx, &catalog.Request{
			OwnerID:     ownerID,
			AccountID:   accountID,
			AccessToken: cred.AccessToken,
		})
		if err != nil {
			uc.metrics.ObserveCatalogFetch(metrics.ResultFailure, start)
			uc.log.Errorw("msg", "catalog fetch failed", "owner_id", ownerID, "error", err)
			return ErrCatalogFetchFailed.WithCause(err)
		}
		result := metrics.ResultSuccess
		if len(l.Items) == 0 {
			result = metrics.ResultEmpty
		}
		uc.metrics.ObserveCatalogFetch(result, start)
		locker = l
		return nil
	}

	if cred.AccountID != "" {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return fetchIdentity(gctx) })
		g.Go(func() error { return fetchCatalog(gctx, cred.AccountID) })
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		if err := fetchIdentity(ctx); err != nil {
			return nil, nil, err
		}
		if err := fetchCatalog(ctx, identity.ID); err != nil {
			return nil, nil, err
		}
	}

	items := make([]data.CosmeticItem, 0, len(locker.Items))
	for _, it := range locker.Items {
		items = append(items, data.CosmeticItem{
			ID:       it.ID,
			Name:     it.Name,
			Rarity:   it.Rarity,
			IconURL:  it.IconURL,
			ImageURL: it.ImageURL,
		})
	}

	s, err := uc.paginator.Create(ctx, ownerID, lockerTitle(identity, locker, cred), items, surface)
	if err != nil {
		return nil, nil, err
	}
	return s, uc.paginator.Open(s), nil
}

func lockerTitle(identity *oauth.AccountIdentity, locker *catalog.Locker, cred *data.Credential) string {
	name := identity.DisplayName
	if name == "" {
		name = locker.AccountName
	}
	if name == "" {
		name = cred.DisplayName
	}
	if name == "" {
		return "Your Locker"
	}
	return fmt.Sprintf("%s's Locker", name)
}
