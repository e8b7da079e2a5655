package server

import (
	"context"
	"fmt"
	"time"

	"LockerLink/internal/biz"
	"LockerLink/internal/conf"
	pkglog "LockerLink/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
)

const (
	sweepTimeout   = 30 * time.Second
	refreshTimeout = 5 * time.Minute
)

// CronServer 运行后台定时任务：
//   - sweep：回收过期的待授权 state 与超时的 Locker 会话
//   - refresh：刷新即将过期的凭证（可关闭）
type CronServer struct {
	cron      *cron.Cron
	link      *biz.LinkUsecase
	paginator *biz.LockerPaginator
	refresh   *biz.CredentialRefreshTask
	log       *pkglog.LogHelper
}

// NewCronServer registers the jobs. Invalid cron specs fail startup.
func NewCronServer(c *conf.Scheduler, link *biz.LinkUsecase, paginator *biz.LockerPaginator, refresh *biz.CredentialRefreshTask, logger log.Logger) (*CronServer, error) {
	s := &CronServer{
		// Cron 表达式带秒字段（秒 分 时 日 月 周）
		cron:      cron.New(cron.WithSeconds()),
		link:      link,
		paginator: paginator,
		refresh:   refresh,
		log:       pkglog.NewLogHelper(log.With(logger, "module", "server/cron")),
	}

	sweepSpec := "@every 30s"
	refreshSpec := "@every 10m"
	refreshDisabled := false
	if c != nil {
		if c.SweepSpec != "" {
			sweepSpec = c.SweepSpec
		}
		if c.RefreshSpec != "" {
			refreshSpec = c.RefreshSpec
		}
		refreshDisabled = c.RefreshDisabled
	}

	if _, err := s.cron.AddFunc(sweepSpec, s.runSweep); err != nil {
		return nil, fmt.Errorf("failed to register sweep job %q: %w", sweepSpec, err)
	}
	if refreshDisabled {
		s.log.Scheduler("credential refresh disabled")
		return s, nil
	}
	if _, err := s.cron.AddFunc(refreshSpec, s.runRefresh); err != nil {
		return nil, fmt.Errorf("failed to register refresh job %q: %w", refreshSpec, err)
	}
	return s, nil
}

func (s *CronServer) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	s.Sweep(ctx)
}

func (s *CronServer) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	s.log.Scheduler("starting credential refresh")
	refreshed, failed := s.refresh.RefreshExpiring(ctx)
	s.log.Scheduler("credential refresh completed", "refreshed", refreshed, "failed", failed)
}

// Sweep 执行一次回收，返回过期 state 数与回收会话数
func (s *CronServer) Sweep(ctx context.Context) (pending, sessions int) {
	pending = s.link.SweepExpired(ctx)
	sessions = s.paginator.SweepExpired(ctx)
	if pending > 0 || sessions > 0 {
		s.log.Scheduler("sweep completed", "expired_pending", pending, "retired_sessions", sessions)
	}
	return pending, sessions
}

// Start implements transport.Server.
func (s *CronServer) Start(ctx context.Context) error {
	s.cron.Start()
	s.log.Startup("cron server started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *CronServer) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.log.Scheduler("cron server stopped")
	return nil
}
