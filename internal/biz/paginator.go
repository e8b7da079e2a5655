package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"LockerLink/internal/conf"
	"LockerLink/internal/data"
	"LockerLink/internal/metrics"
	pkglog "LockerLink/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// Direction of a navigation event.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Previous:
		return "prev"
	case Next:
		return "next"
	}
	return "unknown"
}

// ParseDirection parses "prev"/"previous"/"next".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "prev", "previous":
		return Previous, true
	case "next":
		return Next, true
	}
	return 0, false
}

// View 当前游标处物品的渲染结果
type View struct {
	SessionID        string
	Title            string
	ItemName         string
	Rarity           string
	Color            int
	IconURL          string
	ImageURL         string
	Position         string
	Cursor           int
	Total            int
	PreviousDisabled bool
	NextDisabled     bool
}

// Navigation Advance 的结果
// Allowed 为 false 时 Denial 说明原因，游标未变化，View 为空
type Navigation struct {
	Allowed bool
	View    *View
	Denial  error
}

// LockerPaginator 分页浏览控制器
type LockerPaginator struct {
	sessions SessionRepo
	surface  SurfaceEditor
	ttl      time.Duration
	metrics  *metrics.Metrics
	log      *pkglog.LogHelper

	now   func() time.Time
	newID func() string
}

// NewLockerPaginator creates the paginator.
func NewLockerPaginator(c *conf.Locker, sessions SessionRepo, surface SurfaceEditor, m *metrics.Metrics, logger log.Logger) *LockerPaginator {
	ttl := 5 * time.Minute
	if c != nil && c.SessionTTL > 0 {
		ttl = c.SessionTTL
	}
	return &LockerPaginator{
		sessions: sessions,
		surface:  surface,
		ttl:      ttl,
		metrics:  m,
		log:      pkglog.NewLogHelper(log.With(logger, "module", "biz/paginator")),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Create 创建会话；物品按名称大小写不敏感稳定排序，游标置 0
func (p *LockerPaginator) Create(ctx context.Context, ownerID, title string, items []data.CosmeticItem, surface string) (*data.LockerSession, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}
	sorted := make([]data.CosmeticItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	now := p.now()
	s := &data.LockerSession{
		ID:        p.newID(),
		OwnerID:   ownerID,
		Title:     title,
		Items:     sorted,
		Surface:   surface,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}
	p.sessions.Create(ctx, s)
	p.metrics.IncrementSessionsOpened()
	p.log.Locker("session opened", "session_id", s.ID, "owner_id", ownerID, "items", len(sorted))
	return s, nil
}

// Render 渲染会话当前页；调用方需持有会话锁或保证会话未被并发修改
func (p *LockerPaginator) Render(s *data.LockerSession) *View {
	item := s.Items[s.Cursor]
	name := item.Name
	if name == "" {
		name = "Unknown"
	}
	rarity := item.Rarity
	if rarity == "" {
		rarity = "Unknown"
	}
	image := item.ImageURL
	if image == "" {
		image = item.IconURL
	}
	return &View{
		SessionID:        s.ID,
		Title:            s.Title,
		ItemName:         name,
		Rarity:           rarity,
		Color:            RarityColor(item.Rarity),
		IconURL:          item.IconURL,
		ImageURL:         image,
		Position:         fmt.Sprintf("%d / %d", s.Cursor+1, len(s.Items)),
		Cursor:           s.Cursor,
		Total:            len(s.Items),
		PreviousDisabled: s.Cursor == 0,
		NextDisabled:     s.Cursor == len(s.Items)-1,
	}
}

// Open 返回新会话的首页
func (p *LockerPaginator) Open(s *data.LockerSession) *View {
	s.Lock()
	defer s.Unlock()
	return p.Render(s)
}

// Advance 处理一次翻页事件
// 同一会话的事件由会话锁串行化；翻页在两端饱和，不回绕
func (p *LockerPaginator) Advance(ctx context.Context, sessionID, actorID string, dir Direction) (*Navigation, error) {
	s, ok := p.sessions.Get(ctx, sessionID)
	if !ok {
		p.metrics.IncrementNavigation(metrics.ResultRetired)
		return nil, ErrSessionRetired
	}
	if s.Expired(p.now()) {
		// 回复本身会移除按钮，这里只回收会话
		p.retire(ctx, s, false)
		p.metrics.IncrementNavigation(metrics.ResultRetired)
		return nil, ErrSessionRetired
	}
	if actorID != s.OwnerID {
		p.metrics.IncrementNavigation(metrics.ResultDenied)
		p.log.Security("navigation denied", "session_id", s.ID, "actor_id", actorID)
		return &Navigation{Allowed: false, Denial: ErrNotSessionOwner}, nil
	}

	s.Lock()
	defer s.Unlock()
	if s.Retired {
		p.metrics.IncrementNavigation(metrics.ResultRetired)
		return nil, ErrSessionRetired
	}
	switch dir {
	case Next:
		if s.Cursor < len(s.Items)-1 {
			s.Cursor++
		}
	case Previous:
		if s.Cursor > 0 {
			s.Cursor--
		}
	}
	p.metrics.IncrementNavigation(metrics.ResultSuccess)
	return &Navigation{Allowed: true, View: p.Render(s)}, nil
}

// Retire 回收会话并撤下按钮；多次调用只有第一次生效
func (p *LockerPaginator) Retire(ctx context.Context, sessionID string) bool {
	s, ok := p.sessions.Get(ctx, sessionID)
	if !ok {
		return false
	}
	return p.retire(ctx, s, true)
}

func (p *LockerPaginator) retire(ctx context.Context, s *data.LockerSession, withdraw bool) bool {
	if !p.sessions.Remove(ctx, s.ID) {
		return false
	}
	s.Lock()
	s.Retired = true
	s.Unlock()
	p.metrics.IncrementSessionsRetired()
	p.log.Locker("session retired", "session_id", s.ID, "owner_id", s.OwnerID)
	if !withdraw || p.surface == nil || s.Surface == "" {
		return true
	}
	if err := p.surface.WithdrawControls(ctx, s.Surface); err != nil {
		// 消息可能已被删除
		p.log.Warnw("msg", "failed to withdraw locker controls", "session_id", s.ID, "error", err)
	}
	return true
}

// SweepExpired 回收所有到期会话，返回回收数量
func (p *LockerPaginator) SweepExpired(ctx context.Context) int {
	n := 0
	for _, s := range p.sessions.Expired(ctx, p.now()) {
		if p.retire(ctx, s, true) {
			n++
		}
	}
	return n
}
