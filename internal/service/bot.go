package service

import (
	"context"

	"LockerLink/internal/biz"
	pkglog "LockerLink/pkg/log"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// BotService 处理聊天命令与翻页按钮
type BotService struct {
	registry  *Registry
	paginator *biz.LockerPaginator
	logger    *pkglog.LogHelper
}

// NewBotService creates a new BotService and registers the slash commands.
func NewBotService(link *biz.LinkUsecase, locker *biz.LockerUsecase, paginator *biz.LockerPaginator, logger log.Logger) *BotService {
	registry := NewRegistry(logger)
	registry.Register(&linkCommand{link: link})
	registry.Register(&loginCommand{link: link})
	registry.Register(&unlinkCommand{link: link})
	registry.Register(&lockerCommand{locker: locker})

	return &BotService{
		registry:  registry,
		paginator: paginator,
		logger:    pkglog.NewLogHelper(log.With(logger, "module", "service/bot")),
	}
}

// Commands lists the commands to register with the chat platform.
func (s *BotService) Commands() []CommandDefinition {
	return s.registry.Definitions()
}

// Deferred reports whether the command answers after a placeholder.
func (s *BotService) Deferred(name string) bool {
	h, err := s.registry.Get(name)
	return err == nil && h.Deferred()
}

// Execute runs a slash command. Unknown commands return nil.
func (s *BotService) Execute(ctx context.Context, name string, inv *Invocation) *Reply {
	h, err := s.registry.Get(name)
	if err != nil {
		s.logger.Warnw("msg", "unknown command", "command", name)
		return nil
	}
	s.logger.Interaction("command received", "command", name, "owner_id", inv.OwnerID)

	reply, err := h.Execute(ctx, inv)
	if err != nil {
		return s.failure(ctx, name, err)
	}
	return reply
}

// Navigate 处理翻页按钮
func (s *BotService) Navigate(ctx context.Context, customID, actorID string) *Reply {
	dir, sessionID, ok := ParseLockerCustomID(customID)
	if !ok {
		s.logger.Warnw("msg", "unrecognised component id", "custom_id", customID)
		return nil
	}

	nav, err := s.paginator.Advance(ctx, sessionID, actorID, dir)
	if err != nil {
		reply := s.failure(ctx, "locker:"+dir.String(), err)
		if errors.Is(err, biz.ErrSessionRetired) {
			// 原地更新消息并撤下按钮
			reply.Update = true
			reply.ClearControls = true
		}
		return reply
	}
	if !nav.Allowed {
		text, _ := errorText(nav.Denial)
		return &Reply{Content: text, Ephemeral: true}
	}

	reply := lockerReply(nav.View)
	reply.Update = true
	return reply
}

func (s *BotService) failure(ctx context.Context, name string, err error) *Reply {
	text, mapped := errorText(err)
	if !mapped {
		s.logger.Errorw("msg", "command failed",
			"command", name,
			"request_id", pkglog.GetRequestID(ctx),
			"error", err)
	}
	return &Reply{Content: text, Ephemeral: true}
}
