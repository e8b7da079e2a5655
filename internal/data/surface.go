package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ErrSurfaceUnavailable 未配置 Discord 会话
var ErrSurfaceUnavailable = errors.New("discord session not configured")

// DiscordSurface 通过 interaction token 编辑已渲染的 Locker 消息
type DiscordSurface struct {
	data  *Data
	appID string
}

// NewDiscordSurface creates the surface editor bound to the shared Discord session.
func NewDiscordSurface(d *Data) *DiscordSurface {
	return &DiscordSurface{data: d, appID: d.appID}
}

// WithdrawControls 移除消息上的按钮
// ref 为原始 interaction token，有效期 15 分钟，远长于会话超时
func (s *DiscordSurface) WithdrawControls(ctx context.Context, ref string) error {
	dg := s.data.Discord()
	if dg == nil {
		return ErrSurfaceUnavailable
	}
	appID := s.appID
	if appID == "" && dg.State != nil && dg.State.User != nil {
		appID = dg.State.User.ID
	}
	if appID == "" {
		return errors.New("discord application id unknown")
	}

	empty := []discordgo.MessageComponent{}
	_, err := dg.InteractionResponseEdit(
		&discordgo.Interaction{AppID: appID, Token: ref},
		&discordgo.WebhookEdit{Components: &empty},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to withdraw controls: %w", err)
	}
	return nil
}
