// Package data provides the in-memory stores and the shared chat session.
// Nothing here survives a restart.
package data

import (
	"fmt"

	"LockerLink/internal/conf"

	"github.com/bwmarrin/discordgo"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewCredentialRepo,
	NewPendingAuthorizationRepo,
	NewLockerSessionRepo,
	NewDiscordSurface,
)

// Data contains the shared data layer dependencies.
type Data struct {
	// discord is nil when no bot token is configured (HTTP-only mode)
	discord *discordgo.Session
	appID   string
}

// NewData creates the Discord session (not yet connected).
// A missing token does not prevent application startup; the bot is simply disabled.
func NewData(c *conf.Discord, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)

	d := &Data{}
	if c != nil {
		d.appID = c.AppID
	}
	if c == nil || c.Token == "" {
		helper.Warn("discord token is empty, chat commands will be unavailable")
		return d, func() {}, nil
	}

	dg, err := discordgo.New("Bot " + c.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds
	d.discord = dg

	cleanup := func() {
		helper.Info("closing the data resources")
		// gateway 连接由 DiscordServer.Stop 关闭
	}
	return d, cleanup, nil
}

// Discord returns the shared Discord session, or nil when disabled.
func (d *Data) Discord() *discordgo.Session {
	return d.discord
}

// AppID returns the configured application id.
func (d *Data) AppID() string {
	return d.appID
}
