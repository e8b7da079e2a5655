package server

import (
	"context"
	"fmt"
	"time"

	"LockerLink/internal/conf"
	"LockerLink/internal/data"
	"LockerLink/internal/service"
	pkglog "LockerLink/pkg/log"

	"github.com/bwmarrin/discordgo"
	"github.com/go-kratos/kratos/v2/log"
)

// interactionTimeout 覆盖一次交互的全部上游调用
const interactionTimeout = 2 * time.Minute

// DiscordServer 将 Discord gateway 接入 kratos 应用生命周期
type DiscordServer struct {
	session *discordgo.Session
	bot     *service.BotService
	appID   string
	guildID string
	log     *pkglog.LogHelper

	removers []func()
}

// NewDiscordServer creates the gateway server. Without a bot token it does nothing.
func NewDiscordServer(c *conf.Discord, d *data.Data, bot *service.BotService, logger log.Logger) *DiscordServer {
	s := &DiscordServer{
		session: d.Discord(),
		bot:     bot,
		appID:   d.AppID(),
		log:     pkglog.NewLogHelper(log.With(logger, "module", "server/discord")),
	}
	if c != nil {
		s.guildID = c.GuildID
	}
	return s
}

// Start implements transport.Server.
func (s *DiscordServer) Start(ctx context.Context) error {
	if s.session == nil {
		s.log.Warn("discord gateway disabled: no bot token configured")
		return nil
	}
	s.removers = append(s.removers,
		s.session.AddHandler(s.onReady),
		s.session.AddHandler(s.onInteraction),
	)
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	s.log.Startup("discord gateway connected")
	return nil
}

// Stop implements transport.Server.
func (s *DiscordServer) Stop(ctx context.Context) error {
	if s.session == nil {
		return nil
	}
	for _, remove := range s.removers {
		remove()
	}
	s.removers = nil
	if err := s.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord gateway: %w", err)
	}
	s.log.Info("discord gateway closed")
	return nil
}

// onReady 注册斜杠命令；配置了 GuildID 时只注册到该服务器（生效更快）
func (s *DiscordServer) onReady(dg *discordgo.Session, r *discordgo.Ready) {
	appID := s.appID
	if appID == "" && r.User != nil {
		appID = r.User.ID
	}

	cmds := applicationCommands(s.bot.Commands())
	if _, err := dg.ApplicationCommandBulkOverwrite(appID, s.guildID, cmds); err != nil {
		s.log.Errorw("msg", "failed to register slash commands", "app_id", appID, "guild_id", s.guildID, "error", err)
		return
	}
	username := ""
	if r.User != nil {
		username = r.User.Username
	}
	s.log.Startup("slash commands registered", "bot", username, "commands", len(cmds), "guild_id", s.guildID)
}

func (s *DiscordServer) onInteraction(dg *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i.Interaction)
	ctx := pkglog.WithRequestContext(context.Background(), pkglog.GenerateRequestID(), userID)
	ctx, cancel := context.WithTimeout(ctx, interactionTimeout)
	defer cancel()

	defer func() {
		if rerr := recover(); rerr != nil {
			s.log.Errorw("msg", "panic while handling interaction",
				"request_id", pkglog.GetRequestID(ctx),
				"panic", rerr)
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		s.handleCommand(ctx, dg, i.Interaction, userID)
	case discordgo.InteractionMessageComponent:
		s.handleComponent(ctx, dg, i.Interaction, userID)
	}
}

func (s *DiscordServer) handleCommand(ctx context.Context, dg *discordgo.Session, i *discordgo.Interaction, userID string) {
	name := i.ApplicationCommandData().Name
	inv := &service.Invocation{OwnerID: userID, Surface: i.Token}

	if !s.bot.Deferred(name) {
		reply := s.bot.Execute(ctx, name, inv)
		if reply == nil {
			return
		}
		s.respond(ctx, dg, i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: responseData(reply),
		})
		return
	}

	// 拉取 Locker 可能超过 3 秒，先占位再编辑
	err := dg.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		s.log.Errorw("msg", "failed to defer interaction", "command", name, "request_id", pkglog.GetRequestID(ctx), "error", err)
		return
	}

	reply := s.bot.Execute(ctx, name, inv)
	if reply == nil {
		return
	}
	if _, err := dg.InteractionResponseEdit(i, webhookEdit(reply), discordgo.WithContext(ctx)); err != nil {
		s.log.Errorw("msg", "failed to edit deferred response", "command", name, "request_id", pkglog.GetRequestID(ctx), "error", err)
	}
}

func (s *DiscordServer) handleComponent(ctx context.Context, dg *discordgo.Session, i *discordgo.Interaction, userID string) {
	reply := s.bot.Navigate(ctx, i.MessageComponentData().CustomID, userID)
	if reply == nil {
		return
	}
	s.respond(ctx, dg, i, componentResponse(reply, i.Message))
}

func (s *DiscordServer) respond(ctx context.Context, dg *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) {
	if err := dg.InteractionRespond(i, resp, discordgo.WithContext(ctx)); err != nil {
		s.log.Errorw("msg", "failed to respond to interaction", "request_id", pkglog.GetRequestID(ctx), "error", err)
	}
}

// componentResponse 按钮事件的回复：Update 时原地编辑按钮所在消息，否则发送私密消息
func componentResponse(reply *service.Reply, msg *discordgo.Message) *discordgo.InteractionResponse {
	d := responseData(reply)
	if !reply.Update {
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponseChannelMessageWithSource, Data: d}
	}
	d.Flags = 0
	if reply.ClearControls {
		// 字段没有 omitempty，必须带回原有嵌入，否则会被清空
		if msg != nil {
			d.Embeds = msg.Embeds
		}
		d.Components = []discordgo.MessageComponent{}
	}
	return &discordgo.InteractionResponse{Type: discordgo.InteractionResponseUpdateMessage, Data: d}
}

func responseData(reply *service.Reply) *discordgo.InteractionResponseData {
	d := &discordgo.InteractionResponseData{
		Content:    reply.Content,
		Embeds:     messageEmbeds(reply.Embeds),
		Components: messageComponents(reply.Buttons),
	}
	if reply.Ephemeral {
		d.Flags = discordgo.MessageFlagsEphemeral
	}
	return d
}

func webhookEdit(reply *service.Reply) *discordgo.WebhookEdit {
	content := reply.Content
	embeds := messageEmbeds(reply.Embeds)
	components := messageComponents(reply.Buttons)
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}
}

func messageEmbeds(embeds []*service.Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		me := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		if e.ThumbnailURL != "" {
			me.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
		}
		if e.ImageURL != "" {
			me.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
		}
		if e.Footer != "" {
			me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		out = append(out, me)
	}
	return out
}

// messageComponents 所有按钮放在同一行
func messageComponents(buttons []*service.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}
	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		btn := discordgo.Button{Label: b.Label, Disabled: b.Disabled}
		if b.URL != "" {
			btn.Style = discordgo.LinkButton
			btn.URL = b.URL
		} else {
			btn.Style = discordgo.PrimaryButton
			btn.CustomID = b.CustomID
		}
		row.Components = append(row.Components, btn)
	}
	return []discordgo.MessageComponent{row}
}

func applicationCommands(defs []service.CommandDefinition) []*discordgo.ApplicationCommand {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(defs))
	for _, def := range defs {
		cmds = append(cmds, &discordgo.ApplicationCommand{Name: def.Name, Description: def.Description})
	}
	return cmds
}

// interactionUserID 服务器内取 Member.User，私信取 User
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
