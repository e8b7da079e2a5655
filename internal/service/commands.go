package service

import (
	"context"
	"fmt"

	"LockerLink/internal/biz"
)

// linkCommand /link：带登录链接按钮的私密消息
type linkCommand struct {
	link *biz.LinkUsecase
}

func (c *linkCommand) Name() string        { return "link" }
func (c *linkCommand) Description() string { return "Link your Epic Games account." }
func (c *linkCommand) Deferred() bool      { return false }

func (c *linkCommand) Execute(ctx context.Context, inv *Invocation) (*Reply, error) {
	url, err := c.link.IssueAuthorizationURL(ctx, inv.OwnerID)
	if err != nil {
		return nil, err
	}
	return &Reply{
		Content:   "🔗 Click below to **log in with Epic Games** and link your account.",
		Buttons:   []*Button{{Label: "Log in with Epic", URL: url}},
		Ephemeral: true,
	}, nil
}

// loginCommand /login：以嵌入文本形式给出登录地址
type loginCommand struct {
	link *biz.LinkUsecase
}

func (c *loginCommand) Name() string        { return "login" }
func (c *loginCommand) Description() string { return "Login to your Epic Games account." }
func (c *loginCommand) Deferred() bool      { return false }

func (c *loginCommand) Execute(ctx context.Context, inv *Invocation) (*Reply, error) {
	url, err := c.link.IssueAuthorizationURL(ctx, inv.OwnerID)
	if err != nil {
		return nil, err
	}
	return &Reply{
		Embeds: []*Embed{{
			Title:       "Epic Games Login",
			Description: fmt.Sprintf("Click the link below to login and link your Epic account.\n\n🔗 [Login Here](%s)", url),
			Color:       0x00aaff,
		}},
		Ephemeral: true,
	}, nil
}

type unlinkCommand struct {
	link *biz.LinkUsecase
}

func (c *unlinkCommand) Name() string        { return "unlink" }
func (c *unlinkCommand) Description() string { return "Unlink your Epic Games account from the bot." }
func (c *unlinkCommand) Deferred() bool      { return false }

func (c *unlinkCommand) Execute(ctx context.Context, inv *Invocation) (*Reply, error) {
	if !c.link.Unlink(ctx, inv.OwnerID) {
		return &Reply{Content: "❌ You do not have a linked Epic Games account.", Ephemeral: true}, nil
	}
	return &Reply{Content: "✅ Your Epic Games account has been successfully **unlinked**.", Ephemeral: true}, nil
}

// lockerCommand /locker：拉取外观并打开分页会话
type lockerCommand struct {
	locker *biz.LockerUsecase
}

func (c *lockerCommand) Name() string        { return "locker" }
func (c *lockerCommand) Description() string { return "View your full Fortnite locker with pages." }
func (c *lockerCommand) Deferred() bool      { return true }

func (c *lockerCommand) Execute(ctx context.Context, inv *Invocation) (*Reply, error) {
	_, view, err := c.locker.Open(ctx, inv.OwnerID, inv.Surface)
	if err != nil {
		return nil, err
	}
	return lockerReply(view), nil
}
