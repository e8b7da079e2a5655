package service

import (
	"fmt"
	"strings"

	"LockerLink/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
)

// Reply 与聊天平台无关的回复，由 DiscordServer 转换为 discordgo 结构
type Reply struct {
	Content   string
	Embeds    []*Embed
	Buttons   []*Button
	Ephemeral bool
	// Update 为 true 时原地更新按钮所在的消息
	Update bool
	// ClearControls 更新消息时移除所有按钮，保留原有嵌入
	ClearControls bool
}

// Embed 富文本卡片
type Embed struct {
	Title        string
	Description  string
	Color        int
	ThumbnailURL string
	ImageURL     string
	Footer       string
	Fields       []*Field
}

// Field 嵌入字段
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Button 普通按钮带 CustomID，链接按钮带 URL
type Button struct {
	Label    string
	CustomID string
	URL      string
	Disabled bool
}

const lockerPrefix = "locker"

// LockerCustomID 编码翻页按钮 ID：locker:<prev|next>:<session>
func LockerCustomID(dir biz.Direction, sessionID string) string {
	return fmt.Sprintf("%s:%s:%s", lockerPrefix, dir, sessionID)
}

// ParseLockerCustomID 解析翻页按钮 ID
func ParseLockerCustomID(customID string) (dir biz.Direction, sessionID string, ok bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != lockerPrefix || parts[2] == "" {
		return 0, "", false
	}
	dir, ok = biz.ParseDirection(parts[1])
	if !ok {
		return 0, "", false
	}
	return dir, parts[2], true
}

// lockerReply 渲染当前页
func lockerReply(v *biz.View) *Reply {
	return &Reply{
		Ephemeral: true,
		Embeds: []*Embed{{
			Title:        v.Title,
			Color:        v.Color,
			ThumbnailURL: v.IconURL,
			ImageURL:     v.ImageURL,
			Footer:       fmt.Sprintf("Skin %s", v.Position),
			Fields: []*Field{
				{Name: "Skin", Value: v.ItemName},
				{Name: "Rarity", Value: v.Rarity, Inline: true},
			},
		}},
		Buttons: []*Button{
			{Label: "⬅️ Prev", CustomID: LockerCustomID(biz.Previous, v.SessionID), Disabled: v.PreviousDisabled},
			{Label: "Next ➡️", CustomID: LockerCustomID(biz.Next, v.SessionID), Disabled: v.NextDisabled},
		},
	}
}

const genericFailure = "❌ Error while running command."

var reasonText = map[string]string{
	biz.ReasonNotLinked:           "❌ You are **not logged in**.\nUse `/link` first.",
	biz.ReasonAccountLookupFailed: "⚠️ Could not fetch account info. Token may be expired, use `/link` again.",
	biz.ReasonCatalogFetchFailed:  "❌ Failed to fetch locker from server.",
	biz.ReasonEmptyCatalog:        "❌ No skins found in your locker.",
	biz.ReasonNotSessionOwner:     "❌ This locker is not for you.",
	biz.ReasonSessionRetired:      "⌛ This locker has expired. Run `/locker` again.",
	biz.ReasonMissingOwner:        "❌ Could not determine your Discord account.",
}

// errorText 将错误原因映射为用户可见文本；mapped 为 false 时调用方应记录错误日志
func errorText(err error) (text string, mapped bool) {
	if t, ok := reasonText[errors.Reason(err)]; ok {
		return t, true
	}
	return genericFailure, false
}
