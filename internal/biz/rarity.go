package biz

import "strings"

// DefaultRarityColor is used for unknown or missing rarities.
const DefaultRarityColor = 0x00a6ff

var rarityColors = map[string]int{
	"common":    0xaaaaaa,
	"uncommon":  0x1eff00,
	"rare":      0x0070ff,
	"epic":      0xa335ee,
	"legendary": 0xff8000,
	"mythic":    0xffcc00,
	"exotic":    0x14fff7,
}

// RarityColor 稀有度 → 嵌入颜色，大小写不敏感
func RarityColor(rarity string) int {
	if c, ok := rarityColors[strings.ToLower(strings.TrimSpace(rarity))]; ok {
		return c
	}
	return DefaultRarityColor
}
