// Package util holds small helpers shared by the outbound OAuth and catalog clients.
package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// stateBytes 32 字节随机数，远超 128 bit 的强度要求
const stateBytes = 32

// GenerateState 生成一次性 OAuth state 参数
// 32 字节 crypto/rand 随机数 → hex 编码（64 字符）
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
