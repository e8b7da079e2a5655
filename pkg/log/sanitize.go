package log

import (
	"strings"
)

// sensitiveKeywords 命中任意关键字的字段会被脱敏
var sensitiveKeywords = []string{
	"token", "secret", "password", "authorization",
	"credential", "code", "state", "api_key",
}

// SanitizeField masks the value when the key looks like it carries a secret.
// OAuth codes and state tokens count as secrets: they are single-use bearer
// values until redeemed.
func SanitizeField(key, value string) string {
	if value == "" {
		return value
	}

	lowerKey := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerKey, keyword) {
			return MaskSecret(value)
		}
	}
	return value
}

// MaskSecret keeps the first and last four characters of long values and
// only the outer characters of short ones.
func MaskSecret(value string) string {
	switch n := len(value); {
	case n <= 2:
		return strings.Repeat("*", n)
	case n <= 8:
		return value[:1] + strings.Repeat("*", n-2) + value[n-1:]
	default:
		return value[:4] + strings.Repeat("*", n-8) + value[n-4:]
	}
}
