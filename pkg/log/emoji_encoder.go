package log

import (
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// emojiMap 日志类型 -> 表情符号
// 日志调用时带上 "type" 字段即可在控制台输出中获得对应前缀
var emojiMap = map[string]string{
	"request":     "🌐",
	"oauth":       "🔐",
	"token":       "🎫",
	"link":        "🔗",
	"locker":      "🎒",
	"interaction": "🕹️",
	"scheduler":   "🎯",
	"startup":     "🚀",
	"success":     "✅",
	"security":    "🔒",
}

// statusEmoji 根据 HTTP 状态码返回表情符号
func statusEmoji(status int64) string {
	switch {
	case status >= 500:
		return "🔴"
	case status >= 400:
		return "🟠"
	case status >= 300:
		return "🟡"
	default:
		return "🟢"
	}
}

func levelEmoji(level zapcore.Level) string {
	switch {
	case level >= zapcore.ErrorLevel:
		return "❌"
	case level == zapcore.WarnLevel:
		return "⚠️"
	case level == zapcore.DebugLevel:
		return "🐛"
	default:
		return "ℹ️"
	}
}

// EmojiConsoleEncoder 包装 Zap ConsoleEncoder，在消息前添加表情符号
type EmojiConsoleEncoder struct {
	zapcore.Encoder
}

// NewEmojiConsoleEncoder 创建带表情符号的控制台编码器
func NewEmojiConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &EmojiConsoleEncoder{Encoder: zapcore.NewConsoleEncoder(cfg)}
}

// EncodeEntry 优先级：HTTP status > type 字段 > 日志级别
func (enc *EmojiConsoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	entry.Message = pickEmoji(entry.Level, fields) + " " + entry.Message
	return enc.Encoder.EncodeEntry(entry, fields)
}

// Clone 克隆编码器（Zap 内部使用）
func (enc *EmojiConsoleEncoder) Clone() zapcore.Encoder {
	return &EmojiConsoleEncoder{Encoder: enc.Encoder.Clone()}
}

func pickEmoji(level zapcore.Level, fields []zapcore.Field) string {
	var logType string
	var status int64
	for _, field := range fields {
		switch {
		case field.Key == "type" && field.Type == zapcore.StringType:
			logType = field.String
		case field.Key == "status" && (field.Type == zapcore.Int64Type || field.Type == zapcore.Int32Type):
			status = field.Integer
		}
	}

	if status > 0 {
		return statusEmoji(status)
	}
	if e, ok := emojiMap[logType]; ok {
		return e
	}
	return levelEmoji(level)
}
