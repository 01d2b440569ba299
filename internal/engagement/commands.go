package engagement

import (
	"strings"
)

// Message triggers.
const (
	CmdSettingsUpdate = "#设置"
	CmdSettingsQuery  = "#查询设置"
	CmdMemoryClear    = "cr 清空记忆"
	InvokePrefix      = "ai "
	FeedbackPrefix    = "#反馈"
)

// Reply texts.
const (
	ReplySettingsRejected = "❌ 无效的设置项，可调整项包括 name, personality, style, background。"
	ReplyMemoryCleared    = "✅ 当前群聊的 AI 对话上下文已清空。"
	DefaultFeedback       = "📩 反馈请联系 QQ：2252291884\n"
)

// ReplySettingsUpdated confirms a persona change.
func ReplySettingsUpdated(key, value string) string {
	return "✅ 已更新 AI 的 " + key + " 设置为: " + value
}

// parseSetting splits "#设置 <key> <value...>" on single spaces. The key is
// the second field (empty when missing); the value is everything after it,
// rejoined with single spaces.
func parseSetting(text string) (key, value string) {
	parts := strings.Split(text, " ")
	if len(parts) > 1 {
		key = parts[1]
	}
	if len(parts) > 2 {
		value = strings.Join(parts[2:], " ")
	}
	return key, value
}
