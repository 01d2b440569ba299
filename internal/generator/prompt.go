package generator

import (
	"fmt"
	"strings"

	"github.com/crystaldolphin/dolphinchat/internal/memory"
	"github.com/crystaldolphin/dolphinchat/internal/persona"
	"github.com/crystaldolphin/dolphinchat/internal/schema"
)

const systemTemplate = "你是%s，你的性格是%s，你的说话风格是%s，你的背景经历是%s。\n" +
	"你需要基于群聊的历史聊天内容进行自然，连贯的总结性回复，要混入群聊之中，不要让大家发现你是AI。" +
	"避免重复相同内容，尽量使用不同的表达方式。"

// SystemPrompt renders the in-character instruction for a persona.
func SystemPrompt(s persona.Settings) string {
	return fmt.Sprintf(systemTemplate, s.Name, s.Personality, s.Style, s.Background)
}

// JoinTurns concatenates turn contents with single spaces, ignoring roles.
func JoinTurns(turns []memory.Turn) string {
	parts := make([]string, len(turns))
	for i, t := range turns {
		parts[i] = t.Content
	}
	return strings.Join(parts, " ")
}

// BuildMessages returns the two-message request: persona instruction and
// the joined recent history.
func BuildMessages(s persona.Settings, turns []memory.Turn) schema.Messages {
	return schema.NewMessages(
		schema.NewSystemMessage(SystemPrompt(s)),
		schema.NewUserMessage(JoinTurns(turns)),
	)
}
