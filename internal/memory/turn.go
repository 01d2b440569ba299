// Package memory keeps a short rolling window of chat turns per conversation.
package memory

import "github.com/crystaldolphin/dolphinchat/internal/schema"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = schema.RoleUser
	RoleAssistant Role = schema.RoleAssistant
)

// Turn is one remembered message. Turns are values and never mutated after
// they are stored.
type Turn struct {
	Role    Role
	Content string
}

func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}
