// Package channels connects chat platforms to the message bus.
package channels

import (
	"strings"

	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
)

// Base holds common state and helper methods shared by all channels.
type Base struct {
	channelName bus.ChannelType
	b           bus.Bus
	allowFrom   []string // empty = allow all
	logger      *zap.Logger
}

// NewBase creates a Base with the given channel name, bus, and allowlist.
func NewBase(name bus.ChannelType, b bus.Bus, allowFrom []string, logger *zap.Logger) Base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Base{
		channelName: name,
		b:           b,
		allowFrom:   allowFrom,
		logger:      logger.With(zap.Stringer("channel", name)),
	}
}

// IsAllowed checks whether senderID is on the allowlist.
// senderID may be "id|username" (Telegram) or a plain string.
func (b *Base) IsAllowed(senderID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}
	for _, part := range strings.Split(senderID, "|") {
		if part == "" {
			continue
		}
		for _, allowed := range b.allowFrom {
			if allowed == part || allowed == senderID {
				return true
			}
		}
	}
	return false
}

// HandleMessage verifies the sender is allowed, then pushes an InboundMessage
// to the bus. groupId is empty for private chats.
func (b *Base) HandleMessage(
	senderId, chatId, groupId, content string,
	metadata map[string]any,
) {
	if !b.IsAllowed(senderId) {
		b.logger.Warn("access denied", zap.String("sender", senderId))
		return
	}

	msg := bus.NewInboundMessage(b.channelName, senderId, chatId, groupId, content)
	msg.SetMetadata(metadata)
	b.b.PublishInbound(msg)
}

// splitMessage splits content into chunks of at most maxLen runes,
// preferring newline breaks, then space breaks, then a hard cut.
func splitMessage(content string, maxLen int) []string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return []string{content}
	}
	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= maxLen {
			chunks = append(chunks, string(runes))
			break
		}
		cut := string(runes[:maxLen])
		pos := strings.LastIndex(cut, "\n")
		if pos <= 0 {
			pos = strings.LastIndex(cut, " ")
		}
		var head string
		if pos <= 0 {
			head = cut
		} else {
			head = cut[:pos]
		}
		chunks = append(chunks, head)
		runes = []rune(strings.TrimLeft(string(runes[len([]rune(head)):]), " \t\n"))
	}
	return chunks
}
