// Package bus defines the message types that flow between chat channels and
// the engagement loop.
package bus

import (
	"strings"
	"time"
)

// InboundMessage is a message received from a chat channel.
type InboundMessage struct {
	channel   ChannelType    // "qq", "telegram", "slack", "cli"
	senderId  string         // user identifier within the channel
	chatId    string         // where replies are delivered (group, channel or DM)
	groupId   string         // group / guild identifier; empty for private chats
	content   string         // message text
	timestamp time.Time      // when the message was received
	metadata  map[string]any // channel-specific extra data (message_id, thread_ts, …)
}

// NewInboundMessage creates an InboundMessage with Timestamp set to now.
// groupId is empty for private chats.
func NewInboundMessage(channel ChannelType, senderId, chatId, groupId, content string) InboundMessage {
	return InboundMessage{
		channel:   channel,
		senderId:  senderId,
		chatId:    chatId,
		groupId:   groupId,
		content:   content,
		timestamp: time.Now(),
	}
}

func (m InboundMessage) Channel() ChannelType           { return m.channel }
func (m InboundMessage) SenderId() string               { return m.senderId }
func (m InboundMessage) ChatId() string                 { return m.chatId }
func (m InboundMessage) GroupId() string                { return m.groupId }
func (m InboundMessage) Content() string                { return m.content }
func (m InboundMessage) Timestamp() time.Time           { return m.timestamp }
func (m InboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *InboundMessage) SetMetadata(md map[string]any) { m.metadata = md }

// Text returns the trimmed message content, the form every policy check uses.
func (m InboundMessage) Text() string {
	return strings.TrimSpace(m.content)
}

// ConversationID returns the key that scopes memory and persona settings:
// the group id, else the sender id, else PrivateConversation.
func (m InboundMessage) ConversationID() string {
	if m.groupId != "" {
		return m.groupId
	}
	if m.senderId != "" {
		return m.senderId
	}
	return PrivateConversation
}

// Preview returns a short snippet of the message content for logging.
func (m InboundMessage) Preview() string {
	preview := []rune(m.content)
	if len(preview) > 80 {
		return string(preview[:80]) + "..."
	}
	return m.content
}
