package bus

// OutboundMessage is a reply to be sent back through a channel.
type OutboundMessage struct {
	channel  ChannelType    // destination channel name
	chatId   string         // destination chat / channel / DM identifier
	content  string         // text to send
	metadata map[string]any // channel-specific hints (message_id, thread_ts, …)
}

func (m OutboundMessage) Channel() ChannelType           { return m.channel }
func (m OutboundMessage) ChatId() string                 { return m.chatId }
func (m OutboundMessage) Content() string                { return m.content }
func (m OutboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *OutboundMessage) SetMetadata(md map[string]any) { m.metadata = md }

func NewOutboundMessage(channel ChannelType, chatId, content string) OutboundMessage {
	return OutboundMessage{
		channel: channel,
		chatId:  chatId,
		content: content,
	}
}

// ReplyTo builds the outbound reply for in, copying its routing metadata so
// channels can quote or thread the original message.
func ReplyTo(in InboundMessage, content string) OutboundMessage {
	out := NewOutboundMessage(in.Channel(), in.ChatId(), content)
	out.SetMetadata(in.Metadata())
	return out
}
