package bus

type ChannelType string

const (
	ChannelCLI      ChannelType = "cli"
	ChannelQQ       ChannelType = "qq"
	ChannelTelegram ChannelType = "telegram"
	ChannelSlack    ChannelType = "slack"
)

// PrivateConversation is the conversation id used when a message carries
// neither a group id nor a sender id.
const PrivateConversation = "private"

func (c ChannelType) String() string { return string(c) }
