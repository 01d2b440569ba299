package channels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
	"github.com/crystaldolphin/dolphinchat/internal/config/channel"
)

func newTestSlack(t *testing.T, mutate func(*channel.SlackConfig)) (*SlackChannel, *bus.MessageBus) {
	t.Helper()
	cfg := channel.DefaultSlackConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	mb := bus.NewMessageBus(4)
	s := NewSlackChannel(&cfg, mb, zap.NewNop())
	s.setBotUserID("UBOT")
	return s, mb
}

func TestSlack_ChannelMessageKeyedByChannel(t *testing.T) {
	s, mb := newTestSlack(t, nil)

	s.handleInnerEvent(slackInbound{
		evType: "message", user: "U1", channel: "C1", channelType: "channel",
		text: "在吗", ts: "111.1",
	})

	require.Equal(t, 1, mb.InboundSize())
	msg := <-mb.InboundChan()
	assert.Equal(t, "C1", msg.ChatId())
	assert.Equal(t, "C1", msg.ConversationID())
	meta := msg.Metadata()["slack"].(map[string]any)
	assert.Equal(t, "111.1", meta["thread_ts"])
}

func TestSlack_DirectMessageKeyedByUser(t *testing.T) {
	s, mb := newTestSlack(t, nil)

	s.handleInnerEvent(slackInbound{evType: "message", user: "U1", channel: "D1", channelType: "im", text: "hi"})

	require.Equal(t, 1, mb.InboundSize())
	msg := <-mb.InboundChan()
	assert.Equal(t, "D1", msg.ChatId())
	assert.Empty(t, msg.GroupId())
	assert.Equal(t, "U1", msg.ConversationID())
}

func TestSlack_IgnoresBotAndSubtypes(t *testing.T) {
	s, mb := newTestSlack(t, nil)

	s.handleInnerEvent(slackInbound{evType: "message", user: "UBOT", channel: "C1", text: "me"})
	s.handleInnerEvent(slackInbound{evType: "message", user: "U1", channel: "C1", subtype: "message_changed", text: "x"})
	s.handleInnerEvent(slackInbound{evType: "message", user: "U1", channel: "C1", text: "<@UBOT> hi"})

	assert.Equal(t, 0, mb.InboundSize())
}

func TestSlack_MentionStripped(t *testing.T) {
	s, mb := newTestSlack(t, func(c *channel.SlackConfig) { c.GroupPolicy = "mention" })

	s.handleInnerEvent(slackInbound{evType: "app_mention", user: "U1", channel: "C1", text: "<@UBOT> ai 你好"})
	s.handleInnerEvent(slackInbound{evType: "message", user: "U1", channel: "C1", channelType: "channel", text: "no mention"})

	require.Equal(t, 1, mb.InboundSize())
	msg := <-mb.InboundChan()
	assert.Equal(t, "ai 你好", msg.Content())
}

func TestSlack_Allowlists(t *testing.T) {
	s, mb := newTestSlack(t, func(c *channel.SlackConfig) {
		c.GroupPolicy = "allowlist"
		c.GroupAllowFrom = []string{"C1"}
		c.DM.Enabled = false
	})

	s.handleInnerEvent(slackInbound{evType: "message", user: "U1", channel: "C2", channelType: "channel", text: "a"})
	s.handleInnerEvent(slackInbound{evType: "message", user: "U1", channel: "D1", channelType: "im", text: "b"})
	s.handleInnerEvent(slackInbound{evType: "message", user: "U1", channel: "C1", channelType: "channel", text: "c"})

	require.Equal(t, 1, mb.InboundSize())
	assert.Equal(t, "c", (<-mb.InboundChan()).Content())
}
