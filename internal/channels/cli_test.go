package channels

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
)

// runCLI feeds input to a CLIChannel and answers every inbound message with
// reply(content).
func runCLI(t *testing.T, input, groupID string, reply func(string) string) (string, []bus.InboundMessage) {
	t.Helper()
	mb := bus.NewMessageBus(4)
	var out bytes.Buffer
	cli := NewCLIChannel(mb, strings.NewReader(input), &out, "user", groupID, "ano", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cli.Start(ctx) }()

	var received []bus.InboundMessage
	for {
		select {
		case in := <-mb.InboundChan():
			received = append(received, in)
			require.NoError(t, cli.Send(ctx, bus.ReplyTo(in, reply(in.Content()))))
		case err := <-done:
			require.NoError(t, err)
			return out.String(), received
		case <-time.After(2 * time.Second):
			require.FailNow(t, "cli did not finish")
		}
	}
}

func TestCLIChannel_PrintsReply(t *testing.T) {
	out, received := runCLI(t, "hello\nexit\n", "", func(string) string { return "你好呀" })

	require.Len(t, received, 1)
	assert.Equal(t, bus.ChannelCLI, received[0].Channel())
	assert.Equal(t, "user", received[0].ChatId())
	assert.Equal(t, "user", received[0].ConversationID())
	assert.Contains(t, out, "🐬 ano\n你好呀")
	assert.Contains(t, out, "Goodbye!")
}

func TestCLIChannel_GroupConversation(t *testing.T) {
	_, received := runCLI(t, "hi\n", "g1", func(string) string { return "" })

	require.Len(t, received, 1)
	assert.Equal(t, "g1", received[0].ChatId())
	assert.Equal(t, "g1", received[0].ConversationID())
}

func TestCLIChannel_EmptyReplyPrintsNothing(t *testing.T) {
	out, _ := runCLI(t, "hi\n", "", func(string) string { return "" })
	assert.NotContains(t, out, "🐬")
}

func TestCLIChannel_SkipsBlankLines(t *testing.T) {
	_, received := runCLI(t, "\n   \nhi\n:q\nnever\n", "", func(string) string { return "ok" })
	require.Len(t, received, 1)
	assert.Equal(t, "hi", received[0].Content())
}
