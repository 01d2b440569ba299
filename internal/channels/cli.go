package channels

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
	"github.com/crystaldolphin/dolphinchat/internal/shared/cmdutils"
)

var cliExitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

// CLIChannel wires the terminal into the bus: each input line becomes an
// inbound message from senderID in groupID, and the reply (or the empty
// pass-through signal) is printed before the next prompt.
type CLIChannel struct {
	Base
	in       io.Reader
	out      io.Writer
	senderID string
	groupID  string
	botName  string
	replies  chan bus.OutboundMessage
}

// NewCLIChannel creates a CLIChannel. An empty groupID makes the session a
// private conversation keyed by senderID.
func NewCLIChannel(b bus.Bus, in io.Reader, out io.Writer, senderID, groupID, botName string, logger *zap.Logger) *CLIChannel {
	return &CLIChannel{
		Base:     NewBase(bus.ChannelCLI, b, nil, logger),
		in:       in,
		out:      out,
		senderID: senderID,
		groupID:  groupID,
		botName:  botName,
		replies:  make(chan bus.OutboundMessage, 1),
	}
}

func (c *CLIChannel) Name() string { return bus.ChannelCLI.String() }

// Start runs the REPL. Blocks until ctx is cancelled, input ends, or an
// exit command is typed.
func (c *CLIChannel) Start(ctx context.Context) error {
	fmt.Fprintf(c.out, "CLI channel ready. Type 'exit' or press Ctrl+C to quit.\n\n")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(c.out, "You: ")

		var line string
		select {
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out, "\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		case <-ctx.Done():
			return ctx.Err()
		}

		if line == "" {
			continue
		}
		if cliExitCommands[strings.ToLower(line)] {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}

		chatID := c.groupID
		if chatID == "" {
			chatID = c.senderID
		}
		c.HandleMessage(c.senderID, chatID, c.groupID, line, nil)
		c.waitForReply(ctx)
	}
}

func (c *CLIChannel) waitForReply(ctx context.Context) {
	select {
	case msg := <-c.replies:
		cmdutils.PrintResponse(c.out, c.botName, msg.Content())
	case <-ctx.Done():
	}
}

// Send hands a reply to the REPL loop.
func (c *CLIChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	select {
	case c.replies <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
