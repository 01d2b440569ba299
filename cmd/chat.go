package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
	"github.com/crystaldolphin/dolphinchat/internal/channels"
	"github.com/crystaldolphin/dolphinchat/internal/dependency"
	"github.com/crystaldolphin/dolphinchat/internal/shared/cmdutils"
)

var (
	chatMessage string
	chatGroup   string
	chatSender  string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot from the terminal",
	Long: "Talk to the bot from the terminal. Every line goes through the same " +
		"commands, memory and autonomous-reply rules as a group chat message.",
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().StringVarP(&chatGroup, "group", "g", "", "Group id to chat in (empty = private conversation)")
	chatCmd.Flags().StringVarP(&chatSender, "sender", "s", "user", "Sender id")
}

func runChat(_ *cobra.Command, _ []string) error {
	container, logger, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if chatMessage != "" {
		return runSingleMessage(container)
	}
	return runInteractive(container)
}

// runSingleMessage sends one message through the engagement policy and
// prints the reply, if any.
func runSingleMessage(container *dependency.Container) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reply := container.Loop().ProcessDirect(ctx, chatMessage, chatSender, chatGroup)
	cmdutils.PrintResponse(os.Stdout, botName(container), reply)
	return nil
}

// runInteractive starts the REPL over the CLI channel. The loop and the
// outbound dispatcher run alongside it until the user exits.
func runInteractive(container *dependency.Container) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	msgBus := container.MessageBus()
	cli := channels.NewCLIChannel(msgBus, os.Stdin, os.Stdout, chatSender, chatGroup, botName(container), nil)
	mgr := channels.NewManagerWith(msgBus, nil, cli)

	g, gctx := errgroup.WithContext(ctx)
	replCtx, replDone := context.WithCancel(gctx)

	g.Go(func() error { return container.Loop().Run(replCtx) })
	g.Go(func() error { return mgr.Dispatch(replCtx) })
	g.Go(func() error {
		defer replDone()
		return cli.Start(replCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func botName(container *dependency.Container) string {
	conv := bus.NewInboundMessage(bus.ChannelCLI, chatSender, "", chatGroup, "").ConversationID()
	return container.Personas().Get(conv).Name
}
