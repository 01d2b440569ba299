package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Connect to the enabled chat platforms and start replying",
	RunE:  runGateway,
}

func runGateway(_ *cobra.Command, _ []string) error {
	container, logger, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	fmt.Printf("%s Starting dolphinchat gateway...\n", logo)

	channelMgr := container.ChannelManager()
	if enabled := channelMgr.EnabledChannels(); len(enabled) > 0 {
		fmt.Printf("✓ Channels enabled: %s\n", strings.Join(enabled, ", "))
	} else {
		fmt.Println("Warning: no channels enabled")
	}

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return container.Loop().Run(gctx) })
	g.Go(func() error { return channelMgr.StartAll(gctx) })
	if resetter := container.DedupResetter(); resetter != nil {
		g.Go(func() error { return resetter.Start(gctx) })
	}

	fmt.Printf("%s Gateway running. Press Ctrl+C to stop.\n", logo)

	err = g.Wait()
	msgBus := container.MessageBus()
	if in, out := msgBus.InboundSize(), msgBus.OutboundSize(); in+out > 0 {
		logger.Warn("messages dropped at shutdown", zap.Int("inbound", in), zap.Int("outbound", out))
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("gateway stopped", zap.Error(err))
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
