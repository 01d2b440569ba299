package channels

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
	"github.com/crystaldolphin/dolphinchat/internal/config"
	"github.com/crystaldolphin/dolphinchat/internal/schema"
)

// Manager owns all enabled channels and routes outbound messages.
type Manager struct {
	channels map[string]schema.Channel
	bus      bus.Bus
	logger   *zap.Logger
}

// NewManager creates a Manager and initialises all enabled platform channels.
// The CLI channel is registered separately by the chat command.
func NewManager(cfg *config.Config, b bus.Bus, logger *zap.Logger) *Manager {
	m := NewManagerWith(b, logger)

	if cfg.Channels.Telegram.Enabled {
		m.Register(NewTelegramChannel(&cfg.Channels.Telegram, b, logger))
	}
	if cfg.Channels.Slack.Enabled {
		m.Register(NewSlackChannel(&cfg.Channels.Slack, b, logger))
	}
	if cfg.Channels.QQ.Enabled {
		m.Register(NewQQChannel(&cfg.Channels.QQ, b, logger))
	}

	return m
}

// NewManagerWith creates a Manager that routes only to chs.
func NewManagerWith(b bus.Bus, logger *zap.Logger, chs ...schema.Channel) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		channels: make(map[string]schema.Channel),
		bus:      b,
		logger:   logger,
	}
	for _, ch := range chs {
		m.Register(ch)
	}
	return m
}

// Register adds ch, replacing any channel with the same name.
func (m *Manager) Register(ch schema.Channel) {
	m.channels[ch.Name()] = ch
	m.logger.Info("channel enabled", zap.String("name", ch.Name()))
}

// EnabledChannels returns the sorted names of all registered channels.
func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StartAll starts all channels concurrently and dispatches outbound messages.
// Blocks until ctx is cancelled.
func (m *Manager) StartAll(ctx context.Context) error {
	go m.Dispatch(ctx) //nolint:errcheck

	for name, ch := range m.channels {
		go func(n string, c schema.Channel) {
			m.logger.Info("starting channel", zap.String("name", n))
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				m.logger.Error("channel exited with error", zap.String("name", n), zap.Error(err))
			}
		}(name, ch)
	}

	<-ctx.Done()
	return ctx.Err()
}

// Dispatch reads from the outbound bus and routes each message to the
// appropriate channel's Send method until ctx is cancelled. It does not
// start any channel.
func (m *Manager) Dispatch(ctx context.Context) error {
	for {
		select {
		case msg := <-m.bus.OutboundChan():
			m.dispatch(ctx, msg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Manager) dispatch(ctx context.Context, msg bus.OutboundMessage) {
	ch, ok := m.channels[msg.Channel().String()]
	if !ok {
		m.logger.Debug("unknown channel for outbound message", zap.Stringer("channel", msg.Channel()))
		return
	}
	if msg.Content() == "" && msg.Channel() != bus.ChannelCLI {
		return
	}
	if err := ch.Send(ctx, msg); err != nil {
		m.logger.Error("send error", zap.Stringer("channel", msg.Channel()), zap.Error(err))
	}
}
