package channels

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
	"github.com/crystaldolphin/dolphinchat/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeChannel struct {
	name string

	mu   sync.Mutex
	sent []bus.OutboundMessage
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeChannel) Sent() []bus.OutboundMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bus.OutboundMessage(nil), f.sent...)
}

func newTestManager(t *testing.T) (*Manager, *bus.MessageBus) {
	t.Helper()
	cfg := config.DefaultConfig()
	mb := bus.NewMessageBus(8)
	return NewManager(&cfg, mb, zap.NewNop()), mb
}

// ─── Registration ──────────────────────────────────────────────────────────

func TestNewManager_NoChannelsByDefault(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Empty(t, m.EnabledChannels())
}

func TestNewManager_RegistersEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Channels.QQ.Enabled = true
	cfg.Channels.Telegram.Enabled = true

	m := NewManager(&cfg, bus.NewMessageBus(1), zap.NewNop())
	assert.Equal(t, []string{"qq", "telegram"}, m.EnabledChannels())
}

// ─── Dispatch ──────────────────────────────────────────────────────────────

func TestDispatch_RoutesByChannel(t *testing.T) {
	m, _ := newTestManager(t)
	qq := &fakeChannel{name: "qq"}
	tg := &fakeChannel{name: "telegram"}
	m.Register(qq)
	m.Register(tg)

	m.dispatch(context.Background(), bus.NewOutboundMessage(bus.ChannelQQ, "g1", "你好"))

	require.Len(t, qq.Sent(), 1)
	assert.Equal(t, "你好", qq.Sent()[0].Content())
	assert.Empty(t, tg.Sent())
}

func TestDispatch_SkipsEmptyForPlatforms(t *testing.T) {
	m, _ := newTestManager(t)
	qq := &fakeChannel{name: "qq"}
	cli := &fakeChannel{name: "cli"}
	m.Register(qq)
	m.Register(cli)

	m.dispatch(context.Background(), bus.NewOutboundMessage(bus.ChannelQQ, "g1", ""))
	m.dispatch(context.Background(), bus.NewOutboundMessage(bus.ChannelCLI, "direct", ""))

	assert.Empty(t, qq.Sent())
	assert.Len(t, cli.Sent(), 1)
}

func TestDispatch_UnknownChannelIgnored(t *testing.T) {
	m, _ := newTestManager(t)
	assert.NotPanics(t, func() {
		m.dispatch(context.Background(), bus.NewOutboundMessage(bus.ChannelSlack, "c1", "hi"))
	})
}

func TestStartAll_DispatchesUntilCancelled(t *testing.T) {
	m, mb := newTestManager(t)
	qq := &fakeChannel{name: "qq"}
	m.Register(qq)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.StartAll(ctx) }()

	mb.PublishOutbound(bus.NewOutboundMessage(bus.ChannelQQ, "g1", "hello"))
	assert.Eventually(t, func() bool { return len(qq.Sent()) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
