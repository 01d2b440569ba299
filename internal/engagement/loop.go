package engagement

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
)

// Loop reads inbound messages from the bus, runs them through the Policy and
// publishes replies. Each conversation has its own FIFO queue drained by a
// single worker, so messages of one conversation are handled in the order
// the bus delivered them while different conversations run in parallel.
type Loop struct {
	bus    bus.Bus
	policy *Policy
	logger *zap.Logger
	locks  *keyedMutex
	wg     sync.WaitGroup

	mu     sync.Mutex
	queues map[string]*convQueue
}

// convQueue holds the messages of one conversation awaiting its worker.
type convQueue struct {
	pending []bus.InboundMessage
}

func NewLoop(b bus.Bus, policy *Policy, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		bus:    b,
		policy: policy,
		logger: logger,
		locks:  newKeyedMutex(),
		queues: make(map[string]*convQueue),
	}
}

// Run blocks until ctx is cancelled, then waits for the workers to stop.
// Messages still queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("engagement loop started")

	for {
		select {
		case msg := <-l.bus.InboundChan():
			l.enqueue(ctx, msg)
		case <-ctx.Done():
			l.logger.Info("engagement loop stopping")
			l.wg.Wait()
			return ctx.Err()
		}
	}
}

// enqueue appends msg to its conversation queue, starting a worker when the
// conversation has none.
func (l *Loop) enqueue(ctx context.Context, msg bus.InboundMessage) {
	conv := msg.ConversationID()

	l.mu.Lock()
	q, ok := l.queues[conv]
	if !ok {
		q = &convQueue{}
		l.queues[conv] = q
	}
	q.pending = append(q.pending, msg)
	l.mu.Unlock()

	if !ok {
		l.wg.Add(1)
		go l.drain(ctx, conv, q)
	}
}

// drain handles q until it is empty, then removes it.
func (l *Loop) drain(ctx context.Context, conv string, q *convQueue) {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		if len(q.pending) == 0 || ctx.Err() != nil {
			delete(l.queues, conv)
			l.mu.Unlock()
			return
		}
		msg := q.pending[0]
		q.pending[0] = bus.InboundMessage{}
		q.pending = q.pending[1:]
		l.mu.Unlock()

		l.handleMessage(ctx, msg)
	}
}

// queueCount returns the number of conversations with a live worker.
func (l *Loop) queueCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queues)
}

// Process runs one message through the policy under its conversation lock.
// The lock keeps direct calls from racing with the queue worker of the same
// conversation.
func (l *Loop) Process(ctx context.Context, msg bus.InboundMessage) Outcome {
	conv := msg.ConversationID()
	unlock := l.locks.lock(conv)
	defer unlock()

	return l.policy.Handle(ctx, Event{ConversationID: conv, Text: msg.Text()})
}

// ProcessDirect handles a message outside the bus (CLI single-shot mode)
// and returns the reply text, empty on pass-through.
func (l *Loop) ProcessDirect(ctx context.Context, content, senderID, groupID string) string {
	msg := bus.NewInboundMessage(bus.ChannelCLI, senderID, groupID, groupID, content)
	return l.Process(ctx, msg).Reply
}

func (l *Loop) handleMessage(ctx context.Context, msg bus.InboundMessage) {
	log := l.logger.With(
		zap.String("trace_id", uuid.NewString()),
		zap.Stringer("channel", msg.Channel()),
		zap.String("conversation", msg.ConversationID()),
	)
	log.Debug("inbound message", zap.String("preview", msg.Preview()))

	out := l.Process(ctx, msg)
	log.Debug("message handled", zap.Stringer("kind", out.Kind))

	reply := out.Reply
	if out.PassThrough {
		if msg.Channel() != bus.ChannelCLI {
			return
		}
		// The REPL waits for one outbound per input line.
		reply = ""
	}
	if err := l.bus.PublishOutboundContext(ctx, bus.ReplyTo(msg, reply)); err != nil {
		log.Warn("reply dropped", zap.Error(err))
	}
}

// keyedMutex hands out one mutex per key and frees it when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
