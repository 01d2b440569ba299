// Package engagement decides what the bot does with each inbound message:
// run a command, answer an explicit request, chime in on its own, or stay
// silent.
package engagement

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/dedup"
	"github.com/crystaldolphin/dolphinchat/internal/generator"
	"github.com/crystaldolphin/dolphinchat/internal/memory"
	"github.com/crystaldolphin/dolphinchat/internal/persona"
)

// Kind names the branch that handled a message.
type Kind int

const (
	KindPassThrough Kind = iota
	KindDuplicate
	KindSettingsUpdate
	KindSettingsQuery
	KindMemoryClear
	KindInvoke
	KindFeedback
	KindAutonomous
)

func (k Kind) String() string {
	switch k {
	case KindDuplicate:
		return "duplicate"
	case KindSettingsUpdate:
		return "settings_update"
	case KindSettingsQuery:
		return "settings_query"
	case KindMemoryClear:
		return "memory_clear"
	case KindInvoke:
		return "invoke"
	case KindFeedback:
		return "feedback"
	case KindAutonomous:
		return "autonomous"
	default:
		return "pass_through"
	}
}

// Event is one inbound message as the policy sees it.
type Event struct {
	ConversationID string
	Text           string // trimmed content
}

// Outcome is what the host should do with the message. When PassThrough is
// set Reply is empty and the host continues with its default handling.
type Outcome struct {
	Kind        Kind
	Reply       string
	PassThrough bool
	Generation  *generator.Reply // set for KindInvoke and KindAutonomous
}

// Responder produces a generated reply for a conversation.
type Responder interface {
	Generate(ctx context.Context, convID string) generator.Reply
}

// Policy runs the per-message decision sequence. Every path yields either a
// reply or a pass-through; nothing is returned as an error.
type Policy struct {
	dedup    *dedup.Filter
	memory   *memory.Store
	personas *persona.Store
	gen      Responder
	gate     *Gate
	feedback string
	logger   *zap.Logger
}

// NewPolicy wires a Policy. An empty feedback text uses DefaultFeedback.
func NewPolicy(
	filter *dedup.Filter,
	mem *memory.Store,
	personas *persona.Store,
	gen Responder,
	gate *Gate,
	feedback string,
	logger *zap.Logger,
) *Policy {
	if feedback == "" {
		feedback = DefaultFeedback
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{
		dedup:    filter,
		memory:   mem,
		personas: personas,
		gen:      gen,
		gate:     gate,
		feedback: feedback,
		logger:   logger,
	}
}

// Handle evaluates ev. The first matching step wins:
// duplicate, then (after recording the message) settings update, settings
// query, memory clear, explicit invocation, feedback, autonomous reply.
func (p *Policy) Handle(ctx context.Context, ev Event) Outcome {
	conv, text := ev.ConversationID, strings.TrimSpace(ev.Text)

	if p.dedup.SeenBefore(conv, text) {
		return Outcome{Kind: KindDuplicate, PassThrough: true}
	}

	p.memory.Append(conv, memory.UserTurn(text))

	switch {
	case strings.HasPrefix(text, CmdSettingsUpdate):
		key, value := parseSetting(text)
		if err := p.personas.Set(conv, key, value); err != nil {
			p.logger.Debug("settings update rejected", zap.String("conversation", conv), zap.Error(err))
			return reply(KindSettingsUpdate, ReplySettingsRejected)
		}
		p.logger.Info("persona updated", zap.String("conversation", conv), zap.String("key", key))
		return reply(KindSettingsUpdate, ReplySettingsUpdated(key, value))

	case text == CmdSettingsQuery:
		return reply(KindSettingsQuery, persona.Format(p.personas.Get(conv)))

	case text == CmdMemoryClear:
		p.memory.Clear(conv)
		p.logger.Info("memory cleared", zap.String("conversation", conv))
		return reply(KindMemoryClear, ReplyMemoryCleared)

	case strings.HasPrefix(text, InvokePrefix):
		return p.generate(ctx, KindInvoke, conv)

	case strings.HasPrefix(text, FeedbackPrefix):
		return reply(KindFeedback, p.feedback)
	}

	if p.gate.Allow() {
		return p.generate(ctx, KindAutonomous, conv)
	}
	return Outcome{Kind: KindPassThrough, PassThrough: true}
}

func (p *Policy) generate(ctx context.Context, kind Kind, conv string) Outcome {
	r := p.gen.Generate(ctx, conv)
	p.logger.Debug("reply generated",
		zap.String("conversation", conv),
		zap.Stringer("kind", kind),
		zap.Int("attempts", r.Attempts),
		zap.Bool("fallback", r.Fallback),
	)
	return Outcome{Kind: kind, Reply: r.Text, Generation: &r}
}

func reply(kind Kind, text string) Outcome {
	return Outcome{Kind: kind, Reply: text}
}
