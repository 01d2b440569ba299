// Package generator asks the completion API for an in-character reply and
// retries a bounded number of times when the answer repeats recent text.
package generator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/memory"
	"github.com/crystaldolphin/dolphinchat/internal/persona"
	"github.com/crystaldolphin/dolphinchat/internal/schema"
	"github.com/crystaldolphin/dolphinchat/internal/shared/stringutils"
)

const (
	DefaultMaxAttempts = 3
	DefaultPlaceholder = "..."
)

// Scope controls how widely the last-reply cache is shared.
type Scope string

const (
	ScopeGlobal       Scope = "global"
	ScopeConversation Scope = "conversation"
)

// Options tunes a Generator. Zero values take the defaults.
type Options struct {
	MemoryLength   int
	MaxAttempts    int
	Placeholder    string
	LastReplyScope Scope
	Model          string
	MaxTokens      int
	Temperature    float64
}

// Generator produces replies from persona settings and conversation memory.
type Generator struct {
	provider schema.LLMProvider
	memory   *memory.Store
	personas *persona.Store
	opts     Options
	logger   *zap.Logger

	mu        sync.Mutex
	lastReply map[string]string // keyed by conversation id, or "" when global
}

// New creates a Generator.
func New(
	provider schema.LLMProvider,
	mem *memory.Store,
	personas *persona.Store,
	opts Options,
	logger *zap.Logger,
) *Generator {
	if opts.MemoryLength <= 0 {
		opts.MemoryLength = mem.Limit()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	if opts.LastReplyScope != ScopeConversation {
		opts.LastReplyScope = ScopeGlobal
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		provider:  provider,
		memory:    mem,
		personas:  personas,
		opts:      opts,
		logger:    logger,
		lastReply: make(map[string]string),
	}
}

// Generate requests a reply for the conversation. It never returns an
// error; request failures yield the placeholder with Fallback set.
func (g *Generator) Generate(ctx context.Context, convID string) Reply {
	settings := g.personas.Resolve(convID)
	msgs := BuildMessages(settings, g.memory.Recent(convID, g.opts.MemoryLength))
	chatOpts := schema.NewChatOptions(g.opts.Model, g.opts.MaxTokens, g.opts.Temperature)

	var (
		text     string
		attempts int
		repeat   bool
	)
	for attempts < g.opts.MaxAttempts {
		attempts++
		resp, err := g.provider.Chat(ctx, msgs, chatOpts)
		if err != nil {
			g.logger.Warn("generation failed",
				zap.String("conversation", convID),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			return Reply{Text: g.opts.Placeholder, Fallback: true, Attempts: attempts, Err: err}
		}

		text = stringutils.StringOrDefault(stringutils.CleanReply(resp.Content), g.opts.Placeholder)
		repeat = g.isRepeat(convID, text)
		if !repeat {
			break
		}
		g.logger.Debug("reply repeats recent text",
			zap.String("conversation", convID),
			zap.Int("attempt", attempts),
			zap.String("reply", stringutils.Truncate(text, 40)),
		)
	}

	g.setLastReply(convID, text)
	g.memory.Append(convID, memory.AssistantTurn(text))

	return Reply{Text: text, Attempts: attempts, Repeat: repeat}
}

// LastReply returns the cached last reply visible to the conversation.
func (g *Generator) LastReply(convID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastReply[g.cacheKey(convID)]
}

func (g *Generator) isRepeat(convID, text string) bool {
	if g.memory.Contains(convID, text) {
		return true
	}
	return text == g.LastReply(convID)
}

func (g *Generator) setLastReply(convID, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastReply[g.cacheKey(convID)] = text
}

func (g *Generator) cacheKey(convID string) string {
	if g.opts.LastReplyScope == ScopeConversation {
		return convID
	}
	return ""
}
