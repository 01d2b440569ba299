package generator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/memory"
	"github.com/crystaldolphin/dolphinchat/internal/persona"
	"github.com/crystaldolphin/dolphinchat/internal/providers"
	"github.com/crystaldolphin/dolphinchat/internal/schema"
)

// scriptedProvider replays a fixed list of results; the last one repeats.
type scriptedProvider struct {
	mu      sync.Mutex
	results []scripted
	calls   []schema.Messages
}

type scripted struct {
	content string
	err     error
}

func (p *scriptedProvider) Chat(_ context.Context, msgs schema.Messages, _ schema.ChatOptions) (schema.LLMResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, msgs.Clone())
	r := p.results[min(len(p.calls)-1, len(p.results)-1)]
	if r.err != nil {
		return schema.LLMResponse{}, r.err
	}
	return schema.LLMResponse{Content: r.content, FinishReason: "stop"}, nil
}

func (p *scriptedProvider) DefaultModel() string { return "deepseek-chat" }

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func replies(texts ...string) *scriptedProvider {
	p := &scriptedProvider{}
	for _, t := range texts {
		p.results = append(p.results, scripted{content: t})
	}
	return p
}

func newGenerator(p schema.LLMProvider, opts Options) (*Generator, *memory.Store, *persona.Store) {
	mem := memory.NewStore(10)
	personas := persona.NewStore(persona.Default())
	return New(p, mem, personas, opts, zap.NewNop()), mem, personas
}

// ─── Prompt ────────────────────────────────────────────────────────────────

func TestSystemPrompt_EmbedsPersona(t *testing.T) {
	s := persona.Settings{Name: "小明", Personality: "开朗", Style: "简短", Background: "学生"}
	got := SystemPrompt(s)
	assert.True(t, strings.HasPrefix(got, "你是小明，你的性格是开朗，你的说话风格是简短，你的背景经历是学生。\n"))
	assert.Contains(t, got, "不要让大家发现你是AI")
	assert.Contains(t, got, "避免重复相同内容")
}

func TestJoinTurns_RoleAgnostic(t *testing.T) {
	turns := []memory.Turn{memory.UserTurn("a"), memory.AssistantTurn("b"), memory.UserTurn("c")}
	assert.Equal(t, "a b c", JoinTurns(turns))
	assert.Equal(t, "", JoinTurns(nil))
}

// ─── Generate ──────────────────────────────────────────────────────────────

func TestGenerate_SendsPersonaAndJoinedHistory(t *testing.T) {
	p := replies("好呀")
	g, mem, personas := newGenerator(p, Options{})
	mem.Append("g1", memory.UserTurn("今天"))
	mem.Append("g1", memory.UserTurn("吃什么"))

	r := g.Generate(context.Background(), "g1")

	assert.Equal(t, "好呀", r.Text)
	assert.False(t, r.Fallback)
	assert.Equal(t, 1, r.Attempts)
	assert.True(t, personas.Has("g1"))

	require.Len(t, p.calls, 1)
	msgs := p.calls[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "你是ano")
	assert.Equal(t, schema.NewUserMessage("今天 吃什么"), msgs[1])

	turns := mem.Recent("g1", 0)
	assert.Equal(t, memory.AssistantTurn("好呀"), turns[len(turns)-1])
	assert.Equal(t, "好呀", g.LastReply("g1"))
}

func TestGenerate_NoChoicesReturnsPlaceholder(t *testing.T) {
	p := &scriptedProvider{results: []scripted{{err: providers.ErrNoChoices}}}
	g, mem, _ := newGenerator(p, Options{})
	mem.Append("g1", memory.UserTurn("hi"))

	r := g.Generate(context.Background(), "g1")

	assert.Equal(t, "...", r.Text)
	assert.True(t, r.Fallback)
	assert.ErrorIs(t, r.Err, providers.ErrNoChoices)
	assert.Equal(t, 1, p.callCount())
	assert.Equal(t, []memory.Turn{memory.UserTurn("hi")}, mem.Recent("g1", 0))
	assert.Equal(t, "", g.LastReply("g1"))
}

func TestGenerate_NullContentIsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":null},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	mem := memory.NewStore(10)
	p := providers.NewOpenAIProvider("sk-test", srv.URL, "deepseek-chat", "deepseek", nil)
	g := New(p, mem, persona.NewStore(persona.Default()), Options{}, zap.NewNop())
	mem.Append("g1", memory.UserTurn("hi"))

	r := g.Generate(context.Background(), "g1")

	assert.Equal(t, "...", r.Text)
	assert.True(t, r.Fallback)
	assert.ErrorIs(t, r.Err, providers.ErrMalformedContent)
	assert.Equal(t, []memory.Turn{memory.UserTurn("hi")}, mem.Recent("g1", 0))
	assert.Equal(t, "", g.LastReply("g1"))
}

func TestGenerate_TransportErrorOnRetry(t *testing.T) {
	p := &scriptedProvider{results: []scripted{{content: "hi"}, {err: errors.New("connection reset")}}}
	g, mem, _ := newGenerator(p, Options{})
	mem.Append("g1", memory.UserTurn("hi"))

	r := g.Generate(context.Background(), "g1")

	assert.Equal(t, "...", r.Text)
	assert.True(t, r.Fallback)
	assert.Equal(t, 2, r.Attempts)
	assert.Equal(t, 1, mem.Len("g1"))
}

func TestGenerate_EmptyContentBecomesPlaceholder(t *testing.T) {
	p := replies("   ")
	g, mem, _ := newGenerator(p, Options{})

	r := g.Generate(context.Background(), "g1")

	assert.Equal(t, "...", r.Text)
	assert.False(t, r.Fallback)
	assert.True(t, mem.Contains("g1", "..."))
}

func TestGenerate_StripsThink(t *testing.T) {
	p := replies("<think>plan</think> 嗯嗯 ")
	g, _, _ := newGenerator(p, Options{})
	assert.Equal(t, "嗯嗯", g.Generate(context.Background(), "g1").Text)
}

func TestGenerate_RetriesUntilNovel(t *testing.T) {
	p := replies("hi", "hi", "新的回复")
	g, mem, _ := newGenerator(p, Options{})
	mem.Append("g1", memory.UserTurn("hi"))

	r := g.Generate(context.Background(), "g1")

	assert.Equal(t, "新的回复", r.Text)
	assert.Equal(t, 3, r.Attempts)
	assert.False(t, r.Repeat)
}

func TestGenerate_AtMostMaxAttempts(t *testing.T) {
	p := replies("hi")
	g, mem, _ := newGenerator(p, Options{})
	mem.Append("g1", memory.UserTurn("hi"))

	r := g.Generate(context.Background(), "g1")

	assert.Equal(t, "hi", r.Text)
	assert.True(t, r.Repeat)
	assert.Equal(t, 3, r.Attempts)
	assert.Equal(t, 3, p.callCount())
}

func TestGenerate_CustomMaxAttempts(t *testing.T) {
	p := replies("hi")
	g, mem, _ := newGenerator(p, Options{MaxAttempts: 1})
	mem.Append("g1", memory.UserTurn("hi"))

	g.Generate(context.Background(), "g1")
	assert.Equal(t, 1, p.callCount())
}

func TestGenerate_AvoidsGlobalLastReply(t *testing.T) {
	p := replies("same", "same", "different")
	g, _, _ := newGenerator(p, Options{})

	assert.Equal(t, "same", g.Generate(context.Background(), "g1").Text)

	// A different conversation still sees the global cache.
	r := g.Generate(context.Background(), "g2")
	assert.Equal(t, "different", r.Text)
	assert.Equal(t, 3, p.callCount())
}

func TestGenerate_ConversationScopedLastReply(t *testing.T) {
	p := replies("same")
	g, _, _ := newGenerator(p, Options{LastReplyScope: ScopeConversation})

	g.Generate(context.Background(), "g1")
	r := g.Generate(context.Background(), "g2")

	assert.Equal(t, "same", r.Text)
	assert.Equal(t, 1, r.Attempts)
	assert.Equal(t, "", g.LastReply("g3"))
}

func TestGenerate_NeverEmpty(t *testing.T) {
	cases := []*scriptedProvider{
		replies(""),
		replies("<think>x</think>"),
		{results: []scripted{{err: errors.New("boom")}}},
		{results: []scripted{{err: &providers.HTTPError{StatusCode: 500, Body: "oops"}}}},
	}
	for _, p := range cases {
		g, _, _ := newGenerator(p, Options{})
		assert.NotEmpty(t, g.Generate(context.Background(), "g1").Text)
	}
}

func TestGenerate_CancelledContextIsFallback(t *testing.T) {
	p := &scriptedProvider{results: []scripted{{err: context.Canceled}}}
	g, _, _ := newGenerator(p, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := g.Generate(ctx, "g1")
	assert.True(t, r.Fallback)
	assert.ErrorIs(t, r.Err, context.Canceled)
}
