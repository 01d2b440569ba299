package schema

import "context"

// ChatOptions configures a single LLM chat request.
// Zero MaxTokens / Temperature leave the provider's defaults in place.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewChatOptions(model string, maxTokens int, temperature float64) ChatOptions {
	return ChatOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// LLMResponse is the normalised response from a chat-completion provider.
type LLMResponse struct {
	Content          string
	FinishReason     string
	Usage            map[string]int // "prompt_tokens", "completion_tokens", "total_tokens"
	ReasoningContent string         // DeepSeek-R1 thinking block, when present
}

// LLMProvider is the interface every completion backend must satisfy.
// Chat returns an error for transport failures, non-success statuses and
// responses without any choice.
type LLMProvider interface {
	Chat(ctx context.Context, messages Messages, opts ChatOptions) (LLMResponse, error)
	DefaultModel() string
}
