package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crystaldolphin/dolphinchat/internal/schema"
)

// OpenAIProvider makes direct HTTP calls to any OpenAI-compatible
// chat-completions endpoint (DeepSeek, OpenAI, OpenRouter, …).
type OpenAIProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	extraHeaders map[string]string
	gateway      *ProviderSpec // non-nil for gateway providers
	spec         *ProviderSpec // non-nil for standard providers
	httpClient   *http.Client
}

// NewOpenAIProvider constructs a provider from raw config values.
// The caller extracts these from config.Config to avoid an import cycle.
func NewOpenAIProvider(
	apiKey, apiBase, defaultModel, providerName string,
	extraHeaders map[string]string,
) *OpenAIProvider {
	gateway := FindGateway(providerName, apiKey, apiBase)

	var spec *ProviderSpec
	if gateway == nil {
		spec = FindByName(providerName)
		if spec == nil {
			spec = FindByModel(defaultModel)
		}
	}

	effectiveBase := apiBase
	if effectiveBase == "" {
		switch {
		case gateway != nil && gateway.DefaultAPIBase != "":
			effectiveBase = gateway.DefaultAPIBase
		case spec != nil && spec.DefaultAPIBase != "":
			effectiveBase = spec.DefaultAPIBase
		default:
			effectiveBase = "https://api.deepseek.com"
		}
	}

	return &OpenAIProvider{
		apiKey:       apiKey,
		apiBase:      strings.TrimRight(effectiveBase, "/"),
		defaultModel: defaultModel,
		extraHeaders: extraHeaders,
		gateway:      gateway,
		spec:         spec,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// Chat implements schema.LLMProvider.
func (p *OpenAIProvider) Chat(
	ctx context.Context,
	messages schema.Messages,
	opts schema.ChatOptions,
) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	model = p.resolveModel(model)

	body := map[string]any{
		"model":    model,
		"messages": messages.Messages,
	}
	if opts.MaxTokens > 0 {
		body["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		body["temperature"] = opts.Temperature
	}
	p.applyModelOverrides(model, body)

	data, err := json.Marshal(body)
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiBase+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	for k, v := range p.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return schema.LLMResponse{}, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       friendlyHTTPError(resp.StatusCode, raw),
		}
	}

	return parseOpenAIResponse(raw)
}

// resolveModel strips routing prefixes from the model string so the API
// receives the bare model name it expects. Gateways keep the
// "provider/model" form because they route on it.
func (p *OpenAIProvider) resolveModel(model string) string {
	if p.gateway != nil {
		full := p.gateway.Name + "/"
		if strings.HasPrefix(strings.ToLower(model), full) {
			return model[len(full):]
		}
		return model
	}

	if p.spec != nil {
		full := p.spec.Name + "/"
		if strings.HasPrefix(strings.ToLower(model), full) {
			return model[len(full):]
		}
	}
	if prefix, rest, ok := strings.Cut(model, "/"); ok && FindByName(strings.ToLower(prefix)) != nil {
		return rest
	}
	return model
}

func (p *OpenAIProvider) applyModelOverrides(model string, body map[string]any) {
	spec := p.spec
	if spec == nil {
		spec = FindByModel(model)
	}
	if spec == nil {
		return
	}
	modelLower := strings.ToLower(model)
	for _, ov := range spec.ModelOverrides {
		if strings.Contains(modelLower, strings.ToLower(ov.Pattern)) {
			for k, v := range ov.Overrides {
				body[k] = v
			}
			return
		}
	}
}

// openAIRespBody is the subset of the chat completion response we care about.
type openAIRespBody struct {
	Choices []struct {
		Message struct {
			Content          any `json:"content"`
			ReasoningContent any `json:"reasoning_content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseOpenAIResponse(raw []byte) (schema.LLMResponse, error) {
	var body openAIRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.LLMResponse{}, fmt.Errorf("parse response: %w", err)
	}
	if len(body.Choices) == 0 {
		return schema.LLMResponse{}, ErrNoChoices
	}

	choice := body.Choices[0]
	content, ok := choice.Message.Content.(string)
	if !ok {
		return schema.LLMResponse{}, fmt.Errorf("%w: got %T", ErrMalformedContent, choice.Message.Content)
	}
	reasoning, _ := choice.Message.ReasoningContent.(string)

	finish := choice.FinishReason
	if finish == "" {
		finish = "stop"
	}

	return schema.LLMResponse{
		Content:      content,
		FinishReason: finish,
		Usage: map[string]int{
			"prompt_tokens":     body.Usage.PromptTokens,
			"completion_tokens": body.Usage.CompletionTokens,
			"total_tokens":      body.Usage.TotalTokens,
		},
		ReasoningContent: reasoning,
	}, nil
}

func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
