package providers

import "strings"

// ModelOverride applies extra parameters for a specific model pattern.
type ModelOverride struct {
	Pattern   string         // case-insensitive substring to match in model name
	Overrides map[string]any // parameters to merge into the request body
}

// ProviderSpec is the metadata record for one OpenAI-compatible provider.
type ProviderSpec struct {
	Name        string   // config field name, e.g. "deepseek"
	Keywords    []string // model-name keywords for matching (lowercase)
	EnvKey      string   // env var consulted when the config leaves the key empty
	DisplayName string   // shown in `dolphinchat status`

	// Gateway detection
	IsGateway           bool   // routes any model (OpenRouter, SiliconFlow, …)
	DetectByKeyPrefix   string // match api_key prefix to identify gateway
	DetectByBaseKeyword string // match substring in api_base URL
	DefaultAPIBase      string // fallback base URL when none is configured

	// Per-model parameter overrides
	ModelOverrides []ModelOverride
}

// Label returns the display name, defaulting to Title-cased Name.
func (s ProviderSpec) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return strings.ToTitle(s.Name[:1]) + s.Name[1:]
}

// PROVIDERS is the registry. Order = match priority.
var PROVIDERS = []ProviderSpec{
	{
		Name:        "custom",
		DisplayName: "Custom",
	},
	{
		Name:                "openrouter",
		Keywords:            []string{"openrouter"},
		EnvKey:              "OPENROUTER_API_KEY",
		DisplayName:         "OpenRouter",
		IsGateway:           true,
		DetectByKeyPrefix:   "sk-or-",
		DetectByBaseKeyword: "openrouter",
		DefaultAPIBase:      "https://openrouter.ai/api/v1",
	},
	{
		Name:                "siliconflow",
		Keywords:            []string{"siliconflow"},
		EnvKey:              "SILICONFLOW_API_KEY",
		DisplayName:         "SiliconFlow",
		IsGateway:           true,
		DetectByBaseKeyword: "siliconflow",
		DefaultAPIBase:      "https://api.siliconflow.cn/v1",
	},
	{
		Name:           "deepseek",
		Keywords:       []string{"deepseek"},
		EnvKey:         "DEEPSEEK_API_KEY",
		DisplayName:    "DeepSeek",
		DefaultAPIBase: "https://api.deepseek.com",
	},
	{
		Name:           "openai",
		Keywords:       []string{"openai", "gpt"},
		EnvKey:         "OPENAI_API_KEY",
		DisplayName:    "OpenAI",
		DefaultAPIBase: "https://api.openai.com/v1",
	},
	{
		Name:           "dashscope",
		Keywords:       []string{"qwen", "dashscope"},
		EnvKey:         "DASHSCOPE_API_KEY",
		DisplayName:    "DashScope",
		DefaultAPIBase: "https://dashscope.aliyuncs.com/compatible-mode/v1",
	},
	{
		Name:           "moonshot",
		Keywords:       []string{"moonshot", "kimi"},
		EnvKey:         "MOONSHOT_API_KEY",
		DisplayName:    "Moonshot",
		DefaultAPIBase: "https://api.moonshot.ai/v1",
		ModelOverrides: []ModelOverride{
			{Pattern: "kimi-k2.5", Overrides: map[string]any{"temperature": 1.0}},
		},
	},
}

// FindByModel matches a standard provider by model-name prefix or keyword
// (case-insensitive). Gateways are matched by api_key/api_base instead.
func FindByModel(model string) *ProviderSpec {
	modelLower := strings.ToLower(model)
	modelPrefix, _, _ := strings.Cut(modelLower, "/")

	// Prefer explicit provider prefix.
	for i := range PROVIDERS {
		spec := &PROVIDERS[i]
		if spec.IsGateway {
			continue
		}
		if strings.Contains(modelLower, "/") && modelPrefix == spec.Name {
			return spec
		}
	}

	for i := range PROVIDERS {
		spec := &PROVIDERS[i]
		if spec.IsGateway {
			continue
		}
		for _, kw := range spec.Keywords {
			if strings.Contains(modelLower, kw) {
				return spec
			}
		}
	}
	return nil
}

// FindGateway detects the gateway provider.
// Priority: (1) explicit provider name, (2) api_key prefix, (3) api_base keyword.
func FindGateway(providerName, apiKey, apiBase string) *ProviderSpec {
	if providerName != "" {
		if s := FindByName(providerName); s != nil && s.IsGateway {
			return s
		}
	}
	for i := range PROVIDERS {
		spec := &PROVIDERS[i]
		if spec.DetectByKeyPrefix != "" && strings.HasPrefix(apiKey, spec.DetectByKeyPrefix) {
			return spec
		}
		if spec.DetectByBaseKeyword != "" && strings.Contains(apiBase, spec.DetectByBaseKeyword) {
			return spec
		}
	}
	return nil
}

// FindByName returns the ProviderSpec whose Name equals name.
func FindByName(name string) *ProviderSpec {
	for i := range PROVIDERS {
		if PROVIDERS[i].Name == name {
			return &PROVIDERS[i]
		}
	}
	return nil
}
