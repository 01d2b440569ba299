package provider

const (
	ProviderCustom      = "custom"
	ProviderOpenRouter  = "openrouter"
	ProviderSiliconFlow = "siliconflow"
	ProviderDeepSeek    = "deepseek"
	ProviderOpenAI      = "openai"
	ProviderDashScope   = "dashscope"
	ProviderMoonshot    = "moonshot"
)

// ProviderConfig holds credentials for one LLM provider.
type ProviderConfig struct {
	APIKey       string            `json:"apiKey" mapstructure:"apiKey"`
	APIBase      string            `json:"apiBase,omitempty" mapstructure:"apiBase"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty" mapstructure:"extraHeaders"`
}

// ProvidersConfig holds credentials for all supported LLM providers.
type ProvidersConfig struct {
	Custom      ProviderConfig `json:"custom" mapstructure:"custom"`
	OpenRouter  ProviderConfig `json:"openrouter" mapstructure:"openrouter"`
	SiliconFlow ProviderConfig `json:"siliconflow" mapstructure:"siliconflow"`
	DeepSeek    ProviderConfig `json:"deepseek" mapstructure:"deepseek"`
	OpenAI      ProviderConfig `json:"openai" mapstructure:"openai"`
	DashScope   ProviderConfig `json:"dashscope" mapstructure:"dashscope"`
	Moonshot    ProviderConfig `json:"moonshot" mapstructure:"moonshot"`
}

func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{}
}

// ByName returns a pointer to the ProviderConfig field matching the given
// registry name. Returns nil if the name is unknown.
func (p *ProvidersConfig) ByName(name string) *ProviderConfig {
	switch name {
	case ProviderCustom:
		return &p.Custom
	case ProviderOpenRouter:
		return &p.OpenRouter
	case ProviderSiliconFlow:
		return &p.SiliconFlow
	case ProviderDeepSeek:
		return &p.DeepSeek
	case ProviderOpenAI:
		return &p.OpenAI
	case ProviderDashScope:
		return &p.DashScope
	case ProviderMoonshot:
		return &p.Moonshot
	}
	return nil
}
