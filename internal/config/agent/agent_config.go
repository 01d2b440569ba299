package agent

// AgentDefaults selects the completion model and its request parameters.
// Zero MaxTokens / Temperature leave the provider's own defaults in place.
type AgentDefaults struct {
	Model       string  `json:"model" mapstructure:"model"`
	MaxTokens   int     `json:"maxTokens" mapstructure:"maxTokens"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
}

type AgentsConfig struct {
	Defaults AgentDefaults `json:"defaults" mapstructure:"defaults"`
}

func defaultAgentDefaults() AgentDefaults {
	return AgentDefaults{
		Model: "deepseek/deepseek-chat",
	}
}

func DefaultAgentsConfig() AgentsConfig {
	return AgentsConfig{Defaults: defaultAgentDefaults()}
}
