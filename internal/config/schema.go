// Package config defines the configuration schema for dolphinchat.
//
// JSON keys use camelCase; every key can also be overridden through a
// DOLPHINCHAT_-prefixed environment variable (see Load).
package config

import (
	"github.com/crystaldolphin/dolphinchat/internal/config/agent"
	"github.com/crystaldolphin/dolphinchat/internal/config/bot"
	"github.com/crystaldolphin/dolphinchat/internal/config/channel"
	"github.com/crystaldolphin/dolphinchat/internal/config/provider"
)

// Config is the root configuration object, loaded from ~/.dolphinchat/config.json.
type Config struct {
	Agents    agent.AgentsConfig       `json:"agents" mapstructure:"agents"`
	Bot       bot.BotConfig            `json:"bot" mapstructure:"bot"`
	Channels  channel.ChannelsConfig   `json:"channels" mapstructure:"channels"`
	Providers provider.ProvidersConfig `json:"providers" mapstructure:"providers"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Agents:    agent.DefaultAgentsConfig(),
		Bot:       bot.DefaultBotConfig(),
		Channels:  channel.DefaultChannelsConfig(),
		Providers: provider.DefaultProvidersConfig(),
	}
}

// ProviderByName returns a pointer to the ProviderConfig field matching the
// given registry name (e.g. "openrouter", "deepseek"). Returns nil if unknown.
func (c *Config) ProviderByName(name string) *provider.ProviderConfig {
	return c.Providers.ByName(name)
}
