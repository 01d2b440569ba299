package channel

// SlackDMConfig controls direct-message behaviour in Slack.
type SlackDMConfig struct {
	Enabled   bool     `json:"enabled" mapstructure:"enabled"`
	Policy    string   `json:"policy" mapstructure:"policy"` // "open" or "allowlist"
	AllowFrom []string `json:"allowFrom" mapstructure:"allowFrom"`
}

func DefaultSlackDMConfig() SlackDMConfig {
	return SlackDMConfig{Enabled: true, Policy: "open", AllowFrom: []string{}}
}

// SlackConfig configures the Slack channel (Socket Mode).
type SlackConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	BotToken       string        `json:"botToken" mapstructure:"botToken"`
	AppToken       string        `json:"appToken" mapstructure:"appToken"`
	ReplyInThread  bool          `json:"replyInThread" mapstructure:"replyInThread"`
	GroupPolicy    string        `json:"groupPolicy" mapstructure:"groupPolicy"` // "open", "mention" or "allowlist"
	GroupAllowFrom []string      `json:"groupAllowFrom" mapstructure:"groupAllowFrom"`
	DM             SlackDMConfig `json:"dm" mapstructure:"dm"`
}

func DefaultSlackConfig() SlackConfig {
	return SlackConfig{
		ReplyInThread:  true,
		GroupPolicy:    "open",
		GroupAllowFrom: []string{},
		DM:             DefaultSlackDMConfig(),
	}
}
