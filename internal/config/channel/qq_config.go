package channel

// QQConfig configures the QQ channel.
type QQConfig struct {
	Enabled   bool     `json:"enabled" mapstructure:"enabled"`
	AppID     string   `json:"appId" mapstructure:"appId"`
	Secret    string   `json:"secret" mapstructure:"secret"`
	Sandbox   bool     `json:"sandbox" mapstructure:"sandbox"`
	AllowFrom []string `json:"allowFrom" mapstructure:"allowFrom"`
}

func DefaultQQConfig() QQConfig {
	return QQConfig{AllowFrom: []string{}}
}
