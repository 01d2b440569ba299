package channel

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram" mapstructure:"telegram"`
	Slack    SlackConfig    `json:"slack" mapstructure:"slack"`
	QQ       QQConfig       `json:"qq" mapstructure:"qq"`
}

func DefaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		Telegram: DefaultTelegramConfig(),
		Slack:    DefaultSlackConfig(),
		QQ:       DefaultQQConfig(),
	}
}
