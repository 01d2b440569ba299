package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/dolphinchat/internal/config"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Manage chat channels",
}

func init() {
	channelsCmd.AddCommand(channelsStatusCmd)
}

var channelsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show channel status",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(resolvedConfigPath())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		printChannelRows(cfg)
		return nil
	},
}

func printChannelRows(cfg *config.Config) {
	type row struct{ name, enabled, detail string }
	rows := []row{
		{
			"QQ",
			yesNo(cfg.Channels.QQ.Enabled),
			func() string {
				hint := tokenHint(cfg.Channels.QQ.AppID)
				if cfg.Channels.QQ.Sandbox {
					hint += " (sandbox)"
				}
				return hint
			}(),
		},
		{
			"Telegram",
			yesNo(cfg.Channels.Telegram.Enabled),
			tokenHint(cfg.Channels.Telegram.Token),
		},
		{
			"Slack",
			yesNo(cfg.Channels.Slack.Enabled),
			func() string {
				if cfg.Channels.Slack.AppToken != "" && cfg.Channels.Slack.BotToken != "" {
					return "socket, group policy " + cfg.Channels.Slack.GroupPolicy
				}
				return "(not configured)"
			}(),
		},
	}

	fmt.Printf("%-12s %-8s %s\n", "Channel", "Enabled", "Configuration")
	fmt.Println(strings.Repeat("-", 60))
	for _, r := range rows {
		fmt.Printf("%-12s %-8s %s\n", r.name, r.enabled, r.detail)
	}
}

func yesNo(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}

func tokenHint(s string) string {
	if s == "" {
		return "(not configured)"
	}

	if len(s) > 10 {
		return s[:10] + "..."
	}

	return s
}
