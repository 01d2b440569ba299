// Package cmd implements the dolphinchat CLI using cobra.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/config"
	"github.com/crystaldolphin/dolphinchat/internal/dependency"
	"github.com/crystaldolphin/dolphinchat/internal/logging"
)

const version = "0.1.0"
const logo = "🐬"

var (
	configPath string
	verbose    bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "dolphinchat",
	Short: logo + " dolphinchat: an AI persona that lives in your group chats",
	Long: logo + " dolphinchat remembers the recent conversation in each group, " +
		"answers when asked, and now and then chimes in on its own.",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.dolphinchat/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(channelsCmd)
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigPath()
}

// bootstrap loads the config, builds the logger, and wires the container.
// quiet raises the default log level to warn so logs don't interleave with
// interactive output.
func bootstrap(quiet bool) (*dependency.Container, *zap.Logger, error) {
	logger, err := logging.New(logging.Options{Verbose: verbose, Quiet: quiet && !verbose})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	container, err := dependency.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return container, logger, nil
}
