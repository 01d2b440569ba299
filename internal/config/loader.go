package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/providers"
)

// EnvPrefix prefixes environment overrides, e.g. DOLPHINCHAT_BOT_COOLDOWN.
const EnvPrefix = "DOLPHINCHAT"

// ConfigPath returns the default configuration file path: ~/.dolphinchat/config.json.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// DataDir returns the dolphinchat data directory: ~/.dolphinchat.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dolphinchat"
	}
	return filepath.Join(home, ".dolphinchat")
}

// PersonaPath returns the default persona template path: ~/.dolphinchat/persona.yaml.
func PersonaPath() string {
	return filepath.Join(DataDir(), "persona.yaml")
}

// Load reads the config file at path (ConfigPath() when empty) on top of
// DefaultConfig(), then applies environment overrides:
//
//   - DOLPHINCHAT_<SECTION>_<KEY> for any config key (case-insensitive),
//   - provider env keys such as DEEPSEEK_API_KEY when the file leaves the
//     provider's apiKey empty.
//
// A missing file is not an error. On parse failure it logs a warning and
// continues from the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	v := newViper()
	if err := seedDefaults(v); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if mergeErr := mergeFile(v, data); mergeErr != nil {
			zap.L().Warn("failed to parse config, using defaults",
				zap.String("path", path), zap.Error(mergeErr))
			v = newViper()
			if err := seedDefaults(v); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyProviderEnv(&cfg)
	return &cfg, nil
}

// Save writes cfg to path as indented JSON.
// If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	// Append a trailing newline for POSIX compliance.
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// seedDefaults loads DefaultConfig() as the base layer so every key is known
// to viper, which is what lets AutomaticEnv override it.
func seedDefaults(v *viper.Viper) error {
	def, err := json.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(def)); err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}
	return nil
}

func mergeFile(v *viper.Viper, data []byte) error {
	// viper accepts some inputs encoding/json rejects; validate strictly first.
	if !json.Valid(data) {
		return errors.New("invalid JSON")
	}
	return v.MergeConfig(bytes.NewReader(data))
}

// applyProviderEnv fills empty provider keys from the registry's env vars.
func applyProviderEnv(cfg *Config) {
	for _, spec := range providers.PROVIDERS {
		if spec.EnvKey == "" {
			continue
		}
		p := cfg.ProviderByName(spec.Name)
		if p == nil || p.APIKey != "" {
			continue
		}
		if key := os.Getenv(spec.EnvKey); key != "" {
			p.APIKey = key
		}
	}
}
