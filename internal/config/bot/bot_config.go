package bot

import (
	"fmt"
	"time"
)

// DedupConfig controls the repeated-message filter.
type DedupConfig struct {
	Scope         string `json:"scope" mapstructure:"scope"`                 // "global" or "conversation"
	Capacity      int    `json:"capacity" mapstructure:"capacity"`           // 0 = unbounded
	ResetSchedule string `json:"resetSchedule" mapstructure:"resetSchedule"` // cron expression, empty = never
}

func DefaultDedupConfig() DedupConfig {
	return DedupConfig{Scope: "global"}
}

// BotConfig holds the engagement thresholds and reply texts.
type BotConfig struct {
	MemoryLength        int         `json:"memoryLength" mapstructure:"memoryLength"`
	ResponseProbability float64     `json:"responseProbability" mapstructure:"responseProbability"`
	Cooldown            string      `json:"cooldown" mapstructure:"cooldown"`
	MaxAttempts         int         `json:"maxAttempts" mapstructure:"maxAttempts"`
	Placeholder         string      `json:"placeholder" mapstructure:"placeholder"`
	FeedbackText        string      `json:"feedbackText" mapstructure:"feedbackText"`
	PersonaFile         string      `json:"personaFile" mapstructure:"personaFile"`
	LastReplyScope      string      `json:"lastReplyScope" mapstructure:"lastReplyScope"` // "global" or "conversation"
	Dedup               DedupConfig `json:"dedup" mapstructure:"dedup"`
}

func DefaultBotConfig() BotConfig {
	return BotConfig{
		MemoryLength:        10,
		ResponseProbability: 0.1,
		Cooldown:            "30s",
		MaxAttempts:         3,
		Placeholder:         "...",
		FeedbackText:        "📩 反馈请联系 QQ：2252291884\n",
		LastReplyScope:      "global",
		Dedup:               DefaultDedupConfig(),
	}
}

// CooldownDuration parses Cooldown. An empty value means no cooldown.
func (c BotConfig) CooldownDuration() (time.Duration, error) {
	if c.Cooldown == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cooldown)
	if err != nil {
		return 0, fmt.Errorf("bot.cooldown %q: %w", c.Cooldown, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("bot.cooldown %q: must not be negative", c.Cooldown)
	}
	return d, nil
}

// Validate checks value ranges that would otherwise be silently clamped.
func (c BotConfig) Validate() error {
	if c.ResponseProbability < 0 || c.ResponseProbability > 1 {
		return fmt.Errorf("bot.responseProbability %v: must be within [0,1]", c.ResponseProbability)
	}
	if c.MemoryLength < 0 {
		return fmt.Errorf("bot.memoryLength %d: must not be negative", c.MemoryLength)
	}
	if c.Dedup.Capacity < 0 {
		return fmt.Errorf("bot.dedup.capacity %d: must not be negative", c.Dedup.Capacity)
	}
	_, err := c.CooldownDuration()
	return err
}
