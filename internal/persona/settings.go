// Package persona holds the per-conversation identity the bot plays.
package persona

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSettingKey is returned by Store.Set for keys outside Keys.
var ErrInvalidSettingKey = errors.New("invalid setting key")

const (
	KeyName        = "name"
	KeyPersonality = "personality"
	KeyStyle       = "style"
	KeyBackground  = "background"
)

// Keys is the closed, ordered set of configurable fields.
var Keys = []string{KeyName, KeyPersonality, KeyStyle, KeyBackground}

// Settings describes the simulated identity injected into the prompt.
type Settings struct {
	Name        string `yaml:"name" json:"name"`
	Personality string `yaml:"personality" json:"personality"`
	Style       string `yaml:"style" json:"style"`
	Background  string `yaml:"background" json:"background"`
}

// Default returns the built-in persona.
func Default() Settings {
	return Settings{
		Name:        "ano",
		Personality: "成绩优秀，精力充沛，品学兼优的优等生...",
		Style:       "俏皮可爱，说话字数不要太多",
		Background:  "月之森女子学园高中一年级生，丰川祥子的青梅竹马...",
	}
}

// ValidKey reports whether key is one of Keys.
func ValidKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// With returns a copy of s with the field named by key replaced.
func (s Settings) With(key, value string) (Settings, error) {
	switch key {
	case KeyName:
		s.Name = value
	case KeyPersonality:
		s.Personality = value
	case KeyStyle:
		s.Style = value
	case KeyBackground:
		s.Background = value
	default:
		return s, fmt.Errorf("%w: %q", ErrInvalidSettingKey, key)
	}
	return s, nil
}

// Format renders settings as the reply to a settings query.
func Format(s Settings) string {
	var sb strings.Builder
	sb.WriteString("📌 当前 AI 设置：\n")
	sb.WriteString("名称: " + s.Name + "\n")
	sb.WriteString("性格: " + s.Personality + "\n")
	sb.WriteString("风格: " + s.Style + "\n")
	sb.WriteString("背景: " + s.Background)
	return sb.String()
}
