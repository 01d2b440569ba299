package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTemplate reads a persona template from a YAML file. Fields missing
// from the file keep their built-in defaults. An empty path returns Default().
func LoadTemplate(path string) (Settings, error) {
	st := Default()
	if path == "" {
		return st, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return st, fmt.Errorf("read persona file: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return Default(), fmt.Errorf("parse persona file %s: %w", path, err)
	}
	return st, nil
}

// SaveTemplate writes st as YAML to path.
func SaveTemplate(path string, st Settings) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal persona: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write persona file: %w", err)
	}
	return nil
}
