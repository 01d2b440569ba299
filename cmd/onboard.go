package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/dolphinchat/internal/config"
	"github.com/crystaldolphin/dolphinchat/internal/persona"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration and persona template",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	personaPath := config.PersonaPath()
	if _, err := os.Stat(personaPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(personaPath), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		if err := persona.SaveTemplate(personaPath, persona.Default()); err != nil {
			return err
		}
		fmt.Printf("✓ Created persona template at %s\n", personaPath)
	} else {
		fmt.Printf("✓ Persona template at %s\n", personaPath)
	}

	fmt.Printf("\n%s dolphinchat is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add your API key to %s (or DEEPSEEK_API_KEY in .env)\n", cfgPath)
	fmt.Println("     Get one at: https://platform.deepseek.com/api_keys")
	fmt.Printf("  2. Edit the persona in %s\n", personaPath)
	fmt.Printf("  3. Chat: dolphinchat chat -g test-group -m \"ai 你好\"\n")
	return nil
}
