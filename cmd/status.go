package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/dolphinchat/internal/config"
	"github.com/crystaldolphin/dolphinchat/internal/providers"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dolphinchat status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	fmt.Printf("%s dolphinchat Status\n\n", logo)
	fmt.Printf("Config:    %s %s\n", cfgPath, fileMark(cfgPath))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	personaPath := cfg.Bot.PersonaFile
	if personaPath == "" {
		personaPath = config.PersonaPath()
	}
	fmt.Printf("Persona:   %s %s\n", personaPath, fileMark(personaPath))
	model := cfg.Agents.Defaults.Model
	fmt.Printf("Model:     %s\n", model)
	if name := cfg.GetProviderName(model); name != "" && cfg.GetAPIKey(model) != "" {
		base := cfg.GetAPIBase(model)
		if base == "" {
			if spec := providers.FindByName(name); spec != nil {
				base = spec.DefaultAPIBase
			}
		}
		fmt.Printf("Provider:  %s %s\n\n", name, base)
	} else {
		fmt.Printf("Provider:  ✗ no API key for this model\n\n")
	}

	fmt.Println("Bot:")
	fmt.Printf("  %-22s %d\n", "Memory length", cfg.Bot.MemoryLength)
	fmt.Printf("  %-22s %.2f\n", "Response probability", cfg.Bot.ResponseProbability)
	fmt.Printf("  %-22s %s\n", "Cooldown", cfg.Bot.Cooldown)
	fmt.Printf("  %-22s %d\n", "Max attempts", cfg.Bot.MaxAttempts)
	fmt.Printf("  %-22s %s\n", "Dedup scope", cfg.Bot.Dedup.Scope)
	if cfg.Bot.Dedup.ResetSchedule != "" {
		fmt.Printf("  %-22s %s\n", "Dedup reset", cfg.Bot.Dedup.ResetSchedule)
	}
	if err := cfg.Bot.Validate(); err != nil {
		fmt.Printf("  ✗ %v\n", err)
	}
	fmt.Println()

	fmt.Println("Providers:")
	for _, spec := range providers.PROVIDERS {
		p := cfg.ProviderByName(spec.Name)
		if p == nil {
			continue
		}
		label := spec.Label()
		switch {
		case p.APIKey != "":
			fmt.Printf("  %-20s ✓\n", label)
		case spec.Name == "custom" && p.APIBase != "":
			fmt.Printf("  %-20s (no key) %s\n", label, p.APIBase)
		default:
			fmt.Printf("  %-20s (not set)\n", label)
		}
	}
	fmt.Println()

	fmt.Println("Channels:")
	printChannelRows(cfg)
	return nil
}

func fileMark(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "✓"
	}
	return "✗"
}
