// Package dependency wires core dolphinchat services using go.uber.org/dig.
package dependency

import (
	"fmt"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
	"github.com/crystaldolphin/dolphinchat/internal/channels"
	"github.com/crystaldolphin/dolphinchat/internal/config"
	"github.com/crystaldolphin/dolphinchat/internal/dedup"
	"github.com/crystaldolphin/dolphinchat/internal/engagement"
	"github.com/crystaldolphin/dolphinchat/internal/generator"
	"github.com/crystaldolphin/dolphinchat/internal/memory"
	"github.com/crystaldolphin/dolphinchat/internal/persona"
	"github.com/crystaldolphin/dolphinchat/internal/providers"
	"github.com/crystaldolphin/dolphinchat/internal/schema"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	config   *config.Config
	provider schema.LLMProvider
	msgBus   *bus.MessageBus
	memory   *memory.Store
	personas *persona.Store
	gen      *generator.Generator
	gate     *engagement.Gate
	loop     *engagement.Loop
	channels *channels.Manager
	resetter *dedup.Resetter
}

func (c *Container) Config() *config.Config            { return c.config }
func (c *Container) Provider() schema.LLMProvider      { return c.provider }
func (c *Container) MessageBus() *bus.MessageBus       { return c.msgBus }
func (c *Container) Memory() *memory.Store             { return c.memory }
func (c *Container) Personas() *persona.Store          { return c.personas }
func (c *Container) Generator() *generator.Generator   { return c.gen }
func (c *Container) Gate() *engagement.Gate            { return c.gate }
func (c *Container) Loop() *engagement.Loop            { return c.loop }
func (c *Container) ChannelManager() *channels.Manager { return c.channels }

// DedupResetter returns nil when no reset schedule is configured.
func (c *Container) DedupResetter() *dedup.Resetter { return c.resetter }

// New builds and wires all core services from cfg.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if err := cfg.Bot.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		func() *zap.Logger { return logger },
		newProvider,
		newMessageBus,
		newMemoryStore,
		newPersonaStore,
		newDedupFilter,
		newDedupResetter,
		newGenerator,
		newGate,
		newPolicy,
		newLoop,
		newChannelManager,
	}
	for _, fn := range constructors {
		if err := d.Provide(fn); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		provider schema.LLMProvider,
		msgBus *bus.MessageBus,
		mem *memory.Store,
		personas *persona.Store,
		gen *generator.Generator,
		gate *engagement.Gate,
		loop *engagement.Loop,
		mgr *channels.Manager,
		resetter *dedup.Resetter,
	) {
		result = &Container{
			config:   cfg,
			provider: provider,
			msgBus:   msgBus,
			memory:   mem,
			personas: personas,
			gen:      gen,
			gate:     gate,
			loop:     loop,
			channels: mgr,
			resetter: resetter,
		}
	})
	return result, err
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	model := cfg.Agents.Defaults.Model
	result := cfg.MatchProvider(model)
	if result.Provider == nil {
		return nil, fmt.Errorf("no API key configured for model %q: edit %s or set an API key env var", model, config.ConfigPath())
	}

	apiBase := result.Provider.APIBase
	if apiBase == "" {
		apiBase = cfg.GetAPIBase(model)
	}
	return providers.New(providers.Params{
		APIKey:       result.Provider.APIKey,
		APIBase:      apiBase,
		ExtraHeaders: result.Provider.ExtraHeaders,
		DefaultModel: model,
		ProviderName: result.Name,
	}), nil
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(100)
}

func newMemoryStore(cfg *config.Config) *memory.Store {
	return memory.NewStore(cfg.Bot.MemoryLength)
}

// newPersonaStore seeds the store from bot.personaFile, or from the default
// persona path when that file exists. A broken file falls back to the
// built-in persona.
func newPersonaStore(cfg *config.Config, logger *zap.Logger) *persona.Store {
	path := cfg.Bot.PersonaFile
	if path == "" {
		if _, err := os.Stat(config.PersonaPath()); err == nil {
			path = config.PersonaPath()
		}
	}
	tmpl, err := persona.LoadTemplate(path)
	if err != nil {
		logger.Warn("persona template not loaded, using built-in persona",
			zap.String("path", path), zap.Error(err))
	}
	return persona.NewStore(tmpl)
}

func newDedupFilter(cfg *config.Config) (*dedup.Filter, error) {
	return dedup.New(dedup.Options{
		Scope:    dedup.Scope(cfg.Bot.Dedup.Scope),
		Capacity: cfg.Bot.Dedup.Capacity,
	})
}

func newDedupResetter(cfg *config.Config, filter *dedup.Filter, logger *zap.Logger) (*dedup.Resetter, error) {
	if cfg.Bot.Dedup.ResetSchedule == "" {
		return nil, nil
	}
	return dedup.NewResetter(filter, cfg.Bot.Dedup.ResetSchedule, logger)
}

func newGenerator(
	cfg *config.Config,
	provider schema.LLMProvider,
	mem *memory.Store,
	personas *persona.Store,
	logger *zap.Logger,
) *generator.Generator {
	return generator.New(provider, mem, personas, generator.Options{
		MemoryLength:   cfg.Bot.MemoryLength,
		MaxAttempts:    cfg.Bot.MaxAttempts,
		Placeholder:    cfg.Bot.Placeholder,
		LastReplyScope: generator.Scope(cfg.Bot.LastReplyScope),
		Model:          cfg.Agents.Defaults.Model,
		MaxTokens:      cfg.Agents.Defaults.MaxTokens,
		Temperature:    cfg.Agents.Defaults.Temperature,
	}, logger.Named("generator"))
}

func newGate(cfg *config.Config) (*engagement.Gate, error) {
	cooldown, err := cfg.Bot.CooldownDuration()
	if err != nil {
		return nil, err
	}
	return engagement.NewGate(cfg.Bot.ResponseProbability, cooldown), nil
}

func newPolicy(
	cfg *config.Config,
	filter *dedup.Filter,
	mem *memory.Store,
	personas *persona.Store,
	gen *generator.Generator,
	gate *engagement.Gate,
	logger *zap.Logger,
) *engagement.Policy {
	return engagement.NewPolicy(filter, mem, personas, gen, gate, cfg.Bot.FeedbackText, logger.Named("policy"))
}

func newLoop(msgBus *bus.MessageBus, policy *engagement.Policy, logger *zap.Logger) *engagement.Loop {
	return engagement.NewLoop(msgBus, policy, logger.Named("loop"))
}

func newChannelManager(cfg *config.Config, msgBus *bus.MessageBus, logger *zap.Logger) *channels.Manager {
	return channels.NewManager(cfg, msgBus, logger.Named("channels"))
}

