// Package fwk is the public surface of the agent framework. An agent
// implements Processor (or the v1.0.0 LegacyProcessor) and hands it to Run,
// which serves the standard agent endpoints until the context ends.
package fwk

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/agent"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/setup"
	"github.com/rs/zerolog"
)

// Version is the framework release this module implements.
const Version = "1.2.0"

type (
	Processor          = agent.Processor
	ProcessorFunc      = agent.ProcessorFunc
	LegacyProcessor    = agent.LegacyProcessor
	MessageOption      = agent.MessageOption
	MessageMeta        = agent.MessageMeta
	StartupHook        = agent.StartupHook
	ShutdownHook       = agent.ShutdownHook
	HealthChecker      = agent.HealthChecker
	CapabilityProvider = agent.CapabilityProvider
	EchoProcessor      = agent.EchoProcessor
	LLMProcessor       = agent.LLMProcessor
	LLMOption          = agent.LLMOption

	AgentConfig     = config.AgentConfig
	FrameworkConfig = config.FrameworkConfig
	LLMConfig       = config.LLMConfig

	AgentCapability = models.AgentCapability
	AgentStatus     = models.AgentStatus
	ChatRequest     = models.ChatRequest
	ChatResponse    = models.ChatResponse
)

const (
	StatusHealthy   = models.StatusHealthy
	StatusDegraded  = models.StatusDegraded
	StatusUnhealthy = models.StatusUnhealthy
)

var (
	WithUserID            = agent.WithUserID
	WithConversationID    = agent.WithConversationID
	ResolveMessageOptions = agent.ResolveMessageOptions
	AdaptLegacy           = agent.AdaptLegacy
	WithSystemPrompt      = agent.WithSystemPrompt
	DefaultAgentConfig    = config.DefaultAgentConfig
	DefaultSystemPrompt   = agent.DefaultSystemPrompt
)

type processorFactory func(ctx context.Context, cfg *setup.Config, logger *zerolog.Logger) (Processor, func() error, error)

// Run serves processor with the configuration in cfg, overridden by the
// agent YAML file and the environment (a .env file is read first).
func Run(ctx context.Context, cfg AgentConfig, processor Processor) error {
	return run(ctx, cfg, func(context.Context, *setup.Config, *zerolog.Logger) (Processor, func() error, error) {
		return processor, nil, nil
	})
}

// RunLegacy serves a processor written against the v1.0.0 interface.
func RunLegacy(ctx context.Context, cfg AgentConfig, processor LegacyProcessor) error {
	return Run(ctx, cfg, AdaptLegacy(processor))
}

// RunLLM serves an LLM-backed agent. Provider, tier and generation settings
// come from the LLM_* variables; conversation history from
// CONVERSATION_STORE.
func RunLLM(ctx context.Context, cfg AgentConfig, opts ...LLMOption) error {
	return run(ctx, cfg, func(ctx context.Context, c *setup.Config, logger *zerolog.Logger) (Processor, func() error, error) {
		return setup.NewLLMProcessor(ctx, c, logger, opts...)
	})
}

func run(ctx context.Context, cfg AgentConfig, newProcessor processorFactory) error {
	_ = godotenv.Load()

	setupCfg, err := setup.LoadConfig(cfg)
	if err != nil {
		return err
	}

	logger := setup.NewLogger(setupCfg.Agent)
	logger.Info().
		Str("agent", setupCfg.Agent.Name).
		Int("port", setupCfg.Agent.Port).
		Str("framework_version", setupCfg.Agent.FrameworkVersion).
		Msg("Starting agent")

	processor, closeProcessor, err := newProcessor(ctx, setupCfg, &logger)
	if err != nil {
		return err
	}

	deps, err := setup.Wire(ctx, setupCfg, processor, &logger)
	if err != nil {
		if closeProcessor != nil {
			_ = closeProcessor()
		}
		return err
	}
	deps.OnClose(closeProcessor)
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn().Err(err).Msg("Cleanup failed")
		}
	}()

	return deps.Server().Run(ctx)
}
