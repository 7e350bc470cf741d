package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/agent-fwk/fwk"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/setup"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/stream"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	base := fwk.DefaultAgentConfig()
	base.Name = "LLM Assistant"
	base.Description = "A conversational assistant backed by a large language model"
	base.Port = 5501
	base.FrameworkVersion = fwk.Version

	cfg, err := setup.LoadConfig(base)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid agent config")
	}

	processor, closeProcessor, err := setup.NewLLMProcessor(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create LLM processor")
	}
	defer func() { _ = closeProcessor() }()

	deps, err := setup.Wire(ctx, cfg, processor, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire agent")
	}

	if err := deps.Agent.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Agent startup failed")
	}

	consumer, err := stream.NewStreamConsumer(ctx, stream.StreamConfigFromEnv(cfg.Agent.RequestTimeout), deps.Agent, deps.Metrics, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stream consumer")
	}

	// Setup consumer
	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	// Start consumer
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	// Wait for context to be done
	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	_ = consumer.Stop()
	if err := deps.Agent.Stop(context.WithoutCancel(ctx)); err != nil {
		logger.Warn().Err(err).Msg("Agent shutdown hook failed")
	}

	log.Info().Msg("Chat stream agent stopped")
}
