package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/povarna/generative-ai-agents/agent-fwk/fwk"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := fwk.DefaultAgentConfig()
	cfg.Name = "LLM Assistant"
	cfg.Description = "A conversational assistant backed by a large language model"
	cfg.Port = 5501
	cfg.FrameworkVersion = fwk.Version

	var opts []fwk.LLMOption
	if prompt := os.Getenv("SYSTEM_PROMPT"); prompt != "" {
		opts = append(opts, fwk.WithSystemPrompt(prompt))
	}

	if err := fwk.RunLLM(ctx, cfg, opts...); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Agent failed")
	}
}
