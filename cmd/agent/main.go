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
	cfg.Name = "Example Agent"
	cfg.Description = "A simple example agent that echoes messages"
	cfg.Port = 5500
	cfg.FrameworkVersion = fwk.Version

	if err := fwk.Run(ctx, cfg, fwk.EchoProcessor{Name: cfg.Name}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Agent failed")
	}
}
