package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/agent-fwk/fwk"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/mcpadapter"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/setup"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/setup/logger"
)

func main() {
	// Load env
	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	base := fwk.DefaultAgentConfig()
	base.Name = "LLM Assistant"
	base.Description = "A conversational assistant backed by a large language model"
	base.Port = 5501
	base.FrameworkVersion = fwk.Version

	// Load Config
	cfg, err := setup.LoadConfig(base)
	if err != nil {
		os.Stderr.WriteString("invalid agent config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so logs go to stderr
	log := logger.New(cfg.Agent.LogLevel, logger.WithWriter(os.Stderr), logger.WithField("agent", cfg.Agent.Slug))

	processor, closeProcessor, err := setup.NewLLMProcessor(ctx, cfg, &log)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create LLM processor")
		os.Exit(1)
	}
	defer func() { _ = closeProcessor() }()

	// Wire dependencies
	deps, err := setup.Wire(ctx, cfg, processor, &log)
	if err != nil {
		log.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}

	if err := deps.Agent.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Agent startup failed")
		os.Exit(1)
	}
	defer func() { _ = deps.Agent.Stop(context.WithoutCancel(ctx)) }()

	// Create MCP Server
	server := mcpadapter.NewServer(cfg.Agent.Slug, cfg.Agent.Version, deps.Agent, deps.Framework)

	// Run over stdio
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			log.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		log.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}
