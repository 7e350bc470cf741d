package setup

import (
	"os"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/setup/logger"
	"github.com/rs/zerolog"
)

// NewLogger returns the console logger used by the agent binaries, tagged
// with the agent slug.
func NewLogger(cfg *config.AgentConfig) zerolog.Logger {
	return logger.New(cfg.LogLevel,
		logger.WithWriter(os.Stderr),
		logger.WithConsole(),
		logger.WithField("agent", cfg.Slug),
	)
}
