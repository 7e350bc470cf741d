package stream

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/metrics"
	red "github.com/povarna/generative-ai-agents/agent-fwk/internal/redis"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/stream/redis"
	"github.com/rs/zerolog"
)

func NewStreamConsumer(
	ctx context.Context,
	cfg *StreamConfig,
	handler redis.ChatHandler,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) (StreamConsumer, error) {

	// If provider is empty, fallback to the default configuration.
	provider := cfg.Provider
	if provider == "" {
		provider = "redis"
	}

	switch provider {
	case "redis":
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("redis config required")
		}

		client, err := red.ConnectRedis(ctx, cfg.Connection, logger)
		if err != nil {
			return nil, err
		}

		return redis.NewConsumer(client, *cfg.RedisConfig, handler, m, logger), nil

	default:
		return nil, fmt.Errorf("unsupported stream provider: %s", cfg.Provider)
	}
}
