package stream

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	red "github.com/povarna/generative-ai-agents/agent-fwk/internal/redis"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/stream/redis"
	"github.com/rs/zerolog"
)

func TestNewStreamConsumer(t *testing.T) {
	logger := zerolog.Nop()
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     *StreamConfig
		wantErr bool
	}{
		{
			name: "default provider is redis",
			cfg: &StreamConfig{
				Connection:  red.Options{Addr: mr.Addr(), MaxRetries: 1},
				RedisConfig: redis.NewRedisStreamConfig("", "", "", ""),
			},
		},
		{
			name:    "missing redis config",
			cfg:     &StreamConfig{Provider: "redis"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     &StreamConfig{Provider: "kafka"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer, err := NewStreamConsumer(context.Background(), tt.cfg, nil, nil, &logger)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if err := consumer.Setup(context.Background()); err != nil {
				t.Errorf("Setup failed: %v", err)
			}
		})
	}
}

func TestStreamConfigFromEnv(t *testing.T) {
	t.Setenv("CHAT_STREAM", "in")
	t.Setenv("CHAT_REPLY_STREAM", "")
	t.Setenv("HOSTNAME", "pod-1")

	cfg := StreamConfigFromEnv(0)
	if cfg.RedisConfig.Stream != "in" || cfg.RedisConfig.Group != redis.DefaultGroup {
		t.Errorf("Unexpected stream config: %+v", cfg.RedisConfig)
	}
	if cfg.RedisConfig.ReplyStream != "" {
		t.Errorf("Expected replies disabled, got %q", cfg.RedisConfig.ReplyStream)
	}
	if cfg.RedisConfig.ConsumerName != "pod-1" {
		t.Errorf("Expected consumer name from HOSTNAME, got %q", cfg.RedisConfig.ConsumerName)
	}
}
