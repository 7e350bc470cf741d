package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/agent"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/conversation"
	red "github.com/povarna/generative-ai-agents/agent-fwk/internal/redis"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("AGENT_CONFIG_PATH", filepath.Join(root, "missing.yaml"))
	t.Setenv("AGENT_ROOT", root)
	t.Setenv("AGENT_NAME", "Echo Agent")
	t.Setenv("AGENT_DESCRIPTION", "Repeats what it hears")
	t.Setenv("AGENT_PORT", "5501")
	return root
}

func TestLoadConfig(t *testing.T) {
	root := testEnv(t)
	t.Setenv("CONVERSATION_STORE", "Redis")
	t.Setenv("ADMIN_ADDR", ":9100")
	t.Setenv("REDIS_ADDR", "redis:6380")

	cfg, err := LoadConfig(config.DefaultAgentConfig())
	require.NoError(t, err)

	assert.Equal(t, "echo-agent", cfg.Agent.Slug)
	assert.Equal(t, root, cfg.Agent.AgentRoot)
	assert.Equal(t, 5501, cfg.Agent.Port)
	assert.Equal(t, ConversationRedis, cfg.Conversation)
	assert.Equal(t, ":9100", cfg.AdminAddr)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
}

func TestLoadConfig_Invalid(t *testing.T) {
	testEnv(t)
	t.Setenv("AGENT_PORT", "80")

	_, err := LoadConfig(config.DefaultAgentConfig())
	assert.Error(t, err)
}

func TestNewConversationStore(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		backend string
		check   func(t *testing.T, store conversation.Store)
		wantErr bool
	}{
		{backend: ConversationMemory, check: func(t *testing.T, store conversation.Store) {
			assert.IsType(t, &conversation.MemoryStore{}, store)
		}},
		{backend: ConversationRedis, check: func(t *testing.T, store conversation.Store) {
			assert.IsType(t, &conversation.RedisStore{}, store)
		}},
		{backend: ConversationNone, check: func(t *testing.T, store conversation.Store) {
			assert.Nil(t, store)
		}},
		{backend: "dynamo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &Config{
				Conversation: tt.backend,
				Redis:        red.Options{Addr: mr.Addr(), MaxRetries: 1},
			}
			store, closeStore, err := NewConversationStore(ctx, cfg, &logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeStore()) }()
			tt.check(t, store)
		})
	}
}

func TestWire(t *testing.T) {
	root := testEnv(t)
	migrations := `migrations:
  - from_version: "1.3.0"
    to_version: "1.4.0"
    breaking_changes: ["Handlers renamed"]
    steps:
      - name: rename_handler
        description: Rename Handle to Serve
        search: 'Handle\('
        replace: 'Serve('
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "migrations.yaml"), []byte(migrations), 0o644))

	cfg, err := LoadConfig(config.DefaultAgentConfig())
	require.NoError(t, err)

	logger := zerolog.Nop()
	deps, err := Wire(context.Background(), cfg, agent.EchoProcessor{Name: "Echo Agent"}, &logger)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", deps.Framework.CurrentVersion())
	assert.True(t, deps.Framework.Migrations().HasBreakingChanges("1.3.0", "1.4.0"))
	assert.NotNil(t, deps.Server())

	closed := 0
	deps.OnClose(func() error { closed++; return nil })
	assert.NoError(t, deps.Close())
	assert.Equal(t, 1, closed)
}
