package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/agent"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/api"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/conversation"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/framework"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm/gateway"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/metrics"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/migration"
	red "github.com/povarna/generative-ai-agents/agent-fwk/internal/redis"
	"github.com/rs/zerolog"
)

const (
	ConversationMemory = "memory"
	ConversationRedis  = "redis"
	ConversationNone   = "none"
)

type Config struct {
	Agent        *config.AgentConfig
	Redis        red.Options
	Conversation string
	AdminAddr    string
	GitHubAPIURL string
}

type Dependencies struct {
	Config    *Config
	Agent     *agent.Agent
	Framework *framework.Manager
	Metrics   *metrics.Metrics
	Logger    *zerolog.Logger

	closers []func() error
}

// LoadConfig layers the agent YAML file and the environment over base.
// CONVERSATION_STORE selects the history backend, ADMIN_ADDR enables the
// admin listener and GITHUB_API_URL points release discovery at GitHub
// Enterprise.
func LoadConfig(base config.AgentConfig) (*Config, error) {
	agentCfg, err := config.LoadAgentConfig(base)
	if err != nil {
		return nil, err
	}

	return &Config{
		Agent:        agentCfg,
		Redis:        red.OptionsFromEnv(),
		Conversation: strings.ToLower(getEnv("CONVERSATION_STORE", ConversationMemory)),
		AdminAddr:    os.Getenv("ADMIN_ADDR"),
		GitHubAPIURL: os.Getenv("GITHUB_API_URL"),
	}, nil
}

// NewFrameworkManager builds the self-update manager for the agent checkout,
// with the built-in migrations plus the optional migrations file.
func NewFrameworkManager(cfg *Config, logger *zerolog.Logger) (*framework.Manager, error) {
	agentCfg := cfg.Agent

	migrations, err := migration.NewManager(agentCfg.AgentRoot, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrations.LoadFile(agentCfg.Framework.MigrationsPath); err != nil {
		return nil, err
	}

	github := framework.NewGitHubSource(
		agentCfg.Framework.Owner,
		agentCfg.Framework.Repo,
		agentCfg.Framework.GitHubToken,
		logger,
	)
	if cfg.GitHubAPIURL != "" {
		if err := github.WithBaseURL(cfg.GitHubAPIURL); err != nil {
			return nil, err
		}
	}
	releases := framework.NewCachedSource(github, agentCfg.Framework.CacheTTL)

	return framework.NewManager(agentCfg, migrations, releases, framework.ExecRunner{}, logger), nil
}

// NewConversationStore returns the configured history store. A nil store
// means history is disabled.
func NewConversationStore(ctx context.Context, cfg *Config, logger *zerolog.Logger) (conversation.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Conversation {
	case ConversationMemory, "":
		return conversation.NewMemoryStore(conversation.DefaultMaxTurns), noop, nil
	case ConversationRedis:
		client, err := red.ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, noop, err
		}
		return conversation.NewRedisStore(client, logger), client.Close, nil
	case ConversationNone:
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported conversation store: %s", cfg.Conversation)
	}
}

// NewLLMProcessor builds an LLM-backed processor from the LLM_* environment.
func NewLLMProcessor(ctx context.Context, cfg *Config, logger *zerolog.Logger, opts ...agent.LLMOption) (*agent.LLMProcessor, func() error, error) {
	llmCfg, err := config.LLMConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}

	gw, err := gateway.New(ctx, llmCfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	store, closeStore, err := NewConversationStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if store != nil {
		opts = append([]agent.LLMOption{agent.WithConversationStore(store, 0)}, opts...)
	}

	return agent.NewLLMProcessor(cfg.Agent, gw, logger, opts...), closeStore, nil
}

func Wire(ctx context.Context, cfg *Config, processor agent.Processor, logger *zerolog.Logger) (*Dependencies, error) {
	fwk, err := NewFrameworkManager(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Config:    cfg,
		Agent:     agent.New(cfg.Agent, processor, logger),
		Framework: fwk,
		Metrics:   metrics.New(),
		Logger:    logger,
	}, nil
}

// OnClose registers a cleanup to run in Close.
func (d *Dependencies) OnClose(fn func() error) {
	if fn != nil {
		d.closers = append(d.closers, fn)
	}
}

func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	return errors.Join(errs...)
}

// Server assembles the HTTP server for the agent listener and, when
// configured, the admin listener.
func (d *Dependencies) Server() *api.Server {
	cfg := d.Config.Agent

	handler := api.NewHandler(d.Agent, d.Framework, d.Logger,
		api.WithRequestTimeout(cfg.RequestTimeout),
		api.WithMetrics(d.Metrics),
	)
	container := api.NewContainer(handler, d.Metrics, d.Logger)

	return api.NewServer(api.ServerConfig{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		AdminAddr:   d.Config.AdminAddr,
		CORSOrigins: cfg.CORSOrigins,
	}, d.Agent, container, d.Metrics, d.Logger)
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}
