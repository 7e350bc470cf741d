package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm/anthropic"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm/gpt"
	"github.com/rs/zerolog"
)

const DefaultSystemPrompt = "You are a helpful AI assistant."

// ChatInput is a single turn sent through the gateway.
type ChatInput struct {
	Message      string
	SystemPrompt string
	History      []llm.Message
}

type ModelInfo struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Tier        string  `json:"tier"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// Gateway puts the configured provider behind one call with a per-request
// timeout and the framework's generation defaults.
type Gateway struct {
	client llm.LLMClient
	cfg    config.LLMConfig
	logger *zerolog.Logger
}

func New(ctx context.Context, cfg config.LLMConfig, logger *zerolog.Logger) (*Gateway, error) {
	client, err := createLLMClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	logger.Info().
		Str("provider", string(cfg.Provider)).
		Str("model", cfg.ModelName()).
		Str("tier", cfg.ModelTier).
		Msg("LLM client initialized")

	return NewWithClient(client, cfg, logger), nil
}

func NewWithClient(client llm.LLMClient, cfg config.LLMConfig, logger *zerolog.Logger) *Gateway {
	return &Gateway{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (g *Gateway) Chat(ctx context.Context, input ChatInput) (string, error) {
	system := input.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	callCtx := ctx
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.client.InvokeModelWithRetry(callCtx, llm.LLMRequest{
		System:      system,
		History:     input.History,
		Prompt:      input.Message,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			g.logger.Error().Dur("timeout", g.cfg.Timeout).Msg("LLM request timed out")
			return "", fmt.Errorf("LLM request timeout after %s", g.cfg.Timeout)
		}
		g.logger.Error().Err(err).Str("provider", string(g.cfg.Provider)).Msg("LLM request failed")
		return "", fmt.Errorf("LLM error: %w", err)
	}

	g.logger.Debug().
		Str("stop_reason", resp.StopReason).
		Int("response_length", len(resp.Content)).
		Msg("LLM response received")

	return resp.Content, nil
}

func (g *Gateway) ModelInfo() ModelInfo {
	return ModelInfo{
		Provider:    string(g.cfg.Provider),
		Model:       g.cfg.ModelName(),
		Tier:        g.cfg.ModelTier,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}
}

func createLLMClient(ctx context.Context, cfg config.LLMConfig) (llm.LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return gpt.NewClient(cfg.APIKey(), cfg.ModelName())
	case config.ProviderBedrock:
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ModelName())
	case config.ProviderAnthropic:
		return anthropic.NewClient(cfg.APIKey(), cfg.ModelName())
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
