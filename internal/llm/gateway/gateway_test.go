package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm/mocks"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func TestChat_UsesDefaultsAndConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)
	logger := zerolog.Nop()

	cfg := config.DefaultLLMConfig()
	cfg.MaxTokens = 256
	cfg.Temperature = 0.2

	mockClient.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
			if req.System != DefaultSystemPrompt {
				t.Errorf("Expected default system prompt, got %q", req.System)
			}
			if req.MaxTokens != 256 || req.Temperature != 0.2 {
				t.Errorf("Unexpected generation params: %d %v", req.MaxTokens, req.Temperature)
			}
			if _, ok := ctx.Deadline(); !ok {
				t.Error("Expected per-call deadline")
			}
			return &llm.LLMResponse{Content: "hi there"}, nil
		})

	gw := NewWithClient(mockClient, cfg, &logger)
	out, err := gw.Chat(context.Background(), ChatInput{Message: "hi"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if out != "hi there" {
		t.Errorf("Expected 'hi there', got %q", out)
	}
}

func TestChat_PassesHistoryAndSystemPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)
	logger := zerolog.Nop()

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "first"},
		{Role: llm.RoleAssistant, Content: "reply"},
	}

	mockClient.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
			if req.System != "custom" {
				t.Errorf("Expected custom system prompt, got %q", req.System)
			}
			if len(req.History) != 2 {
				t.Errorf("Expected 2 history turns, got %d", len(req.History))
			}
			return &llm.LLMResponse{Content: "ok"}, nil
		})

	gw := NewWithClient(mockClient, config.DefaultLLMConfig(), &logger)
	if _, err := gw.Chat(context.Background(), ChatInput{Message: "second", SystemPrompt: "custom", History: history}); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
}

func TestChat_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)
	logger := zerolog.Nop()

	cfg := config.DefaultLLMConfig()
	cfg.Timeout = 10 * time.Millisecond

	mockClient.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ llm.LLMRequest) (*llm.LLMResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	gw := NewWithClient(mockClient, cfg, &logger)
	_, err := gw.Chat(context.Background(), ChatInput{Message: "slow"})
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if err.Error() != "LLM request timeout after 10ms" {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestChat_ProviderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)
	logger := zerolog.Nop()

	mockClient.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("invalid request"))

	gw := NewWithClient(mockClient, config.DefaultLLMConfig(), &logger)
	_, err := gw.Chat(context.Background(), ChatInput{Message: "x"})
	if err == nil || !strings.HasPrefix(err.Error(), "LLM error:") {
		t.Errorf("Expected wrapped LLM error, got %v", err)
	}
}

func TestModelInfo(t *testing.T) {
	logger := zerolog.Nop()
	cfg := config.DefaultLLMConfig()
	cfg.Provider = config.ProviderOpenAI
	cfg.ModelTier = config.TierSmart

	info := NewWithClient(nil, cfg, &logger).ModelInfo()

	if info.Provider != "openai" || info.Model != "gpt-4-turbo-preview" || info.Tier != "smart" {
		t.Errorf("Unexpected model info: %+v", info)
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	logger := zerolog.Nop()

	if _, err := New(context.Background(), config.DefaultLLMConfig(), &logger); err == nil {
		t.Error("Expected error without an API key")
	}
}

func TestNew_UnsupportedProvider(t *testing.T) {
	logger := zerolog.Nop()
	cfg := config.DefaultLLMConfig()
	cfg.Provider = "cohere"

	if _, err := New(context.Background(), cfg, &logger); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}
