package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type LLMProvider string

const (
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderOpenAI    LLMProvider = "openai"
	ProviderBedrock   LLMProvider = "bedrock"
)

const (
	TierFast    = "fast"
	TierSmart   = "smart"
	TierPremium = "premium"

	fallbackModel = "claude-3-haiku-20240307"
)

// LLMConfig holds provider selection and generation parameters.
type LLMConfig struct {
	Provider        LLMProvider                       `yaml:"provider" validate:"oneof=anthropic openai bedrock"`
	ModelTier       string                            `yaml:"model_tier" validate:"required"`
	MaxTokens       int                               `yaml:"max_tokens" validate:"min=1,max=8000"`
	Temperature     float64                           `yaml:"temperature" validate:"min=0,max=2"`
	Timeout         time.Duration                     `yaml:"timeout" validate:"min=1s"`
	AnthropicAPIKey string                            `yaml:"-"`
	OpenAIAPIKey    string                            `yaml:"-"`
	AWSRegion       string                            `yaml:"aws_region"`
	Models          map[LLMProvider]map[string]string `yaml:"models"`
}

func DefaultModels() map[LLMProvider]map[string]string {
	return map[LLMProvider]map[string]string{
		ProviderAnthropic: {
			TierFast:    "claude-3-haiku-20240307",
			TierSmart:   "claude-3-sonnet-20240229",
			TierPremium: "claude-3-opus-20240229",
		},
		ProviderOpenAI: {
			TierFast:    "gpt-3.5-turbo",
			TierSmart:   "gpt-4-turbo-preview",
			TierPremium: "gpt-4",
		},
		ProviderBedrock: {
			TierFast:    "anthropic.claude-3-haiku-20240307-v1:0",
			TierSmart:   "anthropic.claude-3-sonnet-20240229-v1:0",
			TierPremium: "anthropic.claude-3-opus-20240229-v1:0",
		},
	}
}

func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:    ProviderAnthropic,
		ModelTier:   TierFast,
		MaxTokens:   1000,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
		AWSRegion:   "us-east-1",
		Models:      DefaultModels(),
	}
}

// LLMConfigFromEnv reads LLM_PROVIDER, LLM_MODEL_TIER, LLM_MAX_TOKENS,
// LLM_TEMPERATURE, LLM_TIMEOUT and the provider API keys. Unparseable
// numbers keep their defaults.
func LLMConfigFromEnv() (LLMConfig, error) {
	cfg := DefaultLLMConfig()

	cfg.Provider = LLMProvider(strings.ToLower(getEnv("LLM_PROVIDER", string(cfg.Provider))))
	cfg.ModelTier = strings.ToLower(getEnv("LLM_MODEL_TIER", cfg.ModelTier))
	cfg.MaxTokens = getEnvInt("LLM_MAX_TOKENS", cfg.MaxTokens)
	cfg.Temperature = getEnvFloat("LLM_TEMPERATURE", cfg.Temperature)
	cfg.Timeout = getEnvDuration("LLM_TIMEOUT", cfg.Timeout)
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c LLMConfig) Validate() error {
	if err := Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid llm config: %w", err)
	}
	return nil
}

// ModelName resolves provider and tier to a concrete model id.
func (c LLMConfig) ModelName() string {
	models := c.Models
	if models == nil {
		models = DefaultModels()
	}
	if name, ok := models[c.Provider][c.ModelTier]; ok && name != "" {
		return name
	}
	return fallbackModel
}

// APIKey returns the key for the configured provider. Bedrock authenticates
// through the AWS credential chain and has no key.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey != "" {
			return c.AnthropicAPIKey
		}
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderOpenAI:
		if c.OpenAIAPIKey != "" {
			return c.OpenAIAPIKey
		}
		return os.Getenv("OPENAI_API_KEY")
	default:
		return ""
	}
}
