package gpt

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm"
)

type Client struct {
	Client  openai.Client
	ModelID string
	Retry   llm.RetryPolicy
}

func NewClient(apiKey string, model string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI model ID is required")
	}

	// The SDK retries transport failures itself; our policy only covers
	// what is left after that.
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(2),
	}, opts...)

	retry := llm.DefaultRetryPolicy()
	retry.MaxRetries = 1

	return &Client{
		Client:  openai.NewClient(reqOpts...),
		ModelID: model,
		Retry:   retry,
	}, nil
}
