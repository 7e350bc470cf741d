package anthropic

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

type Client struct {
	http    *resty.Client
	ModelID string
	Retry   llm.RetryPolicy
}

type Option func(*Client)

// WithBaseURL points the client at a different endpoint (proxies, tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(url) }
}

func WithRetryPolicy(p llm.RetryPolicy) Option {
	return func(c *Client) { c.Retry = p }
}

func NewClient(apiKey string, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("Anthropic model ID is required")
	}

	httpClient := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(2*time.Minute).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{
		http:    httpClient,
		ModelID: model,
		Retry:   llm.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}
