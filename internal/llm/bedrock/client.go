package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm"
)

// RuntimeAPI is the slice of the Bedrock runtime client we use.
type RuntimeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Client struct {
	Client  RuntimeAPI
	ModelID string
	Retry   llm.RetryPolicy
}

func NewClient(ctx context.Context, region string, modelID string) (*Client, error) {
	if modelID == "" {
		return nil, fmt.Errorf("Bedrock model ID is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("Unable to load AWS config: %w", err)
	}

	return NewWithRuntime(bedrockruntime.NewFromConfig(cfg), modelID), nil
}

func NewWithRuntime(runtime RuntimeAPI, modelID string) *Client {
	return &Client{
		Client:  runtime,
		ModelID: modelID,
		Retry:   llm.DefaultRetryPolicy(),
	}
}
