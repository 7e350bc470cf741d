package stream

import "context"

// StreamConsumer feeds chat requests from a message stream into the agent.
type StreamConsumer interface {
	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}
