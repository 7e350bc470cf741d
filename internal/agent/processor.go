package agent

import (
	"context"
)

// Processor turns a user message into the agent's reply. User and
// conversation identifiers are optional and passed as options, so callers
// written against the two-argument form keep compiling.
type Processor interface {
	ProcessMessage(ctx context.Context, message string, msgContext map[string]any, opts ...MessageOption) (string, error)
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ctx context.Context, message string, msgContext map[string]any, meta MessageMeta) (string, error)

func (f ProcessorFunc) ProcessMessage(ctx context.Context, message string, msgContext map[string]any, opts ...MessageOption) (string, error) {
	return f(ctx, message, msgContext, ResolveMessageOptions(opts...))
}

// MessageMeta carries the optional identifiers of a message. Nil means unset.
type MessageMeta struct {
	UserID         *string
	ConversationID *string
}

type MessageOption func(*MessageMeta)

func WithUserID(id string) MessageOption {
	return func(m *MessageMeta) { m.UserID = &id }
}

func WithConversationID(id string) MessageOption {
	return func(m *MessageMeta) { m.ConversationID = &id }
}

func ResolveMessageOptions(opts ...MessageOption) MessageMeta {
	var meta MessageMeta
	for _, opt := range opts {
		if opt != nil {
			opt(&meta)
		}
	}
	return meta
}

// LegacyProcessor is the pre-1.1.0 processor contract.
type LegacyProcessor interface {
	Process(ctx context.Context, message string, msgContext map[string]any) (string, error)
}

// AdaptLegacy runs a LegacyProcessor behind the current Processor contract.
// The identifiers are dropped since the legacy form has nowhere to put them.
// Lifecycle hooks implemented by the legacy value are still honoured.
func AdaptLegacy(p LegacyProcessor) Processor {
	return legacyAdapter{legacy: p}
}

type legacyAdapter struct {
	legacy LegacyProcessor
}

func (a legacyAdapter) ProcessMessage(ctx context.Context, message string, msgContext map[string]any, _ ...MessageOption) (string, error) {
	return a.legacy.Process(ctx, message, msgContext)
}

func (a legacyAdapter) unwrap() any { return a.legacy }
