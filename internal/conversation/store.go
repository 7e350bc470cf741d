package conversation

import (
	"context"
	"time"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Store keeps per-conversation history. History returns the most recent
// turns, oldest first; limit <= 0 means everything that is kept.
type Store interface {
	Append(ctx context.Context, conversationID string, turns ...Turn) error
	History(ctx context.Context, conversationID string, limit int) ([]Turn, error)
}

const (
	DefaultMaxTurns        = 50
	DefaultConversationTTL = 24 * time.Hour
)
