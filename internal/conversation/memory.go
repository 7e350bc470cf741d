package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultMaxConversations = 1000

// MemoryStore keeps the most recently used conversations in process. A
// conversation is dropped when it falls out of the LRU or after TTL without
// being written.
type MemoryStore struct {
	mu               sync.Mutex
	maxTurns         int
	maxConversations int
	ttl              time.Duration
	conversations    *expirable.LRU[string, []Turn]
}

type MemoryOption func(*MemoryStore)

func WithMaxConversations(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxConversations = n
		}
	}
}

// WithMemoryTTL sets how long an idle conversation is kept. Zero keeps
// conversations until they are evicted by size.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.ttl = ttl }
}

func NewMemoryStore(maxTurns int, opts ...MemoryOption) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	s := &MemoryStore{
		maxTurns:         maxTurns,
		maxConversations: DefaultMaxConversations,
		ttl:              DefaultConversationTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.conversations = expirable.NewLRU[string, []Turn](s.maxConversations, nil, s.ttl)
	return s
}

func (s *MemoryStore) Append(_ context.Context, conversationID string, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, _ := s.conversations.Get(conversationID)
	history := append(append(make([]Turn, 0, len(prev)+len(turns)), prev...), turns...)
	if over := len(history) - s.maxTurns; over > 0 {
		history = history[over:]
	}
	s.conversations.Add(conversationID, history)
	return nil
}

func (s *MemoryStore) History(_ context.Context, conversationID string, limit int) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, _ := s.conversations.Get(conversationID)
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return append([]Turn(nil), history...), nil
}

// Len reports how many conversations are held.
func (s *MemoryStore) Len() int {
	return s.conversations.Len()
}
