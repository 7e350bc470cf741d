package redis

import "time"

const (
	DefaultStream       = "agent-chat"
	DefaultGroup        = "agent-group"
	DefaultReplyStream  = "agent-chat-replies"
	DefaultReplyMaxLen  = 10000
	DefaultBlock        = 2 * time.Second
	DefaultRetryInitial = 100 * time.Millisecond
	DefaultRetryMax     = 5 * time.Second
)

type RedisStreamConfig struct {
	Stream       string
	Group        string
	ConsumerName string
	// ReplyStream receives one entry per processed request. Empty disables
	// replies.
	ReplyStream    string
	ReplyMaxLen    int64
	Block          time.Duration
	RequestTimeout time.Duration
	// RetryInitial and RetryMax bound the delay between failed reads.
	RetryInitial time.Duration
	RetryMax     time.Duration
}

func NewRedisStreamConfig(stream string, group string, consumerName string, replyStream string) *RedisStreamConfig {
	cfg := &RedisStreamConfig{
		Stream:       stream,
		Group:        group,
		ConsumerName: consumerName,
		ReplyStream:  replyStream,
		ReplyMaxLen:  DefaultReplyMaxLen,
		Block:        DefaultBlock,
		RetryInitial: DefaultRetryInitial,
		RetryMax:     DefaultRetryMax,
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.Group == "" {
		cfg.Group = DefaultGroup
	}
	if cfg.ConsumerName == "" {
		cfg.ConsumerName = "consumer-1"
	}
	return cfg
}
