package stream

import (
	"os"
	"time"

	red "github.com/povarna/generative-ai-agents/agent-fwk/internal/redis"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/stream/redis"
)

type StreamConfig struct {
	Provider    string // redis, kafka, sqs, etc
	Connection  red.Options
	RedisConfig *redis.RedisStreamConfig
}

// StreamConfigFromEnv reads STREAM_PROVIDER, CHAT_STREAM, CHAT_GROUP,
// CHAT_REPLY_STREAM and HOSTNAME (consumer name) plus the REDIS_* connection
// variables.
func StreamConfigFromEnv(requestTimeout time.Duration) *StreamConfig {
	replyStream, ok := os.LookupEnv("CHAT_REPLY_STREAM")
	if !ok {
		replyStream = redis.DefaultReplyStream
	}

	rcfg := redis.NewRedisStreamConfig(
		os.Getenv("CHAT_STREAM"),
		os.Getenv("CHAT_GROUP"),
		os.Getenv("HOSTNAME"),
		replyStream,
	)
	rcfg.RequestTimeout = requestTimeout

	return &StreamConfig{
		Provider:    os.Getenv("STREAM_PROVIDER"),
		Connection:  red.OptionsFromEnv(),
		RedisConfig: rcfg,
	}
}
