package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/metrics"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// ChatHandler is the part of the agent the consumer drives.
type ChatHandler interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// Reply is published on the reply stream under the payload field.
type Reply struct {
	RequestID string               `json:"request_id"`
	Response  *models.ChatResponse `json:"response,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type Consumer struct {
	client  *redis.Client
	cfg     RedisStreamConfig
	handler ChatHandler
	metrics *metrics.Metrics
	logger  *zerolog.Logger

	wait func(ctx context.Context, d time.Duration) error
}

func NewConsumer(client *redis.Client, cfg RedisStreamConfig, handler ChatHandler, m *metrics.Metrics, logger *zerolog.Logger) *Consumer {
	if cfg.Block <= 0 {
		cfg.Block = DefaultBlock
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = DefaultRetryInitial
	}
	if cfg.RetryMax < cfg.RetryInitial {
		cfg.RetryMax = max(DefaultRetryMax, cfg.RetryInitial)
	}
	return &Consumer{
		client:  client,
		cfg:     cfg,
		handler: handler,
		metrics: m,
		logger:  logger,
		wait:    sleep,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.cfg.Stream).
		Str("group", c.cfg.Group).
		Str("consumer", c.cfg.ConsumerName).
		Str("reply_stream", c.cfg.ReplyStream).
		Msg("Consumer started")

	var backoff retry.Backoff
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.ConsumerName,
			Streams:  []string{c.cfg.Stream, ">"},
			Count:    1,
			Block:    c.cfg.Block,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				backoff = nil
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			if backoff == nil {
				backoff = c.readBackoff()
			}
			delay, _ := backoff.Next()
			c.logger.Error().Err(err).Dur("retry_in", delay).Msg("Failed to read from stream")
			if err := c.wait(ctx, delay); err != nil {
				return err
			}
			continue
		}
		backoff = nil

		for _, s := range streams {
			for _, msg := range s.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) Stop() error {
	return nil
}

// readBackoff spaces out reads while the stream is unreachable.
func (c *Consumer) readBackoff() retry.Backoff {
	b := retry.NewExponential(c.cfg.RetryInitial)
	b = retry.WithJitterPercent(20, b)
	return retry.WithCappedDuration(c.cfg.RetryMax, b)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// process handles one stream entry. Every entry is ACKed, including the ones
// that cannot be decoded, so a bad payload is never redelivered.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	defer c.ack(ctx, msg.ID)

	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.observe("invalid")
		return
	}

	var chatReq models.ChatRequest
	if err := json.Unmarshal([]byte(payload), &chatReq); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.observe("invalid")
		return
	}

	chatCtx := ctx
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		chatCtx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	reply := Reply{RequestID: msg.ID}
	resp, err := c.handler.Chat(chatCtx, chatReq)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Chat failed")
		reply.Error = err.Error()
		c.observe("failed")
	} else {
		reply.Response = resp
		c.logger.Info().
			Str("id", msg.ID).
			Float64("processing_time_ms", resp.ProcessingTimeMs).
			Msg("Chat complete")
		c.observe("processed")
	}

	c.publish(ctx, reply)
}

func (c *Consumer) publish(ctx context.Context, reply Reply) {
	if c.cfg.ReplyStream == "" {
		return
	}

	data, err := json.Marshal(reply)
	if err != nil {
		c.logger.Error().Err(err).Str("id", reply.RequestID).Msg("Failed to encode reply")
		return
	}

	err = c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.ReplyStream,
		MaxLen: c.cfg.ReplyMaxLen,
		Approx: c.cfg.ReplyMaxLen > 0,
		Values: map[string]any{
			"request_id": reply.RequestID,
			"payload":    string(data),
		},
	}).Err()
	if err != nil {
		c.logger.Error().Err(err).Str("id", reply.RequestID).Msg("Failed to publish reply")
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(context.WithoutCancel(ctx), c.cfg.Stream, c.cfg.Group, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}

func (c *Consumer) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.ObserveStreamMessage(outcome)
	}
}
