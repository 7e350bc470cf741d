package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFunc func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)

func (f chatFunc) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	return f(ctx, req)
}

func newTestConsumer(t *testing.T, handler ChatHandler) (*Consumer, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := NewRedisStreamConfig("chat-in", "chat-group", "worker-1", "chat-out")
	cfg.Block = 50 * time.Millisecond

	logger := zerolog.Nop()
	c := NewConsumer(client, *cfg, handler, nil, &logger)
	require.NoError(t, c.Setup(context.Background()))
	return c, client
}

func replies(t *testing.T, client *redis.Client) []Reply {
	t.Helper()
	entries, err := client.XRange(context.Background(), "chat-out", "-", "+").Result()
	require.NoError(t, err)

	out := make([]Reply, 0, len(entries))
	for _, e := range entries {
		var r Reply
		require.NoError(t, json.Unmarshal([]byte(e.Values["payload"].(string)), &r))
		out = append(out, r)
	}
	return out
}

func readOne(t *testing.T, client *redis.Client) redis.XMessage {
	t.Helper()
	streams, err := client.XReadGroup(context.Background(), &redis.XReadGroupArgs{
		Group:    "chat-group",
		Consumer: "worker-1",
		Streams:  []string{"chat-in", ">"},
		Count:    1,
		Block:    -1,
	}).Result()
	require.NoError(t, err)
	require.Len(t, streams, 1)
	require.Len(t, streams[0].Messages, 1)
	return streams[0].Messages[0]
}

func pending(t *testing.T, client *redis.Client) int64 {
	t.Helper()
	p, err := client.XPending(context.Background(), "chat-in", "chat-group").Result()
	require.NoError(t, err)
	return p.Count
}

func TestConsumer_Setup_Idempotent(t *testing.T) {
	c, _ := newTestConsumer(t, nil)
	assert.NoError(t, c.Setup(context.Background()))
}

func TestConsumer_Process(t *testing.T) {
	var got models.ChatRequest
	c, client := newTestConsumer(t, chatFunc(func(_ context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
		got = req
		return &models.ChatResponse{Response: "pong", AgentName: "Echo"}, nil
	}))
	ctx := context.Background()

	user := "u-1"
	payload, _ := json.Marshal(models.ChatRequest{Message: "ping", UserID: &user})
	id, err := client.XAdd(ctx, &redis.XAddArgs{Stream: "chat-in", Values: map[string]any{"payload": string(payload)}}).Result()
	require.NoError(t, err)

	c.process(ctx, readOne(t, client))

	assert.Equal(t, "ping", got.Message)
	require.NotNil(t, got.UserID)
	assert.Equal(t, "u-1", *got.UserID)

	out := replies(t, client)
	require.Len(t, out, 1)
	assert.Equal(t, id, out[0].RequestID)
	require.NotNil(t, out[0].Response)
	assert.Equal(t, "pong", out[0].Response.Response)
	assert.Empty(t, out[0].Error)
	assert.Zero(t, pending(t, client))
}

func TestConsumer_Process_ChatError(t *testing.T) {
	c, client := newTestConsumer(t, chatFunc(func(context.Context, models.ChatRequest) (*models.ChatResponse, error) {
		return nil, errors.New("Processing error: boom")
	}))
	ctx := context.Background()

	_, err := client.XAdd(ctx, &redis.XAddArgs{Stream: "chat-in", Values: map[string]any{"payload": `{"message":"hi"}`}}).Result()
	require.NoError(t, err)

	c.process(ctx, readOne(t, client))

	out := replies(t, client)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Response)
	assert.Equal(t, "Processing error: boom", out[0].Error)
	assert.Zero(t, pending(t, client))
}

func TestConsumer_Process_BadPayload(t *testing.T) {
	called := false
	c, client := newTestConsumer(t, chatFunc(func(context.Context, models.ChatRequest) (*models.ChatResponse, error) {
		called = true
		return &models.ChatResponse{}, nil
	}))
	ctx := context.Background()

	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "missing payload", values: map[string]any{"other": "x"}},
		{name: "invalid json", values: map[string]any{"payload": "{oops"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.XAdd(ctx, &redis.XAddArgs{Stream: "chat-in", Values: tt.values}).Result()
			require.NoError(t, err)

			c.process(ctx, readOne(t, client))
			assert.Zero(t, pending(t, client), "bad messages are ACKed")
		})
	}

	assert.False(t, called)
	assert.Empty(t, replies(t, client))
}

func TestConsumer_Start(t *testing.T) {
	c, client := newTestConsumer(t, chatFunc(func(_ context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
		return &models.ChatResponse{Response: "echo: " + req.Message}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	_, err := client.XAdd(context.Background(), &redis.XAddArgs{Stream: "chat-in", Values: map[string]any{"payload": `{"message":"hello"}`}}).Result()
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		n, err := client.XLen(context.Background(), "chat-out").Result()
		return err == nil && n == 1
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}

	out := replies(t, client)
	require.Len(t, out, 1)
	assert.Equal(t, "echo: hello", out[0].Response.Response)
}

func TestConsumer_Start_BacksOffOnReadErrors(t *testing.T) {
	c, client := newTestConsumer(t, nil)
	c.cfg.RetryInitial = 10 * time.Millisecond
	c.cfg.RetryMax = 40 * time.Millisecond
	require.NoError(t, client.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var delays []time.Duration
	c.wait = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		if len(delays) == 6 {
			cancel()
		}
		return ctx.Err()
	}

	err := c.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, delays, 6)
	for _, d := range delays {
		assert.Positive(t, d)
		assert.LessOrEqual(t, d, 40*time.Millisecond)
	}
	assert.Equal(t, 40*time.Millisecond, delays[len(delays)-1])
}
