package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	red "github.com/povarna/generative-ai-agents/agent-fwk/internal/redis"
	stream "github.com/povarna/generative-ai-agents/agent-fwk/internal/stream/redis"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	message := flag.String("m", "", "Message to send")
	data := flag.String("d", "", "Inline JSON ChatRequest (overrides -m)")
	streamName := flag.String("stream", stream.DefaultStream, "Stream name")
	flag.Parse()

	if *data == "" && *message == "" {
		fmt.Fprintln(os.Stderr, "Usage: producer -m 'hello' | -d '<json>'")
		flag.PrintDefaults()
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(*data, *message, *streamName); err != nil {
		log.Error().Err(err).Msg("producer failed")
		os.Exit(1)
	}
}

func run(data, message, streamName string) error {
	_ = godotenv.Load()

	var req models.ChatRequest
	if data != "" {
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			return err
		}
	} else {
		req.Message = message
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	ctx := context.Background()
	opts := red.OptionsFromEnv()
	opts.MaxRetries = 3
	client, err := red.ConnectRedis(ctx, opts, &log.Logger)
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]any{"payload": string(payload)},
	}).Result()
	if err != nil {
		return err
	}

	log.Info().Str("stream", streamName).Str("id", id).Int("message_length", len(req.Message)).Msg("Published successfully!")
	return nil
}
