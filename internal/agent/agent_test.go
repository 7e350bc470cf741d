package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testConfig() *config.AgentConfig {
	cfg := config.DefaultAgentConfig()
	cfg.Name = "Example Agent"
	cfg.Slug = "example-agent"
	cfg.Description = "A simple example agent"
	cfg.Port = 5500
	cfg.MaxMessageLength = 20
	return &cfg
}

type statusProcessor struct {
	EchoProcessor
	status models.AgentStatus
}

func (s statusProcessor) HealthCheck(context.Context) models.AgentStatus { return s.status }

func TestAgent_Chat(t *testing.T) {
	var got MessageMeta
	p := ProcessorFunc(func(_ context.Context, message string, msgContext map[string]any, meta MessageMeta) (string, error) {
		got = meta
		if msgContext == nil {
			t.Error("Expected non-nil context")
		}
		return strings.ToUpper(message), nil
	})
	a := New(testConfig(), p, newTestLogger())

	user := "u-42"
	resp, err := a.Chat(context.Background(), models.ChatRequest{Message: "hello", UserID: &user})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Response != "HELLO" {
		t.Errorf("Expected 'HELLO', got %q", resp.Response)
	}
	if resp.AgentName != "Example Agent" {
		t.Errorf("Expected agent name, got %q", resp.AgentName)
	}
	if resp.Context["original_message"] != "hello" {
		t.Errorf("Expected original_message in context, got %v", resp.Context)
	}
	if id, _ := resp.Context["request_id"].(string); !strings.HasPrefix(id, "example-agent-") {
		t.Errorf("Expected request id prefixed with slug, got %q", id)
	}
	if got.UserID == nil || *got.UserID != "u-42" {
		t.Errorf("Expected user id to reach processor, got %+v", got)
	}
	if got.ConversationID != nil {
		t.Errorf("Expected unset conversation id, got %v", *got.ConversationID)
	}
	if resp.ProcessingTimeMs < 0 {
		t.Errorf("Expected non-negative processing time, got %v", resp.ProcessingTimeMs)
	}
}

func TestAgent_Chat_Validation(t *testing.T) {
	a := New(testConfig(), EchoProcessor{Name: "x"}, newTestLogger())

	tests := []struct {
		name    string
		message string
	}{
		{name: "empty", message: ""},
		{name: "too long", message: strings.Repeat("a", 21)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Chat(context.Background(), models.ChatRequest{Message: tt.message})
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
		})
	}

	if a.Status(context.Background()).RequestCount != 0 {
		t.Error("Rejected requests must not be counted")
	}
}

func TestAgent_Chat_ProcessingError(t *testing.T) {
	p := ProcessorFunc(func(context.Context, string, map[string]any, MessageMeta) (string, error) {
		return "", errors.New("boom")
	})
	a := New(testConfig(), p, newTestLogger())

	_, err := a.Chat(context.Background(), models.ChatRequest{Message: "hi"})

	var procErr *ProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("Expected ProcessingError, got %v", err)
	}
	if err.Error() != "Processing error: boom" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}

func TestAgent_Health(t *testing.T) {
	tests := []struct {
		name      string
		processor Processor
		want      models.AgentStatus
	}{
		{name: "default healthy", processor: EchoProcessor{}, want: models.StatusHealthy},
		{name: "custom checker", processor: statusProcessor{status: models.StatusDegraded}, want: models.StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(testConfig(), tt.processor, newTestLogger())
			health := a.Health(context.Background())

			if health.Status != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, health.Status)
			}
			if health.AgentSlug != "example-agent" || health.FrameworkVersion != "1.0.0" {
				t.Errorf("Unexpected health payload: %+v", health)
			}
		})
	}
}

func TestAgent_Status(t *testing.T) {
	a := New(testConfig(), EchoProcessor{Name: "Example Agent"}, newTestLogger())
	a.memoryUsage = func() (float64, error) { return 12.5, nil }

	before := a.Status(context.Background())
	if before.LastRequest != nil {
		t.Error("Expected no last request before any chat")
	}

	for range 3 {
		if _, err := a.Chat(context.Background(), models.ChatRequest{Message: "ping"}); err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
	}

	status := a.Status(context.Background())
	if status.RequestCount != 3 {
		t.Errorf("Expected 3 requests, got %d", status.RequestCount)
	}
	if status.LastRequest == nil || time.Since(*status.LastRequest) > time.Minute {
		t.Errorf("Expected recent last request, got %v", status.LastRequest)
	}
	if status.MemoryUsageMB == nil || *status.MemoryUsageMB != 12.5 {
		t.Errorf("Expected memory usage 12.5, got %v", status.MemoryUsageMB)
	}
	if len(status.Capabilities) != 5 {
		t.Errorf("Expected 5 base capabilities, got %d", len(status.Capabilities))
	}
	if status.Port != 5500 {
		t.Errorf("Expected port 5500, got %d", status.Port)
	}
}

func TestAgent_Status_MemoryUnavailable(t *testing.T) {
	a := New(testConfig(), EchoProcessor{}, newTestLogger())
	a.memoryUsage = func() (float64, error) { return 0, errors.New("no procfs") }

	if a.Status(context.Background()).MemoryUsageMB != nil {
		t.Error("Expected memory usage to be omitted")
	}
}

func TestAgent_AddCapability(t *testing.T) {
	a := New(testConfig(), EchoProcessor{}, newTestLogger())

	a.AddCapability(models.AgentCapability{Name: "chat", Version: "2.0.0", Enabled: true})
	a.AddCapability(models.AgentCapability{Name: "search", Version: "1.0.0", Enabled: true})

	caps := a.Capabilities()
	if len(caps) != 6 {
		t.Fatalf("Expected 6 capabilities, got %d", len(caps))
	}
	if caps[0].Name != "chat" || caps[0].Version != "2.0.0" {
		t.Errorf("Expected chat capability replaced in place, got %+v", caps[0])
	}
}

func TestEchoProcessor(t *testing.T) {
	p := EchoProcessor{Name: "Example Agent"}

	tests := []struct {
		name    string
		message string
		ctx     map[string]any
		opts    []MessageOption
		want    string
	}{
		{
			name:    "plain",
			message: "hi",
			want:    "Hello! I'm Example Agent. | You said: 'hi' | Message length: 2 characters",
		},
		{
			name:    "context and user",
			message: "héllo",
			ctx:     map[string]any{"b": 1, "a": 2},
			opts:    []MessageOption{WithUserID("u1")},
			want:    "Hello! I'm Example Agent. | You said: 'héllo' | Message length: 5 characters | Context keys: [a, b] | User ID: u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ProcessMessage(context.Background(), tt.message, tt.ctx, tt.opts...)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}
