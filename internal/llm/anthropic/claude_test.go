package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/llm"
)

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient("", "claude-3-haiku-20240307"); err == nil {
		t.Error("Expected error for missing API key")
	}
	if _, err := NewClient("key", ""); err == nil {
		t.Error("Expected error for missing model")
	}
}

func TestInvokeModel_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected api key header, got %q", r.Header.Get("x-api-key"))
		}

		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.System != "be brief" {
			t.Errorf("Expected system prompt, got %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "Hello" {
			t.Errorf("Unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hi there"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", "claude-3-haiku-20240307", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	resp, err := client.InvokeModel(context.Background(), llm.LLMRequest{
		System:      "be brief",
		Prompt:      "Hello",
		MaxTokens:   100,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("InvokeModel failed: %v", err)
	}
	if resp.Content != "Hi there" {
		t.Errorf("Expected 'Hi there', got %q", resp.Content)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("Expected stop reason end_turn, got %q", resp.StopReason)
	}
}

func TestInvokeModel_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	client, _ := NewClient("bad", "claude-3-haiku-20240307", WithBaseURL(server.URL))

	_, err := client.InvokeModel(context.Background(), llm.LLMRequest{Prompt: "Hello", MaxTokens: 10})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Type != "authentication_error" {
		t.Errorf("Unexpected api error: %+v", apiErr)
	}
	if apiErr.Retryable() {
		t.Error("Expected 401 to be non-retryable")
	}
}

func TestInvokeModelWithRetry_RetriesOverloaded(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(529)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"OK"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	client, _ := NewClient("key", "claude-3-haiku-20240307",
		WithBaseURL(server.URL),
		WithRetryPolicy(llm.RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}),
	)

	resp, err := client.InvokeModelWithRetry(context.Background(), llm.LLMRequest{Prompt: "ping", MaxTokens: 5})
	if err != nil {
		t.Fatalf("Expected success after retry, got %v", err)
	}
	if resp.Content != "OK" {
		t.Errorf("Expected 'OK', got %q", resp.Content)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 calls, got %d", calls.Load())
	}
}
