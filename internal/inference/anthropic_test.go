package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicInvoker(t *testing.T, handler http.HandlerFunc) *AnthropicInvoker {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicInvoker{
		client: &client,
		model:  "claude-haiku-4-5-20251001",
	}
}

func TestAnthropicInvoker_HappyPath(t *testing.T) {
	var got map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Q1: What is 2+2?\n"},
				{"type": "text", "text": "A) 3\nB) 4\nAnswer: B"},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  50,
				"output_tokens": 30,
			},
		})
	}

	p := newTestAnthropicInvoker(t, handler)
	req, _ := NewInvokeRequest("", RequestBody{Prompt: "make questions", MaxGenLen: 1024, Temperature: 0.5, TopP: 0.9})
	out, err := p.InvokeModel(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body ResponseBody
	if err := json.Unmarshal(out, &body); err != nil {
		t.Fatal(err)
	}
	if body.Generation != "Q1: What is 2+2?\nA) 3\nB) 4\nAnswer: B" {
		t.Errorf("generation: got %q", body.Generation)
	}
	if got["max_tokens"] != float64(1024) {
		t.Errorf("max_tokens: got %v", got["max_tokens"])
	}
	if _, ok := got["top_p"]; ok {
		t.Error("top_p must not be sent alongside temperature")
	}
}

func TestAnthropicInvoker_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "rate_limit_error",
				"message": "Rate limit exceeded",
			},
		})
	}

	p := newTestAnthropicInvoker(t, handler)
	req, _ := NewInvokeRequest("", RequestBody{Prompt: "p", MaxGenLen: 100})
	_, err := p.InvokeModel(context.Background(), req)
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestAnthropicInvoker_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "api_error",
				"message": "Internal server error",
			},
		})
	}

	p := newTestAnthropicInvoker(t, handler)
	req, _ := NewInvokeRequest("", RequestBody{Prompt: "p", MaxGenLen: 100})
	_, err := p.InvokeModel(context.Background(), req)
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}
