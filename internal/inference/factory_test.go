package inference

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"bedrock with model", Config{Provider: ProviderBedrock, Bedrock: BedrockConfig{ModelID: "meta.llama3-8b-instruct-v1:0"}}, false},
		{"bedrock without model", Config{Provider: ProviderBedrock}, true},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "k"}}, false},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"mock", Config{Provider: ProviderMock}, false},
		{"unknown", Config{Provider: "sagemaker"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Mock(t *testing.T) {
	inv, err := New(context.Background(), Config{Provider: ProviderMock, MockGeneration: "Q1: canned"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if inv.ModelID() != "mock" {
		t.Errorf("ModelID: got %q", inv.ModelID())
	}
	for i := 0; i < 2; i++ {
		out, err := inv.InvokeModel(context.Background(), &InvokeRequest{Body: []byte(`{}`)})
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		var body ResponseBody
		if err := json.Unmarshal(out, &body); err != nil {
			t.Fatal(err)
		}
		if body.Generation != "Q1: canned" {
			t.Errorf("call %d: got %q", i, body.Generation)
		}
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Config{Provider: "nope"}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestMockInvoker_QueueThenUnavailable(t *testing.T) {
	m := NewMockInvoker(MockResponse{Generation: "one"}, MockResponse{Raw: []byte(`not json`)})
	if _, err := m.InvokeModel(context.Background(), &InvokeRequest{}); err != nil {
		t.Fatal(err)
	}
	raw, err := m.InvokeModel(context.Background(), &InvokeRequest{})
	if err != nil || string(raw) != "not json" {
		t.Fatalf("raw response: %q, %v", raw, err)
	}
	_, err = m.InvokeModel(context.Background(), &InvokeRequest{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if m.CallCount() != 3 {
		t.Errorf("CallCount: got %d", m.CallCount())
	}
}
