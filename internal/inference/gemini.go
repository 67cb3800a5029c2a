package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// GeminiInvoker implements Invoker using the Gemini GenerateContent API.
type GeminiInvoker struct {
	client *genai.Client
	model  string
}

// NewGeminiInvoker creates a Gemini invoker.
func NewGeminiInvoker(ctx context.Context, cfg GeminiConfig) (*GeminiInvoker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiInvoker{
		client: client,
		model:  cfg.Model,
	}, nil
}

func (p *GeminiInvoker) InvokeModel(ctx context.Context, req *InvokeRequest) ([]byte, error) {
	body, err := decodeRequestBody(req)
	if err != nil {
		return nil, err
	}
	temperature := float32(body.Temperature)
	topP := float32(body.TopP)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(body.MaxGenLen),
		Temperature:     &temperature,
		TopP:            &topP,
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: body.Prompt}}},
	}

	result, err := p.client.Models.GenerateContent(ctx, modelFor(req, p.model), contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return encodeGeneration(result.Text())
}

func (p *GeminiInvoker) ModelID() string {
	return p.model
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
