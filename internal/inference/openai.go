package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds settings for OpenAI or any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"` // optional; points the client at a compatible API
}

// OpenAIInvoker implements Invoker with a single-message chat completion.
type OpenAIInvoker struct {
	client *openai.Client
	model  string
}

// NewOpenAIInvoker creates an OpenAI invoker.
func NewOpenAIInvoker(cfg OpenAIConfig) (*OpenAIInvoker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &OpenAIInvoker{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

func (p *OpenAIInvoker) InvokeModel(ctx context.Context, req *InvokeRequest) ([]byte, error) {
	body, err := decodeRequestBody(req)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelFor(req, p.model),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: body.Prompt},
		},
		MaxCompletionTokens: body.MaxGenLen,
		Temperature:         float32(body.Temperature),
		TopP:                float32(body.TopP),
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in OpenAI response")}
	}
	return encodeGeneration(resp.Choices[0].Message.Content)
}

func (p *OpenAIInvoker) ModelID() string {
	return p.model
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
