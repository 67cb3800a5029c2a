package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// AnthropicInvoker implements Invoker using the Messages API.
type AnthropicInvoker struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicInvoker creates an Anthropic invoker.
func NewAnthropicInvoker(cfg AnthropicConfig) (*AnthropicInvoker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicInvoker{
		client: &client,
		model:  cfg.Model,
	}, nil
}

// InvokeModel sends the prompt as a single user message. Only temperature is
// forwarded: current Claude models reject requests that set both temperature and top_p.
func (p *AnthropicInvoker) InvokeModel(ctx context.Context, req *InvokeRequest) ([]byte, error) {
	body, err := decodeRequestBody(req)
	if err != nil {
		return nil, err
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelFor(req, p.model)),
		MaxTokens: int64(body.MaxGenLen),
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(body.Prompt),
				},
			},
		},
	}
	if body.Temperature > 0 {
		params.Temperature = anthropic.Float(body.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapAnthropicError(err)
	}
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return encodeGeneration(text.String())
}

func (p *AnthropicInvoker) ModelID() string {
	return p.model
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
