package inference

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Provider names accepted in Config.Provider.
const (
	ProviderBedrock   = "bedrock"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Config selects and configures the inference backend.
type Config struct {
	// Provider is one of "bedrock", "openai", "anthropic", "gemini", "mock".
	Provider string `yaml:"provider"`

	// Timeout bounds a single invocation. Zero means no deadline.
	Timeout time.Duration `yaml:"timeout"`

	Bedrock   BedrockConfig   `yaml:"bedrock"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini"`

	// MockGeneration is served by the mock provider for every call.
	MockGeneration string `yaml:"mock_generation"`
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderBedrock:
		if c.Bedrock.ModelID == "" {
			return fmt.Errorf("inference.bedrock.model_id is required for the bedrock provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("MCQGEN_OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("MCQGEN_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("MCQGEN_GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderMock:
		// No credentials needed.
	default:
		return fmt.Errorf("unknown inference provider: %q", c.Provider)
	}
	return nil
}

// New creates the Invoker selected by cfg, wrapped with logging.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Invoker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		base Invoker
		err  error
	)
	switch cfg.Provider {
	case ProviderBedrock:
		base, err = NewBedrockInvoker(ctx, cfg.Bedrock)
	case ProviderOpenAI:
		base, err = NewOpenAIInvoker(cfg.OpenAI)
	case ProviderAnthropic:
		base, err = NewAnthropicInvoker(cfg.Anthropic)
	case ProviderGemini:
		base, err = NewGeminiInvoker(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewMockInvoker().WithFallback(MockResponse{Generation: cfg.MockGeneration})
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return WithLogging(base, logger), nil
}
