// Package question turns extracted text into multiple-choice question lines via the inference boundary.
package question

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/mcqgen/internal/inference"
	"github.com/hyperjump/mcqgen/internal/models"
	"github.com/hyperjump/mcqgen/pkg/utils"
	"go.uber.org/zap"
)

// Generator builds prompts, invokes the model once per request, and reduces the reply.
type Generator struct {
	invoker inference.Invoker
	timeout time.Duration
	logger  *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger used for per-request generation logs.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTimeout bounds each invocation. Zero leaves the caller's context untouched.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.timeout = d }
}

// NewGenerator returns a Generator that calls invoker.
func NewGenerator(invoker inference.Invoker, opts ...GeneratorOption) *Generator {
	g := &Generator{
		invoker: invoker,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends one prompt for req and returns the reduced lines.
// No retry is attempted; an invocation error is returned as-is, wrapped.
// The number of returned questions is not checked against req.QuestionCount.
func (g *Generator) Generate(ctx context.Context, req models.GenerationRequest) (models.QuestionLines, error) {
	prompt := BuildPrompt(req)
	invokeReq, err := inference.NewInvokeRequest(g.invoker.ModelID(), inference.RequestBody{
		Prompt:      prompt,
		MaxGenLen:   maxGenLen,
		Temperature: temperature,
		TopP:        topP,
	})
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.logger.Debug("generating questions",
		zap.Int("num_mcqs", req.QuestionCount),
		zap.String("difficulty", req.Difficulty),
		zap.Int("num_options", req.OptionCount),
		zap.Int("text_len", len(req.Text)),
		zap.String("prompt_head", utils.Truncate(prompt, 120)),
	)
	start := time.Now()
	body, err := g.invoker.InvokeModel(ctx, invokeReq)
	if err != nil {
		return nil, fmt.Errorf("invoke model %s: %w", g.invoker.ModelID(), err)
	}
	lines := ReduceResponse(body)
	g.logger.Info("questions generated",
		zap.String("model", g.invoker.ModelID()),
		zap.Int("lines", len(lines)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return lines, nil
}
