// Package pipeline runs one upload through extraction, generation and rendering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/mcqgen/internal/extract"
	"github.com/hyperjump/mcqgen/internal/filename"
	"github.com/hyperjump/mcqgen/internal/models"
	"github.com/hyperjump/mcqgen/internal/question"
	"github.com/hyperjump/mcqgen/internal/render"
	"github.com/hyperjump/mcqgen/internal/storage"
	"go.uber.org/zap"
)

var (
	// ErrInvalidFormat is returned when the upload's extension is not pdf, docx or txt.
	ErrInvalidFormat = errors.New("invalid file format")
	// ErrExtraction wraps failures reading text out of the source document.
	ErrExtraction = errors.New("text extraction failed")
	// ErrInference wraps failures of the model invocation.
	ErrInference = errors.New("inference failed")
	// ErrRender wraps failures writing the result document.
	ErrRender = errors.New("render failed")
)

// Service wires the three stages together. It holds no per-request state.
type Service struct {
	extractor *extract.Extractor
	generator *question.Generator
	renderer  *render.Renderer
	dirs      *storage.Dirs
	logger    *zap.Logger
}

// NewService creates a Service.
func NewService(
	extractor *extract.Extractor,
	generator *question.Generator,
	renderer *render.Renderer,
	dirs *storage.Dirs,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		generator: generator,
		renderer:  renderer,
		dirs:      dirs,
		logger:    logger,
	}
}

// Dirs returns the storage directories the service writes into.
func (s *Service) Dirs() *storage.Dirs {
	return s.dirs
}

// Submit validates an upload by its original name, stores it under a sanitized
// name and processes it. Nothing is stored or invoked for a rejected format.
func (s *Service) Submit(ctx context.Context, originalName string, r io.Reader, params models.GenerationRequest) (*models.Result, error) {
	format, ok := models.ParseFormat(originalName)
	if !ok {
		return nil, ErrInvalidFormat
	}
	stored := filename.Secure(originalName)
	if stored == "" {
		return nil, ErrInvalidFormat
	}
	path, err := s.dirs.SaveUpload(stored, r)
	if err != nil {
		return nil, err
	}
	return s.Process(ctx, models.SourceDocument{Path: path, Name: stored, Format: format}, params)
}

// Process extracts text from doc, generates question lines for it and renders
// them to <results>/<doc.Name>_mcqs.pdf. params.Text is replaced by the extracted text.
func (s *Service) Process(ctx context.Context, doc models.SourceDocument, params models.GenerationRequest) (*models.Result, error) {
	runID := uuid.NewString()
	log := s.logger.With(
		zap.String("run_id", runID),
		zap.String("document", doc.Name),
		zap.Stringer("format", doc.Format),
	)
	start := time.Now()

	text, err := s.extractor.Extract(doc.Path, doc.Format)
	if err != nil {
		log.Error("extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	log.Debug("text extracted", zap.Int("chars", len(text)))

	params.Text = text
	lines, err := s.generator.Generate(ctx, params)
	if err != nil {
		log.Error("inference failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}

	pdfName := filename.ResultName(doc.Name)
	pdfPath, err := s.renderer.Render(lines, pdfName)
	if err != nil {
		log.Error("render failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	log.Info("document processed",
		zap.Int("lines", len(lines)),
		zap.String("pdf", pdfName),
		zap.Duration("elapsed", time.Since(start)),
	)
	if lines == nil {
		lines = models.QuestionLines{}
	}
	return &models.Result{Lines: lines, PDFFilename: pdfName, PDFPath: pdfPath}, nil
}
