package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/mcqgen/internal/extract"
	"github.com/hyperjump/mcqgen/internal/inference"
	"github.com/hyperjump/mcqgen/internal/models"
	"github.com/hyperjump/mcqgen/internal/question"
	"github.com/hyperjump/mcqgen/internal/render"
	"github.com/hyperjump/mcqgen/internal/storage"
)

const skyGeneration = "Q1: What color is the sky?\n" +
	"A) Red\nB) Blue\nC) Green\nD) Yellow\n" +
	"Answer: B\n\n" +
	"**Note: generated**\n"

func newTestService(t *testing.T, mock *inference.MockInvoker) *Service {
	t.Helper()
	root := t.TempDir()
	dirs := storage.NewDirs(filepath.Join(root, "uploads"), filepath.Join(root, "results"))
	if err := dirs.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return NewService(
		extract.NewExtractor(),
		question.NewGenerator(mock),
		render.NewRenderer(dirs.Results, render.DefaultLayout()),
		dirs,
		nil,
	)
}

func defaultParams() models.GenerationRequest {
	return models.GenerationRequest{
		QuestionCount: models.DefaultQuestionCount,
		Difficulty:    models.DefaultDifficulty,
		OptionCount:   models.DefaultOptionCount,
	}
}

func TestSubmit_plainText(t *testing.T) {
	mock := inference.NewMockInvoker(inference.MockResponse{Generation: skyGeneration})
	svc := newTestService(t, mock)

	res, err := svc.Submit(context.Background(), "sky.txt", strings.NewReader("The sky is blue."), defaultParams())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := []string{"Q1: What color is the sky?", "A) Red", "B) Blue", "C) Green", "D) Yellow", "Answer: B"}
	if !reflect.DeepEqual([]string(res.Lines), want) {
		t.Errorf("lines: got %q", res.Lines)
	}
	if res.PDFFilename != "sky.txt_mcqs.pdf" {
		t.Errorf("pdf filename: got %q", res.PDFFilename)
	}
	if res.PDFPath != filepath.Join(svc.Dirs().Results, "sky.txt_mcqs.pdf") {
		t.Errorf("pdf path: got %q", res.PDFPath)
	}
	data, err := os.ReadFile(res.PDFPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Error("result is not a PDF")
	}
	if _, err := os.Stat(filepath.Join(svc.Dirs().Uploads, "sky.txt")); err != nil {
		t.Errorf("upload not stored: %v", err)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("calls: got %d", mock.CallCount())
	}
	body := string(mock.Calls[0].Body)
	for _, s := range []string{"Generate 5 multiple-choice", "at Medium difficulty", "with 4 answer options", "The sky is blue."} {
		if !strings.Contains(body, s) {
			t.Errorf("prompt missing %q", s)
		}
	}
}

func TestSubmit_sanitizesName(t *testing.T) {
	mock := inference.NewMockInvoker(inference.MockResponse{Generation: "Q1: x"})
	svc := newTestService(t, mock)

	res, err := svc.Submit(context.Background(), "../my notes.TXT", strings.NewReader("text"), defaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if res.PDFFilename != "my_notes.TXT_mcqs.pdf" {
		t.Errorf("got %q", res.PDFFilename)
	}
}

func TestSubmit_rejectsFormatBeforeInference(t *testing.T) {
	mock := inference.NewMockInvoker().WithFallback(inference.MockResponse{Generation: "Q1: x"})
	svc := newTestService(t, mock)

	for _, name := range []string{"data.csv", "noext", "archive.pdf.zip", ""} {
		_, err := svc.Submit(context.Background(), name, strings.NewReader("a,b"), defaultParams())
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("%q: got %v, want ErrInvalidFormat", name, err)
		}
	}
	if mock.CallCount() != 0 {
		t.Errorf("inference called %d times", mock.CallCount())
	}
	entries, _ := os.ReadDir(svc.Dirs().Uploads)
	if len(entries) != 0 {
		t.Errorf("rejected uploads were stored: %d", len(entries))
	}
}

func TestProcess_inferenceFailure(t *testing.T) {
	mock := inference.NewMockInvoker(inference.MockResponse{Err: &inference.ErrRateLimit{Err: errors.New("throttled")}})
	svc := newTestService(t, mock)

	_, err := svc.Submit(context.Background(), "sky.txt", strings.NewReader("The sky is blue."), defaultParams())
	if !errors.Is(err, ErrInference) {
		t.Fatalf("got %v, want ErrInference", err)
	}
	var rl *inference.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Errorf("underlying error lost: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(svc.Dirs().Results, "sky.txt_mcqs.pdf")); !os.IsNotExist(statErr) {
		t.Error("result written despite inference failure")
	}
}

func TestProcess_extractionFailure(t *testing.T) {
	mock := inference.NewMockInvoker().WithFallback(inference.MockResponse{Generation: "Q1: x"})
	svc := newTestService(t, mock)

	_, err := svc.Submit(context.Background(), "broken.docx", strings.NewReader("not a zip archive"), defaultParams())
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("got %v, want ErrExtraction", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("inference called after extraction failure")
	}
}

func TestProcess_emptyGenerationRendersBlankDocument(t *testing.T) {
	mock := inference.NewMockInvoker(inference.MockResponse{Raw: []byte(`{"stop_reason":"length"}`)})
	svc := newTestService(t, mock)

	res, err := svc.Submit(context.Background(), "empty.txt", strings.NewReader(""), defaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if res.Lines == nil || len(res.Lines) != 0 {
		t.Errorf("want empty non-nil lines, got %#v", res.Lines)
	}
	if _, err := os.Stat(res.PDFPath); err != nil {
		t.Errorf("blank pdf not written: %v", err)
	}
}

func TestProcess_missingFile(t *testing.T) {
	mock := inference.NewMockInvoker()
	svc := newTestService(t, mock)
	doc := models.SourceDocument{Path: filepath.Join(t.TempDir(), "gone.txt"), Name: "gone.txt", Format: models.FormatPlainText}
	if _, err := svc.Process(context.Background(), doc, defaultParams()); !errors.Is(err, ErrExtraction) {
		t.Errorf("got %v, want ErrExtraction", err)
	}
}
