// Package extract provides text extraction from uploaded PDF, DOCX and plain-text documents.
package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/hyperjump/mcqgen/internal/models"
)

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content, trimmed of outer whitespace.
// The format is taken from format, never from the path suffix.
// Unreadable-but-valid content (a scanned PDF, an empty DOCX) yields "" with no error;
// a malformed PDF or DOCX returns the underlying library error.
func (e *Extractor) Extract(path string, format models.SourceFormat) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, format)
}

// ExtractBytes extracts text from content according to format.
func (e *Extractor) ExtractBytes(content []byte, format models.SourceFormat) (string, error) {
	if len(content) == 0 {
		return "", nil
	}
	var (
		text string
		err  error
	)
	switch format {
	case models.FormatPDF:
		text, err = extractPDF(content)
	case models.FormatDOCX:
		text, err = extractDOCX(content)
	case models.FormatPlainText:
		text, err = extractPlain(content)
	default:
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
