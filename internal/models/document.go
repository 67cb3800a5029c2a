// Package models defines core data structures for uploaded documents, generation requests, and results.
package models

import (
	"path/filepath"
	"strings"
)

// SourceFormat is the closed set of document formats the pipeline understands.
// It is resolved once at the upload boundary and passed through as data.
type SourceFormat int

const (
	// FormatUnknown is the zero value; the boundary never hands it to the pipeline.
	FormatUnknown SourceFormat = iota
	// FormatPDF is a PDF document.
	FormatPDF
	// FormatDOCX is an Office Open XML word-processing document.
	FormatDOCX
	// FormatPlainText is UTF-8 text.
	FormatPlainText
)

// String returns the format tag used in logs and JSON.
func (f SourceFormat) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatPlainText:
		return "plain-text"
	default:
		return "unknown"
	}
}

// formatsByExt maps lower-case extensions (without dot) to formats.
var formatsByExt = map[string]SourceFormat{
	"pdf":  FormatPDF,
	"docx": FormatDOCX,
	"txt":  FormatPlainText,
}

// ParseFormat resolves the format of filename from its suffix, case-insensitively.
// Returns FormatUnknown and false when the extension is not accepted.
func ParseFormat(filename string) (SourceFormat, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	f, ok := formatsByExt[ext]
	if !ok {
		return FormatUnknown, false
	}
	return f, true
}

// AllowedExtensions returns the accepted extensions without the leading dot.
func AllowedExtensions() []string {
	return []string{"pdf", "txt", "docx"}
}

// SourceDocument is an uploaded file stored on disk. It is read once by the extractor.
type SourceDocument struct {
	Path   string       `json:"path"`
	Name   string       `json:"name"` // stored (sanitized) filename
	Format SourceFormat `json:"format"`
}
