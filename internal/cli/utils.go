// Package cli provides output and HTTP client helpers for the mcqgen command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/mcqgen/internal/models"
)

// OutputFormat is the format for generation output.
type OutputFormat string

const (
	// OutputText prints the question lines followed by the result path (default).
	OutputText OutputFormat = "text"
	// OutputJSON prints {"mcqs": [...], "pdf_filename": "..."} for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json".
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteResult writes a generation result to w in the given format.
// location is where the PDF can be fetched: a local path or a download URL.
func WriteResult(w io.Writer, result *models.Result, location string, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeResultText(w, result, location)
		return nil
	}
}

func writeResultText(w io.Writer, result *models.Result, location string) {
	if len(result.Lines) == 0 {
		fmt.Fprintln(w, "The model returned no questions.")
	}
	for _, line := range result.Lines {
		if isQuestionStem(line) {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%d line(s) written to %s\n", len(result.Lines), location)
}

// isQuestionStem reports whether line starts a new question ("Q1:", "Q12.").
func isQuestionStem(line string) bool {
	if len(line) < 2 || (line[0] != 'Q' && line[0] != 'q') {
		return false
	}
	i := 1
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return i > 1 && i < len(line) && (line[i] == ':' || line[i] == '.' || line[i] == ')')
}
