// Package render writes question lines into a paginated PDF document.
package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// Layout holds the fixed page geometry and typography.
type Layout struct {
	FontFamily   string  // core font: Courier, Helvetica (Arial) or Times
	FontSize     float64 // points
	LineHeight   float64 // mm, height of one wrapped row
	BottomMargin float64 // mm, auto page break trigger
	Compress     bool    // flate-compress page streams
}

// DefaultLayout matches the service defaults: Courier 12pt, 10mm rows, 15mm bottom margin.
func DefaultLayout() Layout {
	return Layout{
		FontFamily:   "Courier",
		FontSize:     12,
		LineHeight:   10,
		BottomMargin: 15,
		Compress:     true,
	}
}

// Renderer writes documents into a results directory.
type Renderer struct {
	dir    string
	layout Layout
}

// NewRenderer returns a Renderer that writes into dir using layout.
func NewRenderer(dir string, layout Layout) *Renderer {
	return &Renderer{dir: dir, layout: layout}
}

// Render writes lines, one wrapped cell per line and in order, to dir/outputName and
// returns the path. An existing file of the same name is replaced.
func (r *Renderer) Render(lines []string, outputName string) (string, error) {
	if outputName == "" || outputName != filepath.Base(outputName) {
		return "", fmt.Errorf("invalid output name %q", outputName)
	}
	doc := r.newDocument()
	for _, line := range lines {
		doc.MultiCell(0, r.layout.LineHeight, toCodePage(line), "", "L", false)
	}
	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("layout pdf: %w", err)
	}

	path := filepath.Join(r.dir, outputName)
	if err := doc.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf %s: %w", path, err)
	}
	return path, nil
}

func (r *Renderer) newDocument() *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(r.layout.Compress)
	doc.SetAutoPageBreak(true, r.layout.BottomMargin)
	doc.AddPage()
	doc.SetFont(r.layout.FontFamily, "", r.layout.FontSize)
	return doc
}

// toCodePage converts s to the Windows-1252 bytes the core fonts expect.
// Runes outside the code page become '?'.
func toCodePage(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
