package models

import "fmt"

// Defaults applied at the upload boundary when a form field is absent.
const (
	DefaultQuestionCount = 5
	DefaultDifficulty    = "Medium"
	DefaultOptionCount   = 4
)

// GenerationRequest carries the extracted text and the caller's generation parameters.
// Difficulty is free-form and not checked against a closed set.
type GenerationRequest struct {
	Text          string `json:"text"`
	QuestionCount int    `json:"num_mcqs"`
	Difficulty    string `json:"difficulty"`
	OptionCount   int    `json:"num_options"`
}

// Validate checks that the counts are positive.
func (r *GenerationRequest) Validate() error {
	if r.QuestionCount <= 0 {
		return fmt.Errorf("num_mcqs must be positive, got %d", r.QuestionCount)
	}
	if r.OptionCount <= 0 {
		return fmt.Errorf("num_options must be positive, got %d", r.OptionCount)
	}
	return nil
}

// QuestionLines is the ordered list of display lines produced from a model reply:
// question stems, option lines and answer lines, in the order the model emitted them.
type QuestionLines []string

// Result is what the pipeline hands back to the HTTP and CLI surfaces.
type Result struct {
	Lines       QuestionLines `json:"mcqs"`
	PDFFilename string        `json:"pdf_filename"`
	PDFPath     string        `json:"-"`
}
