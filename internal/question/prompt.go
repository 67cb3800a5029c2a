package question

import (
	"fmt"

	"github.com/hyperjump/mcqgen/internal/models"
)

// formatInstructions is appended to every prompt and fixes the output shape.
const formatInstructions = "Provide only structured MCQs in this format:\n" +
	"Q1: [Question text]\nA) Option 1\nB) Option 2\nC) Option 3\nD) Option 4\nAnswer: [Correct Option]"

// Decoding parameters sent with every invocation.
const (
	maxGenLen   = 1024
	temperature = 0.5
	topP        = 0.9
)

// BuildPrompt renders the generation prompt for req. The output is fully determined by req.
func BuildPrompt(req models.GenerationRequest) string {
	return fmt.Sprintf(
		"Generate %d multiple-choice questions at %s difficulty level with %d answer options from the following text:\n\n%s\n\n",
		req.QuestionCount, req.Difficulty, req.OptionCount, req.Text,
	) + formatInstructions
}
