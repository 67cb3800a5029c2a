package question

import (
	"strings"

	"github.com/hyperjump/mcqgen/internal/models"
	"github.com/tidwall/gjson"
)

// emphasisMarker opens a markdown bold run; lines starting with it are formatting noise.
const emphasisMarker = "**"

// ReduceResponse reads the "generation" field of a model response body and reduces it to display lines.
// A missing or non-string field, or a body that is not JSON, yields no lines.
func ReduceResponse(body []byte) models.QuestionLines {
	if !gjson.ValidBytes(body) {
		return models.QuestionLines{}
	}
	field := gjson.GetBytes(body, "generation")
	if field.Type != gjson.String {
		return models.QuestionLines{}
	}
	return ReduceGeneration(field.Str)
}

// ReduceGeneration splits text on newlines, trims each line, and drops lines that are
// empty or start with the emphasis marker. The order of surviving lines is preserved.
func ReduceGeneration(text string) models.QuestionLines {
	lines := models.QuestionLines{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, emphasisMarker) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
