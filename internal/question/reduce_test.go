package question

import (
	"reflect"
	"testing"
)

func TestReduceGeneration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "drops bold header and blank line",
			input: "**Header**\nQ1: What is 2+2?\nA) 3\nB) 4\n\nAnswer: B",
			want:  []string{"Q1: What is 2+2?", "A) 3", "B) 4", "Answer: B"},
		},
		{
			name:  "trims surrounding whitespace",
			input: "  Q1: Trim me  \n\tA) yes\r\nAnswer: A  ",
			want:  []string{"Q1: Trim me", "A) yes", "Answer: A"},
		},
		{
			name:  "bold marker after indentation is still dropped",
			input: "   **Question 1**\nQ1: Kept",
			want:  []string{"Q1: Kept"},
		},
		{
			name:  "inline bold is kept",
			input: "Q1: Which is **bold**?",
			want:  []string{"Q1: Which is **bold**?"},
		},
		{
			name:  "single asterisk is kept",
			input: "* bullet",
			want:  []string{"* bullet"},
		},
		{
			name:  "markers anywhere",
			input: "Q1: a\n**x\nA) b\n**\nAnswer: A\n**end**",
			want:  []string{"Q1: a", "A) b", "Answer: A"},
		},
		{
			name:  "empty",
			input: "",
			want:  []string{},
		},
		{
			name:  "only noise",
			input: "\n  \n**Here are your questions:**\n\n",
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReduceGeneration(tt.input)
			if !reflect.DeepEqual([]string(got), tt.want) {
				t.Errorf("ReduceGeneration(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestReduceGeneration_idempotentOnCleanInput(t *testing.T) {
	clean := "Q1: What color is the sky?\nA) Red\nB) Blue\nC) Green\nAnswer: B"
	first := ReduceGeneration(clean)
	second := ReduceGeneration(joinLines(first))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("not idempotent: %q vs %q", first, second)
	}
	if len(first) != 5 {
		t.Errorf("got %d lines, want 5", len(first))
	}
}

func TestReduceResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"generation field", `{"generation":"Q1: x\nAnswer: A","prompt_token_count":10}`, []string{"Q1: x", "Answer: A"}},
		{"missing field", `{"stop_reason":"stop"}`, []string{}},
		{"null field", `{"generation":null}`, []string{}},
		{"non-string field", `{"generation":42}`, []string{}},
		{"not json", `<html>oops</html>`, []string{}},
		{"empty body", ``, []string{}},
		{"utf-8 text", `{"generation":"Q1: café?"}`, []string{"Q1: café?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReduceResponse([]byte(tt.body))
			if !reflect.DeepEqual([]string(got), tt.want) {
				t.Errorf("ReduceResponse(%s) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
