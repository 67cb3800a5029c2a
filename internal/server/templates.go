package server

import (
	"embed"
	"html/template"
	"strings"

	"github.com/hyperjump/mcqgen/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type indexPage struct {
	Accept        string
	QuestionCount int
	Difficulty    string
	Difficulties  []string
	OptionCount   int
}

func newIndexPage() indexPage {
	exts := models.AllowedExtensions()
	for i, e := range exts {
		exts[i] = "." + e
	}
	return indexPage{
		Accept:        strings.Join(exts, ","),
		QuestionCount: models.DefaultQuestionCount,
		Difficulty:    models.DefaultDifficulty,
		Difficulties:  []string{"Easy", "Medium", "Hard"},
		OptionCount:   models.DefaultOptionCount,
	}
}
