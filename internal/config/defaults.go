package config

import (
	"github.com/hyperjump/mcqgen/internal/inference"
	"github.com/hyperjump/mcqgen/internal/models"
)

// DefaultMaxUploadBytes caps request bodies at 32 MiB.
const DefaultMaxUploadBytes = 32 << 20

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 6001
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = "./uploads"
	}
	if cfg.Storage.ResultDir == "" {
		cfg.Storage.ResultDir = "./results"
	}
	if cfg.Render.FontFamily == "" {
		cfg.Render.FontFamily = "Courier"
	}
	if cfg.Render.FontSize == 0 {
		cfg.Render.FontSize = 12
	}
	if cfg.Render.LineHeight == 0 {
		cfg.Render.LineHeight = 10
	}
	if cfg.Render.BottomMargin == 0 {
		cfg.Render.BottomMargin = 15
	}

	inf := &cfg.Inference
	if inf.Provider == "" {
		inf.Provider = inference.ProviderBedrock
	}
	if inf.Bedrock.Region == "" {
		inf.Bedrock.Region = "ap-south-1"
	}
	if inf.Bedrock.ModelID == "" {
		inf.Bedrock.ModelID = "meta.llama3-8b-instruct-v1:0"
	}
	if inf.OpenAI.Model == "" {
		inf.OpenAI.Model = "gpt-4o-mini"
	}
	if inf.Anthropic.Model == "" {
		inf.Anthropic.Model = "claude-3-5-haiku-latest"
	}
	if inf.Gemini.Model == "" {
		inf.Gemini.Model = "gemini-2.0-flash"
	}

	if cfg.Watch.QuestionCount == 0 {
		cfg.Watch.QuestionCount = models.DefaultQuestionCount
	}
	if cfg.Watch.Difficulty == "" {
		cfg.Watch.Difficulty = models.DefaultDifficulty
	}
	if cfg.Watch.OptionCount == 0 {
		cfg.Watch.OptionCount = models.DefaultOptionCount
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
