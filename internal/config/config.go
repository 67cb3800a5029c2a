// Package config provides configuration loading and structs for the mcqgen server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/mcqgen/internal/inference"
	"github.com/hyperjump/mcqgen/internal/models"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool             `yaml:"debug"`
	Server    ServerConfig     `yaml:"server"`
	Storage   StorageConfig    `yaml:"storage"`
	Render    RenderConfig     `yaml:"render"`
	Inference inference.Config `yaml:"inference"`
	Watch     WatchConfig      `yaml:"watch"`
}

// WatchConfig holds hot-folder settings. The generation fields apply to every
// file picked up from the watched directories.
type WatchConfig struct {
	Directories   []string `yaml:"directories"`
	Recursive     *bool    `yaml:"recursive"`
	QuestionCount int      `yaml:"num_mcqs"`
	Difficulty    string   `yaml:"difficulty"`
	OptionCount   int      `yaml:"num_options"`
}

// GenerationParams returns the request parameters used for hot-folder files.
func (w *WatchConfig) GenerationParams() models.GenerationRequest {
	return models.GenerationRequest{
		QuestionCount: w.QuestionCount,
		Difficulty:    w.Difficulty,
		OptionCount:   w.OptionCount,
	}
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// StorageConfig holds the upload and result directories.
type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
	ResultDir string `yaml:"result_dir"`
}

// RenderConfig holds result document typography.
type RenderConfig struct {
	FontFamily   string  `yaml:"font_family"`
	FontSize     float64 `yaml:"font_size"`
	LineHeight   float64 `yaml:"line_height"`
	BottomMargin float64 `yaml:"bottom_margin"`
}

// Env vars that override secrets and the provider choice.
const (
	EnvOpenAIKey    = "MCQGEN_OPENAI_API_KEY"
	EnvAnthropicKey = "MCQGEN_ANTHROPIC_API_KEY"
	EnvGeminiKey    = "MCQGEN_GEMINI_API_KEY"
	EnvProvider     = "MCQGEN_INFERENCE_PROVIDER"
)

// Load reads and parses the config file at path, applies env overrides and defaults,
// and expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	cfg.expandPaths(filepath.Dir(path))

	return &cfg, nil
}

// Default returns a config with every default applied and env overrides read.
// Relative directories resolve against baseDir.
func Default(baseDir string) *Config {
	cfg := &Config{}
	ApplyEnv(cfg)
	ApplyDefaults(cfg)
	cfg.expandPaths(baseDir)
	return cfg
}

// ApplyEnv copies MCQGEN_* environment variables over the file values.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		cfg.Inference.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvAnthropicKey); v != "" {
		cfg.Inference.Anthropic.APIKey = v
	}
	if v := os.Getenv(EnvGeminiKey); v != "" {
		cfg.Inference.Gemini.APIKey = v
	}
	if v := os.Getenv(EnvProvider); v != "" {
		cfg.Inference.Provider = strings.ToLower(v)
	}
}

// Save writes the config to path. Secrets are written as-is.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SaveWatchDirectories rewrites only watch.directories in the file at path.
// Everything else is kept as the file has it, so env overrides, defaults and
// expanded paths never leak into it. A missing file is created.
func SaveWatchDirectories(path string, dirs []string) error {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to read config: %w", err)
	}
	cfg.Watch.Directories = append([]string(nil), dirs...)
	return Save(path, &cfg)
}

func (c *Config) expandPaths(baseDir string) {
	c.Storage.UploadDir = expandPath(c.Storage.UploadDir, baseDir)
	c.Storage.ResultDir = expandPath(c.Storage.ResultDir, baseDir)
	for i := range c.Watch.Directories {
		c.Watch.Directories[i] = expandPath(c.Watch.Directories[i], baseDir)
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return absPath(filepath.Join(configDir, path))
	}
	if home, err := os.UserHomeDir(); err == nil {
		return absPath(filepath.Join(home, path))
	}
	return absPath(path)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
