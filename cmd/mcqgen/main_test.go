package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/mcqgen/internal/config"
	"github.com/hyperjump/mcqgen/internal/inference"
	"github.com/hyperjump/mcqgen/internal/storage"
	"go.uber.org/zap"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after file are moved first",
			args:     []string{"notes.pdf", "-num-mcqs", "3"},
			expected: []string{"-num-mcqs", "3", "notes.pdf"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-num-mcqs", "3", "notes.pdf"},
			expected: []string{"-num-mcqs", "3", "notes.pdf"},
		},
		{
			name:     "file only returns unchanged",
			args:     []string{"notes.pdf"},
			expected: []string{"notes.pdf"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("debug: true\nserver:\n  port: 7000\n"), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug || cfg.Server.Port != 7000 {
		t.Errorf("cwd config not used: %+v", cfg)
	}
}

func TestLoadConfig_defaultsWithoutAnyFile(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("system config present")
	}
	dir := t.TempDir()
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Server.Port != 6001 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if filepath.Base(cfg.Storage.UploadDir) != "uploads" || filepath.Base(cfg.Storage.ResultDir) != "results" {
		t.Errorf("dirs: %+v", cfg.Storage)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadConfig_explicitMissingPathFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestHotFolderIgnore(t *testing.T) {
	dirs := storage.NewDirs("/srv/mcqgen/uploads", "/srv/mcqgen/results")
	ignore := hotFolderIgnore(dirs)
	tests := []struct {
		path string
		want bool
	}{
		{"/home/me/inbox/notes.pdf", false},
		{"/home/me/inbox/notes.txt_mcqs.pdf", true},
		{"/srv/mcqgen/uploads/notes.txt", true},
		{"/srv/mcqgen/results/other.pdf", true},
		{"/srv/mcqgen/uploads-old/notes.txt", false},
	}
	for _, tt := range tests {
		if got := ignore(tt.path); got != tt.want {
			t.Errorf("ignore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestHotFolderIgnore_relativeDirs(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	ignore := hotFolderIgnore(storage.NewDirs("uploads", "./results"))
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(wd, "uploads", "notes.txt"), true},
		{filepath.Join(wd, "results", "notes.pdf"), true},
		{filepath.Join("uploads", "notes.txt"), true},
		{filepath.Join(wd, "inbox", "notes.txt"), false},
	}
	for _, tt := range tests {
		if got := ignore(tt.path); got != tt.want {
			t.Errorf("ignore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv(config.EnvProvider, "")
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Inference.Provider = inference.ProviderMock
	cfg.Inference.MockGeneration = "Q1: What color is the sky?\nA) Red\nB) Blue\nAnswer: B"
	cfg.Storage.UploadDir = filepath.Join(dir, "uploads")
	cfg.Storage.ResultDir = filepath.Join(dir, "results")
	config.ApplyDefaults(cfg)
	return cfg
}

func TestInitializeComponents_processFile(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if components.Invoker.ModelID() != "mock" {
		t.Errorf("model: %s", components.Invoker.ModelID())
	}

	src := filepath.Join(t.TempDir(), "sky.txt")
	if err := os.WriteFile(src, []byte("The sky is blue."), 0600); err != nil {
		t.Fatal(err)
	}
	if err := processFile(ctx, components.Service, src, cfg.Watch.GenerationParams()); err != nil {
		t.Fatalf("processFile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Storage.ResultDir, "sky.txt_mcqs.pdf")); err != nil {
		t.Errorf("result missing: %v", err)
	}

	status, err := localStatus(cfg)
	if err != nil {
		t.Fatal(err)
	}
	results := status["results"].(map[string]interface{})
	if results["files"].(int64) != 1 {
		t.Errorf("results files: %v", results["files"])
	}
	var buf bytes.Buffer
	writeStatusText(&buf, status)
	for _, s := range []string{"uploads:", "results:", "inference_provider: mock"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("status text missing %q:\n%s", s, buf.String())
		}
	}
}

func TestInitializeComponents_unknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inference.Provider = "llamafile"
	if _, err := initializeComponents(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Error("expected error for unknown provider")
	}
}
