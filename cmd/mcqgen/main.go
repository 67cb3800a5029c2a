// Package main is the mcqgen CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/mcqgen/internal/cli"
	"github.com/hyperjump/mcqgen/internal/config"
	"github.com/hyperjump/mcqgen/internal/extract"
	"github.com/hyperjump/mcqgen/internal/filename"
	"github.com/hyperjump/mcqgen/internal/inference"
	"github.com/hyperjump/mcqgen/internal/models"
	"github.com/hyperjump/mcqgen/internal/pipeline"
	"github.com/hyperjump/mcqgen/internal/question"
	"github.com/hyperjump/mcqgen/internal/render"
	"github.com/hyperjump/mcqgen/internal/server"
	"github.com/hyperjump/mcqgen/internal/storage"
	"github.com/hyperjump/mcqgen/internal/watcher"
	"github.com/hyperjump/mcqgen/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/mcqgen/config.yaml"
	defaultServerURL  = "http://localhost:6001"
)

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if present; when neither exists the built-in defaults are
// used with directories relative to the current directory and an empty resolved path.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		cwd, cwdErr := os.Getwd()
		if cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) && cwdErr == nil {
			return config.Default(cwd), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "generate":
		runGenerate()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("mcqgen version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds the wired pipeline.
type Components struct {
	Dirs     *storage.Dirs
	Invoker  inference.Invoker
	Service  *pipeline.Service
	Provider string
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	dirs := storage.NewDirs(cfg.Storage.UploadDir, cfg.Storage.ResultDir)
	if err := dirs.EnsureDirs(); err != nil {
		return nil, err
	}

	invoker, err := inference.New(ctx, cfg.Inference, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inference: %w", err)
	}
	generator := question.NewGenerator(invoker,
		question.WithLogger(logger),
		question.WithTimeout(cfg.Inference.Timeout),
	)
	layout := render.DefaultLayout()
	layout.FontFamily = cfg.Render.FontFamily
	layout.FontSize = cfg.Render.FontSize
	layout.LineHeight = cfg.Render.LineHeight
	layout.BottomMargin = cfg.Render.BottomMargin
	renderer := render.NewRenderer(dirs.Results, layout)

	svc := pipeline.NewService(extract.NewExtractor(), generator, renderer, dirs, logger)
	logger.Info("pipeline initialized",
		zap.String("provider", cfg.Inference.Provider),
		zap.String("model", invoker.ModelID()),
		zap.String("upload_dir", dirs.Uploads),
		zap.String("result_dir", dirs.Results),
	)
	return &Components{Dirs: dirs, Invoker: invoker, Service: svc, Provider: cfg.Inference.Provider}, nil
}

// hotFolderIgnore skips rendered results and anything under the service's own
// directories so a watch root that contains them does not loop.
func hotFolderIgnore(dirs *storage.Dirs) func(path string) bool {
	own := []string{absClean(dirs.Uploads), absClean(dirs.Results)}
	return func(path string) bool {
		if strings.HasSuffix(path, filename.ResultSuffix) {
			return true
		}
		clean := absClean(path)
		for _, dir := range own {
			if clean == dir || strings.HasPrefix(clean, dir+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}
}

func absClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// newHotFolder builds a watcher that runs every settled document in the watch
// directories through svc with the configured hot-folder parameters.
func newHotFolder(ctx context.Context, cfg *config.Config, svc *pipeline.Service, logger *zap.Logger, debug bool) *watcher.Watcher {
	params := cfg.Watch.GenerationParams()
	opts := []watcher.Option{watcher.WithIgnore(hotFolderIgnore(svc.Dirs()))}
	if debug {
		opts = append(opts, watcher.WithLogger(logger))
	}
	return watcher.NewWatcher(
		cfg.Watch.Directories,
		models.AllowedExtensions(),
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if err := processFile(ctx, svc, path, params); err != nil {
				logger.Warn("hot folder file failed", zap.String("path", path), zap.Error(err))
				return
			}
			logger.Info("hot folder file processed", zap.String("path", path))
		},
		opts...,
	)
}

func processFile(ctx context.Context, svc *pipeline.Service, path string, params models.GenerationRequest) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = svc.Submit(ctx, filepath.Base(path), f, params)
	return err
}

func setupLogger(cfg *config.Config, debugFlag bool) (*zap.Logger, bool) {
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger, debugMode
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (prompts, hot folder events, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, debugMode := setupLogger(cfg, *debug)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}

	var watchSvc server.WatchService
	if len(cfg.Watch.Directories) > 0 {
		hot := newHotFolder(ctx, cfg, components.Service, logger, debugMode)
		if err := hot.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		go hot.SyncExistingFiles()
		watchSvc = hot
	}

	srv := server.NewServer(components.Service, &cfg.Server, logger, watchSvc, resolvedConfigPath, cfg)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	waitForSignal()
	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}

// argsReorder moves any flags (and their values) that appear after the positional
// arguments to the front so that flag.Parse() sees them. Go's flag package stops at
// the first non-flag argument, so "mcqgen generate notes.pdf -num-mcqs 3" would
// otherwise leave -num-mcqs unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runGenerate() {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (local mode)")
	serverURL := fs.String("server", "", "server URL; empty runs the pipeline locally")
	numMCQs := fs.Int("num-mcqs", models.DefaultQuestionCount, "number of questions")
	difficulty := fs.String("difficulty", models.DefaultDifficulty, "difficulty label passed to the model")
	numOptions := fs.Int("num-options", models.DefaultOptionCount, "answer options per question")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Println("Usage: mcqgen generate [flags] <file.pdf|file.docx|file.txt>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	params := models.GenerationRequest{
		QuestionCount: *numMCQs,
		Difficulty:    *difficulty,
		OptionCount:   *numOptions,
	}
	if err := params.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, ok := models.ParseFormat(path); !ok {
		fmt.Fprintf(os.Stderr, "%s: %s\n", pipeline.ErrInvalidFormat, path)
		os.Exit(1)
	}
	ctx := context.Background()

	if *serverURL != "" {
		client := cli.NewClient(*serverURL)
		result, err := client.Generate(ctx, path, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Generate failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteResult(os.Stdout, result, client.DownloadURL(result.PDFFilename), format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := setupLogger(cfg, *debug)
	defer logger.Sync()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	result, err := components.Service.Submit(ctx, filepath.Base(path), f, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generate failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteResult(os.Stdout, result, result.PDFPath, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runWatch() {
	if len(os.Args) < 3 {
		printWatchUsage()
		os.Exit(1)
	}
	sub := os.Args[2]
	if sub == "run" {
		runWatchStandalone()
		return
	}
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: mcqgen watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]interface{}{"path": path, "sync": true})
		resp, err := http.Post(*serverURL+"/api/v1/watch/directories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: mcqgen watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		resp, err := http.Get(*serverURL + "/api/v1/watch/directories")
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		printWatchUsage()
		os.Exit(1)
	}
}

// runWatchStandalone runs the hot folder without the HTTP server until interrupted.
func runWatchStandalone() {
	fs := flag.NewFlagSet("watch run", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[3:]))

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		cfg.Watch.Directories = nil
		for _, arg := range fs.Args() {
			abs, _ := filepath.Abs(arg)
			cfg.Watch.Directories = append(cfg.Watch.Directories, abs)
		}
	}
	if len(cfg.Watch.Directories) == 0 {
		fmt.Println("No directories to watch; pass them as arguments or set watch.directories")
		os.Exit(1)
	}
	logger, debugMode := setupLogger(cfg, *debug)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	hot := newHotFolder(ctx, cfg, components.Service, logger, debugMode)
	if err := hot.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	hot.SyncExistingFiles()
	logger.Info("watching", zap.Strings("directories", hot.Directories()))

	waitForSignal()
	logger.Info("Shutting down...")
	hot.Stop()
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = inspect local directories)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var status map[string]interface{}
	if *serverURL != "" {
		status, err = cli.NewClient(*serverURL).Status(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		status, err = localStatus(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatusText(os.Stdout, status)
}

// localStatus mirrors GET /api/v1/status without a running server.
func localStatus(cfg *config.Config) (map[string]interface{}, error) {
	dirs := storage.NewDirs(cfg.Storage.UploadDir, cfg.Storage.ResultDir)
	uploads, results, err := dirs.Usage()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"uploads":          map[string]interface{}{"path": dirs.Uploads, "files": uploads.Files, "bytes": uploads.Bytes},
		"results":          map[string]interface{}{"path": dirs.Results, "files": results.Files, "bytes": results.Bytes},
		"disk_usage_bytes": uploads.Bytes + results.Bytes,
		"config": map[string]interface{}{
			"inference_provider": cfg.Inference.Provider,
			"font_family":        cfg.Render.FontFamily,
			"max_upload_bytes":   cfg.Server.MaxUploadBytes,
		},
	}, nil
}

func writeStatusText(w io.Writer, status map[string]interface{}) {
	for _, key := range []string{"uploads", "results"} {
		section, ok := status[key].(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-9s %v   # %v file(s), %v bytes\n", key+":", section["path"], section["files"], section["bytes"])
	}
	if v, ok := status["disk_usage_bytes"]; ok {
		fmt.Fprintf(w, "disk_usage_bytes: %v\n", v)
	}
	if dirs, ok := status["watch_directories"].([]interface{}); ok {
		for _, d := range dirs {
			fmt.Fprintf(w, "watching: %v\n", d)
		}
	}
	if cfg, ok := status["config"].(map[string]interface{}); ok {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "inference_provider: %v\n", cfg["inference_provider"])
		fmt.Fprintf(w, "font_family:        %v\n", cfg["font_family"])
		fmt.Fprintf(w, "max_upload_bytes:   %v\n", cfg["max_upload_bytes"])
	}
}

func printWatchUsage() {
	fmt.Println("Usage: mcqgen watch <run|add|remove|list> [path]")
	fmt.Println("  mcqgen watch run [dir...]     Run the hot folder without the server")
	fmt.Println("  mcqgen watch add <path>       Add directory to a running server's hot folder")
	fmt.Println("  mcqgen watch remove <path>    Remove directory from a running server's hot folder")
	fmt.Println("  mcqgen watch list             List watched directories")
}

func printUsage() {
	fmt.Println(`mcqgen - Multiple-choice question generator

Usage:
  mcqgen server [flags]                  Start the HTTP server (and hot folder if configured)
  mcqgen generate [flags] <file>         Generate questions for a PDF, DOCX or TXT file
  mcqgen watch <run|add|remove|list>     Run or manage the hot folder
  mcqgen status [flags]                  Show upload/result directory usage
  mcqgen version                         Show version
  mcqgen help                            Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/mcqgen/config.yaml)
  --debug            Enable debug logging

Generate Flags:
  --config string       Config file path (local mode)
  --server string       Server URL; empty (default) runs the pipeline locally
  --num-mcqs int        Number of questions (default: 5)
  --difficulty string   Difficulty label (default: Medium)
  --num-options int     Answer options per question (default: 4)
  --output string       Output format: text or json (default: text)

Status Flags:
  --server string    Server URL (default: http://localhost:6001). Use --server "" for local directories.
  --output string    Output format: text or json (default: text)

Environment:
  MCQGEN_INFERENCE_PROVIDER   bedrock, openai, anthropic, gemini or mock
  MCQGEN_OPENAI_API_KEY       OpenAI API key
  MCQGEN_ANTHROPIC_API_KEY    Anthropic API key
  MCQGEN_GEMINI_API_KEY       Gemini API key

Examples:
  mcqgen server
  mcqgen generate notes.pdf
  mcqgen generate --num-mcqs 10 --difficulty Hard notes.docx
  mcqgen generate --output json --server http://localhost:6001 notes.txt
  mcqgen watch run ~/Documents/inbox
  mcqgen status --output json`)
}
