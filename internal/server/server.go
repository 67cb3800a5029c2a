// Package server provides the HTTP surface for mcqgen: the upload form, the JSON API
// and result downloads.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/mcqgen/internal/config"
	"github.com/hyperjump/mcqgen/internal/pipeline"
	"go.uber.org/zap"
)

// WatchService is the hot-folder control surface exposed over HTTP.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server.
type Server struct {
	service *pipeline.Service
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server

	watch       WatchService // nil when the hot folder is disabled
	configPath  string       // when set with appConfig, watch changes are persisted
	appConfig   *config.Config
	appConfigMu sync.Mutex
}

// NewServer creates a server with the given dependencies. watch, configPath and
// appConfig are optional.
func NewServer(
	service *pipeline.Service,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	watch WatchService,
	configPath string,
	appConfig *config.Config,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		service:    service,
		config:     cfg,
		logger:     logger,
		watch:      watch,
		configPath: configPath,
		appConfig:  appConfig,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.config.MaxUploadBytes > 0 {
		r.Use(middleware.RequestSize(s.config.MaxUploadBytes))
	}

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	r.Get("/download/{filename}", s.handleDownload)
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/mcqs", s.handleGenerateJSON)
		r.Get("/status", s.handleStatus)
		r.Get("/watch/directories", s.handleWatchDirectoriesList)
		r.Post("/watch/directories", s.handleWatchDirectoriesAdd)
		r.Delete("/watch/directories", s.handleWatchDirectoriesRemove)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
