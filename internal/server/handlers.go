package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/mcqgen/internal/config"
	"github.com/hyperjump/mcqgen/internal/models"
	"github.com/hyperjump/mcqgen/internal/pipeline"
	"github.com/hyperjump/mcqgen/internal/storage"
	"go.uber.org/zap"
)

const (
	msgNoFile        = "No file uploaded"
	msgInvalidFormat = "Invalid file format"
	multipartMemory  = 8 << 20
)

// uploadError is a rejection detected before the pipeline runs.
type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string { return e.message }

type upload struct {
	file   multipart.File
	name   string
	params models.GenerationRequest
}

// readUpload parses the multipart form. Checks run in order: file present,
// extension allowed, counts well-formed.
func readUpload(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &uploadError{http.StatusRequestEntityTooLarge, "file too large"}
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, &uploadError{http.StatusBadRequest, msgNoFile}
		}
		return nil, &uploadError{http.StatusBadRequest, "invalid multipart form"}
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		// An empty file input arrives as a part with filename="", which the
		// multipart reader files under plain values.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			return nil, &uploadError{http.StatusBadRequest, msgInvalidFormat}
		}
		return nil, &uploadError{http.StatusBadRequest, msgNoFile}
	}
	if _, ok := models.ParseFormat(header.Filename); !ok {
		_ = file.Close()
		return nil, &uploadError{http.StatusBadRequest, msgInvalidFormat}
	}
	params, err := parseParams(r)
	if err != nil {
		_ = file.Close()
		return nil, &uploadError{http.StatusBadRequest, err.Error()}
	}
	return &upload{file: file, name: header.Filename, params: params}, nil
}

// parseParams reads num_mcqs, difficulty and num_options, defaulting absent fields.
func parseParams(r *http.Request) (models.GenerationRequest, error) {
	req := models.GenerationRequest{
		QuestionCount: models.DefaultQuestionCount,
		Difficulty:    models.DefaultDifficulty,
		OptionCount:   models.DefaultOptionCount,
	}
	if v := strings.TrimSpace(r.FormValue("num_mcqs")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("num_mcqs must be an integer")
		}
		req.QuestionCount = n
	}
	if v := r.FormValue("difficulty"); v != "" {
		req.Difficulty = v
	}
	if v := strings.TrimSpace(r.FormValue("num_options")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("num_options must be an integer")
		}
		req.OptionCount = n
	}
	return req, req.Validate()
}

// errorMessage is the client-facing text for err. Server-side failures are
// reported by status text only.
func errorMessage(err error, status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return http.StatusText(status)
	case errors.Is(err, pipeline.ErrInvalidFormat):
		return msgInvalidFormat
	default:
		return err.Error()
	}
}

// statusFor maps pipeline failures onto HTTP status codes.
func statusFor(err error) int {
	var ue *uploadError
	switch {
	case errors.As(err, &ue):
		return ue.status
	case errors.Is(err, pipeline.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrInference):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) process(r *http.Request) (*models.Result, error) {
	up, err := readUpload(r)
	if err != nil {
		return nil, err
	}
	defer up.file.Close()
	s.logger.Debug("upload received",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("filename", up.name),
		zap.Int("num_mcqs", up.params.QuestionCount),
		zap.String("difficulty", up.params.Difficulty),
		zap.Int("num_options", up.params.OptionCount),
	)
	return s.service.Submit(r.Context(), up.name, up.file, up.params)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, "index.html", newIndexPage()); err != nil {
		s.logger.Error("render index failed", zap.Error(err))
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	result, err := s.process(r)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("upload failed", zap.Error(err))
		}
		http.Error(w, errorMessage(err, status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, "results.html", result); err != nil {
		s.logger.Error("render results failed", zap.Error(err))
	}
}

func (s *Server) handleGenerateJSON(w http.ResponseWriter, r *http.Request) {
	result, err := s.process(r)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("generation failed", zap.Error(err))
		}
		s.respondError(w, status, errorMessage(err, status))
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	f, info, err := s.service.Dirs().OpenResult(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("download failed", zap.String("filename", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dirs := s.service.Dirs()
	uploads, results, err := dirs.Usage()
	if err != nil {
		s.logger.Error("status: disk usage failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	resp := map[string]interface{}{
		"uploads": map[string]interface{}{
			"path":  dirs.Uploads,
			"files": uploads.Files,
			"bytes": uploads.Bytes,
		},
		"results": map[string]interface{}{
			"path":  dirs.Results,
			"files": results.Files,
			"bytes": results.Bytes,
		},
		"disk_usage_bytes": uploads.Bytes + results.Bytes,
	}
	if s.appConfig != nil {
		s.appConfigMu.Lock()
		resp["config"] = map[string]interface{}{
			"inference_provider": s.appConfig.Inference.Provider,
			"font_family":        s.appConfig.Render.FontFamily,
			"max_upload_bytes":   s.appConfig.Server.MaxUploadBytes,
		}
		s.appConfigMu.Unlock()
	}
	if s.watch != nil {
		resp["watch_directories"] = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.logger.Error("watch add: stat failed", zap.String("path", abs), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("watch remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.appConfig == nil {
		return
	}
	s.appConfigMu.Lock()
	defer s.appConfigMu.Unlock()
	dirs := s.watch.Directories()
	s.appConfig.Watch.Directories = dirs
	if err := config.SaveWatchDirectories(s.configPath, dirs); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
