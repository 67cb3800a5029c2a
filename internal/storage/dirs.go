// Package storage manages the flat upload and result directories on disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hyperjump/mcqgen/internal/filename"
)

// ErrNotFound is returned when a requested result file does not exist.
var ErrNotFound = errors.New("file not found")

// Dirs holds the upload and result directories. Files are keyed by name only and
// never cleaned up; a second file with the same name replaces the first.
type Dirs struct {
	Uploads string
	Results string
}

// NewDirs returns Dirs for the given paths.
func NewDirs(uploads, results string) *Dirs {
	return &Dirs{Uploads: uploads, Results: results}
}

// EnsureDirs creates both directories if they do not exist.
func (d *Dirs) EnsureDirs() error {
	for _, dir := range []string{d.Uploads, d.Results} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SaveUpload copies r to the uploads directory under name and returns the path.
// name must already be sanitized.
func (d *Dirs) SaveUpload(name string, r io.Reader) (string, error) {
	if !filename.IsPlainBase(name) {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	path := filepath.Join(d.Uploads, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload: %w", err)
	}
	return path, nil
}

// ResultPath returns the path of the result document with the given name.
func (d *Dirs) ResultPath(name string) string {
	return filepath.Join(d.Results, name)
}

// OpenResult opens a result document by exact name for download.
// Names with a directory component are treated as absent.
func (d *Dirs) OpenResult(name string) (*os.File, os.FileInfo, error) {
	if !filename.IsPlainBase(name) {
		return nil, nil, ErrNotFound
	}
	f, err := os.Open(d.ResultPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

// Usage reports disk usage of the uploads and results directories.
func (d *Dirs) Usage() (uploads, results Usage, err error) {
	if uploads, err = DiskUsage(d.Uploads); err != nil {
		return Usage{}, Usage{}, err
	}
	if results, err = DiskUsage(d.Results); err != nil {
		return Usage{}, Usage{}, err
	}
	return uploads, results, nil
}
