package storage

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Usage is the size and file count under one or more paths.
type Usage struct {
	Bytes int64 `json:"bytes"`
	Files int64 `json:"files"`
}

// DiskUsage sums sizes and regular-file counts for the given paths.
// Each path may be a file or a directory (walked recursively).
// Missing paths contribute nothing; other errors are returned.
func DiskUsage(paths ...string) (Usage, error) {
	var total Usage
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Usage{}, err
		}
		if !info.IsDir() {
			total.Bytes += info.Size()
			total.Files++
			continue
		}
		u, err := dirUsage(p)
		if err != nil {
			return Usage{}, err
		}
		total.Bytes += u.Bytes
		total.Files += u.Files
	}
	return total, nil
}

func dirUsage(dir string) (Usage, error) {
	var u Usage
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			u.Bytes += info.Size()
			u.Files++
		}
		return nil
	})
	return u, err
}
