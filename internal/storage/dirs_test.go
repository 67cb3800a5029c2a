package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirs_EnsureDirs(t *testing.T) {
	root := t.TempDir()
	d := NewDirs(filepath.Join(root, "uploads"), filepath.Join(root, "nested", "results"))
	if err := d.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{d.Uploads, d.Results} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
	if err := d.EnsureDirs(); err != nil {
		t.Errorf("second EnsureDirs: %v", err)
	}
}

func TestDirs_SaveUploadOverwrites(t *testing.T) {
	root := t.TempDir()
	d := NewDirs(filepath.Join(root, "uploads"), filepath.Join(root, "results"))
	if err := d.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.SaveUpload("sky.txt", strings.NewReader("first")); err != nil {
		t.Fatal(err)
	}
	path, err := d.SaveUpload("sky.txt", strings.NewReader("second"))
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("got %q", data)
	}
}

func TestDirs_SaveUploadRejectsPaths(t *testing.T) {
	d := NewDirs(t.TempDir(), t.TempDir())
	if _, err := d.SaveUpload("../x.txt", strings.NewReader("x")); err == nil {
		t.Error("expected error for path name")
	}
}

func TestDirs_OpenResult(t *testing.T) {
	root := t.TempDir()
	d := NewDirs(filepath.Join(root, "uploads"), filepath.Join(root, "results"))
	if err := d.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(d.ResultPath("a.txt_mcqs.pdf"), []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}
	f, info, err := d.OpenResult("a.txt_mcqs.pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "%PDF" || info.Size() != 4 {
		t.Errorf("got %q (%d bytes)", data, info.Size())
	}

	for _, name := range []string{"missing.pdf", "../uploads", ""} {
		if _, _, err := d.OpenResult(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("OpenResult(%q): got %v, want ErrNotFound", name, err)
		}
	}
}

func TestDirs_Usage(t *testing.T) {
	root := t.TempDir()
	d := NewDirs(filepath.Join(root, "uploads"), filepath.Join(root, "results"))
	if err := d.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	_, _ = d.SaveUpload("a.txt", strings.NewReader("abc"))
	up, res, err := d.Usage()
	if err != nil {
		t.Fatal(err)
	}
	if up.Files != 1 || up.Bytes != 3 || res.Files != 0 {
		t.Errorf("uploads %+v results %+v", up, res)
	}
}
