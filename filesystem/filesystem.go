// Package filesystem routes all file access through afero so tests can swap in
// an in-memory backend.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the operating system backend.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a fresh in-memory backend.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// WriteAtomic replaces the file at path with data. The data is staged in a
// sibling temporary file named after pattern and renamed into place, so a
// reader sees either the previous content or the new one.
func WriteAtomic(path, pattern string, data []byte, perm os.FileMode) error {
	fs := API()

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := fs.TempFile(dir, pattern)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	name := tmp.Name()

	fail := func(err error) error {
		_ = fs.Remove(name)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := fs.Chmod(name, perm); err != nil {
		return fail(err)
	}
	if err := fs.Rename(name, path); err != nil {
		return fail(fmt.Errorf("rename into place: %w", err))
	}
	return nil
}
