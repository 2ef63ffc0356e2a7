package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
)

// JSONFile stores a document as indented JSON in a single file.
// Writes go to a temp file in the same directory and are renamed into
// place, so readers never observe a half-written document.
type JSONFile[T any] struct {
	Path string
}

// NewJSONFile creates a file store for path
func NewJSONFile[T any](path string) *JSONFile[T] {
	return &JSONFile[T]{Path: path}
}

// Load reads and decodes the document. A missing file yields ErrNotFound.
func (f *JSONFile[T]) Load(ctx context.Context) (T, error) {
	var value T
	if err := ctx.Err(); err != nil {
		return value, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return value, fmt.Errorf("%s: %w", f.Path, ErrNotFound)
		}
		return value, bmerrors.Wrap(bmerrors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", f.Path), err)
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, bmerrors.NewFileUnmarshalError(f.Path, "JSON", err)
	}
	return value, nil
}

// Save encodes value and atomically replaces the file
func (f *JSONFile[T]) Save(ctx context.Context, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return bmerrors.Wrap(bmerrors.ErrCodeFileMarshal, fmt.Sprintf("failed to encode %s", f.Path), err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return bmerrors.Wrap(bmerrors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create %s", dir), err)
	}

	err = writeAtomic(f.Path, func(w io.Writer) error {
		_, werr := w.Write(data)
		return werr
	})
	if err != nil {
		return bmerrors.Wrap(bmerrors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", f.Path), err)
	}
	return nil
}

// Exists reports whether the file is present
func (f *JSONFile[T]) Exists() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}

// Remove deletes the file; a missing file is not an error
func (f *JSONFile[T]) Remove() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", f.Path, err)
	}
	return nil
}

func writeAtomic(path string, writeFunc func(io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := writeFunc(tmpFile); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write content: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
