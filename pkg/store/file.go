package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File keeps one JSON file per user in a directory.
type File struct {
	dir string
}

// NewFile returns a store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("store: file driver needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(user string) string {
	return filepath.Join(f.dir, user+".json")
}

// Load reads the user's snapshot file.
func (f *File) Load(_ context.Context, user string) ([]byte, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(user))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Save writes the snapshot to a temporary file and renames it into place.
func (f *File) Save(_ context.Context, user string, data []byte) error {
	if err := ValidateUser(user); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+user+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(user)); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Close is a no-op.
func (f *File) Close() error { return nil }
