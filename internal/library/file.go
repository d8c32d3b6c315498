package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vaysari11/Final-supernova/internal/book"
)

// FileStore keeps the library in a single JSON or YAML file, chosen by the
// file extension.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file backing the store.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

func (s *FileStore) Load(_ context.Context) ([]book.Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read library: %w", err)
	}

	var snap snapshot
	if s.isYAML() {
		err = yaml.Unmarshal(data, &snap)
	} else {
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse library %s: %w", s.path, err)
	}
	return snap.Books, nil
}

func (s *FileStore) Save(_ context.Context, books []book.Book) error {
	snap := snapshot{Books: books}
	if snap.Books == nil {
		snap.Books = []book.Book{}
	}

	var (
		data []byte
		err  error
	)
	if s.isYAML() {
		data, err = yaml.Marshal(snap)
	} else {
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode library: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".library-*")
	if err != nil {
		return fmt.Errorf("failed to write library: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("failed to write library: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("failed to write library: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
