package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kingrea/sportsmeet/internal/dataset"
	"github.com/kingrea/sportsmeet/internal/meet"
)

// Store reads and replaces the dataset file. Every replacement first copies
// the current file next to it as <name>_backup.json.
type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the dataset file location.
func (s *Store) Path() string {
	return s.path
}

// BackupPath returns where the previous dataset is kept, e.g.
// sports_data.json -> sports_data_backup.json.
func BackupPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_backup" + ext
}

// Version identifies the current file contents by modification time and
// size. It is empty when the file does not exist.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, err := os.Stat(s.path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size())
}

// Load reads the current document. dataset.ErrNoDocument reports a missing file.
func (s *Store) Load() (meet.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dataset.ReadFile(s.path)
}

// LoadRaw returns the file bytes as stored, once they decode as a document.
func (s *Store) LoadRaw() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dataset.ErrNoDocument
		}
		return nil, fmt.Errorf("server: read %s: %w", s.path, err)
	}
	if _, err := dataset.Decode(data); err != nil {
		return nil, fmt.Errorf("%w (%s)", err, s.path)
	}
	return data, nil
}

// Replace backs up the current file, when there is one, and writes body
// re-indented. Members the document model does not interpret are kept.
func (s *Store) Replace(body []byte) error {
	if _, err := dataset.Decode(body); err != nil {
		return err
	}
	data, err := dataset.Indent(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if err := os.WriteFile(BackupPath(s.path), current, 0o644); err != nil {
			return fmt.Errorf("server: write backup: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("server: read current dataset: %w", err)
	}
	return dataset.WriteBytes(s.path, data)
}
