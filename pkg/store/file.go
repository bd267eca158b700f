package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// FileStore appends records to a JSON-lines file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// DefaultFilePath returns runs.jsonl under the user's config directory.
func DefaultFilePath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "circlepack", "runs.jsonl"), nil
}

// NewFileStore opens the history file at path, creating parent directories.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

// Path returns the history file location.
func (s *FileStore) Path() string { return s.path }

// Save implements Store.
func (s *FileStore) Save(_ context.Context, rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, id string) (Record, error) {
	recs, err := s.readAll()
	if err != nil {
		return Record{}, err
	}
	for _, r := range recs {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, errors.New(errors.ErrCodeNotFound, "run %s not found", id)
}

// List implements Store.
func (s *FileStore) List(_ context.Context, limit int) ([]Record, error) {
	recs, err := s.readAll()
	if err != nil {
		return nil, err
	}
	return newest(recs, clampLimit(limit)), nil
}

// Close implements Store.
func (s *FileStore) Close(context.Context) error { return nil }

func (s *FileStore) readAll() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recs []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.path, line, err)
		}
		recs = append(recs, r)
	}
	return recs, sc.Err()
}

var _ Store = (*FileStore)(nil)
