package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Centers = slices.Clone(rec.Centers)
	s.recs = append(s.recs, rec)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.recs {
		if r.ID == id {
			r.Centers = slices.Clone(r.Centers)
			return r, nil
		}
	}
	return Record{}, errors.New(errors.ErrCodeNotFound, "run %s not found", id)
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newest(s.recs, clampLimit(limit)), nil
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }

// newest returns up to limit records sorted by CreatedAt descending.
func newest(recs []Record, limit int) []Record {
	out := slices.Clone(recs)
	slices.SortStableFunc(out, func(a, b Record) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
