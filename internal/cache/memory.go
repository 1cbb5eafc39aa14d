package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default in-process backend. Good for dev and tests;
// entries vanish on restart, which the aggregator already tolerates.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry

	// now is a seam for freshness tests.
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) LookupLatest(_ context.Context, professorName, courseID string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[entryKey(professorName, courseID)]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *MemoryStore) Upsert(_ context.Context, prev *Entry, professorName, courseID string, rating *float64, summary *string) error {
	e := merged(prev, professorName, courseID, rating, summary, s.now())

	s.mu.Lock()
	s.entries[entryKey(professorName, courseID)] = e
	s.mu.Unlock()
	return nil
}

// Len returns the number of cached entries. For tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops all entries. For tests.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
}
