package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps audit entries in memory for tests and dry-run
// imports.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore constructs a store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends an entry.
func (s *MemoryStore) Insert(ctx context.Context, entry Entry) error {
	_ = ctx
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return nil
}

// ListByContentHash returns matching entries, newest first.
func (s *MemoryStore) ListByContentHash(ctx context.Context, hash string) ([]Entry, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ContentHash == hash {
			result = append(result, s.entries[i])
		}
	}
	return result, nil
}

// ListRecent returns the latest entries, newest first.
func (s *MemoryStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	_ = ctx
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Entry
	for i := len(s.entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.entries[i])
	}
	return result, nil
}

// All returns every entry in insertion order.
func (s *MemoryStore) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
