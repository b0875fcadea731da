package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-memory slice. It is suitable
// for tests and for deployments that do not need history to survive a
// restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save persists a copy of the record so later caller mutations do not
// leak into the store.
func (s *MemoryStore) Save(ctx context.Context, record *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records = append(s.records, &recordCopy)
	return nil
}

// Recent returns up to limit records, newest first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		recordCopy := *record
		results = append(results, &recordCopy)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Prune deletes records created before olderThan and returns the number
// of records removed.
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if record.CreatedAt.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	for i := len(kept); i < len(s.records); i++ {
		s.records[i] = nil
	}
	s.records = kept
	return deleted, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
