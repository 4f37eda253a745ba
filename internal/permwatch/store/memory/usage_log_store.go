package memory

import (
	"context"
	"sync"
	"time"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/store"
)

// UsageLogStore is an in-memory bounded usage log, newest entry first.
// It is intended for tests and dev environments.
type UsageLogStore struct {
	mu      sync.Mutex
	max     int
	entries []store.UsageRecord
}

// NewUsageLogStore returns a store keeping at most max entries. A max of
// zero or less uses store.DefaultMaxEntries.
func NewUsageLogStore(max int) *UsageLogStore {
	if max <= 0 {
		max = store.DefaultMaxEntries
	}
	return &UsageLogStore{max: max}
}

func (s *UsageLogStore) Append(_ context.Context, rec store.UsageRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, store.UsageRecord{})
	copy(s.entries[1:], s.entries)
	s.entries[0] = rec

	if len(s.entries) > s.max {
		clear(s.entries[s.max:])
		s.entries = s.entries[:s.max]
	}
	return nil
}

func (s *UsageLogStore) List(_ context.Context) ([]store.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.UsageRecord, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *UsageLogStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func (s *UsageLogStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var deleted int64
	for _, rec := range s.entries {
		if rec.ReceivedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	clear(s.entries[len(kept):])
	s.entries = kept
	return deleted, nil
}
