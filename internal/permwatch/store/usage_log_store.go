package store

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

// DefaultMaxEntries bounds the usage log. Older entries are evicted on
// insert once the bound is exceeded.
const DefaultMaxEntries = 1000

// UsageRecord is a submitted usage event as persisted by the log store.
type UsageRecord struct {
	ID         string
	ReceivedAt time.Time
	Event      types.UsageEvent
}

// UsageLogStore is a bounded log of usage events.
type UsageLogStore interface {
	// Append inserts rec as the most recent entry, evicting the oldest
	// entries beyond the store's bound.
	Append(ctx context.Context, rec UsageRecord) error
	// List returns entries most-recent-first.
	List(ctx context.Context) ([]UsageRecord, error)
	Clear(ctx context.Context) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
