// Package debounce decides, for each raw permission signal observed in a
// page context, whether it is a new usage or noise.
//
// A Debouncer holds the recency state of exactly one page context. It is not
// safe for concurrent use; callers that may evaluate from more than one
// goroutine must serialize access themselves.
package debounce

import (
	"time"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

// Config holds the time windows the rules compare against.
type Config struct {
	// DuplicateWindow suppresses repeats of the same (kind, action).
	DuplicateWindow time.Duration
	// PurgeAfter bounds how long generic entries are remembered.
	PurgeAfter time.Duration
	// LocationInterval is the minimum spacing between accepted location
	// callbacks that are not first calls.
	LocationInterval time.Duration
	// VisibilityGuard rejects location callbacks that fire this soon after
	// the page became visible again.
	VisibilityGuard time.Duration
}

func DefaultConfig() Config {
	return Config{
		DuplicateWindow:  500 * time.Millisecond,
		PurgeAfter:       5000 * time.Millisecond,
		LocationInterval: 5000 * time.Millisecond,
		VisibilityGuard:  2000 * time.Millisecond,
	}
}

// WatchID identifies a continuous location watch registered with BeginWatch.
type WatchID int

// recencyState is the location rule's memory. hasAccepted and
// visibilityChanged record "ever happened" apart from the timestamps, so a
// clock reading of 0 is an ordinary instant.
type recencyState struct {
	lastAcceptedAt         int64
	lastVisibilityChangeAt int64
	hasAccepted            bool
	visibilityChanged      bool
	unloading              bool
	firstCallSeen          bool
}

type Debouncer struct {
	duplicateMs  int64
	purgeMs      int64
	intervalMs   int64
	visibilityMs int64

	last map[types.DebounceKey]int64

	loc       recencyState
	watches   map[WatchID]int
	nextWatch WatchID
}

// New returns a Debouncer with fresh page-context state. Zero fields in cfg
// fall back to DefaultConfig.
func New(cfg Config) *Debouncer {
	def := DefaultConfig()
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = def.DuplicateWindow
	}
	if cfg.PurgeAfter <= 0 {
		cfg.PurgeAfter = def.PurgeAfter
	}
	if cfg.LocationInterval <= 0 {
		cfg.LocationInterval = def.LocationInterval
	}
	if cfg.VisibilityGuard <= 0 {
		cfg.VisibilityGuard = def.VisibilityGuard
	}

	return &Debouncer{
		duplicateMs:  cfg.DuplicateWindow.Milliseconds(),
		purgeMs:      cfg.PurgeAfter.Milliseconds(),
		intervalMs:   cfg.LocationInterval.Milliseconds(),
		visibilityMs: cfg.VisibilityGuard.Milliseconds(),
		last:         make(map[types.DebounceKey]int64),
		watches:      make(map[WatchID]int),
	}
}

// Accept evaluates a signal under the generic duplicate rule. Location
// signals are evaluated as one-shot query callbacks.
func (d *Debouncer) Accept(sig types.RawSignal) bool {
	if sig.Kind == types.KindLocation {
		return d.AcceptOneShot(sig.ObservedAtMillis)
	}

	now := sig.ObservedAtMillis
	key := sig.Key()
	defer d.purge(now)

	if t0, ok := d.last[key]; ok && now-t0 < d.duplicateMs {
		return false
	}
	d.last[key] = now
	return true
}

func (d *Debouncer) purge(now int64) {
	for k, t := range d.last {
		if now-t > d.purgeMs {
			delete(d.last, k)
		}
	}
}

// Len reports how many generic keys are currently remembered.
func (d *Debouncer) Len() int { return len(d.last) }
