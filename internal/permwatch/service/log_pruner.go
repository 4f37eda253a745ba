package service

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/BrandonDHaskell/permwatch/internal/metrics"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/store"
)

const defaultPruneInterval = 6 * time.Hour

// PrunerConfig configures a LogPruner. RetentionDays of 0 disables pruning.
type PrunerConfig struct {
	RetentionDays int
	IntervalHours int // defaults to 6

	Logger  *log.Logger
	Metrics *metrics.Metrics
	Clock   func() time.Time
}

// LogPruner deletes usage records older than the retention window. The
// store's count bound still applies on top of it.
type LogPruner struct {
	logs      store.UsageLogStore
	retention time.Duration
	interval  time.Duration
	logger    *log.Logger
	metrics   *metrics.Metrics
	clock     func() time.Time
}

func NewLogPruner(logs store.UsageLogStore, cfg PrunerConfig) *LogPruner {
	p := &LogPruner{
		logs:      logs,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  time.Duration(cfg.IntervalHours) * time.Hour,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		clock:     cfg.Clock,
	}
	if p.interval <= 0 {
		p.interval = defaultPruneInterval
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard, "", 0)
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	return p
}

func (p *LogPruner) Enabled() bool { return p.retention > 0 }

// Cutoff is the instant before which records are pruned.
func (p *LogPruner) Cutoff() time.Time {
	return p.clock().UTC().Add(-p.retention)
}

// PruneOnce deletes everything older than Cutoff and returns the count.
func (p *LogPruner) PruneOnce(ctx context.Context) (int64, error) {
	if !p.Enabled() {
		return 0, nil
	}
	cutoff := p.Cutoff()
	n, err := p.logs.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	p.metrics.AddUsagePruned(n)
	if n > 0 {
		p.logger.Printf("pruned usage records=%d before=%s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// Run prunes immediately and then every interval until ctx ends. A disabled
// pruner returns at once. Prune errors are logged and retried next tick.
func (p *LogPruner) Run(ctx context.Context) error {
	if !p.Enabled() {
		p.logger.Printf("usage pruner off retention_days=0")
		return nil
	}
	p.logger.Printf("usage pruner on retention=%s interval=%s", p.retention, p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		if _, err := p.PruneOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Printf("usage prune failed err=%v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
