package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/BrandonDHaskell/permwatch/internal/db"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/store"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

type UsageLogStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
	max    int
}

// NewUsageLogStore returns a store keeping at most max rows. A max of zero
// or less uses store.DefaultMaxEntries.
func NewUsageLogStore(db *sql.DB, writer *dbpkg.Worker, max int) *UsageLogStore {
	if max <= 0 {
		max = store.DefaultMaxEntries
	}
	return &UsageLogStore{db: db, writer: writer, max: max}
}

func (s *UsageLogStore) Append(ctx context.Context, rec store.UsageRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	receivedMs := rec.ReceivedAt.UTC().UnixMilli()

	var visible int
	if rec.Event.IsVisible {
		visible = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO usage_events(
  id, kind, action, origin_host, page_url, page_title,
  is_visible, occurred_at, received_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.ID, string(rec.Event.Kind), string(rec.Event.Action),
			rec.Event.OriginHost, rec.Event.PageURL, rec.Event.PageTitle,
			visible, rec.Event.OccurredAt, receivedMs,
		); err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}

		// Evict everything past the bound, oldest first.
		if _, err := tx.ExecContext(ctx, `
DELETE FROM usage_events
WHERE seq NOT IN (
  SELECT seq FROM usage_events ORDER BY seq DESC LIMIT ?
);
`, s.max); err != nil {
			return fmt.Errorf("Append trim: %w", err)
		}

		return nil
	})
}

// List returns rows newest first. Rows whose kind or action is not
// recognised are skipped.
func (s *UsageLogStore) List(ctx context.Context) ([]store.UsageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, action, origin_host, page_url, page_title,
       is_visible, occurred_at, received_at_ms
FROM usage_events
ORDER BY seq DESC
LIMIT ?;
`, s.max)
	if err != nil {
		return nil, fmt.Errorf("List query: %w", err)
	}
	defer rows.Close()

	out := make([]store.UsageRecord, 0)
	for rows.Next() {
		var (
			rec        store.UsageRecord
			kind       string
			action     string
			visible    int
			receivedMs int64
		)
		if err := rows.Scan(
			&rec.ID, &kind, &action, &rec.Event.OriginHost, &rec.Event.PageURL,
			&rec.Event.PageTitle, &visible, &rec.Event.OccurredAt, &receivedMs,
		); err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}

		rec.Event.Kind = types.PermissionKind(kind)
		rec.Event.Action = types.ActionKind(action)
		if !rec.Event.Kind.Valid() || !rec.Event.Action.Valid() {
			continue
		}
		rec.Event.IsVisible = visible == 1
		rec.ReceivedAt = time.UnixMilli(receivedMs).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List rows: %w", err)
	}
	return out, nil
}

func (s *UsageLogStore) Clear(ctx context.Context) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM usage_events;`); err != nil {
			return fmt.Errorf("Clear: %w", err)
		}
		return nil
	})
}

// PruneOlderThan deletes rows received before cutoff and returns how many
// were removed. Uses idx_usage_events_received.
func (s *UsageLogStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM usage_events
WHERE received_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
