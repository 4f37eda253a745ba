package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// NotificationsEnabled is written only when no settings row exists yet.
	NotificationsEnabled bool
}

// SeedDev makes sure a dev database starts with a settings row so the
// dashboard has something to edit.
func SeedDev(ctx context.Context, conn *sql.DB, opt SeedDevOptions) error {
	payload, err := json.Marshal(map[string]bool{"notificationsEnabled": opt.NotificationsEnabled})
	if err != nil {
		return fmt.Errorf("seed settings encode: %w", err)
	}

	if _, err := conn.ExecContext(ctx, `
INSERT OR IGNORE INTO settings(id, payload, updated_at_ms)
VALUES (1, ?, ?);`, string(payload), time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	return nil
}
