package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	dbpkg "github.com/BrandonDHaskell/permwatch/internal/db"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

type SettingsStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewSettingsStore(db *sql.DB, writer *dbpkg.Worker) *SettingsStore {
	return &SettingsStore{db: db, writer: writer}
}

// LoadSettings falls back to defaults when the row is missing or its payload
// does not decode. Fields absent from the payload keep their defaults.
func (s *SettingsStore) LoadSettings(ctx context.Context) (types.Settings, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM settings WHERE id = 1;`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DefaultSettings(), nil
	}
	if err != nil {
		return types.Settings{}, fmt.Errorf("LoadSettings query: %w", err)
	}

	settings := types.DefaultSettings()
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return types.DefaultSettings(), nil
	}
	return settings, nil
}

func (s *SettingsStore) SaveSettings(ctx context.Context, settings types.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("SaveSettings encode: %w", err)
	}
	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO settings(id, payload, updated_at_ms)
VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  payload       = excluded.payload,
  updated_at_ms = excluded.updated_at_ms;
`, string(payload), nowMs); err != nil {
			return fmt.Errorf("SaveSettings upsert: %w", err)
		}
		return nil
	})
}
