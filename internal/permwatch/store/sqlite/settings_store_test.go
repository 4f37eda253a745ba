package sqlite_test

import (
	"context"
	"testing"

	"github.com/BrandonDHaskell/permwatch/internal/db"
	sqlitestore "github.com/BrandonDHaskell/permwatch/internal/permwatch/store/sqlite"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

func TestSettingsStore_MissingRow_Defaults(t *testing.T) {
	conn := openTestDB(t)
	ss := sqlitestore.NewSettingsStore(conn, newTestWriter(t, conn))

	got, err := ss.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got != types.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestSettingsStore_MalformedPayload_Defaults(t *testing.T) {
	conn := openTestDB(t)
	ss := sqlitestore.NewSettingsStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if _, err := conn.ExecContext(ctx,
		`INSERT INTO settings(id, payload, updated_at_ms) VALUES (1, '{not json', 0);`,
	); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := ss.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if !got.NotificationsEnabled {
		t.Error("expected notifications enabled for malformed payload")
	}
}

func TestSettingsStore_MissingField_KeepsDefault(t *testing.T) {
	conn := openTestDB(t)
	ss := sqlitestore.NewSettingsStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if _, err := conn.ExecContext(ctx,
		`INSERT INTO settings(id, payload, updated_at_ms) VALUES (1, '{}', 0);`,
	); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, _ := ss.LoadSettings(ctx)
	if !got.NotificationsEnabled {
		t.Error("expected absent field to default to enabled")
	}
}

func TestSettingsStore_SaveReplaces(t *testing.T) {
	conn := openTestDB(t)
	ss := sqlitestore.NewSettingsStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if err := ss.SaveSettings(ctx, types.Settings{NotificationsEnabled: false}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, _ := ss.LoadSettings(ctx)
	if got.NotificationsEnabled {
		t.Error("expected notifications disabled after save")
	}

	if err := ss.SaveSettings(ctx, types.Settings{NotificationsEnabled: true}); err != nil {
		t.Fatalf("SaveSettings again: %v", err)
	}
	got, _ = ss.LoadSettings(ctx)
	if !got.NotificationsEnabled {
		t.Error("expected second save to win")
	}
}

func TestSeedDev_DoesNotOverwrite(t *testing.T) {
	conn := openTestDB(t)
	ss := sqlitestore.NewSettingsStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if err := db.SeedDev(ctx, conn, db.SeedDevOptions{NotificationsEnabled: false}); err != nil {
		t.Fatalf("SeedDev: %v", err)
	}
	got, _ := ss.LoadSettings(ctx)
	if got.NotificationsEnabled {
		t.Error("expected seeded value")
	}

	if err := db.SeedDev(ctx, conn, db.SeedDevOptions{NotificationsEnabled: true}); err != nil {
		t.Fatalf("SeedDev again: %v", err)
	}
	got, _ = ss.LoadSettings(ctx)
	if got.NotificationsEnabled {
		t.Error("expected existing settings row to be kept")
	}
}
