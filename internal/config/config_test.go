package config_test

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/BrandonDHaskell/permwatch/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"PERMWATCH_HTTP_ADDR", "PERMWATCH_GRPC_ADDR", "PERMWATCH_ENV", "PERMWATCH_STORE",
		"PERMWATCH_DB_PATH", "PERMWATCH_MAX_ENTRIES", "PERMWATCH_ALERT_COOLDOWN",
		"PERMWATCH_NOTIFICATIONS", "PERMWATCH_RETENTION_DAYS", "PERMWATCH_PRUNE_INTERVAL_HOURS",
	} {
		t.Setenv(k, "")
	}

	cfg := config.FromEnv()

	if cfg.HTTPAddr != "127.0.0.1:8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != "" {
		t.Errorf("GRPCAddr = %q, want disabled", cfg.GRPCAddr)
	}
	if cfg.Env != "dev" || cfg.Store != "sqlite" {
		t.Errorf("Env/Store = %q/%q", cfg.Env, cfg.Store)
	}
	if cfg.MaxEntries != 1000 {
		t.Errorf("MaxEntries = %d", cfg.MaxEntries)
	}
	if cfg.AlertCooldown != 3*time.Second {
		t.Errorf("AlertCooldown = %s", cfg.AlertCooldown)
	}
	if !cfg.NotificationsDefault {
		t.Error("NotificationsDefault should be true")
	}
	if cfg.RetentionDays != 0 || cfg.PruneIntervalHours != 6 {
		t.Errorf("retention = %d/%d", cfg.RetentionDays, cfg.PruneIntervalHours)
	}
}

func TestFromEnv_FailSoft(t *testing.T) {
	t.Setenv("PERMWATCH_ENV", "staging")
	t.Setenv("PERMWATCH_STORE", "redis")
	t.Setenv("PERMWATCH_MAX_ENTRIES", "-5")
	t.Setenv("PERMWATCH_ALERT_COOLDOWN", "soon")
	t.Setenv("PERMWATCH_NOTIFICATIONS", "maybe")

	cfg := config.FromEnv()

	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.Store != "sqlite" {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.MaxEntries != 1000 {
		t.Errorf("MaxEntries = %d, want 1000", cfg.MaxEntries)
	}
	if cfg.AlertCooldown != 3*time.Second {
		t.Errorf("AlertCooldown = %s, want 3s", cfg.AlertCooldown)
	}
	if !cfg.NotificationsDefault {
		t.Error("NotificationsDefault should fall back to true")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PERMWATCH_STORE", "MEMORY")
	t.Setenv("PERMWATCH_GRPC_ADDR", ":9090")
	t.Setenv("PERMWATCH_ALERT_COOLDOWN", "10s")
	t.Setenv("PERMWATCH_NOTIFICATIONS", "false")

	cfg := config.FromEnv()

	if cfg.Store != "memory" {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.GRPCAddr != ":9090" {
		t.Errorf("GRPCAddr = %q", cfg.GRPCAddr)
	}
	if cfg.AlertCooldown != 10*time.Second {
		t.Errorf("AlertCooldown = %s", cfg.AlertCooldown)
	}
	if cfg.NotificationsDefault {
		t.Error("NotificationsDefault should be false")
	}
}

func TestAddFlags_OverrideEnv(t *testing.T) {
	t.Setenv("PERMWATCH_HTTP_ADDR", ":7000")
	cfg := config.FromEnv()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.AddFlags(fs)
	if err := fs.Parse([]string{"--store=memory", "--max-entries=50"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.HTTPAddr != ":7000" {
		t.Errorf("HTTPAddr = %q, env value should remain the default", cfg.HTTPAddr)
	}
	if cfg.Store != "memory" || cfg.MaxEntries != 50 {
		t.Errorf("Store/MaxEntries = %q/%d", cfg.Store, cfg.MaxEntries)
	}
}
