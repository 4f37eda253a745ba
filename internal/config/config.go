package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string // "" = gRPC disabled

	Env string // "dev" | "prod"

	// Store
	Store      string // "memory" | "sqlite"
	DBPath     string // e.g. "./data/permwatch.db"
	MaxEntries int

	// Notifier
	AlertCooldown        time.Duration
	NotificationsDefault bool // seeded into a fresh dev database

	// Usage retention
	RetentionDays      int // 0 = keep until evicted by MaxEntries
	PruneIntervalHours int // how often the pruner runs (default 6)
}

func FromEnv() Config {
	env := strings.ToLower(getenvDefault("PERMWATCH_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	store := strings.ToLower(getenvDefault("PERMWATCH_STORE", "sqlite"))
	if store != "memory" && store != "sqlite" {
		store = "sqlite"
	}

	return Config{
		HTTPAddr: getenvDefault("PERMWATCH_HTTP_ADDR", "127.0.0.1:8080"),
		GRPCAddr: os.Getenv("PERMWATCH_GRPC_ADDR"),
		Env:      env,

		Store:      store,
		DBPath:     getenvDefault("PERMWATCH_DB_PATH", "./data/permwatch.db"),
		MaxEntries: getenvInt("PERMWATCH_MAX_ENTRIES", 1000),

		AlertCooldown:        getenvDuration("PERMWATCH_ALERT_COOLDOWN", 3*time.Second),
		NotificationsDefault: getenvBool("PERMWATCH_NOTIFICATIONS", true),

		RetentionDays:      getenvInt("PERMWATCH_RETENTION_DAYS", 0),
		PruneIntervalHours: getenvInt("PERMWATCH_PRUNE_INTERVAL_HOURS", 6),
	}
}

// AddFlags registers command-line overrides. Values already in c become
// the flag defaults, so call it after FromEnv.
func (c *Config) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.HTTPAddr, "http-addr", c.HTTPAddr, "HTTP listen address")
	flagSet.StringVar(&c.GRPCAddr, "grpc-addr", c.GRPCAddr, "gRPC listen address (empty disables gRPC)")
	flagSet.StringVar(&c.Env, "env", c.Env, `environment: "dev" or "prod"`)
	flagSet.StringVar(&c.Store, "store", c.Store, `usage log backend: "memory" or "sqlite"`)
	flagSet.StringVar(&c.DBPath, "db", c.DBPath, "SQLite database path")
	flagSet.IntVar(&c.MaxEntries, "max-entries", c.MaxEntries, "usage records kept, newest first")
	flagSet.DurationVar(&c.AlertCooldown, "alert-cooldown", c.AlertCooldown, "minimum gap between alerts per kind and origin")
	flagSet.IntVar(&c.RetentionDays, "retention-days", c.RetentionDays, "delete usage older than this many days (0 keeps all)")
	flagSet.IntVar(&c.PruneIntervalHours, "prune-interval-hours", c.PruneIntervalHours, "how often the retention pruner runs")
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
