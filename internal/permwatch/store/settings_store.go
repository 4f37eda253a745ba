package store

import (
	"context"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

// SettingsStore holds the single settings record. Load returns
// types.DefaultSettings when nothing usable is stored.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (types.Settings, error)
	SaveSettings(ctx context.Context, s types.Settings) error
}
