package memory

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

type SettingsStore struct {
	mu       sync.RWMutex
	settings *types.Settings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

func (s *SettingsStore) LoadSettings(_ context.Context) (types.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return types.DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *SettingsStore) SaveSettings(_ context.Context, settings types.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}
