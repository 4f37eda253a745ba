package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BrandonDHaskell/permwatch/internal/metrics"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/store"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

var (
	ErrInvalidKind   = errors.New("kind is not a known permission")
	ErrInvalidAction = errors.New("action is not a known usage action")
)

const defaultAlertCooldown = 3 * time.Second

type Options struct {
	Logs     store.UsageLogStore
	Settings store.SettingsStore
	Alerter  Alerter
	Logger   *log.Logger
	Metrics  *metrics.Metrics

	// AlertCooldown suppresses repeat alerts per (kind, origin host).
	AlertCooldown time.Duration
	Clock         func() time.Time
}

type alertKey struct {
	kind   types.PermissionKind
	origin string
}

// LogService is the receiving side of the usage transport: it keeps the
// bounded usage log, the settings record, and the unseen-usage badge, and
// raises alerts for new usages.
type LogService struct {
	logs     store.UsageLogStore
	settings store.SettingsStore
	alerter  Alerter
	logger   *log.Logger
	metrics  *metrics.Metrics
	cooldown time.Duration
	clock    func() time.Time

	mu        sync.Mutex
	badge     int
	lastAlert map[alertKey]time.Time
}

func NewLogService(opts Options) *LogService {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cooldown := opts.AlertCooldown
	if cooldown <= 0 {
		cooldown = defaultAlertCooldown
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &LogService{
		logs:      opts.Logs,
		settings:  opts.Settings,
		alerter:   opts.Alerter,
		logger:    logger,
		metrics:   opts.Metrics,
		cooldown:  cooldown,
		clock:     clock,
		lastAlert: make(map[alertKey]time.Time),
	}
}

// Submit appends ev to the usage log. Alert failures are logged, not
// returned: the usage is already recorded.
func (s *LogService) Submit(ctx context.Context, ev types.UsageEvent) error {
	ev.OriginHost = strings.TrimSpace(ev.OriginHost)
	if !ev.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, ev.Kind)
	}
	if !ev.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, ev.Action)
	}

	now := s.clock().UTC()
	if ev.OccurredAt == "" {
		ev.OccurredAt = now.Format(time.RFC3339Nano)
	}

	rec := store.UsageRecord{
		ID:         uuid.NewString(),
		ReceivedAt: now,
		Event:      ev,
	}
	if err := s.logs.Append(ctx, rec); err != nil {
		return fmt.Errorf("append usage: %w", err)
	}
	s.metrics.IncUsageStored(string(ev.Kind))

	s.mu.Lock()
	s.badge++
	s.mu.Unlock()

	s.maybeAlert(ctx, ev, now)
	return nil
}

func (s *LogService) maybeAlert(ctx context.Context, ev types.UsageEvent, now time.Time) {
	if s.alerter == nil {
		return
	}

	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		s.logger.Printf("settings load failed, using defaults: %v", err)
		settings = types.DefaultSettings()
	}
	if !settings.NotificationsEnabled {
		return
	}

	key := alertKey{kind: ev.Kind, origin: ev.OriginHost}
	if !s.reserveAlert(key, now) {
		return
	}

	if err := s.alerter.Alert(ctx, ev); err != nil {
		s.releaseAlert(key, now)
		s.logger.Printf("alert failed kind=%s origin=%s err=%v", ev.Kind, ev.OriginHost, err)
		return
	}
	s.metrics.IncAlerts(string(ev.Kind))
}

// reserveAlert claims the cooldown slot for key at now, so concurrent
// submissions for the same pair raise one alert. Entries whose cooldown has
// run out are dropped on the way.
func (s *LogService) reserveAlert(key alertKey, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, at := range s.lastAlert {
		if now.Sub(at) >= s.cooldown {
			delete(s.lastAlert, k)
		}
	}
	if _, cooling := s.lastAlert[key]; cooling {
		return false
	}
	s.lastAlert[key] = now
	return true
}

// releaseAlert undoes a reservation whose alert could not be raised, unless
// a later reservation has replaced it.
func (s *LogService) releaseAlert(key alertKey, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.lastAlert[key]; ok && cur.Equal(at) {
		delete(s.lastAlert, key)
	}
}

// Fetch returns the usage log newest first.
func (s *LogService) Fetch(ctx context.Context) ([]types.UsageRecord, error) {
	recs, err := s.logs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}

	out := make([]types.UsageRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, types.UsageRecord{
			ID:         r.ID,
			ReceivedAt: r.ReceivedAt.UTC().Format(time.RFC3339Nano),
			UsageEvent: r.Event,
		})
	}
	return out, nil
}

// Clear empties the usage log and resets the badge.
func (s *LogService) Clear(ctx context.Context) error {
	if err := s.logs.Clear(ctx); err != nil {
		return fmt.Errorf("clear usage: %w", err)
	}
	s.ResetBadge()
	return nil
}

func (s *LogService) GetSettings(ctx context.Context) (types.Settings, error) {
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		s.logger.Printf("settings load failed, using defaults: %v", err)
		return types.DefaultSettings(), nil
	}
	return settings, nil
}

// UpdateSettings replaces the stored settings wholesale.
func (s *LogService) UpdateSettings(ctx context.Context, settings types.Settings) error {
	if err := s.settings.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Badge is the number of usages submitted since the last reset.
func (s *LogService) Badge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.badge
}

func (s *LogService) ResetBadge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badge = 0
}
