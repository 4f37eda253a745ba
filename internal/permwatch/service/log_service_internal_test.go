package service

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/store/memory"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

type okAlerter struct{}

func (okAlerter) Alert(context.Context, types.UsageEvent) error { return nil }

func TestReserveAlert_DropsExpiredEntries(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	svc := NewLogService(Options{
		Logs:          memory.NewUsageLogStore(0),
		Settings:      memory.NewSettingsStore(),
		Alerter:       okAlerter{},
		Logger:        log.New(io.Discard, "", 0),
		AlertCooldown: 3 * time.Second,
		Clock:         func() time.Time { return now },
	})
	ctx := context.Background()

	for _, origin := range []string{"a.example", "b.example", "c.example"} {
		if err := svc.Submit(ctx, types.UsageEvent{Kind: types.KindCamera, Action: types.ActionActive, OriginHost: origin}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if got := len(svc.lastAlert); got != 3 {
		t.Fatalf("expected 3 cooldown entries, got %d", got)
	}

	now = now.Add(3 * time.Second)
	if err := svc.Submit(ctx, types.UsageEvent{Kind: types.KindMicrophone, Action: types.ActionActive, OriginHost: "d.example"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := len(svc.lastAlert); got != 1 {
		t.Errorf("expected expired entries dropped, %d left", got)
	}
}

func TestReleaseAlert_KeepsNewerReservation(t *testing.T) {
	svc := NewLogService(Options{
		Logs:     memory.NewUsageLogStore(0),
		Settings: memory.NewSettingsStore(),
		Logger:   log.New(io.Discard, "", 0),
	})
	key := alertKey{kind: types.KindCamera, origin: "a.example"}
	first := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

	svc.lastAlert[key] = first.Add(time.Second)
	svc.releaseAlert(key, first)
	if _, ok := svc.lastAlert[key]; !ok {
		t.Error("release of a stale reservation removed the newer one")
	}
}
