package service

import (
	"context"
	"log"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

// Alerter raises a user-facing alert for a usage.
type Alerter interface {
	Alert(ctx context.Context, ev types.UsageEvent) error
}

// LogAlerter writes alerts to a logger. It stands in for a desktop
// notification on hosts without one.
type LogAlerter struct {
	logger *log.Logger
}

func NewLogAlerter(logger *log.Logger) *LogAlerter {
	return &LogAlerter{logger: logger}
}

func (a *LogAlerter) Alert(_ context.Context, ev types.UsageEvent) error {
	a.logger.Printf("ALERT %s %s on %s (%s)", alertNoun(ev.Kind), ev.Action, ev.OriginHost, ev.PageTitle)
	return nil
}

func alertNoun(k types.PermissionKind) string {
	switch k {
	case types.KindCamera:
		return "Camera"
	case types.KindMicrophone:
		return "Microphone"
	case types.KindLocation:
		return "Location"
	case types.KindClipboardRead:
		return "Clipboard read"
	case types.KindClipboardWrite:
		return "Clipboard write"
	case types.KindNotifications:
		return "Notification"
	}
	return string(k)
}
