package types

import "slices"

// PermissionKind names a permission-gated capability a page can invoke.
type PermissionKind string

const (
	KindCamera         PermissionKind = "camera"
	KindMicrophone     PermissionKind = "microphone"
	KindLocation       PermissionKind = "location"
	KindClipboardRead  PermissionKind = "clipboard-read"
	KindClipboardWrite PermissionKind = "clipboard-write"
	KindNotifications  PermissionKind = "notifications"
)

// Kinds lists every PermissionKind in display order.
var Kinds = []PermissionKind{
	KindCamera,
	KindMicrophone,
	KindLocation,
	KindClipboardRead,
	KindClipboardWrite,
	KindNotifications,
}

func (k PermissionKind) Valid() bool { return slices.Contains(Kinds, k) }

// ActionKind qualifies a usage; its meaning depends on the PermissionKind.
type ActionKind string

const (
	ActionActive   ActionKind = "active"
	ActionAccessed ActionKind = "accessed"
	ActionStopped  ActionKind = "stopped"
	ActionShown    ActionKind = "shown"
)

// Actions lists every ActionKind.
var Actions = []ActionKind{ActionActive, ActionAccessed, ActionStopped, ActionShown}

func (a ActionKind) Valid() bool { return slices.Contains(Actions, a) }

// RawSignal is produced by an interceptor on the success path of a wrapped
// call and consumed immediately by the debouncer.
type RawSignal struct {
	Kind             PermissionKind
	Action           ActionKind
	ObservedAtMillis int64
}

// Key returns the composite key used for short-window duplicate suppression.
func (s RawSignal) Key() DebounceKey {
	return DebounceKey{Kind: s.Kind, Action: s.Action}
}

type DebounceKey struct {
	Kind   PermissionKind
	Action ActionKind
}

// UsageEvent is an accepted signal enriched with page context. The JSON
// shape is the submit contract of the log store.
type UsageEvent struct {
	Kind       PermissionKind `json:"kind"`
	Action     ActionKind     `json:"action"`
	OriginHost string         `json:"originHost"`
	PageURL    string         `json:"pageUrl"`
	PageTitle  string         `json:"pageTitle"`
	IsVisible  bool           `json:"isVisible"`
	OccurredAt string         `json:"occurredAt"` // RFC3339Nano, UTC
}

// UsageRecord is a UsageEvent as held by the log store.
type UsageRecord struct {
	ID         string `json:"id"`
	ReceivedAt string `json:"receivedAt"`
	UsageEvent
}
