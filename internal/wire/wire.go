// Package wire converts log-store payloads to and from protobuf well-known
// types. The same shapes travel in HTTP protobuf bodies and gRPC messages,
// with field names matching the JSON contract.
package wire

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

// ContentType is the media type of protobuf-encoded bodies.
const ContentType = "application/x-protobuf"

// ── Usage events ────────────────────────────────────────────────────────────

func UsageEventToProto(ev types.UsageEvent) *structpb.Struct {
	return &structpb.Struct{Fields: usageFields(ev)}
}

func usageFields(ev types.UsageEvent) map[string]*structpb.Value {
	return map[string]*structpb.Value{
		"kind":       structpb.NewStringValue(string(ev.Kind)),
		"action":     structpb.NewStringValue(string(ev.Action)),
		"originHost": structpb.NewStringValue(ev.OriginHost),
		"pageUrl":    structpb.NewStringValue(ev.PageURL),
		"pageTitle":  structpb.NewStringValue(ev.PageTitle),
		"isVisible":  structpb.NewBoolValue(ev.IsVisible),
		"occurredAt": structpb.NewStringValue(ev.OccurredAt),
	}
}

// UsageEventFromProto reads a usage event. Missing fields are left zero.
func UsageEventFromProto(s *structpb.Struct) types.UsageEvent {
	f := s.GetFields()
	return types.UsageEvent{
		Kind:       types.PermissionKind(f["kind"].GetStringValue()),
		Action:     types.ActionKind(f["action"].GetStringValue()),
		OriginHost: f["originHost"].GetStringValue(),
		PageURL:    f["pageUrl"].GetStringValue(),
		PageTitle:  f["pageTitle"].GetStringValue(),
		IsVisible:  f["isVisible"].GetBoolValue(),
		OccurredAt: f["occurredAt"].GetStringValue(),
	}
}

// ── Usage records ───────────────────────────────────────────────────────────

func UsageRecordsToProto(recs []types.UsageRecord) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(recs))
	for _, r := range recs {
		fields := usageFields(r.UsageEvent)
		fields["id"] = structpb.NewStringValue(r.ID)
		fields["receivedAt"] = structpb.NewStringValue(r.ReceivedAt)
		values = append(values, structpb.NewStructValue(&structpb.Struct{Fields: fields}))
	}
	return &structpb.ListValue{Values: values}
}

// UsageRecordsFromProto skips list entries that are not structs.
func UsageRecordsFromProto(l *structpb.ListValue) []types.UsageRecord {
	out := make([]types.UsageRecord, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			continue
		}
		f := s.GetFields()
		out = append(out, types.UsageRecord{
			ID:         f["id"].GetStringValue(),
			ReceivedAt: f["receivedAt"].GetStringValue(),
			UsageEvent: UsageEventFromProto(s),
		})
	}
	return out
}

// ── Settings ────────────────────────────────────────────────────────────────

func SettingsToProto(s types.Settings) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"notificationsEnabled": structpb.NewBoolValue(s.NotificationsEnabled),
	}}
}

// SettingsFromProto falls back to the default for a missing or non-bool
// notificationsEnabled.
func SettingsFromProto(s *structpb.Struct) types.Settings {
	out := types.DefaultSettings()
	if v, ok := s.GetFields()["notificationsEnabled"]; ok {
		if b, isBool := v.GetKind().(*structpb.Value_BoolValue); isBool {
			out.NotificationsEnabled = b.BoolValue
		}
	}
	return out
}
