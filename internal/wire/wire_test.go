package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
	"github.com/BrandonDHaskell/permwatch/internal/wire"
)

func TestUsageEvent_SurvivesProtoEncoding(t *testing.T) {
	ev := types.UsageEvent{
		Kind:       types.KindClipboardWrite,
		Action:     types.ActionAccessed,
		OriginHost: "docs.example",
		PageURL:    "https://docs.example/d/1",
		PageTitle:  "Doc",
		IsVisible:  true,
		OccurredAt: "2026-02-15T12:00:00Z",
	}

	b, err := proto.Marshal(wire.UsageEventToProto(ev))
	assert.NoError(t, err)

	var s structpb.Struct
	assert.NoError(t, proto.Unmarshal(b, &s))
	assert.Equal(t, ev, wire.UsageEventFromProto(&s))
}

func TestUsageEventFromProto_Nil(t *testing.T) {
	assert.Equal(t, types.UsageEvent{}, wire.UsageEventFromProto(nil))
}

func TestUsageRecordsFromProto_SkipsNonStructs(t *testing.T) {
	l := wire.UsageRecordsToProto([]types.UsageRecord{{
		ID:         "r1",
		ReceivedAt: "2026-02-15T12:00:00Z",
		UsageEvent: types.UsageEvent{Kind: types.KindCamera, Action: types.ActionActive},
	}})
	l.Values = append(l.Values, structpb.NewStringValue("junk"))

	got := wire.UsageRecordsFromProto(l)
	assert.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, types.KindCamera, got[0].Kind)
}

func TestSettingsFromProto_Defaults(t *testing.T) {
	assert.True(t, wire.SettingsFromProto(nil).NotificationsEnabled)

	bad := &structpb.Struct{Fields: map[string]*structpb.Value{
		"notificationsEnabled": structpb.NewStringValue("no"),
	}}
	assert.True(t, wire.SettingsFromProto(bad).NotificationsEnabled)

	off := wire.SettingsToProto(types.Settings{NotificationsEnabled: false})
	assert.False(t, wire.SettingsFromProto(off).NotificationsEnabled)
}
