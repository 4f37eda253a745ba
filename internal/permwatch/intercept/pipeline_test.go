package intercept_test

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/permwatch/internal/httpapi"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/intercept"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/service"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/store/memory"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/transport"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

// TestPipeline_PageToLogService drives wrapped capabilities through the
// debouncer and transport into a log service behind the HTTP API.
func TestPipeline_PageToLogService(t *testing.T) {
	quiet := log.New(io.Discard, "", 0)
	svc := service.NewLogService(service.Options{
		Logs:     memory.NewUsageLogStore(0),
		Settings: memory.NewSettingsStore(),
		Logger:   quiet,
	})
	ts := httptest.NewServer(httpapi.NewServer(httpapi.Dependencies{Logger: quiet, LogService: svc}).Handler())
	t.Cleanup(ts.Close)

	doc := transport.NewDocument("https://call.example/room/42", "Standup")
	tr := transport.New(transport.Options{
		Sink:   httpapi.NewClient(ts.URL),
		Page:   doc,
		Logger: quiet,
	})

	clock := newManualClock()
	page := intercept.NewPage(intercept.Options{Out: tr, Clock: clock.Now, Logger: quiet})
	media := page.WrapMediaDevices(&fakeMedia{})
	notes := page.WrapNotifications(&fakeNotifications{permission: "granted"})

	ctx := context.Background()
	_, err := media.GetUserMedia(ctx, intercept.MediaConstraints{Video: true, Audio: true})
	require.NoError(t, err)

	// Second request inside the duplicate window is dropped by the debouncer.
	clock.Advance(100 * time.Millisecond)
	_, err = media.GetUserMedia(ctx, intercept.MediaConstraints{Video: true})
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = notes.New("Meeting starts", intercept.NotificationOptions{})
	require.NoError(t, err)

	tr.Close()

	recs, err := svc.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	var keys []types.DebounceKey
	for _, r := range recs {
		keys = append(keys, types.DebounceKey{Kind: r.Kind, Action: r.Action})
		assert.Equal(t, "call.example", r.OriginHost)
		assert.Equal(t, "https://call.example/room/42", r.PageURL)
		assert.Equal(t, "Standup", r.PageTitle)
	}
	assert.Equal(t, []types.DebounceKey{
		{Kind: types.KindNotifications, Action: types.ActionShown},
		micActive,
		cameraActive,
	}, keys, "newest first")

	stats := page.Stats()
	assert.Equal(t, 3, stats.Accepted)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 3, svc.Badge())
}
