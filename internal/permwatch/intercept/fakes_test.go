package intercept_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/intercept"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

const startMillis int64 = 1_760_000_000_000

// manualClock advances only when told to.
type manualClock struct {
	ms atomic.Int64
}

func newManualClock() *manualClock {
	c := &manualClock{}
	c.ms.Store(startMillis)
	return c
}

func (c *manualClock) Now() time.Time { return time.UnixMilli(c.ms.Load()) }

func (c *manualClock) Advance(d time.Duration) { c.ms.Add(d.Milliseconds()) }

// recorder is a synchronous Deliverer.
type recorder struct {
	mu      sync.Mutex
	signals []types.RawSignal
}

func (r *recorder) Deliver(sig types.RawSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, sig)
}

func (r *recorder) Signals() []types.RawSignal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.RawSignal, len(r.signals))
	copy(out, r.signals)
	return out
}

func (r *recorder) Keys() []types.DebounceKey {
	var out []types.DebounceKey
	for _, s := range r.Signals() {
		out = append(out, s.Key())
	}
	return out
}

func newTestPage() (*intercept.Page, *recorder, *manualClock) {
	rec := &recorder{}
	clock := newManualClock()
	page := intercept.NewPage(intercept.Options{Out: rec, Clock: clock.Now})
	return page, rec, clock
}

// ── media ───────────────────────────────────────────────────────────────────

type fakeTrack struct {
	kind    string
	stopped int
	onEnded []func()
}

func (t *fakeTrack) Kind() string      { return t.kind }
func (t *fakeTrack) Stop()             { t.stopped++ }
func (t *fakeTrack) OnEnded(fn func()) { t.onEnded = append(t.onEnded, fn) }

func (t *fakeTrack) End() {
	for _, fn := range t.onEnded {
		fn()
	}
}

type fakeStream struct {
	tracks []intercept.MediaTrack
}

func (s *fakeStream) Tracks() []intercept.MediaTrack { return s.tracks }

type fakeMedia struct {
	err    error
	stream *fakeStream
}

func (m *fakeMedia) GetUserMedia(_ context.Context, c intercept.MediaConstraints) (intercept.MediaStream, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := &fakeStream{}
	if c.Video {
		s.tracks = append(s.tracks, &fakeTrack{kind: "video"})
	}
	if c.Audio {
		s.tracks = append(s.tracks, &fakeTrack{kind: "audio"})
	}
	m.stream = s
	return s, nil
}

// ── geolocation ─────────────────────────────────────────────────────────────

type fakeGeo struct {
	mu      sync.Mutex
	oneShot []intercept.PositionCallback
	failure []intercept.PositionErrorCallback
	watches map[int]intercept.PositionCallback
	nextID  int
	cleared []int
	// fireOnWatch makes WatchPosition deliver a fix before returning.
	fireOnWatch bool
}

func newFakeGeo() *fakeGeo {
	return &fakeGeo{watches: make(map[int]intercept.PositionCallback)}
}

func (g *fakeGeo) GetCurrentPosition(success intercept.PositionCallback, failure intercept.PositionErrorCallback) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.oneShot = append(g.oneShot, success)
	g.failure = append(g.failure, failure)
}

func (g *fakeGeo) WatchPosition(success intercept.PositionCallback, _ intercept.PositionErrorCallback) int {
	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.watches[id] = success
	g.mu.Unlock()

	if g.fireOnWatch {
		success(intercept.Position{Latitude: 1})
	}
	return id
}

func (g *fakeGeo) ClearWatch(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.watches, id)
	g.cleared = append(g.cleared, id)
}

// ResolveOneShot fires the success callback of the i-th one-shot query.
func (g *fakeGeo) ResolveOneShot(i int) {
	g.mu.Lock()
	cb := g.oneShot[i]
	g.mu.Unlock()
	cb(intercept.Position{Latitude: 51.5, Longitude: -0.12})
}

func (g *fakeGeo) FailOneShot(i int, err error) {
	g.mu.Lock()
	cb := g.failure[i]
	g.mu.Unlock()
	cb(err)
}

func (g *fakeGeo) FireWatch(id int) {
	g.mu.Lock()
	cb, ok := g.watches[id]
	g.mu.Unlock()
	if ok {
		cb(intercept.Position{Latitude: 51.5, Longitude: -0.12})
	}
}

// ── clipboard ───────────────────────────────────────────────────────────────

type fakeClipboard struct {
	text     string
	items    []intercept.ClipboardItem
	readErr  error
	writeErr error
	written  []string
}

func (c *fakeClipboard) ReadText(context.Context) (string, error) { return c.text, c.readErr }

func (c *fakeClipboard) Read(context.Context) ([]intercept.ClipboardItem, error) {
	return c.items, c.readErr
}

func (c *fakeClipboard) WriteText(_ context.Context, text string) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, text)
	return nil
}

func (c *fakeClipboard) Write(context.Context, []intercept.ClipboardItem) error { return c.writeErr }

// ── notifications ───────────────────────────────────────────────────────────

type fakeNotification struct{ title string }

func (n *fakeNotification) Close() {}

type fakeNotifications struct {
	permission string
	err        error
	created    int
}

func (f *fakeNotifications) Permission() string { return f.permission }

func (f *fakeNotifications) New(title string, _ intercept.NotificationOptions) (intercept.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created++
	return &fakeNotification{title: title}, nil
}
