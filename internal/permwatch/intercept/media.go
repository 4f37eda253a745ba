package intercept

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

// MediaConstraints mirrors the video/audio request of a capture call.
type MediaConstraints struct {
	Video bool
	Audio bool
}

type MediaTrack interface {
	// Kind is "video" or "audio".
	Kind() string
	Stop()
	// OnEnded registers fn to run when the track ends on its own.
	OnEnded(fn func())
}

type MediaStream interface {
	Tracks() []MediaTrack
}

type MediaDevices interface {
	GetUserMedia(ctx context.Context, c MediaConstraints) (MediaStream, error)
}

// WrapMediaDevices reports camera/microphone activity for granted capture
// requests and a stop for each track that is stopped or ends.
func (p *Page) WrapMediaDevices(inner MediaDevices) MediaDevices {
	return &mediaDevices{page: p, inner: inner}
}

type mediaDevices struct {
	page  *Page
	inner MediaDevices
}

func (m *mediaDevices) GetUserMedia(ctx context.Context, c MediaConstraints) (MediaStream, error) {
	stream, err := m.inner.GetUserMedia(ctx, c)
	if err != nil || stream == nil {
		return stream, err
	}

	now := m.page.nowMillis()
	if c.Video {
		m.page.signal(types.KindCamera, types.ActionActive, now)
	}
	if c.Audio {
		m.page.signal(types.KindMicrophone, types.ActionActive, now)
	}

	return m.page.trackStream(stream), nil
}

// Stream is a captured MediaStream whose tracks report when they stop.
type Stream struct {
	inner  MediaStream
	tracks []MediaTrack
}

func (p *Page) trackStream(inner MediaStream) *Stream {
	src := inner.Tracks()
	s := &Stream{inner: inner, tracks: make([]MediaTrack, 0, len(src))}
	for _, t := range src {
		s.tracks = append(s.tracks, p.trackTrack(t))
	}
	return s
}

func (s *Stream) Tracks() []MediaTrack {
	out := make([]MediaTrack, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Unwrap returns the stream produced by the underlying capability.
func (s *Stream) Unwrap() MediaStream { return s.inner }

type trackedTrack struct {
	MediaTrack
	page *Page
	once sync.Once
}

func (p *Page) trackTrack(inner MediaTrack) *trackedTrack {
	t := &trackedTrack{MediaTrack: inner, page: p}
	inner.OnEnded(t.stopped)
	return t
}

func (t *trackedTrack) Stop() {
	t.MediaTrack.Stop()
	t.stopped()
}

// stopped reports at most once per track, whichever of Stop or ended
// comes first.
func (t *trackedTrack) stopped() {
	t.once.Do(func() {
		kind, ok := trackPermission(t.Kind())
		if !ok {
			return
		}
		t.page.signal(kind, types.ActionStopped, t.page.nowMillis())
	})
}

func trackPermission(trackKind string) (types.PermissionKind, bool) {
	switch trackKind {
	case "video":
		return types.KindCamera, true
	case "audio":
		return types.KindMicrophone, true
	}
	return "", false
}
