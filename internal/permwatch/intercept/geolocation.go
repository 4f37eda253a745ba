package intercept

import (
	"sync"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/debounce"
)

type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Timestamp int64
}

type PositionCallback func(Position)

type PositionErrorCallback func(error)

// Geolocation is callback based: success and failure may fire on any
// goroutine, and a watch keeps firing success until cleared.
type Geolocation interface {
	GetCurrentPosition(success PositionCallback, failure PositionErrorCallback)
	WatchPosition(success PositionCallback, failure PositionErrorCallback) int
	ClearWatch(id int)
}

// WrapGeolocation reports location access under the location rule. Failure
// callbacks are passed through untouched.
func (p *Page) WrapGeolocation(inner Geolocation) Geolocation {
	return &geolocation{
		page:    p,
		inner:   inner,
		watches: make(map[int]debounce.WatchID),
	}
}

type geolocation struct {
	page  *Page
	inner Geolocation

	mu      sync.Mutex
	watches map[int]debounce.WatchID
}

func (g *geolocation) GetCurrentPosition(success PositionCallback, failure PositionErrorCallback) {
	g.inner.GetCurrentPosition(func(pos Position) {
		g.page.locationOneShot()
		if success != nil {
			success(pos)
		}
	}, failure)
}

func (g *geolocation) WatchPosition(success PositionCallback, failure PositionErrorCallback) int {
	// Registered before delegating: the host may fire the first callback
	// before WatchPosition returns.
	wid := g.page.beginWatch()

	id := g.inner.WatchPosition(func(pos Position) {
		g.page.locationWatch(wid)
		if success != nil {
			success(pos)
		}
	}, failure)

	g.mu.Lock()
	g.watches[id] = wid
	g.mu.Unlock()

	return id
}

// ClearWatch never reports a usage.
func (g *geolocation) ClearWatch(id int) {
	g.inner.ClearWatch(id)

	g.mu.Lock()
	wid, ok := g.watches[id]
	delete(g.watches, id)
	g.mu.Unlock()

	if ok {
		g.page.endWatch(wid)
	}
}
