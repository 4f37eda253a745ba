// Package intercept decorates host permission capabilities so that each
// successful use is reported as a usage signal. Wrapped capabilities return
// exactly what the underlying ones return; reporting happens on the side.
package intercept

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/BrandonDHaskell/permwatch/internal/metrics"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/debounce"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

// Deliverer receives accepted signals. *transport.Transport implements it.
// Deliver must not block.
type Deliverer interface {
	Deliver(sig types.RawSignal)
}

type Options struct {
	Out      Deliverer
	Debounce debounce.Config
	Clock    func() time.Time
	Logger   *log.Logger
	Metrics  *metrics.Metrics
}

// Stats counts debouncer outcomes for one page context.
type Stats struct {
	Accepted int
	Rejected int
}

// Page is one page context: created when the page loads, discarded on
// navigation. Its methods are safe for concurrent use.
type Page struct {
	out     Deliverer
	clock   func() time.Time
	logger  *log.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	d     *debounce.Debouncer
	stats Stats
}

func NewPage(opts Options) *Page {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Page{
		out:     opts.Out,
		clock:   clock,
		logger:  logger,
		metrics: opts.Metrics,
		d:       debounce.New(opts.Debounce),
	}
}

func (p *Page) nowMillis() int64 {
	return p.clock().UnixMilli()
}

// BeforeUnload marks the page as tearing down. Location signals are
// rejected from then on.
func (p *Page) BeforeUnload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.d.MarkUnloading()
}

// PageHide handles the pagehide lifecycle event. A page that is not being
// persisted in the back/forward cache is tearing down.
func (p *Page) PageHide(persisted bool) {
	if persisted {
		return
	}
	p.BeforeUnload()
}

// VisibilityChanged records a return to the foreground. It never reports a
// usage by itself.
func (p *Page) VisibilityChanged(visible bool) {
	if !visible {
		return
	}
	now := p.nowMillis()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.d.NoteVisible(now)
}

func (p *Page) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// signal runs the generic rule for a signal observed at atMillis.
func (p *Page) signal(kind types.PermissionKind, action types.ActionKind, atMillis int64) {
	sig := types.RawSignal{Kind: kind, Action: action, ObservedAtMillis: atMillis}
	p.evaluate(sig, func() bool { return p.d.Accept(sig) })
}

func (p *Page) locationOneShot() {
	sig := types.RawSignal{Kind: types.KindLocation, Action: types.ActionAccessed, ObservedAtMillis: p.nowMillis()}
	p.evaluate(sig, func() bool { return p.d.AcceptOneShot(sig.ObservedAtMillis) })
}

func (p *Page) locationWatch(id debounce.WatchID) {
	sig := types.RawSignal{Kind: types.KindLocation, Action: types.ActionAccessed, ObservedAtMillis: p.nowMillis()}
	p.evaluate(sig, func() bool { return p.d.AcceptWatch(id, sig.ObservedAtMillis) })
}

func (p *Page) beginWatch() debounce.WatchID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.d.BeginWatch()
}

func (p *Page) endWatch(id debounce.WatchID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.d.EndWatch(id)
}

// evaluate applies rule under the page lock and forwards accepted signals.
// Nothing raised here may reach the wrapped capability's caller.
func (p *Page) evaluate(sig types.RawSignal, rule func() bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("usage signal failed kind=%s action=%s panic=%v", sig.Kind, sig.Action, r)
		}
	}()

	accepted := p.decide(rule)
	p.metrics.ObserveSignal(string(sig.Kind), string(sig.Action), accepted)

	if accepted && p.out != nil {
		p.out.Deliver(sig)
	}
}

func (p *Page) decide(rule func() bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	accepted := rule()
	if accepted {
		p.stats.Accepted++
	} else {
		p.stats.Rejected++
	}
	return accepted
}
