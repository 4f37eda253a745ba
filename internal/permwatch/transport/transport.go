// Package transport carries accepted usage signals out of the page context
// to the log store. Delivery is fire-and-forget.
package transport

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/BrandonDHaskell/permwatch/internal/metrics"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

const defaultQueueSize = 64

// Sink receives usage events on the far side of the isolation boundary.
type Sink interface {
	Submit(ctx context.Context, ev types.UsageEvent) error
}

// SinkFunc adapts a function literal to the Sink interface.
type SinkFunc func(ctx context.Context, ev types.UsageEvent) error

func (f SinkFunc) Submit(ctx context.Context, ev types.UsageEvent) error {
	return f(ctx, ev)
}

type Options struct {
	Sink      Sink
	Page      PageInfo
	Logger    *log.Logger
	Clock     func() time.Time
	QueueSize int
	Metrics   *metrics.Metrics
}

// Transport enriches accepted signals with page context and hands them to a
// single background sender.
type Transport struct {
	sink    Sink
	page    PageInfo
	logger  *log.Logger
	clock   func() time.Time
	metrics *metrics.Metrics

	mu     sync.Mutex
	closed bool
	queue  chan types.UsageEvent
	done   chan struct{}
}

func New(opts Options) *Transport {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}

	t := &Transport{
		sink:    opts.Sink,
		page:    opts.Page,
		logger:  logger,
		clock:   clock,
		metrics: opts.Metrics,
		queue:   make(chan types.UsageEvent, size),
		done:    make(chan struct{}),
	}
	go t.loop()
	return t
}

// Deliver snapshots the page context for sig and queues the resulting event.
// It never blocks: a full queue or a closed transport drops the event.
func (t *Transport) Deliver(sig types.RawSignal) {
	ev := t.enrich(sig)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		t.drop(ev, "transport closed")
		return
	}

	select {
	case t.queue <- ev:
	default:
		t.drop(ev, "queue full")
	}
}

func (t *Transport) enrich(sig types.RawSignal) types.UsageEvent {
	ev := types.UsageEvent{
		Kind:       sig.Kind,
		Action:     sig.Action,
		OccurredAt: t.clock().UTC().Format(time.RFC3339Nano),
	}
	if t.page != nil {
		ev.OriginHost = t.page.Origin()
		ev.PageURL = t.page.URL()
		ev.PageTitle = t.page.Title()
		ev.IsVisible = t.page.Visible()
	}
	return ev
}

// Close stops accepting events and waits for queued ones to be sent.
func (t *Transport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.done
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()

	<-t.done
}

func (t *Transport) loop() {
	defer close(t.done)

	for ev := range t.queue {
		t.send(ev)
	}
}

func (t *Transport) send(ev types.UsageEvent) {
	defer func() {
		if r := recover(); r != nil {
			t.drop(ev, "sink panic")
		}
	}()

	if t.sink == nil {
		t.drop(ev, "no sink")
		return
	}
	if err := t.sink.Submit(context.Background(), ev); err != nil {
		t.logger.Printf("usage delivery failed kind=%s action=%s err=%v", ev.Kind, ev.Action, err)
		t.metrics.IncDeliveryFailures()
	}
}

func (t *Transport) drop(ev types.UsageEvent, reason string) {
	t.logger.Printf("usage dropped kind=%s action=%s reason=%q", ev.Kind, ev.Action, reason)
	t.metrics.IncDeliveryFailures()
}
