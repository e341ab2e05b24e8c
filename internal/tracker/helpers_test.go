package tracker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"timesheet/internal/store"
	"timesheet/internal/store/memory"
)

const (
	wait = 2 * time.Second
	tick = time.Millisecond
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sequence(prefix string) store.IDGenerator {
	var n atomic.Int64
	return store.IDFunc(func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	})
}

type call struct {
	op   store.Op
	coll store.Collection
}

type harness struct {
	t      *testing.T
	ctx    context.Context
	clock  clockwork.FakeClock
	store  *memory.Store
	tr     *Tracker
	events *eventLog

	mu    sync.Mutex
	calls []call
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	clock := clockwork.NewFakeClockAt(epoch)
	h := &harness{
		t:      t,
		ctx:    context.Background(),
		clock:  clock,
		store:  memory.New(memory.WithIDGenerator(sequence("doc")), memory.WithNow(clock.Now)),
		events: &eventLog{},
	}
	h.intercept()
	base := []Option{WithIDGenerator(sequence("tmp")), WithObserver(h.events.record)}
	h.tr = New(h.store, clock, append(base, opts...)...)
	return h
}

// inspectKey marks test reads that bypass recording and injected failures.
type inspectKey struct{}

// intercept records every store call and then runs fns in order.
func (h *harness) intercept(fns ...memory.Interceptor) {
	h.store.Intercept(func(ctx context.Context, op store.Op, coll store.Collection) error {
		if ctx.Value(inspectKey{}) != nil {
			return nil
		}
		h.mu.Lock()
		h.calls = append(h.calls, call{op: op, coll: coll})
		h.mu.Unlock()
		for _, fn := range fns {
			if err := fn(ctx, op, coll); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *harness) count(op store.Op, coll store.Collection) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.calls {
		if c.op == op && c.coll == coll {
			n++
		}
	}
	return n
}

func (h *harness) docs(coll store.Collection) []store.Document {
	h.t.Helper()
	ctx := context.WithValue(h.ctx, inspectKey{}, true)
	docs, err := h.store.List(ctx, coll, store.Filter{})
	require.NoError(h.t, err)
	return docs
}

func (h *harness) start() {
	h.t.Helper()
	require.NoError(h.t, h.tr.Start(h.ctx))
}

// logEntry runs a full start/label/end cycle lasting d.
func (h *harness) logEntry(label string, d time.Duration) string {
	h.t.Helper()
	h.start()
	require.NoError(h.t, h.tr.EditLabel(label))
	require.NoError(h.t, h.tr.Close(h.ctx))
	h.clock.Advance(d)
	entry, err := h.tr.End(h.ctx)
	require.NoError(h.t, err)
	return entry.Key
}

func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
}

func failOn(op store.Op, coll store.Collection, err error) memory.Interceptor {
	return func(_ context.Context, o store.Op, c store.Collection) error {
		if o == op && c == coll {
			return err
		}
		return nil
	}
}

// gate holds the first matching store call until opened, then fails it with
// fail (nil lets it through).
type gate struct {
	op      store.Op
	coll    store.Collection
	fail    error
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate(op store.Op, coll store.Collection, fail error) *gate {
	return &gate{
		op:      op,
		coll:    coll,
		fail:    fail,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gate) intercept(ctx context.Context, op store.Op, coll store.Collection) error {
	if op != g.op || coll != g.coll {
		return nil
	}
	first := false
	g.once.Do(func() { first = true })
	if !first {
		return nil
	}
	close(g.entered)
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.fail
}

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(wait):
		t.Fatalf("%s %s never reached the store", g.op, g.coll)
	}
}

func (g *gate) open() {
	close(g.release)
}

func async(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- fn() }()
	return ch
}

func await(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(wait):
		t.Fatal("operation did not complete")
		return nil
	}
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) failures() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.Kind == EventFailed {
			out = append(out, e)
		}
	}
	return out
}

func (l *eventLog) count(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
