// Package debounce coalesces bursts of values into a single deferred call.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"timesheet/internal/logging"
)

// Debouncer delivers the last submitted value once no new value has arrived
// for the quiet interval. At most one delivery is pending at a time.
type Debouncer[T any] struct {
	clock   clockwork.Clock
	quiet   time.Duration
	fn      func(context.Context, T) error
	onError func(error)

	mu      sync.Mutex
	timer   clockwork.Timer
	value   T
	pending bool
	gen     uint64
}

// New returns a Debouncer that calls fn with the latest value after quiet has
// elapsed since the last Submit. Deferred calls get a background context and
// report errors to onError, which may be nil.
func New[T any](clock clockwork.Clock, quiet time.Duration, fn func(context.Context, T) error, onError func(error)) *Debouncer[T] {
	return &Debouncer[T]{
		clock:   clock,
		quiet:   quiet,
		fn:      fn,
		onError: onError,
	}
}

// Submit replaces any pending value with v and restarts the quiet interval.
func (d *Debouncer[T]) Submit(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen
	d.value = v
	d.pending = true
	d.timer = d.clock.AfterFunc(d.quiet, func() { d.fire(gen) })
}

// Cancel drops the pending value, if any. It reports whether one was dropped.
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	was := d.pending
	d.stopLocked()
	d.pending = false
	d.gen++
	return was
}

// Flush delivers the pending value now, on the calling goroutine, and returns
// fn's error. It does nothing when no value is pending.
func (d *Debouncer[T]) Flush(ctx context.Context) error {
	v, ok := d.take(0, false)
	if !ok {
		return nil
	}
	return d.fn(ctx, v)
}

// Pending reports whether a delivery is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(gen uint64) {
	v, ok := d.take(gen, true)
	if !ok {
		return
	}
	if err := d.fn(context.Background(), v); err != nil {
		logging.Debugf("debounce: deferred call failed: %v\n", err)
		if d.onError != nil {
			d.onError(err)
		}
	}
}

// take claims the pending value. A timer callback passes its generation so a
// callback that lost a race with Submit or Cancel delivers nothing.
func (d *Debouncer[T]) take(gen uint64, checkGen bool) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.pending || (checkGen && gen != d.gen) {
		return zero, false
	}
	v := d.value
	d.stopLocked()
	d.pending = false
	d.value = zero
	d.gen++
	return v, true
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
