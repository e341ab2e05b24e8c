package debounce

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	value string
	at    time.Time
}

type recorder struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	writes []write
	err    error
}

func (r *recorder) record(_ context.Context, v string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, write{value: v, at: r.clock.Now()})
	return r.err
}

func (r *recorder) snapshot() []write {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]write(nil), r.writes...)
}

const (
	wait = time.Second
	tick = time.Millisecond
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	rec := &recorder{clock: clock}
	d := New(clock, time.Second, rec.record, nil)

	d.Submit("d")
	clock.Advance(100 * time.Millisecond)
	d.Submit("de")
	clock.Advance(200 * time.Millisecond)
	d.Submit("des")
	clock.Advance(650 * time.Millisecond)
	d.Submit("desk")
	assert.True(t, d.Pending())

	// t=1949ms: still inside the quiet window of the t=950 submit.
	clock.Advance(999 * time.Millisecond)
	assert.Never(t, func() bool { return len(rec.snapshot()) > 0 }, 50*time.Millisecond, tick)

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, wait, tick)

	writes := rec.snapshot()
	assert.Equal(t, "desk", writes[0].value)
	assert.Equal(t, start.Add(1950*time.Millisecond), writes[0].at)
	assert.False(t, d.Pending())

	clock.Advance(5 * time.Second)
	assert.Never(t, func() bool { return len(rec.snapshot()) > 1 }, 50*time.Millisecond, tick)
}

func TestDebouncerCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{clock: clock}
	d := New(clock, time.Second, rec.record, nil)

	assert.False(t, d.Cancel())
	d.Submit("x")
	assert.True(t, d.Cancel())
	assert.False(t, d.Pending())

	clock.Advance(2 * time.Second)
	assert.Never(t, func() bool { return len(rec.snapshot()) > 0 }, 50*time.Millisecond, tick)
}

func TestDebouncerFlush(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{clock: clock}
	d := New(clock, time.Second, rec.record, nil)

	require.NoError(t, d.Flush(context.Background()))
	assert.Empty(t, rec.snapshot())

	d.Submit("now")
	require.NoError(t, d.Flush(context.Background()))
	require.Len(t, rec.snapshot(), 1)
	assert.Equal(t, "now", rec.snapshot()[0].value)

	clock.Advance(2 * time.Second)
	assert.Never(t, func() bool { return len(rec.snapshot()) > 1 }, 50*time.Millisecond, tick)
}

func TestDebouncerFlushReturnsError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{clock: clock, err: stderrors.New("no active timer")}
	d := New(clock, time.Second, rec.record, nil)

	d.Submit("x")
	assert.EqualError(t, d.Flush(context.Background()), "no active timer")
}

func TestDebouncerReportsDeferredError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{clock: clock, err: stderrors.New("no active timer")}

	var (
		mu       sync.Mutex
		reported []error
	)
	d := New(clock, time.Second, rec.record, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	})

	d.Submit("late")
	clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reported) == 1
	}, wait, tick)
	assert.EqualError(t, reported[0], "no active timer")
}
