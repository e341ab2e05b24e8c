// Package domain holds the timer state, log entries and their document mapping.
package domain

import "time"

// TimerState is the tracker's state: either Idle or Running. Switch on the
// concrete type; no other implementations exist.
type TimerState interface {
	// String names the state for messages, e.g. "idle".
	String() string
	timerState()
}

// Idle means no timer is running.
type Idle struct{}

func (Idle) String() string { return "idle" }
func (Idle) timerState()    {}

// Running is an in-progress work interval.
type Running struct {
	Label     string
	StartedAt time.Time
}

func (Running) String() string { return "running" }
func (Running) timerState()    {}

// Elapsed returns the time since the timer started, never negative.
func (r Running) Elapsed(now time.Time) time.Duration {
	d := now.Sub(r.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// IsRunning reports whether s is a Running state.
func IsRunning(s TimerState) bool {
	_, ok := s.(Running)
	return ok
}
