// Package elapsed splits elapsed durations into clock components for display.
package elapsed

import (
	"fmt"
	"time"

	"timesheet/internal/errors"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

// Components is an elapsed duration broken into hours, minutes, seconds and milliseconds.
// Hours is unbounded; the other fields stay below their natural modulus.
type Components struct {
	Hours        int64
	Minutes      int64
	Seconds      int64
	Milliseconds int64
}

// Convert splits a non-negative number of milliseconds into its components.
// Negative input is rejected rather than folded into a negative component.
func Convert(ms int64) (Components, error) {
	if ms < 0 {
		return Components{}, errors.NewInvalidInputError("milliseconds", ms, "elapsed time cannot be negative")
	}
	return Components{
		Hours:        ms / msPerHour,
		Minutes:      ms / msPerMinute % 60,
		Seconds:      ms / msPerSecond % 60,
		Milliseconds: ms % msPerSecond,
	}, nil
}

// FromDuration converts d, clamping negative durations to zero. Callers that
// subtract two timestamps from different clocks use this to avoid a negative display.
func FromDuration(d time.Duration) Components {
	if d < 0 {
		d = 0
	}
	c, _ := Convert(d.Milliseconds())
	return c
}

// Total returns the number of milliseconds the components represent.
func (c Components) Total() int64 {
	return c.Hours*msPerHour + c.Minutes*msPerMinute + c.Seconds*msPerSecond + c.Milliseconds
}

// Clock formats the components as HH:MM:SS.
func (c Components) Clock() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Minutes, c.Seconds)
}
