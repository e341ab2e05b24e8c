package domain

import "time"

// DefaultRate is the hourly rate applied to log entries without one.
const DefaultRate = 150.0

// LogEntry is a completed work interval.
type LogEntry struct {
	Key       string
	Revision  int64
	Label     string
	StartedAt time.Time
	EndedAt   time.Time
	// Rate is the hourly rate; nil means the default applies.
	Rate *float64
	// Pending marks an optimistic placeholder the store has not confirmed yet.
	Pending bool
}

// Duration returns EndedAt - StartedAt.
func (e LogEntry) Duration() time.Duration {
	return e.EndedAt.Sub(e.StartedAt)
}

// EffectiveRate returns the entry's rate, or defaultRate when unset.
func (e LogEntry) EffectiveRate(defaultRate float64) float64 {
	if e.Rate != nil {
		return *e.Rate
	}
	return defaultRate
}

// Earnings returns the billable amount for the entry.
func (e LogEntry) Earnings(defaultRate float64) float64 {
	return e.Duration().Hours() * e.EffectiveRate(defaultRate)
}

// IsValid checks the entry's time bounds.
func (e LogEntry) IsValid() bool {
	if e.StartedAt.IsZero() || e.EndedAt.IsZero() {
		return false
	}
	return !e.EndedAt.Before(e.StartedAt)
}

// Clone returns a copy that shares no pointers with e.
func (e LogEntry) Clone() LogEntry {
	if e.Rate != nil {
		r := *e.Rate
		e.Rate = &r
	}
	return e
}

// NewLogEntry closes a running timer at endedAt. An endedAt before the start
// is moved up to the start so the entry never has a negative duration.
func NewLogEntry(key string, r Running, endedAt time.Time) LogEntry {
	if endedAt.Before(r.StartedAt) {
		endedAt = r.StartedAt
	}
	return LogEntry{
		Key:       key,
		Label:     r.Label,
		StartedAt: r.StartedAt,
		EndedAt:   endedAt,
	}
}
