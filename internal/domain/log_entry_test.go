package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestNewLogEntry(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	r := Running{Label: "review", StartedAt: start}

	e := NewLogEntry("k", r, start.Add(45*time.Minute))
	assert.Equal(t, "k", e.Key)
	assert.Equal(t, "review", e.Label)
	assert.Equal(t, 45*time.Minute, e.Duration())
	assert.True(t, e.IsValid())

	clamped := NewLogEntry("k", r, start.Add(-time.Minute))
	assert.Equal(t, start, clamped.EndedAt)
	assert.True(t, clamped.IsValid())
}

func TestLogEntryEarnings(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	e := LogEntry{StartedAt: start, EndedAt: start.Add(2 * time.Hour)}

	assert.Equal(t, DefaultRate, e.EffectiveRate(DefaultRate))
	assert.InDelta(t, 300.0, e.Earnings(DefaultRate), 1e-9)

	e.Rate = ptr(80.0)
	assert.InDelta(t, 160.0, e.Earnings(DefaultRate), 1e-9)
}

func TestLogEntryIsValid(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		entry LogEntry
		want  bool
	}{
		{"ordered", LogEntry{StartedAt: start, EndedAt: start.Add(time.Second)}, true},
		{"zero length", LogEntry{StartedAt: start, EndedAt: start}, true},
		{"reversed", LogEntry{StartedAt: start, EndedAt: start.Add(-time.Second)}, false},
		{"missing start", LogEntry{EndedAt: start}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.IsValid())
		})
	}
}

func TestLogEntryCloneDetachesRate(t *testing.T) {
	e := LogEntry{Rate: ptr(100.0)}
	c := e.Clone()
	*c.Rate = 5
	assert.Equal(t, 100.0, *e.Rate)
}

func TestLogEditApply(t *testing.T) {
	base := LogEntry{Key: "k", Label: "old", Rate: ptr(90.0)}

	assert.True(t, LogEdit{}.IsEmpty())
	assert.Equal(t, base, LogEdit{}.Apply(base))

	labelled := LogEdit{Label: ptr("new")}.Apply(base)
	assert.Equal(t, "new", labelled.Label)
	assert.Equal(t, 90.0, *labelled.Rate)

	rated := LogEdit{Rate: ptr(120.0)}.Apply(base)
	assert.Equal(t, 120.0, *rated.Rate)
	assert.Equal(t, 90.0, *base.Rate, "base untouched")

	cleared := LogEdit{Rate: ptr(120.0), ClearRate: true}.Apply(base)
	assert.Nil(t, cleared.Rate)
}

func TestSummarize(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	entries := []LogEntry{
		{StartedAt: start, EndedAt: start.Add(time.Hour)},
		{StartedAt: start, EndedAt: start.Add(30 * time.Minute), Rate: ptr(100.0)},
	}

	s := Summarize(entries, DefaultRate, 1000)
	assert.Equal(t, 2, s.Entries)
	assert.Equal(t, 90*time.Minute, s.Duration)
	assert.InDelta(t, 200.0, s.Earnings, 1e-9)
	assert.InDelta(t, 20.0, s.Progress(), 1e-9)

	assert.Equal(t, 0.0, Summarize(nil, DefaultRate, 0).Progress())
}
