package domain

import "time"

// Summary totals a set of log entries.
type Summary struct {
	Entries  int
	Duration time.Duration
	Earnings float64
	Goal     float64
}

// Progress returns earnings as a percentage of the goal, or 0 without a goal.
func (s Summary) Progress() float64 {
	if s.Goal <= 0 {
		return 0
	}
	return s.Earnings / s.Goal * 100
}

// Summarize totals entries, billing unrated entries at defaultRate.
func Summarize(entries []LogEntry, defaultRate, goal float64) Summary {
	s := Summary{Goal: goal}
	for _, e := range entries {
		s.Entries++
		s.Duration += e.Duration()
		s.Earnings += e.Earnings(defaultRate)
	}
	return s
}
