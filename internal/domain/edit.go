package domain

// LogEdit is a change to a completed log entry. Nil fields are left alone.
type LogEdit struct {
	Label *string
	Rate  *float64
	// ClearRate removes the entry's rate so the default applies. It wins over Rate.
	ClearRate bool
}

// IsEmpty reports whether the edit changes nothing.
func (e LogEdit) IsEmpty() bool {
	return e.Label == nil && e.Rate == nil && !e.ClearRate
}

// Apply returns entry with the edit applied.
func (e LogEdit) Apply(entry LogEntry) LogEntry {
	out := entry.Clone()
	if e.Label != nil {
		out.Label = *e.Label
	}
	switch {
	case e.ClearRate:
		out.Rate = nil
	case e.Rate != nil:
		r := *e.Rate
		out.Rate = &r
	}
	return out
}
