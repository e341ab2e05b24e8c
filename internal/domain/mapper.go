package domain

import (
	"time"

	"timesheet/internal/errors"
	"timesheet/internal/store"
)

// Payload field names shared by active-timer and log documents.
const (
	FieldLabel = "label"
	FieldIn    = "in"
	FieldOut   = "out"
	FieldRate  = "rate"
)

// FormatTimestamp renders t the way documents store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses a document timestamp field.
func ParseTimestamp(p store.Payload, field string) (time.Time, error) {
	s, ok := p.String(field)
	if !ok {
		return time.Time{}, errors.NewInvalidInputError(field, p[field], "missing timestamp")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.NewInvalidInputError(field, s, err.Error())
	}
	return t, nil
}

// ActiveTimer is the stored form of a running timer.
type ActiveTimer struct {
	Key       string
	Revision  int64
	Label     string
	StartedAt time.Time
}

// State returns the Running state the record describes.
func (a ActiveTimer) State() Running {
	return Running{Label: a.Label, StartedAt: a.StartedAt}
}

// ActiveTimerPayload builds the document payload for a running timer.
func ActiveTimerPayload(r Running) store.Payload {
	return store.Payload{
		FieldLabel: r.Label,
		FieldIn:    FormatTimestamp(r.StartedAt),
	}
}

// ActiveTimerFromDocument parses an active-timer document.
func ActiveTimerFromDocument(doc store.Document) (ActiveTimer, error) {
	in, err := ParseTimestamp(doc.Data, FieldIn)
	if err != nil {
		return ActiveTimer{}, err
	}
	label, _ := doc.Data.String(FieldLabel)
	return ActiveTimer{
		Key:       doc.Key,
		Revision:  doc.Version,
		Label:     label,
		StartedAt: in,
	}, nil
}

// LogPayload builds the document payload for a log entry.
func LogPayload(e LogEntry) store.Payload {
	p := store.Payload{
		FieldLabel: e.Label,
		FieldIn:    FormatTimestamp(e.StartedAt),
		FieldOut:   FormatTimestamp(e.EndedAt),
	}
	if e.Rate != nil {
		p[FieldRate] = *e.Rate
	}
	return p
}

// LogDocument returns the full document for e, carrying its revision.
func LogDocument(e LogEntry) store.Document {
	return store.Document{
		Key:     e.Key,
		Version: e.Revision,
		Data:    LogPayload(e),
	}
}

// LogFromDocument parses a log document.
func LogFromDocument(doc store.Document) (LogEntry, error) {
	in, err := ParseTimestamp(doc.Data, FieldIn)
	if err != nil {
		return LogEntry{}, err
	}
	out, err := ParseTimestamp(doc.Data, FieldOut)
	if err != nil {
		return LogEntry{}, err
	}
	label, _ := doc.Data.String(FieldLabel)

	entry := LogEntry{
		Key:       doc.Key,
		Revision:  doc.Version,
		Label:     label,
		StartedAt: in,
		EndedAt:   out,
	}
	if rate, ok := doc.Data.Float(FieldRate); ok {
		entry.Rate = &rate
	}
	if !entry.IsValid() {
		return LogEntry{}, errors.NewInvalidInputError(FieldOut, doc.Key, "log ends before it starts")
	}
	return entry, nil
}
