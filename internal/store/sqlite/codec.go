package sqlite

import (
	"time"

	"github.com/fxamacker/cbor/v2"

	"timesheet/internal/store"
)

// Payloads are stored as CBOR maps in the data column. Timestamps are UTC
// RFC 3339 text with nanoseconds, so lexical order in the table matches
// chronological order.

func encodePayload(p store.Payload) ([]byte, error) {
	if p == nil {
		p = store.Payload{}
	}
	return cbor.Marshal(map[string]any(p))
}

func decodePayload(b []byte) (store.Payload, error) {
	var m map[string]any
	if err := cbor.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return store.Payload(m), nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
