package store

import "maps"

// Payload holds a document's fields. Values are scalars: strings, numbers and booleans.
type Payload map[string]any

// Clone returns a copy that can be modified without affecting p.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	return maps.Clone(p)
}

// With returns a copy of p with field set to value.
func (p Payload) With(field string, value any) Payload {
	c := p.Clone()
	c[field] = value
	return c
}

// String returns a string field.
func (p Payload) String(field string) (string, bool) {
	s, ok := p[field].(string)
	return s, ok
}

// Float returns a numeric field as float64. Decoders may hand back any
// integer or float width depending on how the value was encoded.
func (p Payload) Float(field string) (float64, bool) {
	switch v := p[field].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint32:
		return float64(v), true
	default:
		return 0, false
	}
}
