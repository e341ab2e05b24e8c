package store

import "github.com/google/uuid"

// IDGenerator produces opaque unique keys.
type IDGenerator interface {
	NewKey() string
}

// UUIDGenerator issues random UUIDv4 keys.
type UUIDGenerator struct{}

// NewKey returns a new random key.
func (UUIDGenerator) NewKey() string {
	return uuid.NewString()
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

// NewKey calls f.
func (f IDFunc) NewKey() string {
	return f()
}
