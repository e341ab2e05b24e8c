// Package store defines the remote document store the tracker synchronizes with.
//
// Documents live in named collections and carry a key, a version used as the
// revision token for optimistic concurrency, and a free-form payload. Updates and
// deletes name the version they expect; a store rejects a stale version with a
// conflict error (errors.ErrorTypeConflict) and an unknown key with a not-found error.
package store

import (
	"context"
	"time"
)

// Collection names a logical group of documents.
type Collection string

const (
	// ActiveTimers holds at most one document: the running timer.
	ActiveTimers Collection = "timesheet-timers"
	// Logs holds completed work intervals.
	Logs Collection = "timesheet-logs"
)

// Op identifies a store operation. Used by interceptors and debug output.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpEnd    Op = "end"
)

// Document is a stored payload with its identity and revision.
type Document struct {
	Key       string
	Version   int64
	Data      Payload
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows a List call. The zero value lists everything.
type Filter struct {
	Limit int
}

// RemoteStore is the authoritative document store.
type RemoteStore interface {
	// List returns the collection's documents in creation order.
	List(ctx context.Context, coll Collection, filter Filter) ([]Document, error)
	// Create stores a new document; the store assigns key and version.
	Create(ctx context.Context, coll Collection, data Payload) (Document, error)
	// Update replaces doc's payload if doc.Version is current and returns the new revision.
	Update(ctx context.Context, coll Collection, doc Document) (Document, error)
	// Delete removes doc if doc.Version is current.
	Delete(ctx context.Context, coll Collection, doc Document) error
}

// TimerEnder is implemented by stores that can retire an active timer and
// record its log document in a single atomic step.
type TimerEnder interface {
	EndTimer(ctx context.Context, active Document, log Payload) (Document, error)
}

// Closer is a RemoteStore that holds resources.
type Closer interface {
	RemoteStore
	Close() error
}
