// Package memory implements store.RemoteStore in process memory. It backs the
// testing environment and lets tests inject latency and failures through an Interceptor.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"timesheet/internal/errors"
	"timesheet/internal/store"
)

// Interceptor runs before every operation. A non-nil error fails the operation
// without touching stored data. It may block to simulate an in-flight request.
type Interceptor func(ctx context.Context, op store.Op, coll store.Collection) error

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the key generator used by Create.
func WithIDGenerator(ids store.IDGenerator) Option {
	return func(s *Store) { s.ids = ids }
}

// WithNow sets the time source for document timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is a concurrency-safe in-memory document store.
type Store struct {
	mu        sync.RWMutex
	docs      map[store.Collection][]store.Document
	ids       store.IDGenerator
	now       func() time.Time
	intercept Interceptor
}

var _ store.Closer = (*Store)(nil)

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		docs: make(map[store.Collection][]store.Document),
		ids:  store.UUIDGenerator{},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Intercept installs fn in front of every subsequent operation. Pass nil to remove it.
func (s *Store) Intercept(fn Interceptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intercept = fn
}

func (s *Store) before(ctx context.Context, op store.Op, coll store.Collection) error {
	s.mu.RLock()
	fn := s.intercept
	s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	return fn(ctx, op, coll)
}

// List returns copies of the collection's documents in creation order.
func (s *Store) List(ctx context.Context, coll store.Collection, filter store.Filter) ([]store.Document, error) {
	if err := s.before(ctx, store.OpList, coll); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.docs[coll]
	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}
	out := make([]store.Document, len(docs))
	for i, d := range docs {
		out[i] = copyDoc(d)
	}
	return out, nil
}

// Create stores data under a fresh key at version 1.
func (s *Store) Create(ctx context.Context, coll store.Collection, data store.Payload) (store.Document, error) {
	if err := s.before(ctx, store.OpCreate, coll); err != nil {
		return store.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	doc := store.Document{
		Key:       s.ids.NewKey(),
		Version:   1,
		Data:      data.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.docs[coll] = append(s.docs[coll], doc)
	return copyDoc(doc), nil
}

// Update replaces the payload of doc if its version is current.
func (s *Store) Update(ctx context.Context, coll store.Collection, doc store.Document) (store.Document, error) {
	if err := s.before(ctx, store.OpUpdate, coll); err != nil {
		return store.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.find(coll, doc)
	if err != nil {
		return store.Document{}, err
	}
	current := &s.docs[coll][i]
	current.Data = doc.Data.Clone()
	current.Version++
	current.UpdatedAt = s.now()
	return copyDoc(*current), nil
}

// Delete removes doc if its version is current.
func (s *Store) Delete(ctx context.Context, coll store.Collection, doc store.Document) error {
	if err := s.before(ctx, store.OpDelete, coll); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.find(coll, doc)
	if err != nil {
		return err
	}
	s.docs[coll] = slices.Delete(s.docs[coll], i, i+1)
	return nil
}

// Len reports how many documents coll holds.
func (s *Store) Len(coll store.Collection) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[coll])
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// find must be called with s.mu held.
func (s *Store) find(coll store.Collection, doc store.Document) (int, error) {
	i := slices.IndexFunc(s.docs[coll], func(d store.Document) bool { return d.Key == doc.Key })
	if i < 0 {
		return -1, errors.NewNotFoundError(string(coll), doc.Key)
	}
	if s.docs[coll][i].Version != doc.Version {
		return -1, errors.NewConflictError(string(coll), doc.Key, doc.Version)
	}
	return i, nil
}

func copyDoc(d store.Document) store.Document {
	d.Data = d.Data.Clone()
	return d
}
