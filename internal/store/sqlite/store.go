// Package sqlite implements store.RemoteStore on an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"timesheet/internal/errors"
	"timesheet/internal/logging"
	"timesheet/internal/store"
	"timesheet/internal/store/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Option configures a Store.
type Option func(*Store)

// WithTimeouts bounds every read and write statement.
func WithTimeouts(query, write time.Duration) Option {
	return func(s *Store) {
		s.queryTimeout = query
		s.writeTimeout = write
	}
}

// WithIDGenerator sets the key generator used by Create.
func WithIDGenerator(ids store.IDGenerator) Option {
	return func(s *Store) { s.ids = ids }
}

// WithNow sets the clock used for created_at and updated_at.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is a revisioned document store in a single SQLite table.
type Store struct {
	db           *sql.DB
	ids          store.IDGenerator
	now          func() time.Time
	queryTimeout time.Duration
	writeTimeout time.Duration
}

var (
	_ store.Closer     = (*Store)(nil)
	_ store.TimerEnder = (*Store)(nil)
)

// New opens (or creates) the database at dbPath and applies pending migrations.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:           db,
		ids:          store.UUIDGenerator{},
		now:          time.Now,
		queryTimeout: 10 * time.Second,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	logging.Debugf("sqlite store opened at %s\n", dbPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) readContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *Store) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.writeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.writeTimeout)
}

// List returns the collection's documents in insertion order.
func (s *Store) List(ctx context.Context, coll store.Collection, filter store.Filter) ([]store.Document, error) {
	ctx, cancel := s.readContext(ctx)
	defer cancel()

	query := `SELECT ` + documentColumns + ` FROM documents WHERE collection = ? ORDER BY rowid ASC`
	args := []any{string(coll)}
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	docs, err := QueryMultiple(ctx, s.db, query, ScanDocuments, "documents", args...)
	if err != nil {
		return nil, err
	}
	out := make([]store.Document, len(docs))
	for i, d := range docs {
		out[i] = *d
	}
	return out, nil
}

// Create inserts data under a newly generated key.
func (s *Store) Create(ctx context.Context, coll store.Collection, data store.Payload) (store.Document, error) {
	ctx, cancel := s.writeContext(ctx)
	defer cancel()
	return s.insert(ctx, s.db, coll, s.ids.NewKey(), data)
}

// Update replaces doc's payload when doc.Version matches the stored version.
func (s *Store) Update(ctx context.Context, coll store.Collection, doc store.Document) (store.Document, error) {
	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	data, err := encodePayload(doc.Data)
	if err != nil {
		return store.Document{}, errors.NewInvalidInputError("data", doc.Key, err.Error())
	}

	result, err := s.db.ExecContext(ctx, `
	UPDATE documents
	SET version = version + 1, data = ?, updated_at = ?
	WHERE collection = ? AND doc_key = ? AND version = ?`,
		data, encodeTime(s.now()), string(coll), doc.Key, doc.Version)
	if err != nil {
		return store.Document{}, HandleDatabaseError("update document", err)
	}
	rows, err := RowsAffected(result)
	if err != nil {
		return store.Document{}, err
	}
	if rows == 0 {
		return store.Document{}, s.explainMiss(ctx, s.db, coll, doc)
	}
	return s.get(ctx, s.db, coll, doc.Key)
}

// Delete removes doc when doc.Version matches the stored version.
func (s *Store) Delete(ctx context.Context, coll store.Collection, doc store.Document) error {
	ctx, cancel := s.writeContext(ctx)
	defer cancel()
	return s.delete(ctx, s.db, coll, doc)
}

// EndTimer deletes the active timer document and records log under the same
// key in one transaction.
func (s *Store) EndTimer(ctx context.Context, active store.Document, log store.Payload) (store.Document, error) {
	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Document{}, HandleDatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	if err := s.delete(ctx, tx, store.ActiveTimers, active); err != nil {
		return store.Document{}, err
	}
	doc, err := s.insert(ctx, tx, store.Logs, active.Key, log)
	if err != nil {
		return store.Document{}, err
	}
	if err := tx.Commit(); err != nil {
		return store.Document{}, HandleDatabaseError("commit end timer", err)
	}
	return doc, nil
}

func (s *Store) insert(ctx context.Context, q querier, coll store.Collection, key string, data store.Payload) (store.Document, error) {
	encoded, err := encodePayload(data)
	if err != nil {
		return store.Document{}, errors.NewInvalidInputError("data", key, err.Error())
	}
	now := encodeTime(s.now())
	if _, err := q.ExecContext(ctx, `
	INSERT INTO documents (collection, doc_key, version, data, created_at, updated_at)
	VALUES (?, ?, 1, ?, ?, ?)`,
		string(coll), key, encoded, now, now); err != nil {
		return store.Document{}, HandleDatabaseError("insert document", err)
	}
	return s.get(ctx, q, coll, key)
}

func (s *Store) delete(ctx context.Context, q querier, coll store.Collection, doc store.Document) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND doc_key = ? AND version = ?`,
		string(coll), doc.Key, doc.Version)
	if err != nil {
		return HandleDatabaseError("delete document", err)
	}
	rows, err := RowsAffected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.explainMiss(ctx, q, coll, doc)
	}
	return nil
}

func (s *Store) get(ctx context.Context, q querier, coll store.Collection, key string) (store.Document, error) {
	doc, err := QuerySingle(ctx, q,
		`SELECT `+documentColumns+` FROM documents WHERE collection = ? AND doc_key = ?`,
		ScanDocument, string(coll), key, string(coll), key)
	if err != nil {
		return store.Document{}, err
	}
	return *doc, nil
}

// explainMiss tells a stale revision apart from a missing document after a
// guarded write touched no rows.
func (s *Store) explainMiss(ctx context.Context, q querier, coll store.Collection, doc store.Document) error {
	var version int64
	err := q.QueryRowContext(ctx,
		`SELECT version FROM documents WHERE collection = ? AND doc_key = ?`,
		string(coll), doc.Key).Scan(&version)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError(string(coll), doc.Key)
	}
	if err != nil {
		return HandleDatabaseError("read document version", err)
	}
	return errors.NewConflictError(string(coll), doc.Key, doc.Version).WithContext("current", version)
}
