// Package tracker keeps a local timer state machine and log cache in step with
// a remote document store. Every mutation is applied locally first, then
// written to the store, then confirmed or rolled back.
package tracker

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"timesheet/internal/debounce"
	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/logging"
	"timesheet/internal/store"
	"timesheet/internal/validation"
)

// StaleCaches reports which caches may disagree with the store.
type StaleCaches struct {
	ActiveTimer bool
	Logs        bool
}

// labelEdit is a label waiting in the debouncer, tied to the timer it was typed for.
type labelEdit struct {
	label     string
	startedAt time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithIDGenerator sets the key generator for placeholder log entries.
func WithIDGenerator(ids store.IDGenerator) Option {
	return func(t *Tracker) { t.ids = ids }
}

// WithQuietInterval sets how long label edits must pause before they are written.
func WithQuietInterval(d time.Duration) Option {
	return func(t *Tracker) { t.quiet = d }
}

// WithRemoteTimeout bounds deferred label writes, which have no caller context.
func WithRemoteTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.remoteTimeout = d }
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(t *Tracker) { t.observer = o }
}

// WithBilling sets the default hourly rate and the earnings goal used by Summary.
func WithBilling(defaultRate, goal float64) Option {
	return func(t *Tracker) {
		t.defaultRate = defaultRate
		t.goal = goal
	}
}

// WithValidator sets the validator for labels and log edits.
func WithValidator(v *validation.Validator) Option {
	return func(t *Tracker) { t.validator = v }
}

// Tracker owns the timer state, the active-timer document and the log cache.
// It is safe for concurrent use.
type Tracker struct {
	store         store.RemoteStore
	clock         clockwork.Clock
	ids           store.IDGenerator
	validator     *validation.Validator
	quiet         time.Duration
	remoteTimeout time.Duration
	defaultRate   float64
	goal          float64
	labels        *debounce.Debouncer[labelEdit]

	mu        sync.Mutex
	state     domain.TimerState
	active    *store.Document
	logs      []domain.LogEntry
	logsGen   uint64
	revisions map[string]int64
	deleting  map[string]struct{}
	stale     StaleCaches
	// queuedLabels counts label writes handed off by the debouncer that
	// have not finished yet.
	queuedLabels int
	timerLane    *lane
	logLane      *lane
	observer     Observer
	events       []Event
}

// New creates an Idle tracker over s. Call Init to load existing state.
func New(s store.RemoteStore, clock clockwork.Clock, opts ...Option) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	t := &Tracker{
		store:         s,
		clock:         clock,
		ids:           store.UUIDGenerator{},
		validator:     validation.NewValidator(validation.DefaultLimits()),
		quiet:         time.Second,
		remoteTimeout: 10 * time.Second,
		defaultRate:   domain.DefaultRate,
		state:         domain.Idle{},
		revisions:     make(map[string]int64),
		deleting:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.timerLane = newLane(&t.mu)
	t.logLane = newLane(&t.mu)
	t.labels = debounce.New(t.clock, t.quiet, t.flushLabel, nil)
	return t
}

// SetObserver replaces the event observer.
func (t *Tracker) SetObserver(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observer = o
}

// Init seeds the timer state from the store and loads the log collection.
func (t *Tracker) Init(ctx context.Context) error {
	if err := t.RefreshActiveTimer(ctx); err != nil {
		return err
	}
	return t.RefreshLogs(ctx)
}

// Close writes any label edit still waiting in the debouncer.
func (t *Tracker) Close(ctx context.Context) error {
	return t.labels.Flush(ctx)
}

// State returns the current timer state.
func (t *Tracker) State() domain.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Elapsed returns how long the current timer has run, or 0 when idle.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.state.(domain.Running); ok {
		return r.Elapsed(t.clock.Now())
	}
	return 0
}

// Logs returns a copy of the cached log collection, most recent first.
func (t *Tracker) Logs() []domain.LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.LogEntry, len(t.logs))
	for i, e := range t.logs {
		out[i] = e.Clone()
	}
	return out
}

// Log returns the cached entry with the given key.
func (t *Tracker) Log(key string) (domain.LogEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.indexLocked(key); i >= 0 {
		return t.logs[i].Clone(), true
	}
	return domain.LogEntry{}, false
}

// Stale reports which caches should be refreshed.
func (t *Tracker) Stale() StaleCaches {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stale
}

// DefaultRate returns the hourly rate for entries without one.
func (t *Tracker) DefaultRate() float64 {
	return t.defaultRate
}

// Summary totals the cached log collection.
func (t *Tracker) Summary() domain.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.Summarize(t.logs, t.defaultRate, t.goal)
}

// Start moves Idle to Running with an empty label and the current time, then
// creates the active-timer document. If the create fails the state returns to
// Idle. A label typed while the create is in flight is kept and written once
// the document exists.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	if domain.IsRunning(t.state) {
		t.mu.Unlock()
		return errors.NewInvalidTransitionError(string(OpStart), t.state.String())
	}
	optimistic := domain.Running{StartedAt: t.clock.Now()}
	u := undo{op: OpStart, optimistic: optimistic}
	t.setStateLocked(optimistic)
	ticket := t.timerLane.take()
	t.unlockAndNotify()
	logging.Debugf("tracker: start at %s\n", optimistic.StartedAt.Format(time.RFC3339))

	t.mu.Lock()
	t.timerLane.wait(ticket)

	if t.stale.ActiveTimer {
		if err := t.syncActiveLocked(ctx); err != nil {
			return t.failStart(u, err)
		}
		if t.active != nil {
			t.adoptExistingLocked(ctx, optimistic)
			err := errors.NewStaleOperationError(string(OpStart), "a timer is already running")
			t.failLocked(OpStart, err)
			t.finish(t.timerLane)
			return err
		}
	}

	payload := domain.ActiveTimerPayload(optimistic)
	t.mu.Unlock()
	doc, err := t.store.Create(ctx, store.ActiveTimers, payload)
	t.mu.Lock()
	if err != nil {
		return t.failStart(u, remoteError(OpStart, err))
	}

	t.active = &doc
	r, ok := t.state.(domain.Running)
	if !ok || !r.StartedAt.Equal(optimistic.StartedAt) {
		// Ended before the create returned. The queued End consumes doc.
		logging.Debugf("tracker: start confirmed after end, key %s\n", doc.Key)
		t.finish(t.timerLane)
		return nil
	}

	serverLabel, _ := doc.Data.String(domain.FieldLabel)
	switch {
	case r.Label != "" && r.Label != serverLabel:
		logging.Debugf("tracker: label %q typed during start, writing it\n", r.Label)
		if err := t.writeLabelLocked(ctx, r.Label); err != nil {
			t.failLocked(OpLabel, err)
		}
	case r.Label != serverLabel:
		t.setStateLocked(domain.Running{Label: serverLabel, StartedAt: optimistic.StartedAt})
	}
	logging.Debugf("tracker: start confirmed, key %s\n", doc.Key)
	t.finish(t.timerLane)
	return nil
}

func (t *Tracker) failStart(u undo, err error) error {
	t.rollback(u)
	t.failLocked(OpStart, err)
	t.finish(t.timerLane)
	return err
}

// adoptExistingLocked replaces an optimistic Start with the timer the store
// already holds, keeping any label typed meanwhile.
func (t *Tracker) adoptExistingLocked(ctx context.Context, optimistic domain.Running) {
	r, ok := t.state.(domain.Running)
	if !ok || !r.StartedAt.Equal(optimistic.StartedAt) {
		return
	}
	a, err := domain.ActiveTimerFromDocument(*t.active)
	if err != nil {
		logging.Debugf("tracker: unreadable active timer %s: %v\n", t.active.Key, err)
		return
	}
	next := a.State()
	t.labels.Cancel()
	if r.Label != "" && r.Label != next.Label {
		next.Label = r.Label
		if err := t.writeLabelLocked(ctx, r.Label); err != nil {
			t.failLocked(OpLabel, err)
		}
	}
	t.setStateLocked(next)
}

// End moves Running to Idle and records the interval as a log entry. A
// pending placeholder is shown at the front of the log collection until the
// store confirms. On failure the placeholder is removed and the timer resumes
// exactly as it was.
func (t *Tracker) End(ctx context.Context) (domain.LogEntry, error) {
	t.mu.Lock()
	r, ok := t.state.(domain.Running)
	if !ok {
		t.mu.Unlock()
		return domain.LogEntry{}, errors.NewInvalidTransitionError(string(OpEnd), t.state.String())
	}
	placeholder := domain.NewLogEntry(t.ids.NewKey(), r, t.clock.Now())
	placeholder.Pending = true
	u := undo{
		op:             OpEnd,
		captured:       r,
		placeholderKey: placeholder.Key,
		labelPending:   t.labels.Cancel(),
	}
	t.setStateLocked(domain.Idle{})
	t.setLogsLocked(slices.Insert(slices.Clone(t.logs), 0, placeholder))
	ticket := t.timerLane.take()
	t.unlockAndNotify()
	logging.Debugf("tracker: end %q after %s\n", r.Label, placeholder.Duration())

	t.mu.Lock()
	t.timerLane.wait(ticket)

	same, err := t.reloadStaleActiveLocked(ctx, r.StartedAt)
	if err != nil {
		return domain.LogEntry{}, t.failEnd(u, err)
	}
	if !same {
		// Another timer replaced ours in the store. Show it instead of ending it.
		t.dropLogLocked(placeholder.Key)
		if _, idle := t.state.(domain.Idle); idle {
			if aerr := t.adoptActiveLocked(); aerr != nil {
				logging.Debugf("tracker: unreadable active timer %s: %v\n", t.active.Key, aerr)
			}
		} else {
			t.stale.ActiveTimer = true
		}
		err := errors.NewStaleOperationError(string(OpEnd), "the stored timer was replaced")
		t.failLocked(OpEnd, err)
		t.finish(t.timerLane)
		return domain.LogEntry{}, err
	}
	if t.active == nil {
		// The start never reached the store, so there is nothing to end.
		t.dropLogLocked(placeholder.Key)
		err := errors.NewStaleOperationError(string(OpEnd), "no active timer to end")
		t.failLocked(OpEnd, err)
		t.finish(t.timerLane)
		return domain.LogEntry{}, err
	}

	active := *t.active
	payload := domain.LogPayload(placeholder)
	t.mu.Unlock()
	confirmed, err := t.endRemote(ctx, active, payload)
	t.mu.Lock()
	if err != nil {
		return domain.LogEntry{}, t.failEnd(u, remoteError(OpEnd, err))
	}

	t.active = nil
	entry, perr := domain.LogFromDocument(confirmed)
	if perr != nil {
		logging.Debugf("tracker: unreadable log %s: %v\n", confirmed.Key, perr)
		entry = placeholder
		entry.Key = confirmed.Key
		entry.Revision = confirmed.Version
		entry.Pending = false
	}
	t.revisions[entry.Key] = entry.Revision
	t.confirmPlaceholderLocked(placeholder.Key, entry)
	logging.Debugf("tracker: end confirmed, log %s\n", entry.Key)
	t.finish(t.timerLane)
	return entry.Clone(), nil
}

func (t *Tracker) failEnd(u undo, err error) error {
	t.rollback(u)
	t.failLocked(OpEnd, err)
	t.finish(t.timerLane)
	return err
}

// endRemote retires active and creates the log document, atomically when the
// store supports it. Otherwise the log is created first and removed again if
// the active timer cannot be deleted.
func (t *Tracker) endRemote(ctx context.Context, active store.Document, log store.Payload) (store.Document, error) {
	if ender, ok := t.store.(store.TimerEnder); ok {
		return ender.EndTimer(ctx, active, log)
	}
	created, err := t.store.Create(ctx, store.Logs, log)
	if err != nil {
		return store.Document{}, err
	}
	if err := t.store.Delete(ctx, store.ActiveTimers, active); err != nil {
		if cerr := t.store.Delete(ctx, store.Logs, created); cerr != nil {
			logging.Debugf("tracker: could not remove log %s after failed end: %v\n", created.Key, cerr)
		}
		return store.Document{}, err
	}
	return created, nil
}

// confirmPlaceholderLocked swaps the placeholder for the confirmed entry in place.
func (t *Tracker) confirmPlaceholderLocked(placeholderKey string, entry domain.LogEntry) {
	logs := slices.Clone(t.logs)
	pi := t.indexLocked(placeholderKey)
	ci := t.indexLocked(entry.Key)
	switch {
	case pi >= 0 && ci >= 0:
		// A refresh already brought the confirmed entry in.
		logs = slices.Delete(logs, pi, pi+1)
	case ci >= 0:
		return
	case pi >= 0:
		logs[pi] = entry
	default:
		logs = slices.Insert(logs, 0, entry)
	}
	t.setLogsLocked(logs)
}

// EditLabel sets the running timer's label. The local state changes at once;
// the store is written after the quiet interval.
func (t *Tracker) EditLabel(label string) error {
	if err := t.validator.ValidateLabel(label); err != nil {
		return invalidInput(err)
	}
	t.mu.Lock()
	r, ok := t.state.(domain.Running)
	if !ok {
		t.mu.Unlock()
		return errors.NewInvalidTransitionError(string(OpLabel), t.state.String())
	}
	if r.Label == label {
		t.mu.Unlock()
		return nil
	}
	r.Label = label
	t.setStateLocked(r)
	t.labels.Submit(labelEdit{label: label, startedAt: r.StartedAt})
	t.unlockAndNotify()
	return nil
}

// flushLabel is the debouncer's deferred write.
func (t *Tracker) flushLabel(ctx context.Context, e labelEdit) error {
	if t.remoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.remoteTimeout)
		defer cancel()
	}

	t.mu.Lock()
	t.queuedLabels++
	t.timerLane.acquire()
	err := t.flushLabelLocked(ctx, e)
	t.queuedLabels--
	if err != nil {
		t.failLocked(OpLabel, err)
	}
	t.finish(t.timerLane)
	return err
}

func (t *Tracker) flushLabelLocked(ctx context.Context, e labelEdit) error {
	r, ok := t.state.(domain.Running)
	if !ok || !r.StartedAt.Equal(e.startedAt) {
		return errors.NewStaleOperationError(string(OpLabel), "no active timer")
	}
	same, err := t.reloadStaleActiveLocked(ctx, e.startedAt)
	if err != nil {
		return err
	}
	if t.active == nil || !same {
		return errors.NewStaleOperationError(string(OpLabel), "no active timer")
	}
	if current, _ := t.active.Data.String(domain.FieldLabel); current == e.label {
		return nil
	}
	return t.writeLabelLocked(ctx, e.label)
}

// writeLabelLocked updates the active-timer document's label. Requires t.mu
// and the timer lane; t.mu is released during the store call.
func (t *Tracker) writeLabelLocked(ctx context.Context, label string) error {
	doc := *t.active
	doc.Data = doc.Data.With(domain.FieldLabel, label)

	t.mu.Unlock()
	updated, err := t.store.Update(ctx, store.ActiveTimers, doc)
	t.mu.Lock()
	if err != nil {
		t.stale.ActiveTimer = true
		return remoteError(OpLabel, err)
	}
	t.active = &updated
	logging.Debugf("tracker: label %q written, revision %d\n", label, updated.Version)
	return nil
}

// DeleteLog removes a log entry at once and then deletes its document. If
// the delete fails the collection is restored as it was.
func (t *Tracker) DeleteLog(ctx context.Context, key string) error {
	t.mu.Lock()
	i := t.indexLocked(key)
	if i < 0 {
		t.mu.Unlock()
		return errors.NewNotFoundError("log", key)
	}
	if t.logs[i].Pending {
		t.mu.Unlock()
		return errors.NewInvalidTransitionError(string(OpDeleteLog), "awaiting confirmation")
	}
	u := undo{op: OpDeleteLog, snapshot: t.logs, removed: t.logs[i], index: i}
	t.setLogsLocked(slices.Delete(slices.Clone(t.logs), i, i+1))
	u.gen = t.logsGen
	t.deleting[key] = struct{}{}
	ticket := t.logLane.take()
	t.unlockAndNotify()

	t.mu.Lock()
	t.logLane.wait(ticket)
	rev, ok := t.revisions[key]
	if !ok {
		rev = u.removed.Revision
	}
	t.mu.Unlock()
	err := t.store.Delete(ctx, store.Logs, store.Document{Key: key, Version: rev})
	t.mu.Lock()

	delete(t.deleting, key)
	// A delete returns no sibling data, so the collection is never known fresh.
	t.stale.Logs = true
	if err != nil {
		err = remoteError(OpDeleteLog, err)
		t.rollback(u)
		t.failLocked(OpDeleteLog, err)
		t.finish(t.logLane)
		return err
	}
	delete(t.revisions, key)
	if j := t.indexLocked(key); j >= 0 {
		t.setLogsLocked(slices.Delete(slices.Clone(t.logs), j, j+1))
	}
	logging.Debugf("tracker: log %s deleted\n", key)
	t.finish(t.logLane)
	return nil
}

// SaveLogEdit applies edit to a log entry at once and then updates its
// document at the latest known revision. On failure the entry is restored,
// unless a later edit has replaced it locally.
func (t *Tracker) SaveLogEdit(ctx context.Context, key string, edit domain.LogEdit) (domain.LogEntry, error) {
	if err := t.validator.ValidateLogEdit(edit); err != nil {
		return domain.LogEntry{}, invalidInput(err)
	}

	t.mu.Lock()
	i := t.indexLocked(key)
	if i < 0 {
		t.mu.Unlock()
		return domain.LogEntry{}, errors.NewNotFoundError("log", key)
	}
	if t.logs[i].Pending {
		t.mu.Unlock()
		return domain.LogEntry{}, errors.NewInvalidTransitionError(string(OpSaveLogEdit), "awaiting confirmation")
	}
	prior := t.logs[i]
	applied := edit.Apply(prior)
	logs := slices.Clone(t.logs)
	logs[i] = applied
	t.setLogsLocked(logs)
	u := undo{op: OpSaveLogEdit, prior: prior, applied: applied}
	ticket := t.logLane.take()
	t.unlockAndNotify()

	t.mu.Lock()
	t.logLane.wait(ticket)
	rev, ok := t.revisions[key]
	if !ok {
		err := errors.NewStaleOperationError(string(OpSaveLogEdit), "log entry no longer exists")
		t.rollback(u)
		t.failLocked(OpSaveLogEdit, err)
		t.finish(t.logLane)
		return domain.LogEntry{}, err
	}
	doc := domain.LogDocument(applied)
	doc.Version = rev
	t.mu.Unlock()
	updated, err := t.store.Update(ctx, store.Logs, doc)
	t.mu.Lock()

	if err != nil {
		err = remoteError(OpSaveLogEdit, err)
		if errors.IsErrorType(err, errors.ErrorTypeConflict) || errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			t.stale.Logs = true
		}
		t.rollback(u)
		t.failLocked(OpSaveLogEdit, err)
		t.finish(t.logLane)
		return domain.LogEntry{}, err
	}

	t.revisions[key] = updated.Version
	confirmed, perr := domain.LogFromDocument(updated)
	if perr != nil {
		logging.Debugf("tracker: unreadable log %s: %v\n", updated.Key, perr)
		confirmed = applied
		confirmed.Revision = updated.Version
	}
	// Optimistic entries carry their base revision, so anything older than
	// this confirmation is superseded by it.
	if j := t.indexLocked(key); j >= 0 && t.logs[j].Revision < updated.Version {
		logs := slices.Clone(t.logs)
		logs[j] = confirmed
		t.setLogsLocked(logs)
	}
	logging.Debugf("tracker: log %s saved, revision %d\n", key, updated.Version)
	t.finish(t.logLane)
	return confirmed.Clone(), nil
}

// RefreshActiveTimer re-reads the active timer from the store and adopts it
// as the timer state.
func (t *Tracker) RefreshActiveTimer(ctx context.Context) error {
	t.mu.Lock()
	t.timerLane.acquire()
	err := t.syncActiveLocked(ctx)
	if err == nil {
		err = t.adoptActiveLocked()
	}
	if err != nil {
		t.failLocked(OpRefresh, err)
	}
	t.finish(t.timerLane)
	return err
}

// adoptActiveLocked derives the timer state from t.active. A label still
// waiting to be written, in the debouncer or queued for the timer lane,
// wins over the stored one.
func (t *Tracker) adoptActiveLocked() error {
	if t.active == nil {
		if domain.IsRunning(t.state) {
			t.labels.Cancel()
			t.setStateLocked(domain.Idle{})
		}
		return nil
	}
	a, err := domain.ActiveTimerFromDocument(*t.active)
	if err != nil {
		return err
	}
	next := a.State()
	r, running := t.state.(domain.Running)
	if running && r.StartedAt.Equal(next.StartedAt) && (t.labels.Pending() || t.queuedLabels > 0) {
		next.Label = r.Label
	}
	if running && r.Label == next.Label && r.StartedAt.Equal(next.StartedAt) {
		return nil
	}
	t.setStateLocked(next)
	return nil
}

// reloadStaleActiveLocked re-reads t.active if a failed write left it stale.
// It reports false when the store now holds a different timer from the one
// started at startedAt. A missing timer reports true; callers check t.active.
// Requires t.mu and the timer lane.
func (t *Tracker) reloadStaleActiveLocked(ctx context.Context, startedAt time.Time) (bool, error) {
	if !t.stale.ActiveTimer {
		return true, nil
	}
	var prev string
	if t.active != nil {
		prev = t.active.Key
	}
	if err := t.syncActiveLocked(ctx); err != nil {
		return false, err
	}
	if t.active == nil || t.active.Key == prev {
		return true, nil
	}
	a, err := domain.ActiveTimerFromDocument(*t.active)
	return err == nil && a.StartedAt.Equal(startedAt), nil
}

// dropLogLocked removes the entry with key from the cache, if present.
func (t *Tracker) dropLogLocked(key string) {
	if i := t.indexLocked(key); i >= 0 {
		t.setLogsLocked(slices.Delete(slices.Clone(t.logs), i, i+1))
	}
}

// syncActiveLocked reloads t.active. Requires t.mu and the timer lane.
func (t *Tracker) syncActiveLocked(ctx context.Context) error {
	t.mu.Unlock()
	docs, err := t.store.List(ctx, store.ActiveTimers, store.Filter{})
	t.mu.Lock()
	if err != nil {
		return remoteError(OpRefresh, err)
	}
	if len(docs) > 1 {
		logging.Debugf("tracker: %d active timers stored, using %s\n", len(docs), docs[0].Key)
	}
	t.active = nil
	if len(docs) > 0 {
		doc := docs[0]
		t.active = &doc
	}
	t.stale.ActiveTimer = false
	return nil
}

// RefreshLogs re-reads the log collection. Unconfirmed placeholders stay at
// the front and entries being deleted stay hidden.
func (t *Tracker) RefreshLogs(ctx context.Context) error {
	t.mu.Lock()
	t.logLane.acquire()
	t.mu.Unlock()
	docs, err := t.store.List(ctx, store.Logs, store.Filter{})
	t.mu.Lock()

	if err != nil {
		err = remoteError(OpRefresh, err)
		t.stale.Logs = true
		t.failLocked(OpRefresh, err)
		t.finish(t.logLane)
		return err
	}

	entries := make([]domain.LogEntry, 0, len(docs))
	revisions := make(map[string]int64, len(docs))
	for _, doc := range docs {
		e, perr := domain.LogFromDocument(doc)
		if perr != nil {
			logging.Debugf("tracker: skipping unreadable log %s: %v\n", doc.Key, perr)
			continue
		}
		revisions[e.Key] = e.Revision
		if _, gone := t.deleting[e.Key]; gone {
			continue
		}
		entries = append(entries, e)
	}
	slices.SortStableFunc(entries, func(a, b domain.LogEntry) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	var logs []domain.LogEntry
	for _, e := range t.logs {
		if e.Pending {
			logs = append(logs, e)
		}
	}
	logs = append(logs, entries...)

	t.revisions = revisions
	t.stale.Logs = false
	t.setLogsLocked(logs)
	t.finish(t.logLane)
	return nil
}

func (t *Tracker) indexLocked(key string) int {
	return slices.IndexFunc(t.logs, func(e domain.LogEntry) bool { return e.Key == key })
}

func (t *Tracker) setStateLocked(s domain.TimerState) {
	t.state = s
	t.events = append(t.events, Event{Kind: EventStateChanged, State: s})
}

// setLogsLocked installs logs, which must not share a backing array with the
// current collection: earlier slices are kept as rollback snapshots.
func (t *Tracker) setLogsLocked(logs []domain.LogEntry) {
	t.logs = logs
	t.logsGen++
	t.events = append(t.events, Event{Kind: EventLogsChanged, State: t.state})
}

func (t *Tracker) failLocked(op Operation, err error) {
	logging.Debugf("tracker: %s failed: %v\n", op, err)
	t.events = append(t.events, Event{Kind: EventFailed, Op: op, State: t.state, Err: err})
}

// finish releases l and t.mu and delivers queued events.
func (t *Tracker) finish(l *lane) {
	l.release()
	t.unlockAndNotify()
}

// unlockAndNotify releases t.mu, then hands queued events to the observer.
func (t *Tracker) unlockAndNotify() {
	events := t.events
	t.events = nil
	observer := t.observer
	t.mu.Unlock()

	if observer == nil {
		return
	}
	for _, e := range events {
		observer(e)
	}
}

// remoteError classifies a store error. Conflicts and missing documents pass
// through unchanged so callers can refresh and retry.
func remoteError(op Operation, err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		switch appErr.Type {
		case errors.ErrorTypeConflict, errors.ErrorTypeNotFound, errors.ErrorTypeTimeout,
			errors.ErrorTypeRemote, errors.ErrorTypeStaleOperation:
			return err
		}
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(string(op), err)
	}
	return errors.NewRemoteError(string(op), err)
}

func invalidInput(err error) error {
	msg := err.Error()
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		msg = ve.GetUserFriendlyMessage()
	}
	return errors.NewValidationError(msg, err)
}
