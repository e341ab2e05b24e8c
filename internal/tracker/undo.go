package tracker

import (
	"slices"

	"timesheet/internal/domain"
	"timesheet/internal/logging"
)

// undo records what an optimistic mutation changed so that rollback can
// revert it if the remote write fails.
type undo struct {
	op Operation

	// start
	optimistic domain.Running

	// end
	captured       domain.Running
	placeholderKey string
	labelPending   bool

	// delete log
	snapshot []domain.LogEntry
	removed  domain.LogEntry
	index    int
	gen      uint64

	// edit log
	prior   domain.LogEntry
	applied domain.LogEntry
}

// rollback reverts u. Local state that has moved on since the mutation is
// left alone. Requires t.mu.
func (t *Tracker) rollback(u undo) {
	logging.Debugf("tracker: rolling back %s\n", u.op)

	switch u.op {
	case OpStart:
		t.stale.ActiveTimer = true
		if r, ok := t.state.(domain.Running); ok && r.StartedAt.Equal(u.optimistic.StartedAt) {
			t.labels.Cancel()
			t.setStateLocked(domain.Idle{})
		}

	case OpEnd:
		t.stale.ActiveTimer = true
		t.stale.Logs = true
		if i := t.indexLocked(u.placeholderKey); i >= 0 {
			t.setLogsLocked(slices.Delete(slices.Clone(t.logs), i, i+1))
		}
		if _, idle := t.state.(domain.Idle); idle {
			t.setStateLocked(u.captured)
			if u.labelPending {
				t.labels.Submit(labelEdit{label: u.captured.Label, startedAt: u.captured.StartedAt})
			}
		}

	case OpDeleteLog:
		if t.logsGen == u.gen {
			t.setLogsLocked(u.snapshot)
			return
		}
		// Something else changed the collection meanwhile; put the entry back
		// where it was without discarding that change.
		if t.indexLocked(u.removed.Key) >= 0 {
			return
		}
		logs := slices.Clone(t.logs)
		i := min(u.index, len(logs))
		t.setLogsLocked(slices.Insert(logs, i, u.removed))

	case OpSaveLogEdit:
		i := t.indexLocked(u.applied.Key)
		if i < 0 || !sameEntry(t.logs[i], u.applied) {
			return
		}
		logs := slices.Clone(t.logs)
		logs[i] = u.prior
		t.setLogsLocked(logs)
	}
}

func sameEntry(a, b domain.LogEntry) bool {
	if a.Key != b.Key || a.Label != b.Label || a.Pending != b.Pending ||
		!a.StartedAt.Equal(b.StartedAt) || !a.EndedAt.Equal(b.EndedAt) {
		return false
	}
	if (a.Rate == nil) != (b.Rate == nil) {
		return false
	}
	return a.Rate == nil || *a.Rate == *b.Rate
}
