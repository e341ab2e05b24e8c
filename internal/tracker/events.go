package tracker

import "timesheet/internal/domain"

// Operation names a tracker operation in events and errors.
type Operation string

const (
	OpStart       Operation = "start"
	OpEnd         Operation = "end"
	OpLabel       Operation = "edit label"
	OpDeleteLog   Operation = "delete log"
	OpSaveLogEdit Operation = "edit log"
	OpRefresh     Operation = "refresh"
)

// EventKind classifies an Event.
type EventKind string

const (
	// EventStateChanged follows any change to the timer state.
	EventStateChanged EventKind = "state_changed"
	// EventLogsChanged follows any change to the cached log collection.
	EventLogsChanged EventKind = "logs_changed"
	// EventFailed reports a failed or discarded remote operation. Any
	// rollback has already been applied when it is delivered.
	EventFailed EventKind = "failed"
)

// Event is delivered to the Observer after the tracker's lock is released,
// so observers may call back into the tracker.
type Event struct {
	Kind  EventKind
	Op    Operation
	State domain.TimerState
	Err   error
}

// Observer receives tracker events. It may be called from any goroutine.
type Observer func(Event)
