package ingest

import (
	"log/slog"
	"sync/atomic"
)

// State is the coordinator's position in a run. It only moves forward.
type State int32

const (
	StateIdle State = iota
	StateReading
	StateBatching
	StateDispatching
	StateWaiting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateBatching:
		return "batching"
	case StateDispatching:
		return "dispatching"
	case StateWaiting:
		return "waiting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

type stateMachine struct {
	cur    atomic.Int32
	logger *slog.Logger
}

func newStateMachine(logger *slog.Logger) *stateMachine {
	return &stateMachine{logger: logger}
}

// advance moves to s if it is ahead of the current state.
func (m *stateMachine) advance(s State) bool {
	for {
		cur := m.cur.Load()
		if State(cur) >= s {
			return false
		}
		if m.cur.CompareAndSwap(cur, int32(s)) {
			m.logger.Debug("state changed", "from", State(cur).String(), "to", s.String())
			return true
		}
	}
}

func (m *stateMachine) current() State {
	return State(m.cur.Load())
}
