package session

import "errors"

// ErrInvalidState is returned when an operation is not allowed in the
// session's current state.
var ErrInvalidState = errors.New("invalid session state")

// State is the lifecycle position of a session.
type State int

const (
	Idle State = iota
	Connecting
	Streaming
	Completed
	Aborted
	Failed
)

var stateNames = [...]string{
	Idle:       "idle",
	Connecting: "connecting",
	Streaming:  "streaming",
	Completed:  "completed",
	Aborted:    "aborted",
	Failed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends a session.
func (s State) Terminal() bool {
	return s == Completed || s == Aborted || s == Failed
}

// Active reports whether a read loop is running in s.
func (s State) Active() bool {
	return s == Connecting || s == Streaming
}

// canTransition lists the only forward moves a running session can make.
// Returning to Idle is a reset done by Clear, not a transition.
func canTransition(from, to State) bool {
	switch from {
	case Idle:
		return to == Connecting
	case Connecting:
		return to == Streaming || to.Terminal()
	case Streaming:
		return to.Terminal()
	default:
		return false
	}
}
