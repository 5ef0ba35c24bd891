package session

import "sync/atomic"

// State represents the lifecycle stage of a session.
type State uint32

// Session states.
const (
	// ClosedState indicates that no hardware handles are held.
	ClosedState State = iota
	// OpenState indicates that the hardware handles are acquired but the detector is not configured.
	OpenState
	// ArmedState indicates that windows and regions are configured and the detector is idle.
	ArmedState
	// CountingState indicates an active scan.
	CountingState
)

// String returns string representation of the state.
func (s State) String() string {
	switch s {
	case ClosedState:
		return "closed"
	case OpenState:
		return "open"
	case ArmedState:
		return "armed"
	case CountingState:
		return "counting"
	default:
		return "unknown"
	}
}

// IsClosed returns if the state is closed.
func (s State) IsClosed() bool { return s == ClosedState }

// IsCounting returns if the state is counting.
func (s State) IsCounting() bool { return s == CountingState }

// IsConfigured returns if windows and regions have been pushed to the hardware.
func (s State) IsConfigured() bool { return s == ArmedState || s == CountingState }

type atomicState struct {
	state atomic.Uint32
}

func (st *atomicState) Get() State {
	return State(st.state.Load())
}

func (st *atomicState) Set(state State) {
	st.state.Store(uint32(state))
}
