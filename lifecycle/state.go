// Package lifecycle provides the cache-line-padded, CAS-transitioned state
// machine shared by reactor.Reactor, pool.Pool and corexec.Runtime, adapted
// from the teacher's own FastState/LoopState pattern to each component's own
// two-to-four-state lifecycle rather than the JS event loop's five states.
package lifecycle

import "sync/atomic"

// State is a lifecycle stage. Not every component uses every value — a
// Reactor has no ShuttingDown phase (Close is immediate), while a Runtime
// uses all four.
type State uint32

const (
	// Created is the state immediately after construction, before the
	// component has started doing anything.
	Created State = iota
	// Running means the component is actively driving work.
	Running
	// ShuttingDown means a shutdown has been requested but outstanding work
	// (or an in-flight drive call) hasn't wound down yet.
	ShuttingDown
	// Closed is terminal: the component's resources are torn down and it
	// will do no further work.
	Closed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting down"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// FastState is a lock-free state cell with cache-line padding on either
// side of the value, so frequent Load calls from the driving goroutine
// don't false-share a cache line with whatever a concurrent Shutdown/Close
// caller last touched.
type FastState struct {
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

// New returns a FastState initialized to Created.
func New() *FastState {
	s := &FastState{}
	s.v.Store(uint32(Created))
	return s
}

// Load returns the current state.
func (s *FastState) Load() State { return State(s.v.Load()) }

// Store unconditionally sets the state, for the terminal transitions that
// have no meaningful "from" to validate (e.g. first construction).
func (s *FastState) Store(state State) { s.v.Store(uint32(state)) }

// TryTransition attempts the from->to transition via CAS, reporting success.
func (s *FastState) TryTransition(from, to State) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// IsClosed reports whether the state has reached Closed.
func (s *FastState) IsClosed() bool { return s.Load() == Closed }
