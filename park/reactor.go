package park

import (
	"time"

	"github.com/joeycumines/go-corexec/reactor"
)

// ReactorPark adapts a reactor.Reactor to pool.Park, so a single drive
// loop both runs spawned tasks and services I/O readiness: Park blocks in
// the reactor's OS poller, and Unpark breaks it out without registering or
// touching any source.
type ReactorPark struct {
	Reactor *reactor.Reactor
}

// NewReactorPark wraps r as a Park.
func NewReactorPark(r *reactor.Reactor) ReactorPark {
	return ReactorPark{Reactor: r}
}

// Park blocks in the reactor's OS poller for up to timeout (a negative
// timeout blocks indefinitely), dispatching any I/O readiness observed.
func (p ReactorPark) Park(timeout time.Duration) error {
	return p.Reactor.Poll(timeout)
}

// Unpark breaks a concurrent Park call out of the OS poller early.
func (p ReactorPark) Unpark() {
	p.Reactor.Wake()
}
