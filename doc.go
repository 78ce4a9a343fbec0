// Package corexec is a single-threaded asynchronous runtime core: a task
// pool and an I/O readiness reactor, composed into a Runtime that drives
// both from one goroutine.
//
// Runtime is the composition root. It owns a pool.Pool (spawned Futures,
// polled to completion) and a reactor.Reactor (OS-backed readiness
// notification for registered file descriptors), parked against each other
// through a park.ReactorPark so that a call to Run or RunUntil services
// both task wakeups and I/O readiness in the same blocking wait.
//
// The subpackages are usable on their own: pool.Pool accepts any pool.Park,
// not just a Reactor, and reactor.Reactor's readiness primitives
// (PollReadReady, PollWriteReady) are plain poll methods taking a
// future.Context, callable from any Future's Poll. Runtime exists for the
// common case of wanting both together without wiring them up by hand.
//
// Scope is deliberately narrow: no timers, no promises, no microtask queue.
// Anything needing scheduled wakeups builds it on top, using a Reactor's
// Wake and a Future that checks a deadline on each poll.
package corexec
