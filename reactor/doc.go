// Package reactor implements the single-threaded I/O readiness reactor: one
// OS poller (epoll on Linux, kqueue on Darwin) driving a table of
// registered sources, each with an independent read and write readiness
// slot that a Future can park against.
//
// Registration changes (Register, Reregister, Deregister) are funnelled
// through an intrusive MPSC change queue rather than touching the OS
// poller directly, so they're safe to call from any goroutine while the
// reactor's own Poll loop runs on exactly one. The queue is drained at the
// top and bottom of every poll round.
//
// A source's readiness slot survives independently of the reactor: if the
// reactor is torn down while a Future still holds a Registration, the
// slot's weak reactor handle resolves to nothing and polling it reports
// ReactorGone instead of hanging.
package reactor
