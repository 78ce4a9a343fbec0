// Package pool implements the single-threaded task pool: a set of spawned
// Futures driven to completion by one goroutine, plus a Spawner handle
// that lets any goroutine queue new work. An already-spawned task is woken
// through its own Task.Wake.
//
// A live task is linked into local-all (every spawned task not yet
// complete) and, while it is due to be polled again, also into local-ready.
// A task spawned from outside the driving goroutine is linked into neither
// until the next drain of the global queue.
// Both are plain, non-thread-safe intrusive lists, since only the pool's
// own driving goroutine ever touches them. A task woken from its own
// driving goroutine is reinserted into local-ready directly; a task woken
// from anywhere else is pushed onto an intrusive MPSC (global) and the
// pool's current Park, if any, is unparked so the drive loop notices.
package pool
