package future

import "sync"

// AtomicWaker holds at most one registered Waker, safe for one writer
// (Register, called by the polling side) racing one independent waker
// (Wake, called by whatever fires the event). This runtime's wake slots are
// always single-writer/single-reader by construction (spec'd per-source,
// per-side), so a short-held mutex is used instead of a lock-free CAS cell —
// the same call the teacher package makes in its own single-writer spots
// (favoring a plain mutex over a lock-free structure when contention is
// inherently low).
type AtomicWaker struct {
	mu    sync.Mutex
	waker Waker
}

// Register stores waker, replacing any previously registered one.
func (w *AtomicWaker) Register(waker Waker) {
	w.mu.Lock()
	w.waker = waker
	w.mu.Unlock()
}

// Wake takes the registered waker, if any, and wakes it. Safe to call when
// nothing is registered (no-op).
func (w *AtomicWaker) Wake() {
	w.mu.Lock()
	waker := w.waker
	w.waker = nil
	w.mu.Unlock()
	if waker != nil {
		waker.Wake()
	}
}
