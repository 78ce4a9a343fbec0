package reactor

import "sync"

// Registration is the handle a Source owner keeps across Register,
// Reregister and Deregister calls: a mutex-guarded cell holding the
// reactor's taskSlot once registration succeeds.
//
// The spin-locked pointer cell this is grounded on is a bit-packed
// atomic word in the original; Go's garbage collector doesn't scan
// integer-typed atomics, so packing a live *taskSlot into one would hide
// it from the collector while the OS poller's fd table is the only other
// place holding it. A short-held mutex keeps the field ordinarily typed
// (visible to the GC) while giving the same guarantee the original
// actually needs: a brief, allocation-free critical section serializing
// concurrent register/reregister/deregister calls against the same
// Registration.
type Registration struct {
	mu   sync.Mutex
	slot *taskSlot
}

func (r *Registration) get() *taskSlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slot
}

func (r *Registration) set(slot *taskSlot) *taskSlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.slot
	r.slot = slot
	return old
}
