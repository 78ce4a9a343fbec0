package corecurrent

import (
	"fmt"
	"sync"
)

// Registry is a scoped slot holding at most one installed value per calling
// goroutine. It is the primitive behind the reactor-handle and
// spawner-handle "current" lookups: code running inside Enter's closure (and
// anything it calls, on the same goroutine) can retrieve the installed value
// via Get.
type Registry[T any] struct {
	mu sync.Mutex
	m  map[uint64]T
}

// New returns an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{m: make(map[uint64]T)}
}

// Enter installs value for the calling goroutine, runs f, then clears the
// slot — even if f panics. Enter panics immediately, without running f, if
// the calling goroutine already has a value installed: nested entry is a
// programming error, not a condition to silently stack.
func (r *Registry[T]) Enter(value T, f func()) {
	id := goroutineID()

	r.mu.Lock()
	if _, exists := r.m[id]; exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("corecurrent: nested Enter on goroutine %d", id))
	}
	r.m[id] = value
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.m, id)
		r.mu.Unlock()
	}()

	f()
}

// Get returns the value installed for the calling goroutine, if any.
func (r *Registry[T]) Get() (T, bool) {
	id := goroutineID()
	r.mu.Lock()
	v, ok := r.m[id]
	r.mu.Unlock()
	return v, ok
}
