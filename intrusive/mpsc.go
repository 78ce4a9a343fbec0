package intrusive

import "sync/atomic"

// Link is an intrusive MPSC queue node, embedded as a field of the owning T.
type Link[T any] struct {
	next  atomic.Pointer[Link[T]]
	owner *T
}

// NewLink returns a link owned by the given value, initially not enqueued.
func NewLink[T any](owner *T) *Link[T] {
	return &Link[T]{owner: owner}
}

// Queue is a Vyukov-style intrusive multi-producer single-consumer queue.
// Push is safe from any number of goroutines concurrently; Drain must only
// ever be called from a single goroutine at a time (the consumer).
//
// The queue always contains a permanent stub link. Consuming never observes
// a transient empty-and-about-to-become-nonempty state as a hard empty,
// because the stub keeps the tail pointer non-nil at all times; the stub is
// detached and immediately re-pushed when the consumer reaches it, and Drain
// terminates the moment it revisits the stub a second time, bounding the
// cost of a single drain even under continuous concurrent pushes.
type Queue[T any] struct {
	tail atomic.Pointer[Link[T]]
	head *Link[T]
	stub Link[T]
}

// NewQueue returns an empty queue.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.tail.Store(&q.stub)
	q.head = &q.stub
	return q
}

// Push enqueues n. Safe for concurrent use by multiple producers. n must not
// already be enqueued on this or any other queue.
func (q *Queue[T]) Push(n *Link[T]) {
	prev := q.tail.Swap(n)
	prev.next.Store(n)
}

// Drain pops every currently-available entry, calling fn with each owner in
// FIFO order. Must only be called by the single consumer goroutine. A node
// whose predecessor's store to link it in has not yet completed (a producer
// is mid-Push) is simply left for the next Drain call. The stub is detached
// and immediately re-pushed the first time it is encountered, and Drain
// terminates the moment it encounters the stub a second time, bounding the
// cost of a single call even under continuous concurrent pushes.
func (q *Queue[T]) Drain(fn func(owner *T)) {
	pos := q.head
	repushedStub := false
	for {
		next := pos.next.Swap(nil)
		if next == nil {
			break
		}
		item := pos
		pos = next
		if item == &q.stub {
			breakLoop := repushedStub
			repushedStub = true
			q.Push(item)
			if breakLoop {
				break
			}
			continue
		}
		fn(item.owner)
	}
	q.head = pos
}
