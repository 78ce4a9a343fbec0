package pool

import (
	"sync/atomic"

	"github.com/joeycumines/go-corexec/future"
	"github.com/joeycumines/go-corexec/intrusive"
)

// Task is one spawned computation: its Future, the lists it belongs to,
// and the coalescing flags that make repeated wakes before the next poll
// collapse into a single re-queue instead of piling up.
type Task struct {
	fut  future.Future
	pool *Pool

	localNode  intrusive.Node[Task]
	readyNode  intrusive.Node[Task]
	globalLink intrusive.Link[Task]

	alive        atomic.Bool
	readyQueued  atomic.Bool
	globalQueued atomic.Bool
	pendingNew   bool
}

func newTask(pool *Pool, fut future.Future) *Task {
	t := &Task{fut: fut, pool: pool}
	t.localNode = *intrusive.NewNode(t)
	t.readyNode = *intrusive.NewNode(t)
	t.globalLink = *intrusive.NewLink(t)
	t.alive.Store(true)
	return t
}

// Wake implements future.Waker. A task may be woken any number of times,
// from any goroutine, concurrently with being polled; repeated wakes
// before the next poll coalesce into a single re-queue entry.
func (t *Task) Wake() {
	if !t.alive.Load() {
		return
	}
	if t.pool.isOwnerThread() {
		t.localWake()
		return
	}
	t.foreignWake()
}

// localWake is only safe to call from the pool's own driving goroutine: it
// touches local-ready directly, which is not otherwise synchronized.
func (t *Task) localWake() {
	if t.readyQueued.CompareAndSwap(false, true) {
		t.pool.localReady.Append(&t.readyNode)
	}
}

// foreignWake is safe from any goroutine: it only ever touches the
// thread-safe global MPSC, never local-ready directly.
func (t *Task) foreignWake() {
	if t.globalQueued.CompareAndSwap(false, true) {
		t.pool.global.Push(&t.globalLink)
	}
	t.pool.unparkCurrent()
}

// complete marks the task no longer alive and removes it from local-all.
// Idempotent: a panic mid-poll and a normal Ready return both call this,
// and only the first one does anything.
func (t *Task) complete() {
	if t.alive.CompareAndSwap(true, false) {
		t.pool.localAll.Unlink(&t.localNode)
	}
}
