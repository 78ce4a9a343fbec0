package pool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-corexec/corecurrent"
	"github.com/joeycumines/go-corexec/corerr"
	"github.com/joeycumines/go-corexec/future"
	"github.com/joeycumines/go-corexec/intrusive"
	"github.com/joeycumines/go-corexec/lifecycle"
)

// Pool drives a set of spawned Futures to completion on a single
// goroutine. Spawn is safe from any goroutine; PollRound, RunUntil and Run
// must each be called from the same goroutine as one another for the
// lifetime of the Pool (enforced: nesting or concurrent driving calls
// panic).
type Pool struct {
	localAll   *intrusive.List[Task]
	localReady *intrusive.List[Task]
	global     *intrusive.Queue[Task]

	executor       *corecurrent.Executor
	ownerGoroutine atomic.Uint64

	parkMu  sync.Mutex
	current Park

	state *lifecycle.FastState

	cfg config
}

// New returns an empty Pool.
func New(opts ...Option) *Pool {
	return &Pool{
		localAll:   intrusive.NewList[Task](),
		localReady: intrusive.NewList[Task](),
		global:     intrusive.NewQueue[Task](),
		executor:   corecurrent.NewExecutor(),
		cfg:        resolveOptions(opts),
		state:      lifecycle.New(),
	}
}

// Spawner is a cheap, cloneable handle for adding work to a Pool. Unlike
// the refcounted handle the original is grounded on, Go's garbage
// collector keeps the Pool reachable for as long as any Spawner exists;
// the Pool's own Shutdown call, not handle lifetime, is what makes further
// Spawn calls fail.
type Spawner struct {
	pool *Pool
}

// Spawner returns a handle for spawning work onto p.
func (p *Pool) Spawner() Spawner { return Spawner{pool: p} }

// Spawn queues fut for polling. Safe from any goroutine. Fails with a
// Shutdown-kind error once the Pool has been shut down.
func (s Spawner) Spawn(fut future.Future) (*Task, error) {
	return s.pool.Spawn(fut)
}

// Spawn is the Pool-owning equivalent of Spawner.Spawn.
func (p *Pool) Spawn(fut future.Future) (*Task, error) {
	if p.state.IsClosed() {
		return nil, corerr.New("pool.Spawn", corerr.Shutdown)
	}

	t := newTask(p, fut)

	if p.isOwnerThread() {
		p.localAll.Append(&t.localNode)
		t.readyQueued.Store(true)
		p.localReady.Append(&t.readyNode)
		return t, nil
	}

	t.pendingNew = true
	t.globalQueued.Store(true)
	p.global.Push(&t.globalLink)
	p.unparkCurrent()
	return t, nil
}

// Shutdown marks the pool closed to new work; outstanding Spawn calls in
// flight may still land, but every call after Shutdown returns fails.
func (p *Pool) Shutdown() {
	p.state.Store(lifecycle.Closed)
}

func (p *Pool) isOwnerThread() bool {
	id := p.ownerGoroutine.Load()
	return id != 0 && id == corecurrent.GoroutineID()
}

func (p *Pool) unparkCurrent() {
	p.parkMu.Lock()
	cur := p.current
	p.parkMu.Unlock()
	if cur != nil {
		cur.Unpark()
	}
}

// drainGlobal folds every entry pushed to the global MPSC since the last
// drain into local-ready, linking newly spawned tasks into local-all
// first. Must only be called from the driving goroutine.
func (p *Pool) drainGlobal() {
	p.global.Drain(func(t *Task) {
		t.globalQueued.Store(false)
		if t.pendingNew {
			t.pendingNew = false
			if !t.alive.Load() {
				return
			}
			p.localAll.Append(&t.localNode)
		} else if !t.alive.Load() {
			return
		}
		if t.readyQueued.CompareAndSwap(false, true) {
			p.localReady.Append(&t.readyNode)
		}
	})
}

// PollRound drains the global queue, then takes a snapshot of local-ready
// and polls every task in that snapshot exactly once each. A task that
// re-queues itself (by waking its own task from within its own poll) lands
// back in local-ready, not the snapshot being drained, so it is picked up
// by the *next* round rather than re-polled immediately — an unbounded
// self-waking task still terminates this call. Reports whether any task was
// polled.
//
// A panic escaping a task's Poll is allowed to propagate out of PollRound:
// the panicking task is marked complete first (so it isn't left dangling
// in local-all), and every sibling still in the snapshot is reinstated into
// local-ready before the panic continues to unwind, so a later round picks
// them back up instead of losing them.
func (p *Pool) PollRound() bool {
	p.drainGlobal()

	round := intrusive.NewList[Task]()
	round.TakeFrom(p.localReady)

	progressed := false
	defer func() {
		if r := recover(); r != nil {
			for {
				t, ok := round.PopFront()
				if !ok {
					break
				}
				p.localReady.Append(&t.readyNode)
			}
			panic(r)
		}
	}()

	for {
		task, ok := round.PopFront()
		if !ok {
			break
		}
		task.readyQueued.Store(false)
		progressed = true
		p.pollTask(task)
	}
	return progressed
}

func (p *Pool) pollTask(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			t.complete()
			if p.cfg.logger != nil && p.cfg.logger.Throttled("pool.panic_recovered") {
				p.cfg.logger.Err().Err(panicAsError(r)).Log("pool: panic recovered from task poll, re-raising")
			}
			panic(r)
		}
	}()
	cx := future.NewContext(t)
	if t.fut.Poll(cx) == future.Ready {
		t.complete()
	}
}

// panicAsError adapts an arbitrary recover() value to an error for logging,
// without altering what gets re-panicked.
func panicAsError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// drive installs the calling goroutine as the Pool's owner and park as its
// current Park for the duration of body, panicking if the Pool is already
// being driven (by this or any other goroutine).
func (p *Pool) drive(park Park, body func()) {
	p.executor.EnterExecutor(func(corecurrent.Token) {
		if !p.ownerGoroutine.CompareAndSwap(0, corecurrent.GoroutineID()) {
			panic("pool: already being driven by another goroutine")
		}
		p.parkMu.Lock()
		p.current = park
		p.parkMu.Unlock()
		defer func() {
			p.parkMu.Lock()
			p.current = nil
			p.parkMu.Unlock()
			p.ownerGoroutine.Store(0)
		}()
		body()
	})
}

// Run drives every spawned task to completion, including ones spawned
// during the run, parking between rounds whenever local-ready has nothing
// left. It returns once local-all is empty.
func (p *Pool) Run(park Park) error {
	p.drive(park, func() {
		for {
			p.PollRound()
			if p.localAll.IsEmpty() {
				return
			}
			if !p.localReady.IsEmpty() {
				// A task requeued itself (e.g. via a self-wake) during the
				// round just finished; it's due next round, not after a
				// park wait nobody will necessarily break.
				continue
			}
			_ = park.Park(-1)
		}
	})
	return nil
}

// driverWaker is the Waker handed to RunUntil's driving Future. It isn't a
// Task and isn't spawned onto the pool, but it routes through the same
// owner-thread-or-global Unpark signal every Task uses.
type driverWaker struct {
	pool  *Pool
	woken atomic.Bool
}

func (d *driverWaker) Wake() {
	d.woken.Store(true)
	d.pool.unparkCurrent()
}

// RunUntil drives driver to completion, running the pool's spawned tasks
// around it, and returns driver's result. Unlike Run, it does not drain
// local-ready once more after driver becomes Ready: any tasks still
// pending at that point are left exactly as they are, to be picked up by a
// later PollRound/RunUntil/Run call.
func RunUntil[T any](p *Pool, park Park, driver future.Output[T]) (T, error) {
	var result T
	var gotResult bool

	dw := &driverWaker{pool: p}
	p.drive(park, func() {
		cx := future.NewContext(dw)
		for {
			dw.woken.Store(false)
			if v, poll := driver.Poll(cx); poll == future.Ready {
				result = v
				gotResult = true
				return
			}
			p.PollRound()
			if dw.woken.Load() || !p.localReady.IsEmpty() {
				continue
			}
			_ = park.Park(-1)
		}
	})

	if !gotResult {
		var zero T
		return zero, corerr.New("pool.RunUntil", corerr.Other)
	}
	return result, nil
}
