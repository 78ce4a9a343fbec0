package reactor

import (
	"sync"
	"time"

	"github.com/joeycumines/go-corexec/corerr"
	"github.com/joeycumines/go-corexec/future"
	"github.com/joeycumines/go-corexec/intrusive"
	"github.com/joeycumines/go-corexec/lifecycle"
)

// maxFDs bounds the fd-indexed dispatch table the reactor uses to resolve
// a polled fd back to its taskSlot without a map lookup on the hot path,
// the same direct-indexing trade the teacher's FastPoller makes.
const maxFDs = 65536

// Reactor owns exactly one OS poller and the readiness state of every
// source currently registered with it. A Reactor is meant to be driven by
// a single goroutine (Poll is not safe to call concurrently with itself);
// Register, Reregister and Deregister are safe from any goroutine.
type Reactor struct {
	poller *platformPoller
	wake   wakeFD
	waker  selfWaker

	slotsMu sync.Mutex
	slots   [maxFDs]*taskSlot

	changeQueue *intrusive.Queue[taskSlot]
	liveList    *intrusive.List[taskSlot]

	cfg config

	state *lifecycle.FastState
}

// New creates a Reactor, bringing up the platform poller and the
// self-wake fd.
func New(opts ...Option) (*Reactor, error) {
	poller, err := newPlatformPoller()
	if err != nil {
		return nil, corerr.Wrap("reactor.New", corerr.OS, err)
	}
	wake, err := newWakeFD()
	if err != nil {
		_ = poller.close()
		return nil, corerr.Wrap("reactor.New", corerr.OS, err)
	}
	if err := poller.add(wake.readFD(), EventRead); err != nil {
		_ = wake.Close()
		_ = poller.close()
		return nil, corerr.Wrap("reactor.New", corerr.OS, err)
	}

	r := &Reactor{
		poller:      poller,
		wake:        wake,
		changeQueue: intrusive.NewQueue[taskSlot](),
		liveList:    intrusive.NewList[taskSlot](),
		cfg:         resolveOptions(opts),
		state:       lifecycle.New(),
	}
	r.waker.fd = wake
	r.state.Store(lifecycle.Running)
	return r, nil
}

// isClosed reports whether Close has completed.
func (r *Reactor) isClosed() bool { return r.state.Load() == lifecycle.Closed }

// logPollerError reports a poller syscall failure through the configured
// logger, throttled per category, or drops it silently if no logger was
// configured.
func (r *Reactor) logPollerError(category string, op string, fd int, err error) {
	if r.cfg.logger == nil || err == nil || !r.cfg.logger.Throttled(category) {
		return
	}
	r.cfg.logger.Warning().Str("op", op).Int("fd", fd).Err(err).Log("reactor: poller syscall failed")
}

// Register begins registering source for the given read/write interest
// masks. Registration is queued and applied to the OS poller the next
// time Poll drains its change queue, so it's safe to call from any
// goroutine, not only the one driving Poll.
func (r *Reactor) Register(source Source, readMask, writeMask IOEvents) (*Registration, error) {
	if r.isClosed() {
		return nil, corerr.New("reactor.Register", corerr.ReactorGone)
	}
	fd := source.Fd()
	if fd < 0 || fd >= maxFDs {
		return nil, corerr.New("reactor.Register", corerr.Other)
	}

	slot := newTaskSlot(source, r, readMask, writeMask)
	slot.pendingOp = opRegister
	reg := &Registration{}
	reg.set(slot)
	r.enqueue(slot)
	return reg, nil
}

// Reregister changes the interest masks of an already-registered source.
func (r *Reactor) Reregister(reg *Registration, readMask, writeMask IOEvents) error {
	slot := reg.get()
	if slot == nil {
		return corerr.New("reactor.Reregister", corerr.NotRegistered)
	}
	slot.readMask = readMask
	slot.writeMask = writeMask
	slot.pendingOp = opReregister
	r.enqueue(slot)
	return nil
}

// Deregister withdraws reg's source from the reactor. Any Future parked
// on the slot's read or write readiness is woken so it can observe
// ReactorGone rather than hang.
func (r *Reactor) Deregister(reg *Registration) error {
	slot := reg.set(nil)
	if slot == nil {
		return corerr.New("reactor.Deregister", corerr.NotRegistered)
	}
	slot.markDeregistered()
	slot.pendingOp = opDeregister
	r.enqueue(slot)
	slot.readWaker.Wake()
	slot.writeWaker.Wake()
	return nil
}

// PollReadReady reports reg's source's accumulated read readiness, parking
// cx's waker against it (with the no-lost-wake double-check) if none is
// available yet.
func (r *Reactor) PollReadReady(reg *Registration, cx *future.Context) (IOEvents, future.Poll, error) {
	slot := reg.get()
	if slot == nil {
		return 0, future.Ready, corerr.New("reactor.PollReadReady", corerr.NotRegistered)
	}
	return slot.pollReadReady(cx)
}

// PollWriteReady is PollReadReady's write-side twin.
func (r *Reactor) PollWriteReady(reg *Registration, cx *future.Context) (IOEvents, future.Poll, error) {
	slot := reg.get()
	if slot == nil {
		return 0, future.Ready, corerr.New("reactor.PollWriteReady", corerr.NotRegistered)
	}
	return slot.pollWriteReady(cx)
}

func (r *Reactor) enqueue(slot *taskSlot) {
	if slot.trySetQueued() {
		r.changeQueue.Push(&slot.queueLink)
	}
	r.waker.wake()
}

func (r *Reactor) drainChanges() {
	limit := r.cfg.drainBatchLimit
	applied := 0
	r.changeQueue.Drain(func(slot *taskSlot) {
		slot.clearQueued()
		if limit > 0 && applied >= limit {
			// Defer this change to the next drain round rather than let an
			// unbounded burst of registration churn starve event dispatch.
			r.enqueue(slot)
			return
		}
		applied++
		if slot.isDeregistered() {
			r.removeSlot(slot)
			return
		}
		switch slot.pendingOp {
		case opRegister:
			r.addSlot(slot)
		case opReregister:
			r.modifySlot(slot)
		case opDeregister:
			r.removeSlot(slot)
		}
	})
}

func (r *Reactor) addSlot(slot *taskSlot) {
	fd := slot.source.Fd()
	r.slotsMu.Lock()
	r.slots[fd] = slot
	r.slotsMu.Unlock()
	r.liveList.Append(&slot.listNode)
	if err := r.poller.add(fd, slot.readMask|slot.writeMask); err != nil {
		r.logPollerError("reactor.poller_add", "add", fd, err)
	}
}

func (r *Reactor) modifySlot(slot *taskSlot) {
	fd := slot.source.Fd()
	if err := r.poller.modify(fd, slot.readMask|slot.writeMask); err != nil {
		r.logPollerError("reactor.poller_modify", "modify", fd, err)
	}
}

func (r *Reactor) removeSlot(slot *taskSlot) {
	fd := slot.source.Fd()
	r.slotsMu.Lock()
	if r.slots[fd] == slot {
		r.slots[fd] = nil
	}
	r.slotsMu.Unlock()
	if !slot.listNode.IsUnlinked() {
		r.liveList.Unlink(&slot.listNode)
	}
	if err := r.poller.remove(fd); err != nil {
		r.logPollerError("reactor.poller_remove", "remove", fd, err)
	}
}

// Poll drains pending registration changes, waits for I/O readiness (up to
// timeout; a negative timeout blocks indefinitely), dispatches whatever
// came in to the affected slots, then drains changes once more so
// registrations queued by wakers fired during dispatch are picked up
// without waiting for a second round.
//
// Poll must only be called from the single goroutine driving this
// Reactor.
func (r *Reactor) Poll(timeout time.Duration) error {
	if r.isClosed() {
		return corerr.New("reactor.Poll", corerr.ReactorGone)
	}

	r.drainChanges()

	if !r.waker.startPoll() {
		timeout = 0
	}
	events, err := r.poller.wait(timeout)
	r.waker.finishPoll()
	if err != nil {
		r.logPollerError("reactor.poller_wait", "wait", -1, err)
		return corerr.Wrap("reactor.Poll", corerr.OS, err)
	}

	wakeFD := r.wake.readFD()
	for _, ev := range events {
		if ev.fd == wakeFD {
			r.wake.drain()
			continue
		}
		r.slotsMu.Lock()
		slot := r.slots[ev.fd]
		r.slotsMu.Unlock()
		if slot != nil {
			slot.mergeReady(ev.events)
		}
	}

	r.drainChanges()
	return nil
}

// Wake breaks a concurrent or future call to Poll out of its blocking
// wait, without registering or touching any source. This is what lets a
// Reactor double as a pool.Park: Unpark calls this directly.
func (r *Reactor) Wake() {
	r.waker.wake()
}

// Close tears down the reactor: every currently-live source is marked
// deregistered and its wakers fired (so parked Futures observe
// ReactorGone), then the OS poller and self-wake fd are closed. Close is
// idempotent.
func (r *Reactor) Close() error {
	if !r.state.TryTransition(lifecycle.Running, lifecycle.Closed) {
		return nil
	}
	r.liveList.Each(func(slot *taskSlot) {
		slot.markDeregistered()
		slot.readWaker.Wake()
		slot.writeWaker.Wake()
	})
	pollerErr := r.poller.close()
	wakeErr := r.wake.Close()
	if pollerErr != nil {
		return corerr.Wrap("reactor.Close", corerr.OS, pollerErr)
	}
	if wakeErr != nil {
		return corerr.Wrap("reactor.Close", corerr.OS, wakeErr)
	}
	return nil
}
