package reactor

import (
	"sync/atomic"
	"weak"

	"github.com/joeycumines/go-corexec/corerr"
	"github.com/joeycumines/go-corexec/future"
	"github.com/joeycumines/go-corexec/intrusive"
)

// Source is anything the reactor can watch. It never closes its own
// descriptor on deregistration; socket/file lifetime stays the caller's
// responsibility.
type Source interface {
	Fd() int
}

// changeOp is the operation a taskSlot is queued for the next time the
// reactor drains its change queue.
type changeOp uint8

const (
	opRegister changeOp = iota
	opReregister
	opDeregister
)

const (
	slotQueued       uint32 = 1 << 0 // present in the change queue right now
	slotDeregistered uint32 = 1 << 1 // Deregister was called; drop at next drain
)

// taskSlot is the reactor-owned state for one registered source: its
// current interest masks, the latest readiness observed for each
// direction since it was last consumed, and the per-direction waker a
// polling Future last parked there.
type taskSlot struct {
	source Source

	state atomic.Uint32

	readMask  IOEvents
	writeMask IOEvents
	pendingOp changeOp

	readReady  atomic.Uint32
	writeReady atomic.Uint32

	readWaker  future.AtomicWaker
	writeWaker future.AtomicWaker

	reactor weak.Pointer[Reactor]

	listNode  intrusive.Node[taskSlot]
	queueLink intrusive.Link[taskSlot]
}

func newTaskSlot(source Source, r *Reactor, readMask, writeMask IOEvents) *taskSlot {
	t := &taskSlot{
		source:    source,
		readMask:  readMask,
		writeMask: writeMask,
		reactor:   weak.Make(r),
	}
	t.listNode = *intrusive.NewNode(t)
	t.queueLink = *intrusive.NewLink(t)
	return t
}

func casOr(a *atomic.Uint32, bits uint32) {
	for {
		old := a.Load()
		if old&bits == bits {
			return
		}
		if a.CompareAndSwap(old, old|bits) {
			return
		}
	}
}

// mergeReady folds a freshly polled event set into the slot's pending
// per-direction readiness and wakes whichever side(s) it applies to.
// EventError and EventHangup apply to both directions: either a pending
// read or a pending write needs to observe them.
func (t *taskSlot) mergeReady(events IOEvents) {
	readBits := events & (EventRead | EventError | EventHangup)
	writeBits := events & (EventWrite | EventError | EventHangup)
	if readBits != 0 {
		casOr(&t.readReady, uint32(readBits))
		t.readWaker.Wake()
	}
	if writeBits != 0 {
		casOr(&t.writeReady, uint32(writeBits))
		t.writeWaker.Wake()
	}
}

// pollReadReady implements the no-lost-wake double-check: swap-and-check,
// then register, then swap-and-check again, since readiness can arrive in
// the window between the first check and the registration landing.
func (t *taskSlot) pollReadReady(cx *future.Context) (IOEvents, future.Poll, error) {
	if t.isDeregistered() || t.reactor.Value() == nil {
		return 0, future.Ready, corerr.New("poll_read_ready", corerr.ReactorGone)
	}
	if r := t.readReady.Swap(0); r != 0 {
		return IOEvents(r), future.Ready, nil
	}
	t.readWaker.Register(cx.Waker())
	if r := t.readReady.Swap(0); r != 0 {
		return IOEvents(r), future.Ready, nil
	}
	return 0, future.Pending, nil
}

// pollWriteReady is pollReadReady's write-side twin. The original
// implementation this design is grounded on only performed the
// pre-registration check on this path and skipped the post-registration
// re-check, so a writer could park permanently if writability arrived in
// that window; this keeps the two directions symmetric.
func (t *taskSlot) pollWriteReady(cx *future.Context) (IOEvents, future.Poll, error) {
	if t.isDeregistered() || t.reactor.Value() == nil {
		return 0, future.Ready, corerr.New("poll_write_ready", corerr.ReactorGone)
	}
	if w := t.writeReady.Swap(0); w != 0 {
		return IOEvents(w), future.Ready, nil
	}
	t.writeWaker.Register(cx.Waker())
	if w := t.writeReady.Swap(0); w != 0 {
		return IOEvents(w), future.Ready, nil
	}
	return 0, future.Pending, nil
}

func (t *taskSlot) trySetQueued() bool {
	for {
		s := t.state.Load()
		if s&slotQueued != 0 {
			return false
		}
		if t.state.CompareAndSwap(s, s|slotQueued) {
			return true
		}
	}
}

func (t *taskSlot) clearQueued() {
	for {
		s := t.state.Load()
		if t.state.CompareAndSwap(s, s&^slotQueued) {
			return
		}
	}
}

func (t *taskSlot) markDeregistered() {
	for {
		s := t.state.Load()
		if t.state.CompareAndSwap(s, s|slotDeregistered) {
			return
		}
	}
}

func (t *taskSlot) isDeregistered() bool {
	return t.state.Load()&slotDeregistered != 0
}
