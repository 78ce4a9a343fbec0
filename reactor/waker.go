package reactor

import "sync/atomic"

// Bits of selfWaker.state. A reactor is either idle, blocked in the OS
// poller's wait call (polling), or has an outstanding notification that
// hasn't yet been observed by a poll round (notified). Both bits can be set
// at once: a wake arriving while the reactor is mid-poll sets notified
// without clearing polling, and the OS-level wake write that unblocks the
// in-progress wait is only issued in that case — a wake arriving while the
// reactor is already awake just sets notified, to be picked up for free on
// the next round, with no OS write needed.
const (
	wakePolling  uint32 = 1 << 0
	wakeNotified uint32 = 1 << 1
)

// selfWaker is the no-lost-wake gate around the reactor's blocking wait
// call. Wake may be called concurrently, from any goroutine, at any time;
// startPoll/finishPoll are only ever called from the reactor's own driving
// goroutine, in strict alternation.
type selfWaker struct {
	state atomic.Uint32
	fd    wakeFD
}

// startPoll reports whether the caller should actually block in the OS
// poller. If a notification already arrived since the last poll round, it
// is consumed here and startPoll returns false so the caller does a
// non-blocking pass instead of sleeping past a wake it would otherwise
// never see reflected as an OS-level event.
func (w *selfWaker) startPoll() bool {
	for {
		s := w.state.Load()
		if s&wakeNotified != 0 {
			if w.state.CompareAndSwap(s, 0) {
				return false
			}
			continue
		}
		if w.state.CompareAndSwap(s, s|wakePolling) {
			return true
		}
	}
}

// finishPoll clears the polling bit after the OS wait call returns,
// regardless of whether it was skipped by startPoll or not (clearing an
// already-clear bit is a no-op).
func (w *selfWaker) finishPoll() {
	for {
		s := w.state.Load()
		if w.state.CompareAndSwap(s, s&^wakePolling) {
			return
		}
	}
}

// wake requests that the reactor be polled again. If the reactor is
// currently blocked in the OS poller, the self-wake fd is written to break
// it out; otherwise the notification is left for the next startPoll to
// observe, and no OS write is needed.
func (w *selfWaker) wake() {
	for {
		s := w.state.Load()
		if s&wakeNotified != 0 {
			return
		}
		if w.state.CompareAndSwap(s, s|wakeNotified) {
			if s&wakePolling != 0 {
				w.fd.signal()
			}
			return
		}
	}
}
