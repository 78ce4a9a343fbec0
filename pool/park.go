package pool

import "time"

// Park is what the drive loop blocks on between rounds when there is no
// ready work left to poll. A negative timeout means block indefinitely.
// Park returns early, before timeout elapses, if Unpark is called from any
// goroutine at any point during (or just before) the call — a call to
// Unpark with no Park in progress is not lost; it causes the next Park
// call to return immediately instead.
//
// The reactor satisfies this by blocking in the OS poller; a pool running
// with no I/O at all can use a bare channel. See the park package for both.
type Park interface {
	Park(timeout time.Duration) error
	Unpark()
}
