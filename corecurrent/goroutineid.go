package corecurrent

import "runtime"

// GoroutineID returns the current goroutine's ID, parsed out of a
// runtime.Stack dump the same way the wider package this module was grown
// from does it. There is no supported public API for this in the standard
// library; the stack trace always starts with "goroutine <id> [...]", so
// only the first line needs to be captured.
//
// Exported so the pool package can compare against a stashed owner ID to
// tell apart a same-thread task wake (direct local-ready insertion) from a
// foreign-thread one (must go through the global MPSC), without a second
// copy of this parsing.
func GoroutineID() uint64 {
	return goroutineID()
}

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
