//go:build darwin

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// platformPoller wraps kqueue. Unlike epoll, kqueue has no in-place modify:
// changing a source's interest set is done by withdrawing both filters and
// re-adding whichever are currently wanted.
type platformPoller struct {
	kq  int
	buf [256]unix.Kevent_t
}

func newPlatformPoller() (*platformPoller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	return &platformPoller{kq: kq}, nil
}

func (p *platformPoller) add(fd int, mask IOEvents) error {
	return p.apply(fd, mask, unix.EV_ADD|unix.EV_CLEAR)
}

func (p *platformPoller) modify(fd int, mask IOEvents) error {
	_ = p.remove(fd)
	return p.add(fd, mask)
}

func (p *platformPoller) remove(fd int) error {
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}
	// EV_DELETE on a filter that was never added returns ENOENT; both
	// filters are withdrawn unconditionally since the caller doesn't track
	// which were active, so that error is expected and ignored.
	_, _ = unix.Kevent(p.kq, changes, nil, nil)
	return nil
}

func (p *platformPoller) apply(fd int, mask IOEvents, flags uint16) error {
	var changes []unix.Kevent_t
	if mask&EventRead != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: flags})
	}
	if mask&EventWrite != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: flags})
	}
	if len(changes) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.kq, changes, nil, nil)
	return err
}

func (p *platformPoller) wait(timeout time.Duration) ([]polledEvent, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	n, err := unix.Kevent(p.kq, nil, p.buf[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	// kqueue reports read and write readiness as separate kevent entries
	// for the same fd; merge them into one polledEvent per fd so the
	// reactor's dispatch loop stays platform-agnostic.
	byFD := make(map[int]IOEvents, n)
	for i := 0; i < n; i++ {
		ev := p.buf[i]
		fd := int(ev.Ident)
		var e IOEvents
		switch ev.Filter {
		case unix.EVFILT_READ:
			e = EventRead
		case unix.EVFILT_WRITE:
			e = EventWrite
		}
		if ev.Flags&unix.EV_EOF != 0 {
			e |= EventHangup
		}
		byFD[fd] |= e
	}

	out := make([]polledEvent, 0, len(byFD))
	for fd, e := range byFD {
		out = append(out, polledEvent{fd: fd, events: e})
	}
	return out, nil
}

func (p *platformPoller) close() error {
	return unix.Close(p.kq)
}
