//go:build linux

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// platformPoller wraps epoll. It knows nothing about taskSlots or the
// change queue; Reactor owns the fd-to-slot indirection table and drives
// this purely as a raw interest-set/wait primitive, the same split the
// teacher's FastPoller collapsed into one type but that the reactor's
// fd-indexed dispatch table (see SPEC_FULL.md's token-indirection-table
// design note) is cleaner with kept apart.
type platformPoller struct {
	epfd int
	buf  [256]unix.EpollEvent
}

func newPlatformPoller() (*platformPoller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &platformPoller{epfd: epfd}, nil
}

func (p *platformPoller) add(fd int, mask IOEvents) error {
	ev := unix.EpollEvent{Events: eventsToEpoll(mask), Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *platformPoller) modify(fd int, mask IOEvents) error {
	ev := unix.EpollEvent{Events: eventsToEpoll(mask), Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *platformPoller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *platformPoller) wait(timeout time.Duration) ([]polledEvent, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
		if ms == 0 && timeout > 0 {
			ms = 1
		}
	}

	n, err := unix.EpollWait(p.epfd, p.buf[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	out := make([]polledEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, polledEvent{
			fd:     int(p.buf[i].Fd),
			events: epollToEvents(p.buf[i].Events),
		})
	}
	return out, nil
}

func (p *platformPoller) close() error {
	return unix.Close(p.epfd)
}

func eventsToEpoll(events IOEvents) uint32 {
	var e uint32
	if events&EventRead != 0 {
		e |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func epollToEvents(e uint32) IOEvents {
	var events IOEvents
	if e&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if e&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if e&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if e&unix.EPOLLHUP != 0 {
		events |= EventHangup
	}
	return events
}
