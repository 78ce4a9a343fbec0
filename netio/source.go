package netio

import (
	"syscall"

	"github.com/joeycumines/go-corexec/corerr"
	"github.com/joeycumines/go-corexec/future"
	"github.com/joeycumines/go-corexec/reactor"
	"golang.org/x/sys/unix"
)

// SyscallConner is satisfied by *net.TCPConn, *net.UnixConn,
// *net.TCPListener and friends. It's the only thing NewSourceFromConn needs
// from a caller's socket value.
type SyscallConner interface {
	SyscallConn() (syscall.RawConn, error)
}

// Source is a raw fd registered with a reactor for both directions.
type Source struct {
	fd  int
	reg *reactor.Registration
}

// Fd implements reactor.Source.
func (s *Source) Fd() int { return s.fd }

// NewSource registers fd with r for both read and write readiness.
func NewSource(r *reactor.Reactor, fd int) (*Source, error) {
	s := &Source{fd: fd}
	reg, err := r.Register(s, reactor.EventRead, reactor.EventWrite)
	if err != nil {
		return nil, err
	}
	s.reg = reg
	return s, nil
}

// NewSourceFromConn extracts the raw fd from conn (any real socket
// satisfying SyscallConner, such as *net.TCPConn or *net.TCPListener) and
// registers it with r. The net.Conn/net.Listener itself keeps owning and
// closing the fd; this package never dials, listens or accepts on its own
// behalf.
func NewSourceFromConn(r *reactor.Reactor, conn SyscallConner) (*Source, error) {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return nil, corerr.Wrap("netio.NewSourceFromConn", corerr.OS, err)
	}
	var fd int
	var ctrlErr error
	if err := rawConn.Control(func(fdPtr uintptr) {
		fd = int(fdPtr)
	}); err != nil {
		ctrlErr = err
	}
	if ctrlErr != nil {
		return nil, corerr.Wrap("netio.NewSourceFromConn", corerr.OS, ctrlErr)
	}
	return NewSource(r, fd)
}

// NewSourceCurrent registers fd with reactor.CurrentReactor.
func NewSourceCurrent(fd int) (*Source, error) {
	s := &Source{fd: fd}
	reg, err := reactor.RegisterCurrent(s, reactor.EventRead, reactor.EventWrite)
	if err != nil {
		return nil, err
	}
	s.reg = reg
	return s, nil
}

// Deregister withdraws s from r.
func (s *Source) Deregister(r *reactor.Reactor) error {
	return r.Deregister(s.reg)
}

// TryRead attempts to read into buf without blocking. If the read would
// block, it parks cx's waker against read readiness and returns Pending;
// if the reactor reports readiness that turns out stale (another reader
// already drained it, or it raced an EventError/EventHangup that doesn't
// actually unblock a read), it retries the syscall rather than returning a
// readiness value the caller has no use for.
func (s *Source) TryRead(r *reactor.Reactor, cx *future.Context, buf []byte) (int, future.Poll, error) {
	for {
		n, err := unix.Read(s.fd, buf)
		if err == nil {
			return n, future.Ready, nil
		}
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			return 0, future.Ready, corerr.Wrap("netio.TryRead", corerr.OS, err)
		}
		_, poll, perr := r.PollReadReady(s.reg, cx)
		if perr != nil {
			return 0, future.Ready, perr
		}
		if poll == future.Pending {
			return 0, future.Pending, nil
		}
	}
}

// TryWrite is TryRead's write-side twin.
func (s *Source) TryWrite(r *reactor.Reactor, cx *future.Context, buf []byte) (int, future.Poll, error) {
	for {
		n, err := unix.Write(s.fd, buf)
		if err == nil {
			return n, future.Ready, nil
		}
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			return 0, future.Ready, corerr.Wrap("netio.TryWrite", corerr.OS, err)
		}
		_, poll, perr := r.PollWriteReady(s.reg, cx)
		if perr != nil {
			return 0, future.Ready, perr
		}
		if poll == future.Pending {
			return 0, future.Pending, nil
		}
	}
}
