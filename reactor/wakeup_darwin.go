//go:build darwin

package reactor

import "golang.org/x/sys/unix"

// wakeFD on Darwin is a self-pipe: Darwin has no eventfd equivalent, so a
// write to the pipe's write end is the OS-level event that breaks kqueue
// out of a blocking wait on the read end.
type wakeFD struct {
	r, w int
}

func newWakeFD() (wakeFD, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return wakeFD{}, err
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return wakeFD{}, err
		}
		unix.CloseOnExec(fd)
	}
	return wakeFD{r: fds[0], w: fds[1]}, nil
}

func (w wakeFD) readFD() int { return w.r }

func (w wakeFD) signal() {
	var b [1]byte
	_, _ = unix.Write(w.w, b[:])
}

func (w wakeFD) drain() {
	var buf [64]byte
	for {
		if _, err := unix.Read(w.r, buf[:]); err != nil {
			return
		}
	}
}

func (w wakeFD) Close() error {
	_ = unix.Close(w.w)
	return unix.Close(w.r)
}
