//go:build linux

package reactor

import "golang.org/x/sys/unix"

// wakeFD is the self-wake primitive selfWaker writes to from wake; Poll
// drains it whenever the OS wait reports it readable. Linux gets a single eventfd;
// concurrent writes coalesce into one pending read, which is exactly the
// "already notified, no extra OS write needed" case selfWaker handles
// itself, so the coalescing here never loses a distinct wake.
type wakeFD struct {
	fd int
}

func newWakeFD() (wakeFD, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return wakeFD{}, err
	}
	return wakeFD{fd: fd}, nil
}

func (w wakeFD) readFD() int { return w.fd }

func (w wakeFD) signal() {
	var buf [8]byte
	buf[7] = 1
	_, _ = unix.Write(w.fd, buf[:])
}

func (w wakeFD) drain() {
	var buf [8]byte
	for {
		if _, err := unix.Read(w.fd, buf[:]); err != nil {
			return
		}
	}
}

func (w wakeFD) Close() error {
	return unix.Close(w.fd)
}
