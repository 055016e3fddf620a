//go:build linux

package reactor

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// eventfdNotifier wakes the reactor via an eventfd, adapted from the
// teacher's wakeup_linux.go createWakeFd/drainWakeUpPipe pair.
type eventfdNotifier struct {
	fd int
}

func newNotifierFD() (notifierFD, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &eventfdNotifier{fd: fd}, nil
}

func (e *eventfdNotifier) notify() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(e.fd, buf[:])
	return err
}

func (e *eventfdNotifier) clear() error {
	var buf [8]byte
	_, err := unix.Read(e.fd, buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

func (e *eventfdNotifier) pollEntry() unix.PollFd {
	return unix.PollFd{Fd: int32(e.fd), Events: unix.POLLIN}
}

func (e *eventfdNotifier) close() error {
	return unix.Close(e.fd)
}
