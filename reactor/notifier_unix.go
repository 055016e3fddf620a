//go:build !linux

package reactor

import "golang.org/x/sys/unix"

// pipeNotifier wakes the reactor via a self-pipe, adapted from the
// teacher's wakeup_darwin.go createWakeFd, generalized from darwin-only to
// every non-Linux Unix target.
type pipeNotifier struct {
	read  int
	write int
}

func newNotifierFD() (notifierFD, error) {
	// unix.Pipe2 isn't available on every non-Linux Unix (notably Darwin),
	// so the pipe is created with unix.Pipe and then individually marked
	// close-on-exec and non-blocking, matching the teacher's
	// wakeup_darwin.go createWakeFd.
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}
	for _, fd := range fds {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, err
		}
	}
	return &pipeNotifier{read: fds[0], write: fds[1]}, nil
}

func (p *pipeNotifier) notify() error {
	_, err := unix.Write(p.write, []byte{0})
	if err == unix.EAGAIN {
		// pipe buffer already holds an unconsumed byte; the notification is
		// already pending.
		return nil
	}
	return err
}

func (p *pipeNotifier) clear() error {
	var buf [8]byte
	for {
		_, err := unix.Read(p.read, buf[:])
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return err
		}
	}
}

func (p *pipeNotifier) pollEntry() unix.PollFd {
	return unix.PollFd{Fd: int32(p.read), Events: unix.POLLIN}
}

func (p *pipeNotifier) close() error {
	err1 := unix.Close(p.read)
	err2 := unix.Close(p.write)
	if err1 != nil {
		return err1
	}
	return err2
}
