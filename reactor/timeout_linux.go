//go:build linux

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// timerfdTimeout arms a monotonic, nanosecond-precision CLOCK_MONOTONIC
// timerfd, registered for read interest, so poll(2) is always called with
// an infinite timeout and the kernel delivers timer expiry as just another
// readiness event.
type timerfdTimeout struct {
	fd int
}

func newTimeoutSource() (timeoutSource, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &timerfdTimeout{fd: fd}, nil
}

func (t *timerfdTimeout) setTimeout(d *time.Duration) (int32, error) {
	var spec unix.ItimerSpec
	if d != nil {
		spec.Value.Sec = int64(*d / time.Second)
		nsec := int64(*d % time.Second)
		if nsec == 0 && spec.Value.Sec == 0 {
			// A zero itimerspec disarms the timer, so a zero duration is
			// rounded up to 1ns.
			nsec = 1
		}
		spec.Value.Nsec = nsec
	}
	if err := unix.TimerfdSettime(t.fd, 0, &spec, nil); err != nil {
		return 0, err
	}
	return -1, nil
}

func (t *timerfdTimeout) pollEntry() (unix.PollFd, bool) {
	return unix.PollFd{Fd: int32(t.fd), Events: unix.POLLIN}, true
}

func (t *timerfdTimeout) close() error {
	return unix.Close(t.fd)
}
