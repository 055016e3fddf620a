//go:build !linux

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// pollTimeout uses the poll(2) timeout argument directly, limited to
// millisecond precision. Any sub-millisecond remainder is rounded up so a
// caller requesting a short positive duration never gets treated as
// "no timeout".
type pollTimeout struct{}

func newTimeoutSource() (timeoutSource, error) {
	return pollTimeout{}, nil
}

func (pollTimeout) setTimeout(d *time.Duration) (int32, error) {
	if d == nil {
		return -1, nil
	}
	ms := d.Milliseconds()
	if rem := *d - time.Duration(ms)*time.Millisecond; rem > 0 {
		ms++
	}
	if ms > int64(^uint32(0)>>1) {
		ms = int64(^uint32(0) >> 1)
	}
	return int32(ms), nil
}

func (pollTimeout) pollEntry() (unix.PollFd, bool) {
	return unix.PollFd{}, false
}

func (pollTimeout) close() error {
	return nil
}
