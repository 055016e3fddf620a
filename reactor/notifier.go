package reactor

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// notifierFD is the platform-specific wake mechanism: an eventfd on
// Linux/Android, a self-pipe elsewhere.
type notifierFD interface {
	clear() error
	notify() error
	pollEntry() unix.PollFd
	close() error
}

// Notifier wraps a notifierFD with an atomic "already notified" latch so
// that concurrent Notify calls only ever perform one kernel write between
// each Wait cycle's clear.
type Notifier struct {
	inner      notifierFD
	isNotified atomic.Bool
}

func newNotifier(inner notifierFD) *Notifier {
	return &Notifier{inner: inner}
}

func (n *Notifier) fd() int {
	return int(n.inner.pollEntry().Fd)
}

// Notify wakes a blocked or future Wait call. Safe to call from any
// goroutine, including concurrently with itself.
func (n *Notifier) Notify() error {
	// Acquire ordering ensures the inner write is observed to happen after
	// the flag check, matching the single-writer guarantee below.
	if n.isNotified.CompareAndSwap(false, true) {
		return n.inner.notify()
	}
	return nil
}

func (n *Notifier) setNotified() {
	n.isNotified.Store(true)
}

func (n *Notifier) clear() error {
	err := n.inner.clear()
	// Release ordering: the kernel object must be drained before the flag
	// is cleared, or a racing Notify could observe false and skip writing
	// while a reader is still mid-drain.
	n.isNotified.Store(false)
	return err
}

func (n *Notifier) close() error {
	return n.inner.close()
}
