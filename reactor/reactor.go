// Package reactor implements a single-threaded, poll(2)-based readiness
// reactor: the kernel-facing half of the async core. It multiplexes an
// arbitrary number of file descriptors plus a platform timeout source onto
// one poll(2) call per cycle, and wakes the registered callback for every
// descriptor the kernel reports ready.
package reactor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kavehf/corert/internal/rtlog"
	"github.com/kavehf/corert/internal/rtmetrics"
)

// ErrClosed is returned by Register, Arm, and Wait once the reactor has been
// closed.
var ErrClosed = errors.New("reactor: closed")

// Interest describes which readiness conditions a registration cares about.
type Interest struct {
	Read  bool
	Write bool
}

func (i Interest) events() int16 {
	var ev int16
	if i.Read {
		ev |= unix.POLLIN | unix.POLLHUP | unix.POLLERR | unix.POLLPRI
	}
	if i.Write {
		ev |= unix.POLLOUT | unix.POLLHUP | unix.POLLERR
	}
	return ev
}

// EventHandle identifies a descriptor registered with a Reactor. It must be
// deregistered before the underlying descriptor is closed; the async I/O
// adapter in package ioasync enforces this ordering.
type EventHandle uint64

type slot struct {
	fd     int
	armed  bool
	want   int16
	waker  func()
}

// Reactor multiplexes readiness for a set of descriptors using poll(2).
// A Reactor is not safe for concurrent Register/Arm/Deregister/Wait calls
// from multiple goroutines; only Notify (via the WeakNotifier returned by
// Notifier) may be called from another goroutine or signal context.
type Reactor struct {
	mu         sync.Mutex
	notifier   *Notifier
	notifierID uint64
	timeout    timeoutSource
	slots      map[EventHandle]*slot
	nextID     EventHandle
	closed     bool

	pollfds []unix.PollFd
	wakers  []func()

	logger  rtlog.Logger
	metrics *rtmetrics.Reactor
}

// New constructs a Reactor using the platform-appropriate notifier (eventfd
// on Linux/Android, a self-pipe elsewhere) and timeout source (timerfd on
// Linux/Android, the poll(2) timeout argument elsewhere).
func New(opts ...Option) (*Reactor, error) {
	cfg := resolveOptions(opts)

	nfd, err := newNotifierFD()
	if err != nil {
		return nil, fmt.Errorf("reactor: creating notifier: %w", err)
	}
	notifier := newNotifier(nfd)

	ts, err := newTimeoutSource()
	if err != nil {
		return nil, fmt.Errorf("reactor: creating timeout source: %w", err)
	}

	r := &Reactor{
		notifier:   notifier,
		notifierID: registerNotifier(notifier),
		timeout:    ts,
		slots:      make(map[EventHandle]*slot),
		logger:     cfg.logger,
		metrics:    rtmetrics.NewReactor(cfg.metricsEnabled),
	}
	if cfg.maxPollFDs > 0 {
		r.pollfds = make([]unix.PollFd, 0, cfg.maxPollFDs)
		r.wakers = make([]func(), 0, cfg.maxPollFDs)
	}
	return r, nil
}

// Register allocates a stable handle for fd. The handle is used both to arm
// interest for upcoming cycles and, on Close of the owner, to deregister
// before the descriptor is closed.
func (r *Reactor) Register(fd int) (EventHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ErrClosed
	}
	r.nextID++
	h := r.nextID
	r.slots[h] = &slot{fd: fd}
	return h, nil
}

// Arm attaches interest and a wake callback to handle for the next Wait
// cycle. The caller guarantees fd stays open for the duration of that cycle.
// Calling Arm again before the next Wait replaces the previous interest.
func (r *Reactor) Arm(handle EventHandle, interest Interest, waker func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	s, ok := r.slots[handle]
	if !ok {
		return fmt.Errorf("reactor: arm on unknown handle %d", handle)
	}
	s.armed = true
	s.want = interest.events()
	s.waker = waker
	return nil
}

// Deregister removes any pending registration for handle. It must be called
// before the underlying descriptor is closed.
func (r *Reactor) Deregister(handle EventHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, handle)
}

// Notifier returns a weak handle to the reactor's notifier, usable to wake
// an in-progress or future Wait call from any goroutine. The handle reports
// itself gone as soon as the Reactor is closed.
func (r *Reactor) Notifier() *WeakNotifier {
	return newWeakNotifier(r.notifierID)
}

// Wait blocks until a registered descriptor becomes ready, the notifier is
// signalled, or timeout elapses (nil means block indefinitely). Exactly one
// poll(2) syscall is issued per call.
func (r *Reactor) Wait(timeout *time.Duration) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	// The per-cycle lists are emptied on every return, success or error.
	defer func() {
		clear(r.wakers)
		r.pollfds = r.pollfds[:0]
		r.wakers = r.wakers[:0]
	}()

	r.pollfds = r.pollfds[:0]
	r.wakers = r.wakers[:0]
	for _, s := range r.slots {
		if !s.armed {
			continue
		}
		r.pollfds = append(r.pollfds, unix.PollFd{Fd: int32(s.fd), Events: s.want})
		r.wakers = append(r.wakers, s.waker)
		s.armed = false
	}
	userCount := len(r.pollfds)

	pollTimeoutMs, err := r.timeout.setTimeout(timeout)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("reactor: arming timeout: %w", err)
	}

	r.pollfds = append(r.pollfds, unix.PollFd{Fd: int32(r.notifier.fd()), Events: unix.POLLIN})
	if pfd, ok := r.timeout.pollEntry(); ok {
		r.pollfds = append(r.pollfds, pfd)
	}

	stop := r.metrics.StartWait()
	n, err := unix.Poll(r.pollfds, int(pollTimeoutMs))
	stop()
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		r.logger.Err().Err(err).Log("reactor: poll failed")
		return fmt.Errorf("reactor: poll: %w", err)
	}

	switch {
	case n == 0:
		// timed out, nothing to dispatch
	case n == 1 || n == 2:
		// Only the notifier and/or timeout source may have fired; check
		// before paying for the full dispatch pass.
		extra := 0
		for _, pfd := range r.pollfds[userCount:] {
			if pfd.Revents != 0 {
				extra++
			}
		}
		if extra != n {
			r.dispatch(userCount)
		}
	default:
		r.dispatch(userCount)
	}

	if err := r.notifier.clear(); err != nil {
		r.logger.Err().Err(err).Log("reactor: clearing notifier")
	}

	r.mu.Unlock()
	return nil
}

const readyMask = unix.POLLIN | unix.POLLOUT | unix.POLLHUP | unix.POLLERR | unix.POLLPRI

func (r *Reactor) dispatch(userCount int) {
	// A notification or timer firing alongside user events still means we
	// must invoke the notifier's "already notified" latch before firing
	// wakers, so a concurrent Notify() racing with dispatch doesn't write to
	// the kernel object needlessly.
	r.notifier.setNotified()
	for i := 0; i < userCount; i++ {
		if int16(r.pollfds[i].Revents)&readyMask != 0 && r.wakers[i] != nil {
			r.wakers[i]()
		}
	}
}

// Close releases the reactor's own file descriptors (notifier, timeout
// source). Registered handles are not implicitly deregistered; callers must
// have deregistered all of their own handles first.
func (r *Reactor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	deregisterNotifier(r.notifierID)
	err1 := r.notifier.close()
	err2 := r.timeout.close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Metrics returns the P50/P90/P99 wait-cycle latency estimates and the
// number of completed Wait cycles observed so far. All values are zero if
// the Reactor was constructed without WithMetrics(true).
func (r *Reactor) Metrics() (p50, p90, p99 time.Duration, n int) {
	p50, p90, p99 = r.metrics.Percentiles()
	n = r.metrics.Count()
	return
}
