// Package ioasync provides the async I/O adapter: a generic wrapper that
// turns any non-blocking, fd-bearing source into a poll-based future
// driver, plus TCP Listener/Stream built on it. Ported from
// original_source/src/io.rs's Async<T>/GuardedHandle.
package ioasync

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/kavehf/corert/reactor"
)

// fdHolder is satisfied by any descriptor-bearing source this package can
// wrap.
type fdHolder interface {
	Fd() int
}

type rawFD int

func (f rawFD) Fd() int { return int(f) }

// Async wraps a descriptor-bearing source T, owning both the descriptor
// and its reactor.EventHandle. Field order matters: handle must be torn
// down (deregistered) strictly before inner's descriptor is closed, the
// drop-order invariant spec.md requires and Rust enforces via struct field
// drop order. Go has no destructors, so Close must be called explicitly by
// whatever also closes inner — see Listener.Close/Stream.Close.
type Async[T fdHolder] struct {
	r      *reactor.Reactor
	handle reactor.EventHandle
	inner  T
}

// New wraps inner, first setting O_NONBLOCK on its descriptor.
func New[T fdHolder](r *reactor.Reactor, inner T) (*Async[T], error) {
	if err := unix.SetNonblock(inner.Fd(), true); err != nil {
		return nil, err
	}
	return WithoutNonblocking(r, inner)
}

// WithoutNonblocking wraps inner without touching O_NONBLOCK, for sources
// the caller has already prepared (e.g. a freshly created SOCK_NONBLOCK
// socket).
func WithoutNonblocking[T fdHolder](r *reactor.Reactor, inner T) (*Async[T], error) {
	h, err := r.Register(inner.Fd())
	if err != nil {
		return nil, err
	}
	return &Async[T]{r: r, handle: h, inner: inner}, nil
}

// GetRef returns the wrapped source.
func (a *Async[T]) GetRef() T { return a.inner }

// IntoInner deregisters the handle and returns the wrapped source, handing
// descriptor ownership back to the caller.
func (a *Async[T]) IntoInner() T {
	a.r.Deregister(a.handle)
	return a.inner
}

// Close deregisters the handle. Must be called before the underlying
// descriptor is closed.
func (a *Async[T]) Close() {
	a.r.Deregister(a.handle)
}

// Arm attaches interest and waker to this adapter's handle for the
// reactor's next Wait cycle.
func (a *Async[T]) Arm(interest reactor.Interest, waker func()) error {
	return a.r.Arm(a.handle, interest, waker)
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// PollEvent is the adapter's core poll step: attempt op once; on success,
// return ready; on EWOULDBLOCK/EAGAIN, register for the given interest and
// report pending; any other error is reported ready (with the error).
// Ported from io.rs's poll_event/poll_event_mut (the owned/shared-receiver
// split those two methods make is handled in Go simply by what op
// closes over).
func PollEvent[T fdHolder, P any](a *Async[T], interest reactor.Interest, waker func(), op func(T) (P, error)) (P, bool, error) {
	v, err := op(a.inner)
	if err == nil {
		return v, true, nil
	}
	var zero P
	if isWouldBlock(err) {
		if armErr := a.Arm(interest, waker); armErr != nil {
			return zero, true, armErr
		}
		return zero, false, nil
	}
	return zero, true, err
}
