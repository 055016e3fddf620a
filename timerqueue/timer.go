package timerqueue

import (
	"errors"
	"time"

	"github.com/kavehf/corert/corefuture"
)

// ErrTimedOut is produced by Timeout when its child future hasn't resolved
// by the time the deadline expires. Ported from original_source/src/
// timer.rs's TimedOut.
var ErrTimedOut = errors.New("timerqueue: future timed out")

// Timer is a single-shot future that resolves once its deadline has
// passed. Ported from original_source/src/timer.rs's Timer.
type Timer struct {
	q       *Queue
	expiry  time.Time
	id      ID
	hasID   bool
}

// At returns a Timer that resolves at expiry.
func At(q *Queue, expiry time.Time) *Timer {
	return &Timer{q: q, expiry: expiry}
}

// Delay returns a Timer that resolves after d elapses from now.
func Delay(q *Queue, d time.Duration) *Timer {
	return At(q, time.Now().Add(d))
}

// Poll implements corefuture.Future[struct{}].
func (t *Timer) Poll(waker func()) (struct{}, bool) {
	if !t.expiry.After(time.Now()) {
		t.cancelRegistration()
		return struct{}{}, true
	}
	if !t.hasID {
		t.id = t.q.Register(t.expiry, waker)
		t.hasID = true
	} else {
		t.q.Modify(t.id, t.expiry, waker)
	}
	return struct{}{}, false
}

// Cancel releases the timer's registration without waiting for it to
// fire. Equivalent to the original's Drop impl, made explicit since Go has
// no destructors.
func (t *Timer) Cancel() {
	t.cancelRegistration()
}

func (t *Timer) cancelRegistration() {
	if t.hasID {
		t.q.Cancel(t.id, t.expiry)
		t.hasID = false
	}
}

var _ corefuture.Future[struct{}] = (*Timer)(nil)

// TimeoutResult is the output of a Timeout future: either the wrapped
// future's value, or Err set to ErrTimedOut.
type TimeoutResult[T any] struct {
	Value T
	Err   error
}

// Timeout races fut against a deadline: fut is polled first on every
// round, so a completion that lands in the same round as expiry still
// wins. Ported from original_source/src/timer.rs's Timeout<F>.
type Timeout[T any] struct {
	timer *Timer
	fut   corefuture.Future[T]
}

// NewTimeout wraps fut so that it resolves with ErrTimedOut if it hasn't
// completed by d from now.
func NewTimeout[T any](q *Queue, fut corefuture.Future[T], d time.Duration) *Timeout[T] {
	return &Timeout[T]{timer: Delay(q, d), fut: fut}
}

// NewTimeoutAt is like NewTimeout but the deadline is an absolute time.
func NewTimeoutAt[T any](q *Queue, fut corefuture.Future[T], expiry time.Time) *Timeout[T] {
	return &Timeout[T]{timer: At(q, expiry), fut: fut}
}

// Poll implements corefuture.Future[TimeoutResult[T]].
func (t *Timeout[T]) Poll(waker func()) (TimeoutResult[T], bool) {
	var result TimeoutResult[T]
	if v, ok := t.fut.Poll(waker); ok {
		t.timer.Cancel()
		result.Value = v
		return result, true
	}
	if _, ok := t.timer.Poll(waker); ok {
		result.Err = ErrTimedOut
		return result, true
	}
	return result, false
}
