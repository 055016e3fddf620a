// Package corefuture provides the generic poll-based Future/Stream
// interfaces this module's combinators are built on, plus the join,
// merge_futures, and merge_streams combinators themselves. Go has no
// native Future/Poll/Pin machinery, so these interfaces are the idiomatic
// Go analogue: a Poll method takes a rewake callback instead of a
// std::task::Waker, and "ready" is a boolean instead of an enum variant.
// Ported from original_source/src/concurrency.rs.
package corefuture

import "sync/atomic"

// Future represents a unit of work driven to completion by repeated Poll
// calls. Poll returns (value, true) once ready; otherwise it returns (zero
// value, false) having arranged for waker to be called when the future
// should be polled again.
type Future[T any] interface {
	Poll(waker func()) (T, bool)
}

// Stream represents a sequence of values produced over time. PollNext
// returns (value, true, false) when a value is ready, (zero, false, true)
// once the stream has permanently ended, or (zero, false, false) when
// neither has happened yet (waker will be called to try again).
type Stream[T any] interface {
	PollNext(waker func()) (value T, ready bool, done bool)
}

// awokenWaker is the trampoline decorator ported from FlagWaker: it wraps a
// parent wake callback with an atomic "awoken" latch, initialized true, so
// a combinator polls each child at most once per spurious parent wake.
type awokenWaker struct {
	parent func()
	awoken atomic.Bool
}

func newAwokenWaker(parent func()) *awokenWaker {
	w := &awokenWaker{parent: parent}
	w.awoken.Store(true)
	return w
}

// wake is passed to the child future/stream in place of the parent's own
// waker.
func (w *awokenWaker) wake() {
	w.awoken.Store(true)
	w.parent()
}

// checkAwoken reports and clears the latch: true means the child should be
// polled this round.
func (w *awokenWaker) checkAwoken() bool {
	return w.awoken.Swap(false)
}

// setAwoken re-arms the latch so the child is polled again on the very
// next round, used by the merge combinators to revisit a just-yielding
// child first next time.
func (w *awokenWaker) setAwoken() {
	w.awoken.Store(true)
}
