package timerqueue

import (
	"time"

	"github.com/kavehf/corert/corefuture"
)

// Periodic is a stream of ticks spaced period apart, re-arming its
// internal Timer after every yield. Not named as a component in the
// original spec text, but implied by its "two periodic streams merged"
// usage example and present in the Rust crate's time module; supplied
// here so that usage example is actually expressible.
type Periodic struct {
	q      *Queue
	period time.Duration
	timer  *Timer
}

// NewPeriodic returns a stream that ticks once every period, starting
// period from now.
func NewPeriodic(q *Queue, period time.Duration) *Periodic {
	return &Periodic{q: q, period: period, timer: Delay(q, period)}
}

// PollNext implements corefuture.Stream[time.Time]. The stream never ends
// on its own; it must be dropped (simply discarded) to stop ticking.
func (p *Periodic) PollNext(waker func()) (time.Time, bool, bool) {
	if _, ok := p.timer.Poll(waker); ok {
		now := time.Now()
		p.timer = Delay(p.q, p.period)
		return now, true, false
	}
	return time.Time{}, false, false
}

var _ corefuture.Stream[time.Time] = (*Periodic)(nil)
