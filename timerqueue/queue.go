// Package timerqueue implements a deadline-ordered queue of pending
// wake-ups, the single-shot Timer future built on it, and the Timeout
// combinator that races a future against a deadline. Ported from
// original_source/src/timer.rs's thread_local TimerQueue, generalized into
// an explicit value passed to constructors rather than a thread-local
// singleton (see SPEC_FULL.md's Open Question write-up for why).
package timerqueue

import (
	"container/heap"
	"errors"
	"sync"
	"time"

	"github.com/kavehf/corert/internal/rtlog"
)

// ErrTimerNotFound is logged (not returned) when Modify targets an id that
// has already fired or been cancelled.
var ErrTimerNotFound = errors.New("timerqueue: modifying non-existent timer")

// ID addresses one registered timer. It is assigned by Queue.Register,
// starts at 1, and wraps back to 1 on overflow (0 is reserved to mean "no
// timer registered").
type ID uint64

const noID ID = 0

type entry struct {
	deadline time.Time
	id       ID
	waker    func()
	index    int
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if !h[i].deadline.Equal(h[j].deadline) {
		return h[i].deadline.Before(h[j].deadline)
	}
	return h[i].id < h[j].id
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Queue is a deadline-ordered collection of pending timer wake-ups. A Queue
// is not safe for concurrent use; it is meant to be owned by a single
// runtime loop, the same single-threaded invariant the reactor carries.
// The heap shape is adapted from the teacher's loop.go timerHeap; the
// (deadline, id) ordering and collision/modify/cancel semantics are ported
// from original_source/src/timer.rs.
type Queue struct {
	mu      sync.Mutex
	nextID  ID
	h       entryHeap
	byIDKey map[idKey]*entry
	logger  rtlog.Logger
}

type idKey struct {
	deadline int64
	id       ID
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger overrides the logger used for registration-anomaly
// diagnostics (id collision, modify-missing).
func WithLogger(l rtlog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// New constructs an empty Queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		nextID:  1,
		byIDKey: make(map[idKey]*entry),
		logger:  rtlog.Default(),
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

func key(deadline time.Time, id ID) idKey {
	return idKey{deadline: deadline.UnixNano(), id: id}
}

// Register schedules waker to fire at deadline and returns the new timer's
// ID. On the extremely rare event of an ID collision (the counter having
// wrapped all the way around while the old entry is still pending), the
// collision is logged and the older entry overwritten.
func (q *Queue) Register(deadline time.Time, waker func()) ID {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := q.nextID
	q.nextID++
	if q.nextID == noID {
		q.nextID = 1
	}

	k := key(deadline, id)
	if old, ok := q.byIDKey[k]; ok {
		q.logger.Warning().Uint64(`id`, uint64(id)).Log(`timer id collision`)
		heap.Fix(&q.h, old.index)
		old.waker = waker
		return id
	}

	e := &entry{deadline: deadline, id: id, waker: waker}
	q.byIDKey[k] = e
	heap.Push(&q.h, e)
	return id
}

// Modify replaces the waker on an existing timer. If the id no longer
// exists (the timer already fired or was cancelled), the anomaly is
// logged and ignored.
func (q *Queue) Modify(id ID, deadline time.Time, waker func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.byIDKey[key(deadline, id)]
	if !ok {
		q.logger.Err().Err(ErrTimerNotFound).Uint64(`id`, uint64(id)).Log(`modifying non-existent timer`)
		return
	}
	e.waker = waker
}

// Cancel removes a timer before it expires. A no-op if the timer already
// fired or was already cancelled.
func (q *Queue) Cancel(id ID, deadline time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	k := key(deadline, id)
	e, ok := q.byIDKey[k]
	if !ok {
		return
	}
	delete(q.byIDKey, k)
	heap.Remove(&q.h, e.index)
}

// NextTimeout fires and removes every timer whose deadline has passed, and
// returns the duration until the next pending deadline, or false if the
// queue is empty.
func (q *Queue) NextTimeout() (time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if len(q.h) == 0 {
			return 0, false
		}
		now := time.Now()
		next := q.h[0]
		if !next.deadline.After(now) {
			delete(q.byIDKey, key(next.deadline, next.id))
			heap.Pop(&q.h)
			if next.waker != nil {
				next.waker()
			}
			continue
		}
		return next.deadline.Sub(now), true
	}
}
