package corefuture

// mergedResult is what one child's poll attempt produced this round: a
// value to yield (present), and/or permanent termination (terminal).
// Ported from poll_merged's (opt_fn, none_fn) pair: a plain future always
// sets both, a stream sets present without terminal on each item and
// terminal without present when it ends.
type mergedResult[T any] struct {
	value    T
	present  bool
	terminal bool
}

// merged is the shared driver behind MergeFutures and MergeStreams, ported
// from concurrency.rs's poll_merged: a rotating start index for fairness
// across children that advances on every call (yield or not), a count of
// permanently-terminated children, and the "re-arm the flag on yield" rule
// so the child that just produced a value is polled again on the next call
// without waiting for a fresh wake.
type merged[T any] struct {
	n         int
	active    []bool
	wakers    []*awokenWaker
	idx       int
	noneCount int
	pollOne   func(i int, waker func()) (ready bool, res mergedResult[T])
}

func newMerged[T any](n int, pollOne func(i int, waker func()) (bool, mergedResult[T])) *merged[T] {
	m := &merged[T]{
		n:       n,
		active:  make([]bool, n),
		wakers:  make([]*awokenWaker, n),
		pollOne: pollOne,
	}
	for i := range m.active {
		m.active[i] = true
	}
	return m
}

func (m *merged[T]) PollNext(waker func()) (T, bool, bool) {
	var zero T
	if m.n == 0 {
		return zero, false, true
	}
	for visited := 0; visited < m.n; visited++ {
		i := m.idx
		m.idx = (m.idx + 1) % m.n
		if m.active[i] {
			if m.wakers[i] == nil {
				m.wakers[i] = newAwokenWaker(waker)
			}
			w := m.wakers[i]
			if w.checkAwoken() {
				if ready, res := m.pollOne(i, w.wake); ready {
					if res.terminal {
						m.active[i] = false
						m.noneCount++
					}
					if res.present {
						// Re-arm so this child is polled again next call,
						// since it just demonstrated it has more to give
						// soon.
						w.setAwoken()
						return res.value, true, false
					}
				}
			}
		}
		if m.noneCount == m.n {
			return zero, false, true
		}
	}
	return zero, false, false
}

// MergeFutures polls every future in futures concurrently and yields each
// one's result as soon as it's ready, in completion order rather than
// input order. The returned stream ends after yielding len(futures)
// values. Ported from concurrency.rs's MergeFutureStream.
func MergeFutures[T any](futures []Future[T]) Stream[T] {
	return newMerged(len(futures), func(i int, waker func()) (bool, mergedResult[T]) {
		v, ok := futures[i].Poll(waker)
		if !ok {
			return false, mergedResult[T]{}
		}
		return true, mergedResult[T]{value: v, present: true, terminal: true}
	})
}

// MergeStreams interleaves the items produced by every stream in streams,
// ending once every child stream has ended. Ported from concurrency.rs's
// MergeStream.
func MergeStreams[T any](streams []Stream[T]) Stream[T] {
	return newMerged(len(streams), func(i int, waker func()) (bool, mergedResult[T]) {
		v, ready, done := streams[i].PollNext(waker)
		if done {
			return true, mergedResult[T]{terminal: true}
		}
		if !ready {
			return false, mergedResult[T]{}
		}
		return true, mergedResult[T]{value: v, present: true}
	})
}
