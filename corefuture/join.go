package corefuture

// joinFuture polls every child future and becomes ready once all of them
// have, producing their results in input order. Ported from
// concurrency.rs's JoinFuture/poll_join.
type joinFuture[T any] struct {
	futures []Future[T]
	done    []bool
	values  []T
	wakers  []*awokenWaker
}

// Join polls every future in futures concurrently and resolves once all of
// them have, with their outputs in the same order as the input slice. Each
// child is only re-polled when its own awoken flag is set, not on every
// round, matching the "minimal polling" guarantee of the original.
func Join[T any](futures []Future[T]) Future[[]T] {
	n := len(futures)
	jf := &joinFuture[T]{
		futures: futures,
		done:    make([]bool, n),
		values:  make([]T, n),
		wakers:  make([]*awokenWaker, n),
	}
	return jf
}

func (jf *joinFuture[T]) Poll(waker func()) ([]T, bool) {
	allDone := true
	for i, fut := range jf.futures {
		if jf.done[i] {
			continue
		}
		if jf.wakers[i] == nil {
			jf.wakers[i] = newAwokenWaker(waker)
		}
		w := jf.wakers[i]
		if w.checkAwoken() {
			if v, ok := fut.Poll(w.wake); ok {
				jf.values[i] = v
				jf.done[i] = true
				continue
			}
		}
		allDone = false
	}
	if !allDone {
		return nil, false
	}
	out := make([]T, len(jf.values))
	copy(out, jf.values)
	return out, true
}
