package timerqueue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pollUntilReady[T any](fut interface {
	Poll(func()) (T, bool)
}, timeout time.Duration) (T, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if v, ok := fut.Poll(func() {}); ok {
			return v, true
		}
		time.Sleep(time.Millisecond)
	}
	var zero T
	return zero, false
}

func TestTimer_ResolvesAfterDelay(t *testing.T) {
	q := New()
	timer := Delay(q, 10*time.Millisecond)

	_, ready := pollUntilReady[struct{}](timer, time.Second)
	require.True(t, ready)
}

func TestTimer_NotReadyBeforeExpiry(t *testing.T) {
	q := New()
	timer := Delay(q, time.Hour)
	_, ready := timer.Poll(func() {})
	assert.False(t, ready)
}

func TestTimer_CancelRemovesRegistration(t *testing.T) {
	q := New()
	timer := Delay(q, time.Hour)
	_, ready := timer.Poll(func() {})
	require.False(t, ready)

	timer.Cancel()
	_, hasTimeout := q.NextTimeout()
	assert.False(t, hasTimeout, "cancelling the only pending timer should empty the queue")
}

func TestTimeout_ChildCompletesFirst(t *testing.T) {
	q := New()
	child := &manualFuture{readyAfter: 1}
	to := NewTimeout[int](q, child, time.Hour)

	v, ready := to.Poll(func() {})
	require.True(t, ready)
	assert.NoError(t, v.Err)
	assert.Equal(t, 42, v.Value)
}

func TestTimeout_ExpiresBeforeChildCompletes(t *testing.T) {
	q := New()
	child := &manualFuture{readyAfter: 1 << 30} // never resolves in the test window
	to := NewTimeout[int](q, child, 10*time.Millisecond)

	v, ready := pollUntilReady[TimeoutResult[int]](to, time.Second)
	require.True(t, ready)
	assert.True(t, errors.Is(v.Err, ErrTimedOut))
}

// manualFuture[int]-shaped helper local to this file, resolving to 42 once
// polled readyAfter times.
type manualFuture struct {
	polls      int
	readyAfter int
}

func (f *manualFuture) Poll(waker func()) (int, bool) {
	f.polls++
	if f.polls >= f.readyAfter {
		return 42, true
	}
	waker()
	return 0, false
}
