package reactor

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReactor(t *testing.T) *Reactor {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestReactor_WaitTimesOutWithNoRegistrations(t *testing.T) {
	r := newTestReactor(t)
	d := 20 * time.Millisecond
	start := time.Now()
	require.NoError(t, r.Wait(&d))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestReactor_WakesOnReadableDescriptor(t *testing.T) {
	r := newTestReactor(t)

	fds := make([]int, 2)
	require.NoError(t, unix.Pipe(fds))
	readFD, writeFD := fds[0], fds[1]
	t.Cleanup(func() {
		unix.Close(readFD)
		unix.Close(writeFD)
	})
	require.NoError(t, unix.SetNonblock(readFD, true))

	handle, err := r.Register(readFD)
	require.NoError(t, err)
	woke := false
	require.NoError(t, r.Arm(handle, Interest{Read: true}, func() { woke = true }))

	_, err = unix.Write(writeFD, []byte("x"))
	require.NoError(t, err)

	d := time.Second
	require.NoError(t, r.Wait(&d))
	assert.True(t, woke, "the waker for a readable descriptor must fire during Wait")
}

func TestReactor_ArmUnknownHandleErrors(t *testing.T) {
	r := newTestReactor(t)
	err := r.Arm(EventHandle(999), Interest{Read: true}, func() {})
	assert.Error(t, err)
}

func TestReactor_OperationsFailAfterClose(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.Register(0)
	assert.ErrorIs(t, err, ErrClosed)

	d := time.Millisecond
	assert.ErrorIs(t, r.Wait(&d), ErrClosed)
}

func TestReactor_DeregisterIsIdempotent(t *testing.T) {
	r := newTestReactor(t)
	fds := make([]int, 2)
	require.NoError(t, unix.Pipe(fds))
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})

	h, err := r.Register(fds[0])
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		r.Deregister(h)
		r.Deregister(h)
	})
}

func TestReactor_NotifierWakesBlockedWait(t *testing.T) {
	r := newTestReactor(t)
	notifier := r.Notifier()

	done := make(chan error, 1)
	go func() {
		done <- r.Wait(nil)
	}()

	time.Sleep(20 * time.Millisecond)
	ok, err := notifier.Notify()
	require.NoError(t, err)
	require.True(t, ok)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Notify")
	}
}

func TestWeakNotifier_NotifyAfterCloseReportsGone(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	notifier := r.Notifier()

	require.NoError(t, r.Close())

	ok, err := notifier.Notify()
	require.NoError(t, err)
	assert.False(t, ok, "Notify on a WeakNotifier must report gone immediately after Close, not wait for GC")
}

func TestReactor_MetricsZeroWithoutWithMetrics(t *testing.T) {
	r := newTestReactor(t)
	p50, p90, p99, n := r.Metrics()
	assert.Zero(t, p50)
	assert.Zero(t, p90)
	assert.Zero(t, p99)
	assert.Zero(t, n)
}

func TestReactor_MetricsObservesWaitCycles(t *testing.T) {
	r, err := New(WithMetrics(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	d := time.Millisecond
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Wait(&d))
	}

	p50, p90, p99, n := r.Metrics()
	assert.Equal(t, 5, n)
	assert.GreaterOrEqual(t, p90, p50)
	assert.GreaterOrEqual(t, p99, p90)
}

func TestInterest_Events(t *testing.T) {
	assert.NotZero(t, Interest{Read: true}.events()&unix.POLLIN)
	assert.NotZero(t, Interest{Write: true}.events()&unix.POLLOUT)
	assert.Zero(t, Interest{}.events())
}
