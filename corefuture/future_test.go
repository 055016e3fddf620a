package corefuture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwokenWaker_InitiallyAwoken(t *testing.T) {
	var calls int
	w := newAwokenWaker(func() { calls++ })
	require.True(t, w.checkAwoken(), "a freshly created waker must be awoken once, so the owner polls at least once")
	assert.False(t, w.checkAwoken(), "checkAwoken must clear the flag on read")
}

func TestAwokenWaker_WakeSetsFlagAndCallsParent(t *testing.T) {
	var calls int
	w := newAwokenWaker(func() { calls++ })
	w.checkAwoken() // drain the initial flag

	w.wake()
	assert.Equal(t, 1, calls)
	assert.True(t, w.checkAwoken())

	// waking twice before a poll forwards each wake to the parent and leaves
	// the flag set.
	w.wake()
	w.wake()
	assert.Equal(t, 3, calls)
	assert.True(t, w.checkAwoken())
}

func TestAwokenWaker_SetAwoken(t *testing.T) {
	var calls int
	w := newAwokenWaker(func() { calls++ })
	w.checkAwoken()

	w.setAwoken()
	assert.Equal(t, 0, calls, "setAwoken must not invoke the parent waker")
	assert.True(t, w.checkAwoken())
}
