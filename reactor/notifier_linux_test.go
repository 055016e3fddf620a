//go:build linux

package reactor

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventfdNotifier_NotifyThenClear(t *testing.T) {
	nfd, err := newNotifierFD()
	require.NoError(t, err)
	defer nfd.close()

	require.NoError(t, nfd.notify())
	assert.NoError(t, nfd.clear())
}

func TestEventfdNotifier_ClearWithNothingPendingDoesNotBlock(t *testing.T) {
	nfd, err := newNotifierFD()
	require.NoError(t, err)
	defer nfd.close()

	assert.NoError(t, nfd.clear(), "clear on an un-notified eventfd must tolerate EAGAIN, not error")
}

func TestEventfdNotifier_PollEntryIsReadInterest(t *testing.T) {
	nfd, err := newNotifierFD()
	require.NoError(t, err)
	defer nfd.close()

	pfd := nfd.pollEntry()
	assert.Equal(t, int16(unix.POLLIN), pfd.Events)
}
