//go:build !linux

package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollTimeout_NilMeansBlockIndefinitely(t *testing.T) {
	var pt pollTimeout
	ms, err := pt.setTimeout(nil)
	assert.NoError(t, err)
	assert.EqualValues(t, -1, ms)
}

func TestPollTimeout_ExactMillisecondsPassThrough(t *testing.T) {
	var pt pollTimeout
	d := 50 * time.Millisecond
	ms, err := pt.setTimeout(&d)
	assert.NoError(t, err)
	assert.EqualValues(t, 50, ms)
}

func TestPollTimeout_SubMillisecondRemainderRoundsUp(t *testing.T) {
	var pt pollTimeout
	d := 500 * time.Microsecond
	ms, err := pt.setTimeout(&d)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, ms, "a nonzero sub-millisecond duration must never round down to 0")
}

func TestPollTimeout_ZeroStaysZero(t *testing.T) {
	var pt pollTimeout
	d := time.Duration(0)
	ms, err := pt.setTimeout(&d)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, ms)
}

func TestPollTimeout_NoPollEntry(t *testing.T) {
	var pt pollTimeout
	_, ok := pt.pollEntry()
	assert.False(t, ok)
}
