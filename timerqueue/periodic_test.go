package timerqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodic_TicksRepeatedly(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-sensitive")
	}
	q := New()
	p := NewPeriodic(q, 10*time.Millisecond)

	var ticks int
	deadline := time.Now().Add(time.Second)
	for ticks < 3 && time.Now().Before(deadline) {
		if _, ready, done := p.PollNext(func() {}); ready {
			ticks++
			require.False(t, done)
		}
		time.Sleep(time.Millisecond)
	}
	assert.GreaterOrEqual(t, ticks, 3, "a periodic stream should keep producing ticks indefinitely")
}

func TestPeriodic_NeverReportsDone(t *testing.T) {
	q := New()
	p := NewPeriodic(q, time.Hour)
	_, ready, done := p.PollNext(func() {})
	assert.False(t, ready)
	assert.False(t, done)
}
