package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// timeoutSource is the platform-specific strategy for turning a requested
// duration into a poll(2) wait: a timerfd on Linux/Android (nanosecond
// precision, poll(2) always blocks indefinitely), or the poll(2) timeout
// argument itself elsewhere (millisecond precision).
type timeoutSource interface {
	// setTimeout arms the timeout for d (nil means wait indefinitely) and
	// returns the poll(2) timeout argument to use this cycle.
	setTimeout(d *time.Duration) (int32, error)
	// pollEntry returns the extra poll entry this source needs registered
	// this cycle, if any.
	pollEntry() (unix.PollFd, bool)
	close() error
}
