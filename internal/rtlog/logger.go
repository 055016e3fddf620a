// Package rtlog provides the reactor and timer queue's structured logging
// facility. It replaces the teacher's (eventloop package) hand-rolled
// Logger/LogEntry writer with a real backend: github.com/joeycumines/logiface
// fronting github.com/joeycumines/stumpy. The teacher's own go.mod required
// logiface but only ever exercised it from test files; this package is
// where that dependency actually earns its place in production code.
package rtlog

import (
	"sync/atomic"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the logging surface used throughout the reactor and timer
// queue packages: a structured, leveled logger over stumpy's event type.
type Logger = *logiface.Logger[*stumpy.Event]

var current atomic.Pointer[logiface.Logger[*stumpy.Event]]

func init() {
	current.Store(newDefault())
}

func newDefault() *logiface.Logger[*stumpy.Event] {
	return stumpy.L.New(stumpy.L.WithStumpy())
}

// Default returns the package's current logger.
func Default() Logger {
	return current.Load()
}

// SetLogger replaces the package-wide default logger, mirroring the
// teacher's SetStructuredLogger. Passing nil restores the stumpy-backed
// default.
func SetLogger(l Logger) {
	if l == nil {
		current.Store(newDefault())
		return
	}
	current.Store(l)
}
