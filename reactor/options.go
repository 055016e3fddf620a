package reactor

import "github.com/kavehf/corert/internal/rtlog"

// Option configures a Reactor at construction time. Adapted from the
// teacher's options.go functional-options pattern (LoopOption).
type Option interface {
	apply(*reactorOptions)
}

type reactorOptions struct {
	logger        rtlog.Logger
	metricsEnabled bool
	maxPollFDs    int
}

type optionFunc func(*reactorOptions)

func (f optionFunc) apply(o *reactorOptions) { f(o) }

// WithLogger overrides the package-default logger (see internal/rtlog) for
// this Reactor's poll-error and notifier-clear diagnostics.
func WithLogger(l rtlog.Logger) Option {
	return optionFunc(func(o *reactorOptions) { o.logger = l })
}

// WithMetrics enables wait-cycle latency percentile tracking.
func WithMetrics(enabled bool) Option {
	return optionFunc(func(o *reactorOptions) { o.metricsEnabled = enabled })
}

// WithMaxPollFDs pre-sizes the per-cycle poll-entry buffers to avoid
// reallocation once steady-state fd counts are known.
func WithMaxPollFDs(n int) Option {
	return optionFunc(func(o *reactorOptions) { o.maxPollFDs = n })
}

func resolveOptions(opts []Option) reactorOptions {
	cfg := reactorOptions{logger: rtlog.Default()}
	for _, o := range opts {
		if o != nil {
			o.apply(&cfg)
		}
	}
	return cfg
}
