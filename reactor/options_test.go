package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kavehf/corert/internal/rtlog"
)

func TestResolveOptions_Defaults(t *testing.T) {
	cfg := resolveOptions(nil)
	assert.NotNil(t, cfg.logger)
	assert.False(t, cfg.metricsEnabled)
	assert.Zero(t, cfg.maxPollFDs)
}

func TestResolveOptions_AppliesOverrides(t *testing.T) {
	custom := rtlog.Default()
	cfg := resolveOptions([]Option{
		WithLogger(custom),
		WithMetrics(true),
		WithMaxPollFDs(64),
	})
	assert.Equal(t, custom, cfg.logger)
	assert.True(t, cfg.metricsEnabled)
	assert.Equal(t, 64, cfg.maxPollFDs)
}

func TestResolveOptions_NilOptionIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		resolveOptions([]Option{nil, WithMetrics(true)})
	})
}
