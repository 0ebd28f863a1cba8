package channel

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	im "github.com/cschleiden/go-channel/internal/metrics"
)

func Test_Options_Defaults(t *testing.T) {
	options := applyOptions()

	require.Equal(t, goScheduler{}, options.Scheduler)
	require.Equal(t, slog.Default(), options.Logger)
	require.NotNil(t, options.Metrics)
}

func Test_Options_Overrides(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	client := im.NewNoopMetricsClient()
	sched := goScheduler{}

	options := applyOptions(
		WithScheduler(sched),
		WithLogger(logger),
		WithMetrics(client),
	)

	require.Equal(t, sched, options.Scheduler)
	require.Same(t, logger, options.Logger)
	require.Equal(t, client, options.Metrics)
}

func Test_Options_NilValuesFallBackToDefaults(t *testing.T) {
	options := applyOptions(
		WithScheduler(nil),
		WithLogger(nil),
		WithMetrics(nil),
	)

	require.NotNil(t, options.Scheduler)
	require.NotNil(t, options.Logger)
	require.NotNil(t, options.Metrics)
}
