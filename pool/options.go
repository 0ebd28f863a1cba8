package pool

import (
	"context"
	"log/slog"

	"github.com/benbjohnson/clock"

	im "github.com/cschleiden/go-channel/internal/metrics"
	"github.com/cschleiden/go-channel/metrics"
)

type Options struct {
	// Workers is the number of goroutines executing tasks
	Workers int

	// QueueSize is the number of accepted but not yet started tasks the
	// pool buffers. With 0, every submission waits for an idle worker.
	QueueSize int

	// Name tags the pool's logs and metrics. Set by Registry for managed
	// pools.
	Name string

	// PanicHandler is called with the recovered value when a task
	// panics. When nil, panics are logged together with their stack
	// trace.
	PanicHandler func(ctx context.Context, v any)

	Logger *slog.Logger

	Metrics metrics.Client

	// Clock used for stats reporting
	Clock clock.Clock
}

var DefaultOptions = Options{
	Workers:   2,
	QueueSize: 128,
	Logger:    slog.Default(),
	Metrics:   im.NewNoopMetricsClient(),
	Clock:     clock.New(),
}

type Option func(o *Options)

// WithWorkers sets the number of worker goroutines
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithQueueSize sets the task queue capacity
func WithQueueSize(n int) Option {
	return func(o *Options) {
		o.QueueSize = n
	}
}

// WithName names the pool; the name is attached to logs and metrics
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithPanicHandler replaces the default panic logging
func WithPanicHandler(h func(ctx context.Context, v any)) Option {
	return func(o *Options) {
		o.PanicHandler = h
	}
}

// WithLogger sets the logger to use
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics sets the metrics client to use
func WithMetrics(client metrics.Client) Option {
	return func(o *Options) {
		o.Metrics = client
	}
}

// WithClock sets the clock used for stats reporting
func WithClock(c clock.Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

func applyOptions(opts ...Option) Options {
	options := DefaultOptions

	for _, opt := range opts {
		opt(&options)
	}

	if options.Workers < 1 {
		options.Workers = 1
	}

	if options.QueueSize < 0 {
		options.QueueSize = 0
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	if options.Metrics == nil {
		options.Metrics = im.NewNoopMetricsClient()
	}

	if options.Clock == nil {
		options.Clock = clock.New()
	}

	return options
}
