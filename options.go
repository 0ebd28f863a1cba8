package channel

import (
	"log/slog"

	im "github.com/cschleiden/go-channel/internal/metrics"
	"github.com/cschleiden/go-channel/metrics"
)

type Options struct {
	// Scheduler parks and resumes the contexts that block on the channel.
	// Defaults to parking the calling goroutine.
	Scheduler Scheduler

	// Logger is used for lifecycle events, logged at debug level
	Logger *slog.Logger

	// Metrics client the channel reports operation metrics to
	Metrics metrics.Client
}

var DefaultOptions = Options{
	Scheduler: goScheduler{},
	Logger:    slog.Default(),
	Metrics:   im.NewNoopMetricsClient(),
}

type Option func(o *Options)

// WithScheduler replaces the goroutine scheduler. See Scheduler for the
// contract an implementation has to fulfill.
func WithScheduler(s Scheduler) Option {
	return func(o *Options) {
		o.Scheduler = s
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

func applyOptions(opts ...Option) Options {
	options := DefaultOptions

	for _, opt := range opts {
		opt(&options)
	}

	if options.Scheduler == nil {
		options.Scheduler = goScheduler{}
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	if options.Metrics == nil {
		options.Metrics = im.NewNoopMetricsClient()
	}

	return options
}
