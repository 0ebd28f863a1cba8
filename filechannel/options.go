package filechannel

import (
	"log/slog"

	im "github.com/cschleiden/go-channel/internal/metrics"
	"github.com/cschleiden/go-channel/metrics"
)

type Options struct {
	Logger *slog.Logger

	Metrics metrics.Client
}

var DefaultOptions = Options{
	Logger:  slog.Default(),
	Metrics: im.NewNoopMetricsClient(),
}

type Option func(o *Options)

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

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	if options.Metrics == nil {
		options.Metrics = im.NewNoopMetricsClient()
	}

	return options
}
