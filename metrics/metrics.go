package metrics

import "time"

type Tags map[string]string

// Client receives the metrics the channel and pool emit. Implementations
// must be safe for concurrent use; they are called from the hot paths of
// every channel operation, so they should be cheap and must never call
// back into the channel that emitted the metric.
type Client interface {
	Counter(name string, tags Tags, value int64)

	Distribution(name string, tags Tags, value float64)

	Gauge(name string, tags Tags, value int64)

	Timing(name string, tags Tags, duration time.Duration)

	WithTags(tags Tags) Client
}
