package pool

import (
	"context"
	"time"

	"github.com/cschleiden/go-channel/internal/metrickeys"
)

// ReportStats emits queue depth and in-flight gauges every interval
// until ctx is canceled. In-flight counts accepted tasks that have not
// finished, so it includes the queued ones.
func (p *Pool) ReportStats(ctx context.Context, interval time.Duration) {
	ticker := p.options.Clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.metrics.Gauge(metrickeys.PoolQueueDepth, nil, int64(p.tasks.Len()))
			p.metrics.Gauge(metrickeys.PoolTasksInFlight, nil, p.submitted.Load()-p.completed.Load())
		}
	}
}
