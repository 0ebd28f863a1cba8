package pool

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cschleiden/go-channel"
	"github.com/cschleiden/go-channel/internal/metrickeys"
	"github.com/cschleiden/go-channel/metrics"
)

type poolMetrics struct {
	mu     sync.Mutex
	counts map[string]int64
	gauges map[string]int64
}

var _ metrics.Client = (*poolMetrics)(nil)

func newPoolMetrics() *poolMetrics {
	return &poolMetrics{
		counts: map[string]int64{},
		gauges: map[string]int64{},
	}
}

func (m *poolMetrics) Counter(name string, tags metrics.Tags, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[name] += value
}

func (m *poolMetrics) Distribution(name string, tags metrics.Tags, value float64) {
}

func (m *poolMetrics) Gauge(name string, tags metrics.Tags, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gauges[name] = value
}

func (m *poolMetrics) Timing(name string, tags metrics.Tags, duration time.Duration) {
}

func (m *poolMetrics) WithTags(tags metrics.Tags) metrics.Client {
	return m
}

func (m *poolMetrics) count(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.counts[name]
}

func (m *poolMetrics) hasGauge(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.gauges[name]
	return ok
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func Test_Pool_RunsAllTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := New(WithWorkers(4), WithQueueSize(8), WithLogger(quietLogger()))

	var ran atomic.Int64
	for i := 0; i < 100; i++ {
		p.Go(func(context.Context) {
			ran.Add(1)
		})
	}

	p.Shutdown()
	require.Equal(t, int64(100), ran.Load())
}

func Test_Pool_TryGo_ReportsFullQueue(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := New(WithWorkers(1), WithQueueSize(1), WithLogger(quietLogger()))

	running := make(chan struct{})
	release := make(chan struct{})

	p.Go(func(context.Context) {
		close(running)
		<-release
	})
	<-running

	// Worker is busy, the single queue slot is free
	require.True(t, p.TryGo(context.Background(), func(context.Context) {}))
	require.False(t, p.TryGo(context.Background(), func(context.Context) {}))

	close(release)
	p.Shutdown()

	require.Equal(t, int64(2), p.completed.Load())
}

func Test_Pool_CtxIsPassedThrough(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := New(WithWorkers(1), WithLogger(quietLogger()))

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "payload")

	var got atomic.Value
	p.CtxGo(ctx, func(ctx context.Context) {
		got.Store(ctx.Value(ctxKey{}).(string))
	})

	p.Shutdown()
	require.Equal(t, "payload", got.Load())
}

func Test_Pool_PanicHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	var recovered atomic.Value

	p := New(
		WithWorkers(1),
		WithLogger(quietLogger()),
		WithPanicHandler(func(ctx context.Context, v any) {
			recovered.Store(v)
		}),
	)

	p.Go(func(context.Context) {
		panic("task failure")
	})

	// The pool keeps working after a panic
	var ran atomic.Bool
	p.Go(func(context.Context) {
		ran.Store(true)
	})

	p.Shutdown()

	require.Equal(t, "task failure", recovered.Load())
	require.True(t, ran.Load())
	require.Equal(t, int64(1), p.panicked.Load())
	require.Equal(t, int64(2), p.completed.Load())
}

func Test_Pool_DefaultPanicLoggingKeepsWorkerAlive(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newPoolMetrics()
	p := New(WithWorkers(1), WithLogger(quietLogger()), WithMetrics(m))

	p.Go(func(context.Context) {
		panic("boom")
	})

	var ran atomic.Bool
	p.Go(func(context.Context) {
		ran.Store(true)
	})

	p.Shutdown()

	require.True(t, ran.Load())
	require.Equal(t, int64(1), m.count(metrickeys.PoolTaskPanicked))
	require.Equal(t, int64(2), m.count(metrickeys.PoolTaskProcessed))
}

func Test_Pool_ShutdownDrainsAcceptedTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := New(WithWorkers(1), WithQueueSize(16), WithLogger(quietLogger()))

	var ran atomic.Int64
	for i := 0; i < 10; i++ {
		p.Go(func(context.Context) {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		})
	}

	p.Shutdown()
	require.Equal(t, int64(10), ran.Load())
}

func Test_Pool_SubmitAfterShutdownPanics(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := New(WithWorkers(1), WithLogger(quietLogger()))
	p.Shutdown()

	require.PanicsWithValue(t, channel.ErrClosed, func() {
		p.Go(func(context.Context) {})
	})
	require.PanicsWithValue(t, channel.ErrClosed, func() {
		p.TryGo(context.Background(), func(context.Context) {})
	})
	require.PanicsWithValue(t, channel.ErrDoubleClose, func() {
		p.Shutdown()
	})
}

func Test_Pool_ReportStats(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newPoolMetrics()
	mock := clock.NewMock()

	p := New(WithWorkers(1), WithLogger(quietLogger()), WithMetrics(m), WithClock(mock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.ReportStats(ctx, time.Second)
	}()

	// Drive the mock clock until the reporter has emitted its gauges
	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return m.hasGauge(metrickeys.PoolQueueDepth) && m.hasGauge(metrickeys.PoolTasksInFlight)
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	p.Shutdown()
}
