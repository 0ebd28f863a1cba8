// Package pool executes submitted tasks on a fixed set of worker
// goroutines that are fed from a shared channel. The channel's buffer is
// what applies backpressure: submitting blocks once the queue is full,
// and shutting the pool down closes the channel, so workers finish
// exactly the tasks that were accepted.
package pool

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/cschleiden/go-channel"
	"github.com/cschleiden/go-channel/internal/metrickeys"
	"github.com/cschleiden/go-channel/metrics"
)

type task struct {
	ctx context.Context
	id  string
	fn  func(context.Context)
}

type Pool struct {
	options Options

	tasks *channel.Channel[*task]

	logger  *slog.Logger
	metrics metrics.Client

	workersWg sync.WaitGroup

	// taskPool recycles task allocations across submissions
	taskPool sync.Pool

	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

// New creates a pool and starts its workers. The workers idle on the
// task channel until tasks are submitted, and exit when Shutdown has
// been called and the queue is drained.
func New(opts ...Option) *Pool {
	options := applyOptions(opts...)

	logger := options.Logger
	mclient := options.Metrics
	if options.Name != "" {
		logger = logger.With("pool", options.Name)
		mclient = mclient.WithTags(metrics.Tags{metrickeys.PoolName: options.Name})
	}

	p := &Pool{
		options: options,
		tasks: channel.NewBuffered[*task](options.QueueSize,
			channel.WithLogger(logger),
			channel.WithMetrics(mclient),
		),
		logger:  logger,
		metrics: mclient,
	}

	p.taskPool.New = func() any {
		return &task{}
	}

	p.workersWg.Add(options.Workers)
	for i := 0; i < options.Workers; i++ {
		go p.worker()
	}

	return p
}

// Go submits fn with a background context. It blocks while the task
// queue is full and panics with channel.ErrClosed if the pool was shut
// down.
func (p *Pool) Go(fn func(context.Context)) {
	p.CtxGo(context.Background(), fn)
}

// CtxGo submits fn; ctx is passed through to fn unchanged, so canceling
// it is visible to the task but does not remove the task from the
// queue. CtxGo blocks while the queue is full and panics with
// channel.ErrClosed if the pool was shut down.
func (p *Pool) CtxGo(ctx context.Context, fn func(context.Context)) {
	t := p.acquireTask(ctx, fn)

	p.submitted.Add(1)
	p.tasks.Send(t)

	p.metrics.Counter(metrickeys.PoolTaskSubmitted, nil, 1)
}

// TryGo submits fn only if the queue has room and reports whether the
// task was accepted. Like CtxGo it panics with channel.ErrClosed if the
// pool was shut down.
func (p *Pool) TryGo(ctx context.Context, fn func(context.Context)) bool {
	t := p.acquireTask(ctx, fn)

	p.submitted.Add(1)
	if !p.tasks.SendNonblocking(t) {
		p.submitted.Add(-1)
		p.releaseTask(t)
		return false
	}

	p.metrics.Counter(metrickeys.PoolTaskSubmitted, nil, 1)
	return true
}

// Shutdown stops accepting tasks and waits until every accepted task
// has finished. It panics with channel.ErrDoubleClose when called a
// second time.
func (p *Pool) Shutdown() {
	p.tasks.Close()
	p.workersWg.Wait()

	p.logger.Debug("pool shut down",
		"submitted", p.submitted.Load(),
		"completed", p.completed.Load(),
		"panicked", p.panicked.Load())
}

func (p *Pool) worker() {
	defer p.workersWg.Done()

	for {
		t, ok := p.tasks.Receive()
		if !ok {
			return
		}

		p.handle(t)
	}
}

func (p *Pool) handle(t *task) {
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			p.metrics.Counter(metrickeys.PoolTaskPanicked, nil, 1)

			if h := p.options.PanicHandler; h != nil {
				h(t.ctx, r)
			} else {
				err := newPanicError(r)
				p.logger.Error("task panicked", "task", t.id, "error", err, "stack", err.Stacktrace())
			}
		}

		p.completed.Add(1)
		p.metrics.Counter(metrickeys.PoolTaskProcessed, nil, 1)
		p.releaseTask(t)
	}()

	timer := metrics.NewTimer(p.metrics, metrickeys.PoolTaskDuration, nil)
	defer timer.Stop()

	t.fn(t.ctx)
}

func (p *Pool) acquireTask(ctx context.Context, fn func(context.Context)) *task {
	t := p.taskPool.Get().(*task)
	t.ctx = ctx
	t.id = uuid.NewString()
	t.fn = fn

	return t
}

func (p *Pool) releaseTask(t *task) {
	t.ctx = nil
	t.id = ""
	t.fn = nil
	p.taskPool.Put(t)
}
