// Package channel implements a synchronous or buffered channel for
// passing values between concurrently executing contexts.
//
// A Channel behaves like Go's built-in chan: sends and receives pair up
// in FIFO order, an optional ring buffer decouples the two sides up to a
// fixed capacity, and closing hands every parked operation its result.
// Unlike the built-in chan, blocking is delegated to a pluggable
// Scheduler, so the primitive also works for callers that multiplex
// their own execution contexts instead of goroutines.
package channel

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cschleiden/go-channel/internal/metrickeys"
	"github.com/cschleiden/go-channel/metrics"
)

// Channel is a conduit for values of type T. The zero value is not
// usable; create channels with New or NewBuffered. All methods are safe
// for concurrent use.
//
// Invariants, all protected by mu:
//
//   - At most one of recvq and sendq is non-empty.
//   - recvq holds parked receivers only while the buffer is empty.
//   - sendq holds parked senders only while the buffer is full.
//
// count, closed and the queue heads are additionally readable without
// the lock; the non-blocking fast paths rely on single stale reads of
// them and on nothing else.
type Channel[T any] struct {
	capacity int
	buf      []T
	count    atomic.Int64
	sendx    int
	recvx    int
	closed   atomic.Bool

	recvq waitq[T]
	sendq waitq[T]

	sched   Scheduler
	logger  *slog.Logger
	metrics metrics.Client

	// waiters recycles waiter allocations, including their wake tokens.
	// A waiter may only be released by the parked party after it resumed.
	waiters sync.Pool

	mu sync.Mutex
}

// New creates an unbuffered channel: every send is a direct hand-off and
// blocks until a receiver takes the value, and vice versa.
func New[T any](opts ...Option) *Channel[T] {
	return NewBuffered[T](0, opts...)
}

// NewBuffered creates a channel that buffers up to capacity elements.
// Sends block, or fail for the non-blocking variant, only once the
// buffer is full; capacity 0 is the unbuffered case. NewBuffered panics
// with ErrCapacityRange if capacity is negative.
func NewBuffered[T any](capacity int, opts ...Option) *Channel[T] {
	if capacity < 0 {
		panic(ErrCapacityRange)
	}

	options := applyOptions(opts...)

	c := &Channel[T]{
		capacity: capacity,
		sched:    options.Scheduler,
		logger:   options.Logger,
		metrics:  options.Metrics,
	}

	if capacity > 0 {
		c.buf = make([]T, capacity)
	}

	c.waiters.New = func() any {
		return &waiter[T]{thread: newThread()}
	}

	return c
}

// Send delivers v, blocking until a receiver or a free buffer slot is
// available. It panics with ErrClosed if the channel is closed, also
// when the channel is closed while the send is parked. Send on a nil
// channel panics with ErrNilChannel.
func (c *Channel[T]) Send(v T) {
	c.send(v, true)
}

// SendNonblocking delivers v only if that is possible without blocking
// and reports whether the value was sent. Like Send it panics with
// ErrClosed on a closed channel. On a nil channel it reports false.
func (c *Channel[T]) SendNonblocking(v T) bool {
	return c.send(v, false)
}

func (c *Channel[T]) send(v T, block bool) bool {
	if c == nil {
		if !block {
			return false
		}
		panic(ErrNilChannel)
	}

	// Fast path: fail a non-blocking send without taking the lock.
	//
	// Reading closed before fullness is what makes the two stale reads
	// safe to combine: a channel cannot become ready for sending by
	// being closed, so even if it closes between the reads there was a
	// moment when it was both open and not ready, and reporting "not
	// sent" for that moment is linearizable.
	if !block && !c.closed.Load() && c.full() {
		return false
	}

	c.mu.Lock()

	if c.closed.Load() {
		c.mu.Unlock()
		panic(ErrClosed)
	}

	if w := c.recvq.dequeue(); w != nil {
		// A receiver is parked, pass the value directly and bypass the
		// buffer. The receiver does not inspect the channel again, its
		// waiter carries the complete result.
		w.val = v
		w.success = true
		c.mu.Unlock()
		c.sched.Ready(w.thread)

		c.metrics.Counter(metrickeys.Send, nil, 1)
		c.metrics.Counter(metrickeys.Handoff, nil, 1)
		return true
	}

	if int(c.count.Load()) < c.capacity {
		c.buf[c.sendx] = v
		c.sendx++
		if c.sendx == c.capacity {
			c.sendx = 0
		}
		c.count.Add(1)
		c.mu.Unlock()

		c.metrics.Counter(metrickeys.Send, nil, 1)
		return true
	}

	if !block {
		c.mu.Unlock()
		return false
	}

	// No receiver and no free slot: park until a receiver consumes the
	// waiter or the channel is closed.
	w := c.acquireWaiter()
	w.val = v
	c.sendq.enqueue(w)
	c.park(w.thread, "send")

	success := w.success
	c.releaseWaiter(w)

	if !success {
		panic(ErrClosed)
	}

	c.metrics.Counter(metrickeys.Send, nil, 1)
	return true
}

// Receive takes the next value, blocking until a value is available or
// the channel is closed. The second result is false when the channel is
// closed and its buffer drained; the value is then the zero value.
// Receive on a nil channel panics with ErrNilChannel.
func (c *Channel[T]) Receive() (T, bool) {
	v, _, received := c.receive(true)
	return v, received
}

// ReceiveNonblocking takes a value only if one is immediately available.
// ok reports whether the operation completed: true when a value was
// taken and also when the channel is closed and drained; received is
// true only in the first case. (zero, false, false) means the channel is
// open but currently empty. On a nil channel it returns the
// not-completed result.
func (c *Channel[T]) ReceiveNonblocking() (v T, ok bool, received bool) {
	return c.receive(false)
}

func (c *Channel[T]) receive(block bool) (v T, ok bool, received bool) {
	if c == nil {
		if !block {
			return v, false, false
		}
		panic(ErrNilChannel)
	}

	// Fast path: fail a non-blocking receive without taking the lock.
	//
	// Unlike on the send side a closed channel is ready here, so after
	// observing emptiness closed is consulted, and emptiness re-checked,
	// to never report a closed and drained channel as "try again".
	// Both orderings matter: closed is set before Close drains the
	// queues, so empty-then-closed-then-empty cannot miss a value.
	if !block && c.empty() {
		if !c.closed.Load() {
			return v, false, false
		}

		if c.empty() {
			return v, true, false
		}
	}

	c.mu.Lock()

	if c.closed.Load() {
		if c.count.Load() == 0 {
			c.mu.Unlock()
			return v, true, false
		}

		// Closed, but values remain in the buffer: fall through to the
		// buffer take below.
	} else if w := c.sendq.dequeue(); w != nil {
		v = c.pairWithSender(w)
		c.sched.Ready(w.thread)

		c.metrics.Counter(metrickeys.Receive, nil, 1)
		c.metrics.Counter(metrickeys.Handoff, nil, 1)
		return v, true, true
	}

	if c.count.Load() > 0 {
		var zero T
		v = c.buf[c.recvx]
		c.buf[c.recvx] = zero
		c.recvx++
		if c.recvx == c.capacity {
			c.recvx = 0
		}
		c.count.Add(-1)
		c.mu.Unlock()

		c.metrics.Counter(metrickeys.Receive, nil, 1)
		return v, true, true
	}

	if !block {
		c.mu.Unlock()
		return v, false, false
	}

	// Nothing to take: park until a sender fills the waiter or Close
	// resolves it with the zero value. Either way the waiter carries the
	// complete result, the channel is not inspected again after waking.
	w := c.acquireWaiter()
	c.recvq.enqueue(w)
	c.park(w.thread, "receive")

	v = w.val
	received = w.success
	c.releaseWaiter(w)

	if received {
		c.metrics.Counter(metrickeys.Receive, nil, 1)
	}
	return v, true, received
}

// pairWithSender completes a receive against the parked sender w and
// releases the lock. Without a buffer the value moves directly. With a
// full buffer the oldest buffered element is taken and the sender's
// value is rotated into the slot it freed, which keeps delivery in
// arrival order across both paths.
func (c *Channel[T]) pairWithSender(w *waiter[T]) T {
	var v T
	if c.capacity == 0 {
		v = w.val
	} else {
		v = c.buf[c.recvx]
		c.buf[c.recvx] = w.val
		c.recvx++
		if c.recvx == c.capacity {
			c.recvx = 0
		}
		c.sendx = c.recvx
	}

	w.success = true
	c.mu.Unlock()
	return v
}

// Close transitions the channel into its terminal state: parked
// receivers complete with the zero value, parked senders fail, later
// sends panic with ErrClosed and later receives drain the buffer and
// then report the channel as closed. Close panics with ErrDoubleClose
// if the channel is already closed and with ErrNilChannel on a nil
// channel.
func (c *Channel[T]) Close() {
	if c == nil {
		panic(ErrNilChannel)
	}

	c.mu.Lock()

	if c.closed.Load() {
		c.mu.Unlock()
		panic(ErrDoubleClose)
	}

	c.closed.Store(true)

	// Resolve every parked waiter while still holding the lock, but wake
	// them only after it is released: Ready may hand the thread to user
	// code, and that code must be able to use the channel immediately.
	var wakeList *waiter[T]
	receivers := 0
	senders := 0

	for {
		w := c.recvq.dequeue()
		if w == nil {
			break
		}

		var zero T
		w.val = zero
		w.success = false
		w.next = wakeList
		wakeList = w
		receivers++
	}

	for {
		w := c.sendq.dequeue()
		if w == nil {
			break
		}

		w.success = false
		w.next = wakeList
		wakeList = w
		senders++
	}

	c.mu.Unlock()

	for wakeList != nil {
		w := wakeList
		wakeList = w.next
		c.sched.Ready(w.thread)
	}

	c.metrics.Counter(metrickeys.Closed, nil, 1)
	c.logger.Debug("channel closed", "capacity", c.capacity, "buffered", c.Len(), "receivers", receivers, "senders", senders)
}

// Len reports how many values are buffered. The result is instantaneous
// and may be stale by the time the caller looks at it. Len of a nil
// channel is 0.
func (c *Channel[T]) Len() int {
	if c == nil {
		return 0
	}
	return int(c.count.Load())
}

// Cap reports the buffer capacity, 0 for unbuffered and nil channels.
func (c *Channel[T]) Cap() int {
	if c == nil {
		return 0
	}
	return c.capacity
}

// full reports whether a send would block: no parked receiver for the
// unbuffered case, no free slot otherwise. A single stale read.
func (c *Channel[T]) full() bool {
	if c.capacity == 0 {
		return c.recvq.empty()
	}
	return c.count.Load() == int64(c.capacity)
}

// empty reports whether a receive would block, analogous to full.
func (c *Channel[T]) empty() bool {
	if c.capacity == 0 {
		return c.sendq.empty()
	}
	return c.count.Load() == 0
}

// park suspends the caller on t via the scheduler, which releases the
// channel lock. It returns once the operation's outcome is decided.
func (c *Channel[T]) park(t *Thread, op string) {
	start := time.Now()
	c.sched.Park(t, c.mu.Unlock)

	tags := metrics.Tags{metrickeys.Operation: op}
	c.metrics.Counter(metrickeys.Park, tags, 1)
	c.metrics.Timing(metrickeys.TimeParked, tags, time.Since(start))
}

func (c *Channel[T]) acquireWaiter() *waiter[T] {
	return c.waiters.Get().(*waiter[T])
}

func (c *Channel[T]) releaseWaiter(w *waiter[T]) {
	var zero T
	w.val = zero
	w.success = false
	w.next = nil
	w.prev = nil
	c.waiters.Put(w)
}
