package channel

import "sync/atomic"

// A waiter is one parked send or receive operation. For a sender, val
// carries the outgoing value until the other side copies it out; for a
// receiver, val is the slot its waker fills in. success records how the
// wait ended: consumed by the opposite operation, or aborted by Close.
//
// The party that dequeues a waiter owns it until it calls Ready on the
// waiter's thread; after that only the parked party may touch it.
type waiter[T any] struct {
	next *waiter[T]
	prev *waiter[T]

	thread *Thread

	val     T
	success bool
}

// waitq is a FIFO queue of parked waiters. first is atomic so that the
// lock-free fast paths can observe emptiness; every other access happens
// with the channel lock held.
type waitq[T any] struct {
	first atomic.Pointer[waiter[T]]
	last  *waiter[T]
}

func (q *waitq[T]) empty() bool {
	return q.first.Load() == nil
}

func (q *waitq[T]) enqueue(w *waiter[T]) {
	w.next = nil
	last := q.last
	if last == nil {
		w.prev = nil
		q.first.Store(w)
		q.last = w
		return
	}

	w.prev = last
	last.next = w
	q.last = w
}

func (q *waitq[T]) dequeue() *waiter[T] {
	w := q.first.Load()
	if w == nil {
		return nil
	}

	if next := w.next; next == nil {
		q.first.Store(nil)
		q.last = nil
	} else {
		next.prev = nil
		q.first.Store(next)
		w.next = nil
	}

	return w
}

// len reports the number of parked waiters. Caller must hold the channel
// lock.
func (q *waitq[T]) len() int {
	n := 0
	for w := q.first.Load(); w != nil; w = w.next {
		n++
	}
	return n
}
