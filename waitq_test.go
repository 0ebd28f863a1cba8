package channel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Waitq_FIFO(t *testing.T) {
	var q waitq[int]

	require.True(t, q.empty())
	require.Nil(t, q.dequeue())

	a := &waiter[int]{}
	b := &waiter[int]{}
	c := &waiter[int]{}

	q.enqueue(a)
	require.False(t, q.empty())

	q.enqueue(b)
	q.enqueue(c)
	require.Equal(t, 3, q.len())

	require.Same(t, a, q.dequeue())
	require.Same(t, b, q.dequeue())
	require.Same(t, c, q.dequeue())

	require.True(t, q.empty())
	require.Nil(t, q.dequeue())
}

func Test_Waitq_InterleavedEnqueueDequeue(t *testing.T) {
	var q waitq[int]

	a := &waiter[int]{}
	b := &waiter[int]{}
	c := &waiter[int]{}

	q.enqueue(a)
	q.enqueue(b)
	require.Same(t, a, q.dequeue())

	q.enqueue(c)
	require.Same(t, b, q.dequeue())
	require.Same(t, c, q.dequeue())
	require.True(t, q.empty())

	// Dequeued waiters carry no stale links
	require.Nil(t, c.next)
	require.Nil(t, c.prev)
}

func Test_Waitq_SingleElement(t *testing.T) {
	var q waitq[int]

	a := &waiter[int]{}
	q.enqueue(a)
	require.Equal(t, 1, q.len())

	require.Same(t, a, q.dequeue())
	require.True(t, q.empty())

	// Queue is reusable after draining
	q.enqueue(a)
	require.False(t, q.empty())
	require.Same(t, a, q.dequeue())
}
