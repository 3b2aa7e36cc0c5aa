// Package mailbox implements the unbounded event queues that carry client
// activity from reader goroutines to the goroutine calling Scan.
package mailbox

import "sync"

// Status is the outcome of a TryRecv call.
type Status int

const (
	// Received means a value was dequeued.
	Received Status = iota
	// Empty means nothing is queued but senders may still send.
	Empty
	// Closed means the queue was closed and every queued value has been received.
	Closed
)

// compactThreshold is the number of consumed slots tolerated at the head of
// the buffer before it is shifted down.
const compactThreshold = 64

// Queue is an unbounded, order-preserving, many-producer single-consumer queue.
// Send never blocks and TryRecv never blocks.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	closed bool
}

// New returns an empty open queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Send enqueues v. It returns false, dropping v, if the queue is closed.
func (q *Queue[T]) Send(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, v)
	return true
}

// TryRecv dequeues the oldest value if there is one.
// Values sent before Close are still received after it.
func (q *Queue[T]) TryRecv() (T, Status) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.head == len(q.items) {
		if q.closed {
			return zero, Closed
		}
		return zero, Empty
	}

	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return v, Received
}

// Close marks the end of the stream. It is safe to call more than once.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Drained reports whether the queue is closed and has nothing left to receive.
func (q *Queue[T]) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && q.head == len(q.items)
}

// Len returns the number of values waiting to be received.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
