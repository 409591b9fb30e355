package buffer

import (
	"sync"

	"github.com/c360/accessmon/errors"
)

// minCapacity is the smallest backing array a Queue allocates.
const minCapacity = 8

// Queue is a FIFO queue over a ring of T that doubles its capacity when full.
type Queue[T any] struct {
	mu      sync.RWMutex
	items   []T
	head    int // index of the front item
	size    int
	stats   *Statistics    // ALWAYS initialized for observability
	metrics *bufferMetrics // Optional Prometheus metrics
}

// NewQueue creates a queue with room for initialCapacity items before its first growth.
// Returns an error if metrics registration fails when metrics are requested.
func NewQueue[T any](initialCapacity int, options ...Option[T]) (*Queue[T], error) {
	opts := applyOptions(options...)

	if initialCapacity < minCapacity {
		initialCapacity = minCapacity
	}

	var metrics *bufferMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newBufferMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "buffer", "NewQueue", "metrics registration")
		}
	}

	return &Queue[T]{
		items:   make([]T, initialCapacity),
		stats:   NewStatistics(),
		metrics: metrics,
	}, nil
}

// Push appends an item at the back of the queue, growing the ring if needed.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.items) {
		q.grow()
	}

	q.items[(q.head+q.size)%len(q.items)] = item
	q.size++

	q.stats.Write()
	q.stats.UpdateSize(int64(q.size))
	if q.metrics != nil {
		q.metrics.recordWrite(q.size, len(q.items))
	}
}

// Pop removes and returns the front item.
// Returns the zero value and false if the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.size == 0 {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero // Clear for GC
	q.head = (q.head + 1) % len(q.items)
	q.size--

	q.stats.Read()
	q.stats.UpdateSize(int64(q.size))
	if q.metrics != nil {
		q.metrics.recordRead(q.size, len(q.items))
	}

	return item, true
}

// Front returns the front item without removing it.
// Returns the zero value and false if the queue is empty.
func (q *Queue[T]) Front() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var zero T
	if q.size == 0 {
		return zero, false
	}

	q.stats.Peek()
	if q.metrics != nil {
		q.metrics.recordPeek()
	}
	return q.items[q.head], true
}

// At returns the i-th item from the front without removing it.
func (q *Queue[T]) At(i int) (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var zero T
	if i < 0 || i >= q.size {
		return zero, false
	}
	return q.items[(q.head+i)%len(q.items)], true
}

// Len returns the current number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.size
}

// Capacity returns the size of the backing ring.
func (q *Queue[T]) Capacity() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// IsEmpty returns true if the queue contains no items.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Clear removes all items, keeping the current capacity.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	for i := 0; i < q.size; i++ {
		q.items[(q.head+i)%len(q.items)] = zero
	}
	q.head = 0
	q.size = 0

	q.stats.UpdateSize(0)
	if q.metrics != nil {
		q.metrics.updateSize(0, len(q.items))
	}
}

// Stats returns queue statistics (always available for observability).
func (q *Queue[T]) Stats() *Statistics {
	return q.stats
}

// grow doubles the ring and unwraps it so the front sits at index 0.
// Caller must hold the write lock.
func (q *Queue[T]) grow() {
	next := make([]T, len(q.items)*2)
	n := copy(next, q.items[q.head:])
	copy(next[n:], q.items[:q.head])

	q.items = next
	q.head = 0

	q.stats.Grow()
	if q.metrics != nil {
		q.metrics.recordGrow(len(next))
	}
}
