package buffer

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/accessmon/errors"
	"github.com/c360/accessmon/metric"
)

func TestQueueBasicOperations(t *testing.T) {
	q, err := NewQueue[string](0)
	require.NoError(t, err)

	assert.True(t, q.IsEmpty())
	assert.Equal(t, minCapacity, q.Capacity())

	_, ok := q.Front()
	assert.False(t, ok)
	_, ok = q.Pop()
	assert.False(t, ok)

	q.Push("first")
	q.Push("second")
	q.Push("third")
	assert.Equal(t, 3, q.Len())

	front, ok := q.Front()
	require.True(t, ok)
	assert.Equal(t, "first", front)
	assert.Equal(t, 3, q.Len(), "Front must not remove")

	second, ok := q.At(1)
	require.True(t, ok)
	assert.Equal(t, "second", second)
	_, ok = q.At(3)
	assert.False(t, ok)

	for _, want := range []string{"first", "second", "third"} {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueueGrowthPreservesOrder(t *testing.T) {
	q, err := NewQueue[int](8)
	require.NoError(t, err)

	// Offset the head so the ring is wrapped when growth happens.
	for i := 0; i < 5; i++ {
		q.Push(-1)
	}
	for i := 0; i < 5; i++ {
		q.Pop()
	}

	for i := 0; i < 100; i++ {
		q.Push(i)
	}

	assert.Equal(t, 100, q.Len())
	assert.GreaterOrEqual(t, q.Capacity(), 100)
	assert.Equal(t, int64(4), q.Stats().Grows(), "8 -> 16 -> 32 -> 64 -> 128")

	for i := 0; i < 100; i++ {
		got, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, i, got)
	}
}

func TestQueueWraparound(t *testing.T) {
	q, err := NewQueue[int](8)
	require.NoError(t, err)

	next, expect := 0, 0
	for round := 0; round < 50; round++ {
		for i := 0; i < 5; i++ {
			q.Push(next)
			next++
		}
		for i := 0; i < 5; i++ {
			got, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, expect, got)
			expect++
		}
	}

	assert.Equal(t, 8, q.Capacity(), "steady state must not grow")
	assert.Equal(t, int64(0), q.Stats().Grows())
}

func TestQueueClear(t *testing.T) {
	q, err := NewQueue[int](8)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		q.Push(i)
	}
	capacity := q.Capacity()

	q.Clear()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, capacity, q.Capacity())

	q.Push(42)
	got, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestQueueStatistics(t *testing.T) {
	q, err := NewQueue[int](8)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	q.Front()
	q.Pop()
	q.Pop()

	stats := q.Stats()
	assert.Equal(t, int64(10), stats.Writes())
	assert.Equal(t, int64(2), stats.Reads())
	assert.Equal(t, int64(1), stats.Peeks())
	assert.Equal(t, int64(8), stats.CurrentSize())
	assert.Equal(t, int64(10), stats.MaxSize())

	summary := stats.Summary()
	assert.Equal(t, int64(10), summary.Writes)
	assert.Equal(t, int64(1), summary.Grows)

	stats.Reset()
	assert.Equal(t, int64(0), stats.Writes())
	assert.Equal(t, int64(0), stats.MaxSize())
}

func TestQueueMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	q, err := NewQueue[int](8, WithMetrics[int](registry, "alert_window"))
	require.NoError(t, err)
	require.NotNil(t, q.metrics)

	for i := 0; i < 9; i++ {
		q.Push(i)
	}
	q.Pop()

	assert.Equal(t, 9.0, testutil.ToFloat64(q.metrics.writes))
	assert.Equal(t, 1.0, testutil.ToFloat64(q.metrics.reads))
	assert.Equal(t, 1.0, testutil.ToFloat64(q.metrics.grows))
	assert.Equal(t, 8.0, testutil.ToFloat64(q.metrics.size))
	assert.Equal(t, 16.0, testutil.ToFloat64(q.metrics.capacity))
}

func TestQueueMetricsDuplicatePrefix(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	_, err := NewQueue[int](8, WithMetrics[int](registry, "ready"))
	require.NoError(t, err)

	_, err = NewQueue[int](8, WithMetrics[int](registry, "ready"))
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestQueueMetricsIgnoredWithoutRegistry(t *testing.T) {
	q, err := NewQueue[int](8, WithMetrics[int](nil, "x"), nil)
	require.NoError(t, err)
	assert.Nil(t, q.metrics)
}

func TestQueueConcurrentAccess(t *testing.T) {
	q, err := NewQueue[int](8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, q.Len())

	popped := 0
	for {
		if _, ok := q.Pop(); !ok {
			break
		}
		popped++
	}
	assert.Equal(t, 1000, popped)
}
