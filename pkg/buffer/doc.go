// Package buffer provides a generic, thread-safe FIFO queue backed by a growable
// ring, with built-in statistics tracking and optional Prometheus metrics.
//
// # Overview
//
// Queue never drops items: when the ring is full it doubles and unwraps, so
// the front is always at a known position and Front/Pop stay O(1). This suits
// windows whose size depends on the data, such as the records of the last N
// seconds of an access log.
//
// # Quick Start
//
//	q, err := buffer.NewQueue[record.Record](64)
//	if err != nil {
//		return err
//	}
//
//	q.Push(rec)
//	for {
//		front, ok := q.Front()
//		if !ok || front.Timestamp > cutoff {
//			break
//		}
//		q.Pop()
//	}
//
// With metrics:
//
//	q, err := buffer.NewQueue[record.Record](64,
//		buffer.WithMetrics[record.Record](registry, "alert_window"),
//	)
//
// # Statistics
//
// Every queue tracks pushes, pops, front reads, growths and the high-water
// mark of its length:
//
//	stats := q.Stats()
//	slog.Info("window", "max_len", stats.MaxSize(), "grows", stats.Grows())
//
// # Thread Safety
//
// All methods are safe for concurrent use. The pipeline drives each queue
// from one goroutine; the lock exists so statistics and metrics can be read
// while a run is in progress.
package buffer
