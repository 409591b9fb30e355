package buffer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks queue activity.
type Statistics struct {
	// Atomic counters for thread-safe updates
	writes int64
	reads  int64
	peeks  int64
	grows  int64

	// Protected by mutex
	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Write records a push.
func (s *Statistics) Write() {
	atomic.AddInt64(&s.writes, 1)
}

// Read records a pop.
func (s *Statistics) Read() {
	atomic.AddInt64(&s.reads, 1)
}

// Peek records a front read.
func (s *Statistics) Peek() {
	atomic.AddInt64(&s.peeks, 1)
}

// Grow records a doubling of the backing ring.
func (s *Statistics) Grow() {
	atomic.AddInt64(&s.grows, 1)
}

// UpdateSize updates the current queue length and its high-water mark.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Writes returns the total number of push operations.
func (s *Statistics) Writes() int64 {
	return atomic.LoadInt64(&s.writes)
}

// Reads returns the total number of pop operations.
func (s *Statistics) Reads() int64 {
	return atomic.LoadInt64(&s.reads)
}

// Peeks returns the total number of front reads.
func (s *Statistics) Peeks() int64 {
	return atomic.LoadInt64(&s.peeks)
}

// Grows returns how many times the ring doubled.
func (s *Statistics) Grows() int64 {
	return atomic.LoadInt64(&s.grows)
}

// CurrentSize returns the current number of items in the queue.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the maximum number of items the queue has held.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// Throughput returns the average number of pushes per second.
func (s *Statistics) Throughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.Writes()) / elapsed.Seconds()
}

// Uptime returns how long the queue has existed.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Reset resets all statistics to zero.
func (s *Statistics) Reset() {
	atomic.StoreInt64(&s.writes, 0)
	atomic.StoreInt64(&s.reads, 0)
	atomic.StoreInt64(&s.peeks, 0)
	atomic.StoreInt64(&s.grows, 0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.currentSize = 0
	s.maxSize = 0
	s.mu.Unlock()
}

// StatsSummary is a snapshot of all statistics.
type StatsSummary struct {
	Writes      int64         `json:"writes"`
	Reads       int64         `json:"reads"`
	Peeks       int64         `json:"peeks"`
	Grows       int64         `json:"grows"`
	CurrentSize int64         `json:"current_size"`
	MaxSize     int64         `json:"max_size"`
	Throughput  float64       `json:"throughput"`
	Uptime      time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Writes:      s.Writes(),
		Reads:       s.Reads(),
		Peeks:       s.Peeks(),
		Grows:       s.Grows(),
		CurrentSize: s.CurrentSize(),
		MaxSize:     s.MaxSize(),
		Throughput:  s.Throughput(),
		Uptime:      s.Uptime(),
	}
}
