package batch

import (
	"sync"
	"time"
)

// Stats tracks how long chunks and tasks took, for reporting.
type Stats struct {
	sum           time.Duration
	finishedTasks int64
	failedTasks   int64
	chunks        []time.Duration
	mu            sync.Mutex
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{}
}

// Update records a settled task.
func (s *Stats) Update(d time.Duration, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sum += d
	s.finishedTasks++
	if !success {
		s.failedTasks++
	}
}

// ChunkDone records the wall time of a settled chunk.
func (s *Stats) ChunkDone(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, d)
}

// Average returns the average task duration.
func (s *Stats) Average() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finishedTasks == 0 {
		return 0
	}
	return s.sum / time.Duration(s.finishedTasks)
}

// FinishedCount returns the number of settled tasks.
func (s *Stats) FinishedCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedTasks
}

// FailedCount returns the number of settled tasks that failed.
func (s *Stats) FailedCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failedTasks
}

// ChunkDurations returns the wall time of each settled chunk, in order.
func (s *Stats) ChunkDurations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.chunks...)
}
