// Package batch runs a list of upload tasks either one by one or in
// consecutive fixed-size chunks, collecting results by position.
package batch

import (
	"sync"
	"time"

	"github.com/bitrise-io/go-cdnclient/envelope"
	"github.com/bitrise-io/go-utils/v2/log"
)

// Task produces the result for the input at index. A panicking Task is turned
// into a failure for that index only.
type Task func(index int) envelope.Result

// Scheduler runs tasks in chunks.
type Scheduler struct {
	config Config
	logger log.Logger
	stats  *Stats
}

// New creates a new Scheduler with the given configuration.
func New(config Config, logger log.Logger) *Scheduler {
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Scheduler{
		config: config,
		logger: logger,
		stats:  NewStats(),
	}
}

// Stats returns the statistics of the runs so far.
func (s *Scheduler) Stats() *Stats {
	return s.stats
}

// Run executes n tasks and returns their results in input order. A chunk only
// starts once every task of the previous chunk has settled, so at most
// chunk-size tasks are in flight. Waiting for the slowest task of a chunk
// leaves slots idle when durations vary; this is intentional.
func (s *Scheduler) Run(n int, task Task) []envelope.Result {
	results := make([]envelope.Result, n)
	chunks := Partition(n, s.config.chunkSize())

	s.logger.Debugf("Running %d task(s) in %d chunk(s)", n, len(chunks))

	for i, chunk := range chunks {
		start := time.Now()

		if chunk.Size() == 1 {
			results[chunk.Start] = s.runTask(chunk.Start, task)
		} else {
			var wg sync.WaitGroup
			for index := chunk.Start; index < chunk.End; index++ {
				wg.Add(1)
				go func(index int) {
					defer wg.Done()
					results[index] = s.runTask(index, task)
				}(index)
			}
			wg.Wait()
		}

		took := time.Since(start)
		s.stats.ChunkDone(took)
		s.logger.Debugf("Chunk %d/%d (%d task(s)) settled in %v [finished=%d] [failed=%d] [avg=%v]",
			i+1, len(chunks), chunk.Size(), took.Round(time.Millisecond),
			s.stats.FinishedCount(), s.stats.FailedCount(), s.stats.Average().Round(time.Millisecond))
	}

	return results
}

func (s *Scheduler) runTask(index int, task Task) (result envelope.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("Task %d panicked: %v", index+1, r)
			result = envelope.Fail("unexpected error: %v", r)
		}
		s.stats.Update(time.Since(start), result.Success)
	}()

	return task(index)
}
