package batch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bitrise-io/go-cdnclient/envelope"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		size      int
		wantSizes []int
	}{
		{name: "5 by 2", n: 5, size: 2, wantSizes: []int{2, 2, 1}},
		{name: "6 by 3", n: 6, size: 3, wantSizes: []int{3, 3}},
		{name: "fewer than size", n: 2, size: 3, wantSizes: []int{2}},
		{name: "sequential", n: 3, size: 1, wantSizes: []int{1, 1, 1}},
		{name: "invalid size", n: 2, size: 0, wantSizes: []int{1, 1}},
		{name: "empty", n: 0, size: 3, wantSizes: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sizes []int
			next := 0
			for _, c := range Partition(tt.n, tt.size) {
				assert.Equal(t, next, c.Start)
				next = c.End
				sizes = append(sizes, c.Size())
			}
			assert.Equal(t, tt.wantSizes, sizes)
		})
	}
}

func TestConfig_chunkSize(t *testing.T) {
	assert.Equal(t, 3, DefaultConfig().chunkSize())
	assert.Equal(t, 3, Config{MaxConcurrent: -1}.chunkSize())
	assert.Equal(t, 1, Config{Sequential: true, MaxConcurrent: 5}.chunkSize())
	assert.Equal(t, 5, Config{MaxConcurrent: 5}.chunkSize())
}

type span struct {
	start, end int64
}

func TestScheduler_Run_chunksSettleBeforeNextChunk(t *testing.T) {
	var clock int64
	var mu sync.Mutex
	spans := make([]span, 5)
	var inFlight, maxInFlight int32

	// Later inputs finish first inside a chunk.
	delays := []time.Duration{40, 10, 30, 5, 1}

	scheduler := New(Config{MaxConcurrent: 2}, log.NewLogger())
	results := scheduler.Run(5, func(index int) envelope.Result {
		current := atomic.AddInt32(&inFlight, 1)
		for {
			max := atomic.LoadInt32(&maxInFlight)
			if current <= max || atomic.CompareAndSwapInt32(&maxInFlight, max, current) {
				break
			}
		}
		start := atomic.AddInt64(&clock, 1)

		time.Sleep(delays[index] * time.Millisecond)

		end := atomic.AddInt64(&clock, 1)
		atomic.AddInt32(&inFlight, -1)

		mu.Lock()
		spans[index] = span{start: start, end: end}
		mu.Unlock()

		if index == 1 {
			return envelope.FailStatus(500, "boom")
		}
		return envelope.OK(200, map[string]int{"index": index}, "")
	})

	require.Len(t, results, 5)
	assert.Equal(t, int32(2), maxInFlight)

	for i, r := range results {
		if i == 1 {
			assert.False(t, r.Success)
			continue
		}
		require.True(t, r.Success)
		var payload struct{ Index int }
		require.NoError(t, r.Decode(&payload))
		assert.Equal(t, i, payload.Index)
	}

	// chunk [0,1] settles before [2,3] starts, which settles before [4] starts
	assert.Less(t, maxInt(spans[0].end, spans[1].end), minInt(spans[2].start, spans[3].start))
	assert.Less(t, maxInt(spans[2].end, spans[3].end), spans[4].start)

	assert.Len(t, scheduler.Stats().ChunkDurations(), 3)
	assert.Equal(t, int64(5), scheduler.Stats().FinishedCount())
	assert.Equal(t, int64(1), scheduler.Stats().FailedCount())
}

func TestScheduler_Run_sequentialKeepsOrder(t *testing.T) {
	var order []int
	results := New(Config{Sequential: true}, log.NewLogger()).Run(4, func(index int) envelope.Result {
		order = append(order, index)
		return envelope.OK(200, nil, "")
	})

	assert.Equal(t, []int{0, 1, 2, 3}, order)
	assert.Len(t, results, 4)
}

func TestScheduler_Run_recoversPanics(t *testing.T) {
	for _, config := range []Config{{Sequential: true}, {MaxConcurrent: 3}} {
		results := New(config, log.NewLogger()).Run(3, func(index int) envelope.Result {
			if index == 0 {
				panic("corrupt input")
			}
			return envelope.OK(200, nil, "")
		})

		require.Len(t, results, 3)
		assert.False(t, results[0].Success)
		assert.Contains(t, results[0].Message, "corrupt input")
		assert.True(t, results[1].Success)
		assert.True(t, results[2].Success)
	}
}

func maxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
