package batch

// DefaultMaxConcurrent is the chunk size used when none is configured.
const DefaultMaxConcurrent = 3

// Config holds configuration for the batch scheduler.
type Config struct {
	// Sequential runs the tasks one by one in input order.
	// Default: false
	Sequential bool

	// MaxConcurrent is the chunk size in concurrent mode: this many tasks are
	// started together and all of them settle before the next chunk starts.
	// Default: 3, values below 1 fall back to the default.
	MaxConcurrent int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Sequential:    false,
		MaxConcurrent: DefaultMaxConcurrent,
	}
}

func (c Config) chunkSize() int {
	if c.Sequential {
		return 1
	}
	if c.MaxConcurrent < 1 {
		return DefaultMaxConcurrent
	}
	return c.MaxConcurrent
}

// Chunk is a half-open index range [Start, End) of tasks run together.
type Chunk struct {
	Start int
	End   int
}

// Size ...
func (c Chunk) Size() int {
	return c.End - c.Start
}

// Partition splits n tasks into consecutive chunks of at most size tasks.
func Partition(n, size int) []Chunk {
	if n <= 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}

	chunks := make([]Chunk, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, Chunk{Start: start, End: end})
	}
	return chunks
}
