// Package parallel provides chunked parallel execution for backend kernels.
package parallel

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on the CPU count and vector width.
// Wide-vector machines chew through small chunks too fast for goroutine
// dispatch to pay off, so the minimum chunk grows with the SIMD width.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	chunk := 1024
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		chunk = 8192
	case cpuid.CPU.Supports(cpuid.AVX2):
		chunk = 4096
	}
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: chunk,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is
// too small to amortize the dispatch.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForRows runs f once per row with parallelism keyed to the total element
// count rather than the row count. Used for row-wise kernels (log-softmax,
// float64 matmul) where each row is itself a chunk of work.
func ForRows(rows, rowSize int, f func(row int), cfg Config) {
	if !cfg.Enabled || rows*rowSize < cfg.MinChunkSize {
		for i := 0; i < rows; i++ {
			f(i)
		}
		return
	}

	rowCfg := cfg
	rowCfg.MinChunkSize = max(1, cfg.MinChunkSize/rowSize)
	For(rows, f, rowCfg)
}
