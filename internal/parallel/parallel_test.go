package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize * 4

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_EveryIndexExactlyOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	n := 100
	hits := make([]int64, n)
	For(n, func(i int) {
		atomic.AddInt64(&hits[i], 1)
	}, cfg)

	for i, h := range hits {
		if h != 1 {
			t.Errorf("index %d visited %d times", i, h)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForRows(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64}

	rows, rowSize := 32, 16
	hits := make([]int64, rows)
	ForRows(rows, rowSize, func(row int) {
		atomic.AddInt64(&hits[row], 1)
	}, cfg)

	for r, h := range hits {
		if h != 1 {
			t.Errorf("row %d visited %d times", r, h)
		}
	}
}

func TestForRows_SmallWorkIsSequential(t *testing.T) {
	cfg := DefaultConfig()

	visited := make([]int, 0, 4)
	ForRows(4, 2, func(row int) {
		visited = append(visited, row)
	}, cfg)

	// 8 elements is far below any default chunk, so the rows run in
	// order on the calling goroutine.
	for i, row := range visited {
		if row != i {
			t.Errorf("row order %v, want ascending", visited)
			break
		}
	}
	if len(visited) != 4 {
		t.Errorf("visited %d rows, want 4", len(visited))
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 100000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}
