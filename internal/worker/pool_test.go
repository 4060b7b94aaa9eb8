package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordingRenderer marks each rendered row and can fail or stall on demand.
type recordingRenderer struct {
	mu      sync.Mutex
	rows    map[int]int
	delay   time.Duration
	failRow int
	calls   atomic.Int32
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{rows: make(map[int]int), failRow: -1}
}

func (r *recordingRenderer) RenderRow(row int, scratch []float64) error {
	r.calls.Add(1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if row == r.failRow {
		return errors.New("simulated failure")
	}
	scratch[0] = float64(row)
	r.mu.Lock()
	r.rows[row]++
	r.mu.Unlock()
	return nil
}

func TestBands(t *testing.T) {
	tests := []struct {
		name   string
		height int
		rows   int
		want   []Band
	}{
		{"even", 6, 2, []Band{{0, 2}, {2, 4}, {4, 6}}},
		{"ragged", 7, 3, []Band{{0, 3}, {3, 6}, {6, 7}}},
		{"single", 1, 8, []Band{{0, 1}}},
		{"zero rows clamps", 2, 0, []Band{{0, 1}, {1, 2}}},
		{"empty", 0, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bands(tt.height, tt.rows)
			if len(got) != len(tt.want) {
				t.Fatalf("Bands(%d, %d) = %v, want %v", tt.height, tt.rows, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("band %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPool_RendersEveryRowOnce(t *testing.T) {
	r := newRecordingRenderer()
	pool := New(Config{Workers: 3, Renderer: r, ScratchSize: 4})

	results := pool.Run(context.Background(), 37)
	if err := Err(results); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(r.rows) != 37 {
		t.Fatalf("rendered %d distinct rows, want 37", len(r.rows))
	}
	for row, n := range r.rows {
		if n != 1 {
			t.Errorf("row %d rendered %d times", row, n)
		}
	}

	total := 0
	for _, res := range results {
		total += res.Rows
	}
	if total != 37 {
		t.Errorf("results account for %d rows, want 37", total)
	}
}

func TestPool_Parallelism(t *testing.T) {
	r := newRecordingRenderer()
	r.delay = 25 * time.Millisecond

	pool := New(Config{Workers: 4, Renderer: r, ScratchSize: 1, BandRows: 1})

	start := time.Now()
	results := pool.Run(context.Background(), 8)
	elapsed := time.Since(start)

	// 8 rows at 25ms on 4 workers is about 50ms.
	if elapsed > 150*time.Millisecond {
		t.Errorf("expected parallel execution in ~50ms, took %v", elapsed)
	}
	if len(results) != 8 {
		t.Errorf("expected 8 results, got %d", len(results))
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	r := newRecordingRenderer()
	r.failRow = 5

	pool := New(Config{Workers: 2, Renderer: r, ScratchSize: 1, BandRows: 4})
	results := pool.Run(context.Background(), 12)

	if len(results) != 3 {
		t.Fatalf("expected 3 band results, got %d", len(results))
	}

	var failed int
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		failed++
		if res.Band != (Band{4, 8}) {
			t.Errorf("unexpected failing band %v", res.Band)
		}
		if res.Rows != 1 {
			t.Errorf("failing band rendered %d rows before the error, want 1", res.Rows)
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed band, got %d", failed)
	}
	if err := Err(results); err == nil || err.Error() != "simulated failure" {
		t.Errorf("Err = %v", err)
	}
}

func TestPool_Cancellation(t *testing.T) {
	r := newRecordingRenderer()
	r.delay = 5 * time.Millisecond

	pool := New(Config{Workers: 2, Renderer: r, ScratchSize: 1})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	results := pool.Run(ctx, 1000)
	elapsed := time.Since(start)

	if elapsed > 500*time.Millisecond {
		t.Errorf("expected early cancellation, took %v", elapsed)
	}
	if err := Err(results); !errors.Is(err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", err)
	}
	if n := int(r.calls.Load()); n >= 1000 {
		t.Errorf("all %d rows rendered despite cancellation", n)
	}
}

func TestPool_ProgressCallback(t *testing.T) {
	r := newRecordingRenderer()

	var calls atomic.Int32
	var lastCompleted, lastTotal int

	pool := New(Config{
		Workers:     2,
		Renderer:    r,
		ScratchSize: 1,
		BandRows:    3,
		OnProgress: func(completed, total, failed int) {
			calls.Add(1)
			lastCompleted = completed
			lastTotal = total
		},
	})

	pool.Run(context.Background(), 10)

	if calls.Load() != 4 {
		t.Errorf("expected 4 progress callbacks (one per band), got %d", calls.Load())
	}
	if lastCompleted != 10 || lastTotal != 10 {
		t.Errorf("final progress %d/%d, want 10/10", lastCompleted, lastTotal)
	}
}

func TestPool_EmptyHeight(t *testing.T) {
	r := newRecordingRenderer()
	pool := New(Config{Workers: 2, Renderer: r})

	if results := pool.Run(context.Background(), 0); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if r.calls.Load() != 0 {
		t.Errorf("expected no render calls, got %d", r.calls.Load())
	}
}

func TestPool_DefaultWorkers(t *testing.T) {
	if w := New(Config{}).Workers(); w != 1 {
		t.Errorf("Workers() = %d, want 1", w)
	}
}

func TestRowFunc(t *testing.T) {
	var seen []int
	var mu sync.Mutex
	pool := New(Config{
		Workers:     1,
		ScratchSize: 2,
		Renderer: RowFunc(func(row int, scratch []float64) error {
			if len(scratch) != 2 {
				return errors.New("wrong scratch size")
			}
			mu.Lock()
			seen = append(seen, row)
			mu.Unlock()
			return nil
		}),
	})
	if err := Err(pool.Run(context.Background(), 3)); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 {
		t.Errorf("seen = %v", seen)
	}
}

func TestPoolOnResult(t *testing.T) {
	r := newRecordingRenderer()
	r.failRow = 5

	var mu sync.Mutex
	seen := make(map[Band]Result)
	pool := New(Config{
		Workers:     3,
		Renderer:    r,
		ScratchSize: 1,
		BandRows:    4,
		OnResult: func(res Result) {
			mu.Lock()
			seen[res.Band] = res
			mu.Unlock()
		},
	})

	results := pool.Run(context.Background(), 10)
	if len(seen) != len(results) || len(seen) != 3 {
		t.Fatalf("OnResult saw %d bands, Run returned %d, want 3", len(seen), len(results))
	}
	for _, res := range results {
		if got := seen[res.Band]; got.Rows != res.Rows || got.Err != res.Err {
			t.Errorf("band %v: observed %+v, returned %+v", res.Band, got, res)
		}
	}
	if got := seen[Band{4, 8}]; got.Err == nil || got.Rows != 1 {
		t.Errorf("failing band observed as %+v, want 1 row and an error", got)
	}
}
