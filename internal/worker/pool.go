// Package worker renders raster rows in parallel bands.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// RowRenderer fills one output row. scratch is owned by the calling worker
// and has the length given in Config.ScratchSize.
type RowRenderer interface {
	RenderRow(row int, scratch []float64) error
}

// RowFunc adapts a function to RowRenderer.
type RowFunc func(row int, scratch []float64) error

func (f RowFunc) RenderRow(row int, scratch []float64) error { return f(row, scratch) }

// Band is the half-open row range [Start, End).
type Band struct {
	Start int
	End   int
}

// Rows is the number of rows in the band.
func (b Band) Rows() int { return b.End - b.Start }

// Result is the outcome of one band.
type Result struct {
	Band    Band
	Rows    int // rows actually rendered
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each band completes. completed counts
// processed rows, including the failed ones.
type ProgressFunc func(completed, total, failed int)

// ResultFunc receives every band result as it completes.
type ResultFunc func(Result)

// Config configures the worker pool.
type Config struct {
	Workers     int
	Renderer    RowRenderer
	ScratchSize int
	// BandRows fixes the rows per band. Zero picks about four bands per worker.
	BandRows   int
	OnProgress ProgressFunc
	OnResult   ResultFunc
}

// Pool renders a raster by handing row bands to a fixed set of goroutines.
type Pool struct {
	workers     int
	renderer    RowRenderer
	scratchSize int
	bandRows    int
	onProgress  ProgressFunc
	onResult    ResultFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:     workers,
		renderer:    cfg.Renderer,
		scratchSize: cfg.ScratchSize,
		bandRows:    cfg.BandRows,
		onProgress:  cfg.OnProgress,
		onResult:    cfg.OnResult,
	}
}

// Workers reports the effective worker count.
func (p *Pool) Workers() int { return p.workers }

// Bands splits [0, height) into contiguous bands of at most rows rows.
func Bands(height, rows int) []Band {
	if height <= 0 {
		return nil
	}
	if rows <= 0 {
		rows = 1
	}
	bands := make([]Band, 0, (height+rows-1)/rows)
	for start := 0; start < height; start += rows {
		end := start + rows
		if end > height {
			end = height
		}
		bands = append(bands, Band{Start: start, End: end})
	}
	return bands
}

func (p *Pool) rowsPerBand(height int) int {
	if p.bandRows > 0 {
		return p.bandRows
	}
	n := height / (p.workers * 4)
	if n < 1 {
		n = 1
	}
	return n
}

// Run renders rows [0, height) and returns one Result per band, in completion
// order. It blocks until every band finishes or the context is cancelled;
// cancellation is checked between rows.
func (p *Pool) Run(ctx context.Context, height int) []Result {
	bands := Bands(height, p.rowsPerBand(height))
	if len(bands) == 0 {
		return nil
	}

	bandCh := make(chan Band, len(bands))
	resultCh := make(chan Result, len(bands))

	var wg sync.WaitGroup
	workers := p.workers
	if workers > len(bands) {
		workers = len(bands)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, bandCh, resultCh)
		}()
	}

	for _, b := range bands {
		bandCh <- b
	}
	close(bandCh)

	results := make([]Result, 0, len(bands))
	done := make(chan struct{})

	go func() {
		var completed, failed int
		for result := range resultCh {
			results = append(results, result)
			if p.onResult != nil {
				p.onResult(result)
			}

			// rows a failed band never reached count as processed and failed
			completed += result.Band.Rows()
			if result.Err != nil {
				failed += result.Band.Rows() - result.Rows
			}

			if p.onProgress != nil {
				p.onProgress(completed, height, failed)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

// worker renders bands from the band channel with its own scratch row.
func (p *Pool) worker(ctx context.Context, bands <-chan Band, results chan<- Result) {
	scratch := make([]float64, p.scratchSize)
	for band := range bands {
		start := time.Now()
		res := Result{Band: band}
		for row := band.Start; row < band.End; row++ {
			if err := ctx.Err(); err != nil {
				res.Err = err
				break
			}
			if err := p.renderer.RenderRow(row, scratch); err != nil {
				res.Err = err
				break
			}
			res.Rows++
		}
		res.Elapsed = time.Since(start)
		results <- res
	}
}

// Err returns the first error among results, preferring a context error so
// callers can report cancellation.
func Err(results []Result) error {
	var first error
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
			return r.Err
		}
		if first == nil {
			first = r.Err
		}
	}
	return first
}
