// Package synth renders deterministic equirectangular textures: a gaussian
// bump around a point on the globe, and tinted fBm clouds.
//
// Parameters are normalized once at the entry point. Rows are then computed
// independently by a worker pool, each worker holding a single row of float
// scratch, so memory beyond the output buffer stays O(width).
package synth

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/MeKo-Tech/globetex/internal/noise"
	"github.com/MeKo-Tech/globetex/internal/palette"
	"github.com/MeKo-Tech/globetex/internal/raster"
	"github.com/MeKo-Tech/globetex/internal/worker"
)

type options struct {
	workers  int
	progress worker.ProgressFunc
	bands    worker.ResultFunc
	tables   *noise.TableCache
	logger   *slog.Logger
}

// Option tunes a render. None of them change the output bytes.
type Option func(*options)

// WithWorkers sets the number of row workers. n < 1 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithProgress reports completed rows after every band.
func WithProgress(fn worker.ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// WithBandObserver receives the timing of every finished row band.
func WithBandObserver(fn worker.ResultFunc) Option {
	return func(o *options) { o.bands = fn }
}

// WithTableCache reuses permutation tables across renders.
func WithTableCache(c *noise.TableCache) Option {
	return func(o *options) { o.tables = c }
}

// WithLogger sets the logger for render timings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// SynthesizeField renders a gaussian bump field into a new 1-channel buffer.
func SynthesizeField(ctx context.Context, p FieldParams, opts ...Option) (*raster.Buffer, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	buf, err := raster.NewBuffer(p.Layout())
	if err != nil {
		return nil, fmt.Errorf("allocate field: %w", err)
	}
	if err := renderField(ctx, buf, p, buildOptions(opts)); err != nil {
		return nil, err
	}
	return buf, nil
}

// RenderField renders a gaussian bump field into buf, which must have the
// 1-channel layout of p's grid.
func RenderField(ctx context.Context, buf *raster.Buffer, p FieldParams, opts ...Option) error {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if err := buf.Check(p.Layout()); err != nil {
		return err
	}
	return renderField(ctx, buf, p, buildOptions(opts))
}

func renderField(ctx context.Context, buf *raster.Buffer, p FieldParams, o options) error {
	start := time.Now()
	if err := run(ctx, newFieldRows(p, buf), p.Grid.Width, p.Grid.Height, o); err != nil {
		return fmt.Errorf("render bump field: %w", err)
	}
	o.logger.Debug("Rendered bump field",
		"width", p.Grid.Width,
		"height", p.Grid.Height,
		"center", p.Center(),
		"sigma_deg", p.EffectiveSigmaDeg(),
		"hard", p.Hard,
		"ms", time.Since(start).Milliseconds())
	return nil
}

// SynthesizeNoiseField renders a cloud field into a new 3- or 4-channel buffer.
func SynthesizeNoiseField(ctx context.Context, p NoiseParams, opts ...Option) (*raster.Buffer, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	buf, err := raster.NewBuffer(p.Layout())
	if err != nil {
		return nil, fmt.Errorf("allocate clouds: %w", err)
	}
	if err := renderNoise(ctx, buf, p, buildOptions(opts)); err != nil {
		return nil, err
	}
	return buf, nil
}

// RenderNoiseField renders a cloud field into buf, which must have p's
// layout (3 channels, or 4 with Alpha).
func RenderNoiseField(ctx context.Context, buf *raster.Buffer, p NoiseParams, opts ...Option) error {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if err := buf.Check(p.Layout()); err != nil {
		return err
	}
	return renderNoise(ctx, buf, p, buildOptions(opts))
}

func renderNoise(ctx context.Context, buf *raster.Buffer, p NoiseParams, o options) error {
	start := time.Now()
	src := noise.NewSource(p.Basis, p.Seed, o.tables)
	rows := newNoiseRows(p, src, palette.Heat.Tint(p.Anomaly), buf)
	if err := run(ctx, rows, p.Grid.Width, p.Grid.Height, o); err != nil {
		return fmt.Errorf("render clouds: %w", err)
	}
	o.logger.Debug("Rendered clouds",
		"width", p.Grid.Width,
		"height", p.Grid.Height,
		"seed", p.Seed,
		"octaves", p.Octaves,
		"basis", p.Basis,
		"ms", time.Since(start).Milliseconds())
	return nil
}

func run(ctx context.Context, r worker.RowRenderer, width, height int, o options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pool := worker.New(worker.Config{
		Workers:     o.workers,
		Renderer:    r,
		ScratchSize: width,
		OnProgress:  o.progress,
		OnResult:    o.bands,
	})
	return worker.Err(pool.Run(ctx, height))
}
