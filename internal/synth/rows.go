package synth

import (
	"github.com/MeKo-Tech/globetex/internal/geo"
	"github.com/MeKo-Tech/globetex/internal/noise"
	"github.com/MeKo-Tech/globetex/internal/raster"
	"github.com/MeKo-Tech/globetex/internal/shape"
)

// fieldRows renders gaussian rows. Everything but buf is read-only, so one
// value serves all workers.
type fieldRows struct {
	grid   geo.Grid
	center geo.Center
	cols   []float64
	shaper shape.Gaussian
	buf    *raster.Buffer
}

func newFieldRows(p FieldParams, buf *raster.Buffer) *fieldRows {
	center := geo.CenterFromPoint(p.Center())
	return &fieldRows{
		grid:   p.Grid,
		center: center,
		cols:   geo.ColumnTerms(center, p.Grid),
		shaper: shape.NewGaussian(p.EffectiveSigmaDeg(), p.Hard, p.Threshold),
		buf:    buf,
	}
}

// values fills dst with the shaped intensity of every sample in row.
func (f *fieldRows) values(row int, dst []float64) {
	geo.RowDistances(f.center, f.grid, row, f.cols, dst)
	f.shaper.ShapeRow(dst)
}

func (f *fieldRows) RenderRow(row int, scratch []float64) error {
	vals := scratch[:f.grid.Width]
	f.values(row, vals)
	raster.QuantizeGray(f.buf.Row(row), vals)
	return nil
}

// noiseRows renders tinted fBm rows.
type noiseRows struct {
	grid     geo.Grid
	src      noise.Source
	octaves  noise.Octaves
	coverage float64
	curve    shape.Curve
	tint     [3]float64
	alpha    bool
	buf      *raster.Buffer
}

func newNoiseRows(p NoiseParams, src noise.Source, tint [3]float64, buf *raster.Buffer) *noiseRows {
	return &noiseRows{
		grid:     p.Grid,
		src:      src,
		octaves:  p.fractal(),
		coverage: p.Coverage,
		curve:    shape.Curve{Contrast: p.Contrast, Gamma: p.Gamma},
		tint:     tint,
		alpha:    p.Alpha,
		buf:      buf,
	}
}

// values fills dst with the curved cloud density of every sample in row.
// Samples sit at x = 2·col/width, y = row/height so a lattice cell is square
// on the 2:1 grid.
func (n *noiseRows) values(row int, dst []float64) {
	w := float64(n.grid.Width)
	y := float64(row) / float64(n.grid.Height)
	for col := range dst {
		x := 2 * float64(col) / w
		v := noise.FBM(n.src, x, y, n.octaves)
		v = shape.ApplyCoverage(v, n.coverage)
		dst[col] = n.curve.Apply(v)
	}
}

func (n *noiseRows) RenderRow(row int, scratch []float64) error {
	vals := scratch[:n.grid.Width]
	n.values(row, vals)
	raster.QuantizeTinted(n.buf.Row(row), vals, n.tint, n.alpha)
	return nil
}
