// Package shape turns distances and noise values into intensities.
package shape

import "math"

// DefaultSigmaDeg is used when a non-positive or non-finite sigma is supplied.
const DefaultSigmaDeg = 20.0

// Gaussian is a spherical falloff around a center. Sigma is in radians.
type Gaussian struct {
	Sigma     float64
	Hard      bool
	Threshold float64
}

// NewGaussian builds a shaper from a sigma in degrees.
func NewGaussian(sigmaDeg float64, hard bool, threshold float64) Gaussian {
	if !(sigmaDeg > 0) || math.IsInf(sigmaDeg, 0) {
		sigmaDeg = DefaultSigmaDeg
	}
	return Gaussian{
		Sigma:     sigmaDeg * math.Pi / 180,
		Hard:      hard,
		Threshold: threshold,
	}
}

// Intensity is exp(-d²/2σ²): 1 at d = 0 and strictly decreasing after.
func (g Gaussian) Intensity(d float64) float64 {
	s := g.Sigma
	if !(s > 0) {
		s = DefaultSigmaDeg * math.Pi / 180
	}
	return math.Exp(-(d * d) / (2 * s * s))
}

// Shape returns the intensity, or a 0/1 mask when Hard is set. The mask
// compares the float intensity, not its quantized byte.
func (g Gaussian) Shape(d float64) float64 {
	v := g.Intensity(d)
	if !g.Hard {
		return v
	}
	if v >= g.Threshold {
		return 1
	}
	return 0
}

// ShapeRow applies Shape to a row of distances in place.
func (g Gaussian) ShapeRow(row []float64) {
	for i, d := range row {
		row[i] = g.Shape(d)
	}
}
