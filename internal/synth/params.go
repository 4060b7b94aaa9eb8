package synth

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/MeKo-Tech/globetex/internal/encode"
	"github.com/MeKo-Tech/globetex/internal/geo"
	"github.com/MeKo-Tech/globetex/internal/noise"
	"github.com/MeKo-Tech/globetex/internal/palette"
	"github.com/MeKo-Tech/globetex/internal/raster"
)

// Mode selects which field a request renders.
type Mode string

const (
	ModeBump   Mode = "bump"
	ModeClouds Mode = "clouds"
)

// ParseMode accepts the mode names and their endpoint aliases.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bump", "bumpmap", "gaussian":
		return ModeBump, nil
	case "clouds", "cloud", "noise":
		return ModeClouds, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want bump or clouds)", s)
	}
}

// Request-layer defaults.
const (
	DefaultWidth     = 8192
	DefaultHeight    = 4096
	DefaultLatDeg    = 50.0
	DefaultLonDeg    = 10.0
	DefaultSigmaDeg  = 20.0
	DefaultScale     = 1.0
	DefaultThreshold = 0.35

	DefaultOctaves    = 6
	DefaultLacunarity = 2.0
	DefaultGain       = 0.5
	DefaultFrequency  = 1.0
	DefaultContrast   = 1.4
	DefaultGamma      = 1.0
	DefaultCoverage   = 0.0
	DefaultAnomaly    = 1.2
)

// Clamp ranges. Values outside are pulled to the nearest bound.
const (
	MinScale, MaxScale           = 0.1, 10.0
	MaxSigmaDeg                  = 180.0
	MinOctaves, MaxOctaves       = 1, 16
	MinLacunarity, MaxLacunarity = 0.1, 8.0
	MinGain, MaxGain             = 0.01, 2.0
	MinFrequency, MaxFrequency   = 0.001, 512.0
	MinContrast, MaxContrast     = 0.0, 16.0
	MinGamma, MaxGamma           = 0.05, 16.0
	MinCoverage, MaxCoverage     = -1.0, 1.0
)

// FieldParams configures a gaussian bump field.
type FieldParams struct {
	Grid      geo.Grid
	LatDeg    float64
	LonDeg    float64
	SigmaDeg  float64
	Scale     float64
	Hard      bool
	Threshold float64
	Format    encode.Format
}

// DefaultFieldParams returns the parameters of an empty bump request.
func DefaultFieldParams() FieldParams {
	return FieldParams{
		Grid:      geo.Grid{Width: DefaultWidth, Height: DefaultHeight},
		LatDeg:    DefaultLatDeg,
		LonDeg:    DefaultLonDeg,
		SigmaDeg:  DefaultSigmaDeg,
		Scale:     DefaultScale,
		Threshold: DefaultThreshold,
		Format:    encode.FormatPNG,
	}
}

// Normalize substitutes defaults for invalid values and clamps the rest.
// It never changes the grid; Validate checks that.
func (p FieldParams) Normalize() FieldParams {
	p.LatDeg = clamp(finiteOr(p.LatDeg, DefaultLatDeg), -90, 90)
	p.LonDeg = wrapDeg(finiteOr(p.LonDeg, DefaultLonDeg))
	p.SigmaDeg = math.Min(positiveOr(p.SigmaDeg, DefaultSigmaDeg), MaxSigmaDeg)
	p.Scale = clamp(positiveOr(p.Scale, DefaultScale), MinScale, MaxScale)
	p.Threshold = clamp(finiteOr(p.Threshold, DefaultThreshold), 0, 1)
	p.Format = encode.ParseFormat(string(p.Format))
	return p
}

// Center is the bump center as an orb point (lon, lat in degrees).
func (p FieldParams) Center() orb.Point {
	return orb.Point{p.LonDeg, p.LatDeg}
}

// EffectiveSigmaDeg is SigmaDeg·Scale, the width the falloff is drawn with.
func (p FieldParams) EffectiveSigmaDeg() float64 {
	return p.SigmaDeg * p.Scale
}

// Validate checks the grid.
func (p FieldParams) Validate() error {
	return validateGrid(p.Grid)
}

// Layout is the buffer shape a render of p fills.
func (p FieldParams) Layout() raster.Layout {
	return raster.Layout{Width: p.Grid.Width, Height: p.Grid.Height, Channels: 1}
}

// NoiseParams configures a tinted fBm cloud field.
type NoiseParams struct {
	Grid       geo.Grid
	Seed       int64
	Octaves    int
	Lacunarity float64
	Gain       float64
	Frequency  float64
	Contrast   float64
	Gamma      float64
	Coverage   float64
	Anomaly    float64
	Alpha      bool
	Basis      noise.Basis
	Format     encode.Format
}

// DefaultNoiseParams returns the parameters of an empty clouds request.
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{
		Grid:       geo.Grid{Width: DefaultWidth, Height: DefaultHeight},
		Seed:       noise.DefaultSeed,
		Octaves:    DefaultOctaves,
		Lacunarity: DefaultLacunarity,
		Gain:       DefaultGain,
		Frequency:  DefaultFrequency,
		Contrast:   DefaultContrast,
		Gamma:      DefaultGamma,
		Coverage:   DefaultCoverage,
		Anomaly:    DefaultAnomaly,
		Basis:      noise.BasisClassic,
		Format:     encode.FormatPNG,
	}
}

// Normalize substitutes defaults for invalid values and clamps the rest.
// JPEG output cannot carry alpha, so Alpha is cleared for it.
func (p NoiseParams) Normalize() NoiseParams {
	if p.Octaves < MinOctaves {
		p.Octaves = DefaultOctaves
	}
	if p.Octaves > MaxOctaves {
		p.Octaves = MaxOctaves
	}
	p.Lacunarity = clamp(positiveOr(p.Lacunarity, DefaultLacunarity), MinLacunarity, MaxLacunarity)
	p.Gain = clamp(positiveOr(p.Gain, DefaultGain), MinGain, MaxGain)
	p.Frequency = clamp(positiveOr(p.Frequency, DefaultFrequency), MinFrequency, MaxFrequency)
	p.Contrast = clamp(finiteOr(p.Contrast, DefaultContrast), MinContrast, MaxContrast)
	p.Gamma = clamp(positiveOr(p.Gamma, DefaultGamma), MinGamma, MaxGamma)
	p.Coverage = clamp(finiteOr(p.Coverage, DefaultCoverage), MinCoverage, MaxCoverage)
	p.Anomaly = palette.Heat.ClampAnomaly(p.Anomaly, DefaultAnomaly)
	p.Basis = noise.ParseBasis(string(p.Basis))
	p.Format = encode.ParseFormat(string(p.Format))
	if !p.Format.SupportsAlpha() {
		p.Alpha = false
	}
	return p
}

// Validate checks the grid.
func (p NoiseParams) Validate() error {
	return validateGrid(p.Grid)
}

// Channels is 4 with alpha and 3 without.
func (p NoiseParams) Channels() int {
	if p.Alpha {
		return 4
	}
	return 3
}

// Layout is the buffer shape a render of p fills.
func (p NoiseParams) Layout() raster.Layout {
	return raster.Layout{Width: p.Grid.Width, Height: p.Grid.Height, Channels: p.Channels()}
}

// fractal returns the fractal-sum settings.
func (p NoiseParams) fractal() noise.Octaves {
	return noise.Octaves{
		Count:      p.Octaves,
		Lacunarity: p.Lacunarity,
		Gain:       p.Gain,
		Frequency:  p.Frequency,
	}
}

func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func positiveOr(v, def float64) float64 {
	if !(v > 0) || math.IsInf(v, 1) {
		return def
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// wrapDeg maps degrees into (-180, 180].
func wrapDeg(v float64) float64 {
	w := math.Mod(v+180, 360)
	if w < 0 {
		w += 360
	}
	w -= 180
	if w == -180 {
		return 180
	}
	return w
}
