// Package palette maps temperature anomalies to tint colours.
package palette

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Stop is one colour at an anomaly threshold.
type Stop struct {
	At    float64
	Color colorful.Color
}

// Gradient is a piecewise-linear RGB ramp. Stops must be strictly increasing;
// a Gradient is read-only once built and may be shared freely.
type Gradient []Stop

// HeatStops are the anomaly thresholds and hex colours of the heat ramp:
// white, pale peach, orange, red, deep red.
var HeatStops = []struct {
	At  float64
	Hex string
}{
	{0.0, "#ffffff"},
	{1.5, "#ffdab9"},
	{2.0, "#ffa500"},
	{3.0, "#ff0000"},
	{4.0, "#8b0000"},
}

// Heat is the gradient built from HeatStops.
var Heat = MustParse(HeatStops)

// Parse builds a Gradient from hex stops.
func Parse(stops []struct {
	At  float64
	Hex string
}) (Gradient, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("gradient needs at least one stop")
	}
	g := make(Gradient, 0, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s.Hex)
		if err != nil {
			return nil, fmt.Errorf("stop %d: %w", i, err)
		}
		if i > 0 && !(s.At > stops[i-1].At) {
			return nil, fmt.Errorf("stop %d: threshold %v not above %v", i, s.At, stops[i-1].At)
		}
		g = append(g, Stop{At: s.At, Color: c})
	}
	return g, nil
}

// MustParse is Parse that panics on error. Used for package-level ramps.
func MustParse(stops []struct {
	At  float64
	Hex string
}) Gradient {
	g, err := Parse(stops)
	if err != nil {
		panic(err)
	}
	return g
}

// Min is the first threshold.
func (g Gradient) Min() float64 { return g[0].At }

// Max is the last threshold.
func (g Gradient) Max() float64 { return g[len(g)-1].At }

// At returns the colour for v. Values outside the stop range take the end
// colours; NaN takes the first.
func (g Gradient) At(v float64) colorful.Color {
	if len(g) == 1 || !(v > g[0].At) {
		return g[0].Color
	}
	last := len(g) - 1
	if v >= g[last].At {
		return g[last].Color
	}

	i := 0
	for i < last-1 && g[i+1].At <= v {
		i++
	}
	lo, hi := g[i], g[i+1]
	span := hi.At - lo.At
	if span < 1e-12 {
		return hi.Color
	}
	t := (v - lo.At) / span
	return lo.Color.BlendRgb(hi.Color, t).Clamped()
}

// Tint returns At(v) as an RGB triple in [0, 1].
func (g Gradient) Tint(v float64) [3]float64 {
	c := g.At(v)
	return [3]float64{c.R, c.G, c.B}
}

// ClampAnomaly limits v to the gradient's range. Non-finite values map to def.
func (g Gradient) ClampAnomaly(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = def
	}
	return math.Max(g.Min(), math.Min(g.Max(), v))
}
