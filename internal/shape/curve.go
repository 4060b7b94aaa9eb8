package shape

import "math"

// Curve is a contrast stretch around 0.5 followed by a gamma power.
type Curve struct {
	Contrast float64
	Gamma    float64
}

// Apply maps v through the curve. The result is in [0, 1]; 0^γ is 0.
func (c Curve) Apply(v float64) float64 {
	v = Clamp01((v-0.5)*c.Contrast + 0.5)
	if c.Gamma != 1 && v > 0 {
		v = math.Pow(v, c.Gamma)
	}
	return v
}

// ApplyCoverage adds a bias and clamps. It runs before Curve.Apply.
func ApplyCoverage(v, bias float64) float64 {
	return Clamp01(v + bias)
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v >= 0 {
		return v
	}
	return 0
}
