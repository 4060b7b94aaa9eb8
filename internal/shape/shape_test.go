package shape

import (
	"math"
	"testing"
)

func TestGaussianIntensity(t *testing.T) {
	g := NewGaussian(10, false, 0)

	if got := g.Intensity(0); got != 1 {
		t.Fatalf("Intensity(0) = %v, want 1", got)
	}

	prev := 1.0
	for d := 0.01; d <= math.Pi; d += 0.01 {
		v := g.Intensity(d)
		if v <= 0 || v > prev {
			t.Fatalf("Intensity(%v) = %v, not in (0, %v]", d, v, prev)
		}
		prev = v
	}

	// One sigma out the falloff is exp(-1/2).
	sigma := 10 * math.Pi / 180
	if got, want := g.Intensity(sigma), math.Exp(-0.5); math.Abs(got-want) > 1e-15 {
		t.Errorf("Intensity(sigma) = %v, want %v", got, want)
	}
}

func TestNewGaussianSubstitutesSigma(t *testing.T) {
	want := DefaultSigmaDeg * math.Pi / 180
	for _, s := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := NewGaussian(s, false, 0).Sigma; got != want {
			t.Errorf("NewGaussian(%v).Sigma = %v, want %v", s, got, want)
		}
	}

	// A zero-value Gaussian must not divide by zero.
	if v := (Gaussian{}).Intensity(0.3); math.IsNaN(v) || v <= 0 || v > 1 {
		t.Errorf("zero Gaussian Intensity = %v", v)
	}
}

func TestGaussianHardMask(t *testing.T) {
	g := NewGaussian(10, true, 0.5)
	sigma := 10 * math.Pi / 180
	// Intensity crosses 0.5 at d = σ·sqrt(2 ln 2).
	edge := sigma * math.Sqrt(2*math.Ln2)

	tests := []struct {
		name string
		d    float64
		want float64
	}{
		{"center", 0, 1},
		{"inside", edge * 0.99, 1},
		{"outside", edge * 1.01, 0},
		{"antipode", math.Pi, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Shape(tt.d); got != tt.want {
				t.Errorf("Shape(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestShapeRow(t *testing.T) {
	g := NewGaussian(20, false, 0)
	row := []float64{0, 0.1, 0.2}
	g.ShapeRow(row)
	if row[0] != 1 || !(row[1] > row[2]) {
		t.Errorf("ShapeRow = %v", row)
	}
}

func TestCurveApply(t *testing.T) {
	tests := []struct {
		name  string
		curve Curve
		in    float64
		want  float64
	}{
		{"identity", Curve{Contrast: 1, Gamma: 1}, 0.3, 0.3},
		{"midpoint fixed", Curve{Contrast: 4, Gamma: 1}, 0.5, 0.5},
		{"contrast clamps high", Curve{Contrast: 4, Gamma: 1}, 0.9, 1},
		{"contrast clamps low", Curve{Contrast: 4, Gamma: 1}, 0.1, 0},
		{"flat contrast", Curve{Contrast: 0, Gamma: 1}, 0.9, 0.5},
		{"gamma square", Curve{Contrast: 1, Gamma: 2}, 0.5, 0.25},
		{"zero under gamma below one", Curve{Contrast: 1, Gamma: 0.5}, 0, 0},
		{"one under gamma", Curve{Contrast: 1, Gamma: 3}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.curve.Apply(tt.in)
			if math.IsNaN(got) || math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoverageBeforeCurve(t *testing.T) {
	c := Curve{Contrast: 2, Gamma: 1}
	v := 0.2
	got := c.Apply(ApplyCoverage(v, 0.3))
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("coverage then curve = %v, want 0.5", got)
	}
	if other := ApplyCoverage(c.Apply(v), 0.3); math.Abs(other-got) < 1e-6 {
		t.Errorf("order should matter for this input, both gave %v", got)
	}
}

func TestClamp01(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0: 0, 0.25: 0.25, 1: 1, 7: 1} {
		if got := Clamp01(in); got != want {
			t.Errorf("Clamp01(%v) = %v, want %v", in, got, want)
		}
	}
	if got := Clamp01(math.NaN()); got != 0 {
		t.Errorf("Clamp01(NaN) = %v, want 0", got)
	}
}
