package noise

// minAmplitudeSum keeps the fBm normalization finite when gain is tiny.
const minAmplitudeSum = 1e-9

// Octaves configures a fractal sum.
type Octaves struct {
	Count      int
	Lacunarity float64
	Gain       float64
	Frequency  float64
}

// FBMRaw sums Count octaves of src at (x, y) and returns the sum together
// with the total amplitude used. |sum| is bounded by ampSum when src stays
// within [-1, 1].
func FBMRaw(src Source, x, y float64, o Octaves) (sum, ampSum float64) {
	n := o.Count
	if n < 1 {
		n = 1
	}
	amp := 1.0
	freq := o.Frequency
	for i := 0; i < n; i++ {
		sum += amp * src.Noise2D(x*freq, y*freq)
		ampSum += amp
		amp *= o.Gain
		freq *= o.Lacunarity
	}
	return sum, ampSum
}

// FBM returns the normalized fractal sum remapped to [0, 1].
func FBM(src Source, x, y float64, o Octaves) float64 {
	sum, ampSum := FBMRaw(src, x, y, o)
	if ampSum < minAmplitudeSum {
		ampSum = minAmplitudeSum
	}
	v := (sum/ampSum)*0.5 + 0.5
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
