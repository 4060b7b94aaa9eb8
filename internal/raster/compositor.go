package raster

import "math"

// Quantize maps v in [0, 1] to a byte: round(clamp(v·255, 0, 255)).
func Quantize(v float64) uint8 {
	v *= 255
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// QuantizeGray writes one grayscale row. len(dst) must be at least len(vals).
func QuantizeGray(dst []uint8, vals []float64) {
	dst = dst[:len(vals)]
	for i, v := range vals {
		dst[i] = Quantize(v)
	}
}

// QuantizeTinted writes one RGB or RGBA row. Colour channels are v·tint;
// the alpha channel, when present, is v itself.
func QuantizeTinted(dst []uint8, vals []float64, tint [3]float64, alpha bool) {
	n := 3
	if alpha {
		n = 4
	}
	dst = dst[:len(vals)*n]
	for i, v := range vals {
		px := dst[i*n : i*n+n : i*n+n]
		px[0] = Quantize(v * tint[0])
		px[1] = Quantize(v * tint[1])
		px[2] = Quantize(v * tint[2])
		if alpha {
			px[3] = Quantize(v)
		}
	}
}
