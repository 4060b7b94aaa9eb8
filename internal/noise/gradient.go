package noise

import "math"

// Source is a continuous 2D noise function returning values roughly in [-1, 1].
type Source interface {
	Noise2D(x, y float64) float64
}

// Noise2D evaluates lattice gradient noise at (x, y).
//
// The corner gradients come from a 2-bit sign hash rather than the usual
// eight directions; output bytes depend on this exact variant.
func (t *Table) Noise2D(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255
	xf := x - fx
	yf := y - fy

	u := fade(xf)
	v := fade(yf)

	p := &t.perm
	a := int(p[xi])
	b := int(p[xi+1])
	aa := p[a+yi]
	ab := p[a+yi+1]
	ba := p[b+yi]
	bb := p[b+yi+1]

	x1 := lerp(grad(aa, xf, yf), grad(ba, xf-1, yf), u)
	x2 := lerp(grad(ab, xf, yf-1), grad(bb, xf-1, yf-1), u)
	return lerp(x1, x2, v)
}

// fade is 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func grad(h uint8, dx, dy float64) float64 {
	if h&1 != 0 {
		dx = -dx
	}
	if h&2 != 0 {
		dy = -dy
	}
	return dx + dy
}
