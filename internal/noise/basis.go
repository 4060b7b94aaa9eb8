package noise

import (
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Basis names the single-octave noise that a fractal sum is built from.
type Basis string

const (
	// BasisClassic is the permutation-table gradient noise of Table.Noise2D.
	BasisClassic Basis = "classic"
	// BasisPerlin is Ken Perlin's reference noise as implemented by go-perlin.
	BasisPerlin Basis = "perlin"
	// BasisSimplex is OpenSimplex noise.
	BasisSimplex Basis = "simplex"
)

// ParseBasis maps a name to a Basis. Unknown names fall back to BasisClassic.
func ParseBasis(s string) Basis {
	switch Basis(strings.ToLower(strings.TrimSpace(s))) {
	case BasisPerlin:
		return BasisPerlin
	case BasisSimplex:
		return BasisSimplex
	default:
		return BasisClassic
	}
}

// PerlinSource adapts go-perlin to Source. It evaluates one octave only;
// octave summation is left to FBM.
type PerlinSource struct {
	p *perlin.Perlin
}

// NewPerlinSource seeds a single-octave go-perlin generator.
func NewPerlinSource(seed int64) *PerlinSource {
	return &PerlinSource{p: perlin.NewPerlin(2, 2, 1, seed)}
}

func (s *PerlinSource) Noise2D(x, y float64) float64 {
	return s.p.Noise2D(x, y)
}

// SimplexSource adapts opensimplex-go to Source.
type SimplexSource struct {
	n opensimplex.Noise
}

// NewSimplexSource seeds an OpenSimplex generator.
func NewSimplexSource(seed int64) *SimplexSource {
	return &SimplexSource{n: opensimplex.New(seed)}
}

func (s *SimplexSource) Noise2D(x, y float64) float64 {
	return s.n.Eval2(x, y)
}

// NewSource builds the Source for basis and seed. Classic tables are taken
// from cache when it is non-nil.
func NewSource(basis Basis, seed int64, cache *TableCache) Source {
	switch basis {
	case BasisPerlin:
		return NewPerlinSource(seed)
	case BasisSimplex:
		return NewSimplexSource(seed)
	default:
		if cache != nil {
			return cache.Get(seed)
		}
		return NewTable(seed)
	}
}
