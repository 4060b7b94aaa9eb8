// Package geo samples an equirectangular grid and measures great-circle
// distances on the unit sphere.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Grid is the size of an equirectangular raster.
// Columns span longitudes [-π, π) and rows span latitudes [π/2, -π/2].
type Grid struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are at least one sample.
func (g Grid) Valid() bool {
	return g.Width >= 1 && g.Height >= 1
}

// Pixels returns Width*Height.
func (g Grid) Pixels() int {
	return g.Width * g.Height
}

// Lon returns the longitude in radians of column col.
// There is no column at +π, so the seam is not duplicated.
func (g Grid) Lon(col int) float64 {
	return -math.Pi + float64(col)*(2*math.Pi/float64(g.Width))
}

// Lat returns the latitude in radians of row row.
// Row 0 is the north pole and row Height-1 the south pole.
func (g Grid) Lat(row int) float64 {
	if g.Height <= 1 {
		return math.Pi / 2
	}
	if row == g.Height-1 {
		return -math.Pi / 2
	}
	return math.Pi/2 - float64(row)*(math.Pi/float64(g.Height-1))
}

// Center is a reference point on the sphere in radians.
type Center struct {
	Lat float64
	Lon float64
}

// NewCenter builds a Center from degrees. Latitude is clamped to [-90, 90]
// and longitude wrapped into (-180, 180].
func NewCenter(latDeg, lonDeg float64) Center {
	lat := clamp(latDeg, -90, 90) * math.Pi / 180
	lon := WrapAngle(lonDeg * math.Pi / 180)
	return Center{Lat: lat, Lon: lon}
}

// CenterFromPoint builds a Center from an orb point (lon, lat in degrees).
func CenterFromPoint(p orb.Point) Center {
	return NewCenter(p.Lat(), p.Lon())
}

// Point returns the center as an orb point in degrees.
func (c Center) Point() orb.Point {
	return orb.Point{c.Lon * 180 / math.Pi, c.Lat * 180 / math.Pi}
}

// WrapAngle maps x into (-π, π]. An input of exactly -π maps to π.
func WrapAngle(x float64) float64 {
	w := math.Mod(x+math.Pi, 2*math.Pi)
	if w < 0 {
		w += 2 * math.Pi
	}
	w -= math.Pi
	if w == -math.Pi {
		return math.Pi
	}
	return w
}

// Distance returns the great-circle angle in radians between c and
// (lat, lon), in [0, π].
func Distance(c Center, lat, lon float64) float64 {
	sdlat := math.Sin((lat - c.Lat) / 2)
	sdlon := math.Sin(WrapAngle(lon-c.Lon) / 2)
	a := sdlat*sdlat + math.Cos(lat)*math.Cos(c.Lat)*sdlon*sdlon
	return 2 * math.Asin(math.Sqrt(clamp(a, 0, 1)))
}

// ColumnTerms returns sin²(Δlon/2) for every column of g relative to c.
// The slice is read-only afterwards and may be shared between rows.
func ColumnTerms(c Center, g Grid) []float64 {
	terms := make([]float64, g.Width)
	for col := range terms {
		s := math.Sin(WrapAngle(g.Lon(col)-c.Lon) / 2)
		terms[col] = s * s
	}
	return terms
}

// RowDistances fills dst with the great-circle distance from c to every
// sample of row. cols must come from ColumnTerms for the same c and g.
func RowDistances(c Center, g Grid, row int, cols, dst []float64) {
	lat := g.Lat(row)
	sdlat := math.Sin((lat - c.Lat) / 2)
	sin2 := sdlat * sdlat
	k := math.Cos(lat) * math.Cos(c.Lat)
	for i, s := range cols[:len(dst)] {
		a := sin2 + k*s
		dst[i] = 2 * math.Asin(math.Sqrt(clamp(a, 0, 1)))
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
