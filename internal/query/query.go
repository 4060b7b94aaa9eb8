// Package query reads texture parameters from URL query values.
//
// Parameter names and defaults are those the HTTP endpoints have always
// accepted. Malformed optional values fall back to their defaults; only the
// grid size can make a request fail.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/globetex/internal/encode"
	"github.com/MeKo-Tech/globetex/internal/geo"
	"github.com/MeKo-Tech/globetex/internal/noise"
	"github.com/MeKo-Tech/globetex/internal/synth"
)

// Field parses bump parameters: w, h, lat, lon, sigma, scale, hard,
// threshold and fmt.
func Field(v url.Values) (synth.FieldParams, error) {
	p := synth.FieldParams{
		Grid:      grid(v),
		LatDeg:    Float(v, "lat", synth.DefaultLatDeg),
		LonDeg:    Float(v, "lon", synth.DefaultLonDeg),
		SigmaDeg:  Float(v, "sigma", synth.DefaultSigmaDeg),
		Scale:     Float(v, "scale", synth.DefaultScale),
		Hard:      Bool(v, "hard"),
		Threshold: Float(v, "threshold", synth.DefaultThreshold),
		Format:    Format(v),
	}
	p = p.Normalize()
	return p, p.Validate()
}

// Noise parses cloud parameters: w, h, seed, octaves, lacunarity, gain,
// freq, contrast, gamma, coverage, anom, alpha, basis and fmt.
func Noise(v url.Values) (synth.NoiseParams, error) {
	p := synth.NoiseParams{
		Grid:       grid(v),
		Seed:       Int64(v, "seed", noise.DefaultSeed),
		Octaves:    Int(v, "octaves", synth.DefaultOctaves),
		Lacunarity: Float(v, "lacunarity", synth.DefaultLacunarity),
		Gain:       Float(v, "gain", synth.DefaultGain),
		Frequency:  Float(v, "freq", synth.DefaultFrequency),
		Contrast:   Float(v, "contrast", synth.DefaultContrast),
		Gamma:      Float(v, "gamma", synth.DefaultGamma),
		Coverage:   Float(v, "coverage", synth.DefaultCoverage),
		Anomaly:    Float(v, "anom", synth.DefaultAnomaly),
		Alpha:      Bool(v, "alpha"),
		Basis:      noise.ParseBasis(v.Get("basis")),
		Format:     Format(v),
	}
	p = p.Normalize()
	return p, p.Validate()
}

// Thumb returns the requested thumbnail width, or 0 for none.
func Thumb(v url.Values) int {
	n := Int(v, "thumb", 0)
	if n < 0 {
		return 0
	}
	return n
}

// Format returns the requested container format.
func Format(v url.Values) encode.Format {
	return encode.ParseFormat(v.Get("fmt"))
}

func grid(v url.Values) geo.Grid {
	return geo.Grid{
		Width:  Int(v, "w", synth.DefaultWidth),
		Height: Int(v, "h", synth.DefaultHeight),
	}
}

// Float returns the named value as a float64, or def when absent or malformed.
func Float(v url.Values, key string, def float64) float64 {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// Int returns the named value as an int, or def when absent or malformed.
func Int(v url.Values, key string, def int) int {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Int64 is Int for 64-bit values such as seeds.
func Int64(v url.Values, key string, def int64) int64 {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// Bool treats 1, true, t, yes, y and on (any case) as true.
func Bool(v url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(v.Get(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// Merge returns base overlaid with override. Keys present in override
// replace those in base entirely; neither input is modified.
func Merge(base, override url.Values) url.Values {
	out := make(url.Values, len(base)+len(override))
	for k, vs := range base {
		out[k] = append([]string(nil), vs...)
	}
	for k, vs := range override {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
