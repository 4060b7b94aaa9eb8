package synth

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Canonical joins mode and fields into the fixed-order string a cache key is
// derived from. Floats use the shortest representation that round-trips.
func Canonical(mode Mode, fields ...any) string {
	var b strings.Builder
	b.WriteString(string(mode))
	for _, f := range fields {
		b.WriteByte('|')
		switch v := f.(type) {
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case int:
			b.WriteString(strconv.Itoa(v))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case bool:
			b.WriteString(strconv.FormatBool(v))
		case string:
			b.WriteString(v)
		case fmt.Stringer:
			b.WriteString(v.String())
		default:
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

// CacheKey is the lowercase hex MD5 of Canonical(mode, fields...).
func CacheKey(mode Mode, fields ...any) string {
	sum := md5.Sum([]byte(Canonical(mode, fields...)))
	return hex.EncodeToString(sum[:])
}

// Key identifies the bytes a render of p produces, including the container
// format. Equivalent inputs (370° vs 10° longitude, sigma 40 at scale 0.5 vs
// sigma 20 at scale 1) share a key.
func (p FieldParams) Key() string {
	n := p.Normalize()
	return CacheKey(ModeBump,
		n.Grid.Width, n.Grid.Height,
		n.LatDeg, n.LonDeg,
		n.EffectiveSigmaDeg(),
		n.Hard, n.Threshold,
		string(n.Format))
}

// Key identifies the bytes a render of p produces, including the container format.
func (p NoiseParams) Key() string {
	n := p.Normalize()
	return CacheKey(ModeClouds,
		n.Grid.Width, n.Grid.Height,
		n.Seed, n.Octaves, n.Lacunarity, n.Gain, n.Frequency,
		n.Contrast, n.Gamma, n.Coverage, n.Anomaly,
		n.Alpha, string(n.Basis), string(n.Format))
}
