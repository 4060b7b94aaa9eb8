// Package noise implements seeded 2D gradient noise and fractal sums of it.
package noise

import (
	"math/rand"
)

// DefaultSeed is used when a request does not name a seed, so unseeded
// output is still reproducible across runs.
const DefaultSeed int64 = 1337

// Intner is the only thing the permutation shuffle needs from an RNG.
// *rand.Rand satisfies it.
type Intner interface {
	Intn(n int) int
}

// Table is a permutation of 0..255 followed by a copy of itself, so that
// lookups at index+1 never need wraparound.
type Table struct {
	perm [512]uint8
}

// NewTable builds the permutation for seed using math/rand's seeded source.
func NewTable(seed int64) *Table {
	return NewTableFrom(rand.New(rand.NewSource(seed)))
}

// NewTableFrom builds a permutation by Fisher-Yates shuffling 0..255 with r.
func NewTableFrom(r Intner) *Table {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	for i := 255; i > 0; i-- {
		j := r.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}

	t := &Table{}
	for i := range t.perm {
		t.perm[i] = p[i&255]
	}
	return t
}

// Values returns a copy of the 512 table entries.
func (t *Table) Values() []uint8 {
	out := make([]uint8, len(t.perm))
	copy(out, t.perm[:])
	return out
}
