package synth

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/globetex/internal/geo"
)

// MaxPixels bounds Width·Height so a request cannot ask for an unbounded allocation.
const MaxPixels = 1 << 28

// ErrInvalidDimension is returned when the grid is empty or too large.
// No buffer is allocated in that case.
var ErrInvalidDimension = errors.New("invalid grid dimension")

func validateGrid(g geo.Grid) error {
	if !g.Valid() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, g.Width, g.Height)
	}
	if g.Width > MaxPixels/g.Height {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidDimension, g.Width, g.Height, MaxPixels)
	}
	return nil
}
