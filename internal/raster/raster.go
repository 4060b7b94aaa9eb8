// Package raster holds 8-bit pixel buffers and the row quantizers that fill them.
package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLayout is returned for non-positive sizes or unsupported channel counts.
	ErrInvalidLayout = errors.New("invalid raster layout")
	// ErrLayoutMismatch is returned when a caller-provided buffer does not match
	// the layout a render needs.
	ErrLayoutMismatch = errors.New("raster layout mismatch")
)

// Layout describes a row-major, interleaved 8-bit buffer.
type Layout struct {
	Width    int
	Height   int
	Channels int
}

func (l Layout) String() string {
	return fmt.Sprintf("%dx%dx%d", l.Width, l.Height, l.Channels)
}

// Validate reports whether the layout can back a Buffer.
func (l Layout) Validate() error {
	if l.Width < 1 || l.Height < 1 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidLayout, l.Width, l.Height)
	}
	switch l.Channels {
	case 1, 3, 4:
		return nil
	default:
		return fmt.Errorf("%w: %d channels", ErrInvalidLayout, l.Channels)
	}
}

// Buffer is a caller-owned pixel buffer. Rows are disjoint slices of Pix,
// so different goroutines may fill different rows without locking.
type Buffer struct {
	Layout
	Pix    []uint8
	Stride int
}

// NewBuffer allocates a zeroed buffer for l.
func NewBuffer(l Layout) (*Buffer, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	stride := l.Width * l.Channels
	return &Buffer{
		Layout: l,
		Pix:    make([]uint8, stride*l.Height),
		Stride: stride,
	}, nil
}

// Row returns the bytes of row y.
func (b *Buffer) Row(y int) []uint8 {
	off := y * b.Stride
	return b.Pix[off : off+b.Width*b.Channels]
}

// Check verifies that b can receive a render with layout want.
func (b *Buffer) Check(want Layout) error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrLayoutMismatch)
	}
	if b.Layout != want {
		return fmt.Errorf("%w: have %s, want %s", ErrLayoutMismatch, b.Layout, want)
	}
	if b.Stride < want.Width*want.Channels || len(b.Pix) < b.Stride*(want.Height-1)+want.Width*want.Channels {
		return fmt.Errorf("%w: pixel slice too short for %s", ErrLayoutMismatch, want)
	}
	return nil
}
