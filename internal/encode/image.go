package encode

import (
	"fmt"
	"image"
	"image/color"

	"github.com/MeKo-Tech/globetex/internal/raster"
)

// RGB is an opaque 3-channel image backed directly by a raster buffer.
// The standard library has no packed 24-bit image type.
type RGB struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

func (p *RGB) ColorModel() color.Model { return color.RGBAModel }

func (p *RGB) Bounds() image.Rectangle { return p.Rect }

func (p *RGB) At(x, y int) color.Color {
	return p.RGBAAt(x, y)
}

// RGBAAt returns the pixel at (x, y) with full alpha.
func (p *RGB) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
	s := p.Pix[i : i+3 : i+3]
	return color.RGBA{R: s[0], G: s[1], B: s[2], A: 0xff}
}

// Opaque is always true; encoders use it to skip an alpha scan.
func (p *RGB) Opaque() bool { return true }

// Image wraps buf without copying: *image.Gray for one channel, *RGB for
// three and *image.NRGBA for four.
func Image(buf *raster.Buffer) (image.Image, error) {
	if buf == nil {
		return nil, fmt.Errorf("nil buffer")
	}
	rect := image.Rect(0, 0, buf.Width, buf.Height)
	switch buf.Channels {
	case 1:
		return &image.Gray{Pix: buf.Pix, Stride: buf.Stride, Rect: rect}, nil
	case 3:
		return &RGB{Pix: buf.Pix, Stride: buf.Stride, Rect: rect}, nil
	case 4:
		return &image.NRGBA{Pix: buf.Pix, Stride: buf.Stride, Rect: rect}, nil
	default:
		return nil, fmt.Errorf("%w: %d channels", raster.ErrInvalidLayout, buf.Channels)
	}
}
