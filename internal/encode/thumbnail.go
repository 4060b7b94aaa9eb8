package encode

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/gift"

	"github.com/MeKo-Tech/globetex/internal/raster"
)

// Thumbnail scales buf down to width pixels, keeping the aspect ratio, with
// bilinear resampling. A width at or above the buffer's returns the
// full-size view unchanged.
func Thumbnail(buf *raster.Buffer, width int) (image.Image, error) {
	src, err := Image(buf)
	if err != nil {
		return nil, err
	}
	if width < 1 {
		return nil, fmt.Errorf("thumbnail width %d must be positive", width)
	}
	if width >= buf.Width {
		return src, nil
	}

	g := gift.New(gift.Resize(width, 0, gift.LinearResampling))
	bounds := g.Bounds(src.Bounds())

	var dst draw.Image
	if buf.Channels == 1 {
		dst = image.NewGray(bounds)
	} else {
		dst = image.NewNRGBA(bounds)
	}
	g.Draw(dst, src)
	return dst, nil
}
