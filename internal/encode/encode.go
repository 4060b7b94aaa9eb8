package encode

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"

	"github.com/MeKo-Tech/globetex/internal/raster"
)

// Options tunes the container encoders.
type Options struct {
	Compression png.CompressionLevel
	JPEGQuality int
}

// DefaultOptions are the encoder settings used when none are configured.
func DefaultOptions() Options {
	return Options{Compression: png.DefaultCompression, JPEGQuality: DefaultJPEGQuality}
}

// Encode writes buf to w as f.
func Encode(w io.Writer, buf *raster.Buffer, f Format, opts Options) error {
	img, err := Image(buf)
	if err != nil {
		return err
	}
	return EncodeImage(w, img, f, opts)
}

// EncodeImage writes img to w as f.
func EncodeImage(w io.Writer, img image.Image, f Format, opts Options) error {
	bw := bufio.NewWriterSize(w, 64*1024)

	var err error
	switch f {
	case FormatJPEG:
		q := opts.JPEGQuality
		if q < 1 || q > 100 {
			q = DefaultJPEGQuality
		}
		err = jpeg.Encode(bw, img, &jpeg.Options{Quality: q})
	case FormatBMP:
		err = bmp.Encode(bw, img)
	default:
		enc := png.Encoder{CompressionLevel: opts.Compression}
		err = enc.Encode(bw, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", f, err)
	}
	return nil
}
