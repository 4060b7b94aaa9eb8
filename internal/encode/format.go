// Package encode turns raster buffers into PNG, JPEG or BMP bytes.
package encode

import (
	"image/png"
	"strings"
)

// Format is an output container tag.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
)

// DefaultJPEGQuality matches the quality the texture endpoints have always served.
const DefaultJPEGQuality = 95

// ParseFormat maps a request tag to a Format. "jpg" and "jpeg" are the same
// format; anything unrecognised falls back to PNG.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpg", "jpeg":
		return FormatJPEG
	case "bmp":
		return FormatBMP
	default:
		return FormatPNG
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	default:
		return "image/png"
	}
}

// Ext is the file extension without a dot.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatBMP:
		return "bmp"
	default:
		return "png"
	}
}

// SupportsAlpha reports whether the container can carry a fourth channel.
func (f Format) SupportsAlpha() bool {
	return f != FormatJPEG
}

// ParseCompression maps default|speed|best|none to a PNG compression level.
func ParseCompression(s string) png.CompressionLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "speed", "fast":
		return png.BestSpeed
	case "best":
		return png.BestCompression
	case "none", "off":
		return png.NoCompression
	default:
		return png.DefaultCompression
	}
}
