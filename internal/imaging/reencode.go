// Package imaging re-encodes images for bandwidth-bounded provider calls and
// gallery storage. It is pure and stateless: no knowledge of artifacts or
// input slots, only bytes in and bytes out.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// Format selects the output codec for a re-encode.
type Format string

const (
	// FormatPNG is lossless and preserves transparency; the quality
	// parameter is ignored.
	FormatPNG Format = "png"

	// FormatJPEG is lossy; quality in [0,1] maps onto the encoder's 1-100 scale.
	FormatJPEG Format = "jpeg"
)

// MaxDimension caps the long edge of any re-encoded image, preserving aspect
// ratio. Larger sources are downscaled; smaller ones are left at native size.
const MaxDimension = 1024

// Encoded is the result of a re-encode: the output bytes and their size.
type Encoded struct {
	Bytes []byte
	Size  int
}

// MIMEType returns the MIME type of the encoded bytes.
func (e *Encoded) MIMEType() string {
	return DetectMIME(e.Bytes)
}

// Reencode decodes the given image bytes (JPEG or PNG), downsizes so the long
// edge is at most MaxDimension, and encodes in the requested format. quality
// applies only to JPEG output.
func Reencode(data []byte, quality float64, format Format) (*Encoded, error) {
	img, srcFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	newWidth, newHeight := fitDimensions(origWidth, origHeight, MaxDimension)

	if newWidth != origWidth || newHeight != origHeight {
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)})
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image as %s: %w", format, err)
	}

	log.Debug().
		Str("src_format", srcFormat).
		Str("dst_format", string(format)).
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Int("input_size", len(data)).
		Int("output_size", buf.Len()).
		Msg("Image re-encoded")

	return &Encoded{Bytes: buf.Bytes(), Size: buf.Len()}, nil
}

// jpegQuality converts a [0,1] quality factor to the stdlib encoder's 1-100 scale.
func jpegQuality(quality float64) int {
	q := int(quality * 100)
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return q
}

// fitDimensions calculates new dimensions maintaining aspect ratio.
func fitDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	if width > height {
		newWidth := maxDimension
		newHeight := int(float64(height) * float64(maxDimension) / float64(width))
		return newWidth, newHeight
	}

	newHeight := maxDimension
	newWidth := int(float64(width) * float64(maxDimension) / float64(height))
	return newWidth, newHeight
}
