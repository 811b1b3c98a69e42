// Package scanimage loads and normalizes the base ultrasound image a scan's
// masks are painted over.
package scanimage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/tiff"
)

// Decode parses image bytes and normalizes the pixels to NRGBA so the
// canvas and overlay code can sample them uniformly. Ultrasound exports
// arrive as PNG, JPEG, or TIFF depending on the capture device.
func Decode(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode scan image: %w", err)
	}
	return imaging.Clone(img), nil
}

// NaturalSize returns the image's native pixel dimensions. Mask buffers are
// allocated at exactly this size, never the rendered size.
func NaturalSize(img image.Image) (w, h int) {
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}
