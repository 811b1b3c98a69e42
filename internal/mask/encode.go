package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Flatten composites the session buffer onto an opaque black background and
// reduces it to the strict two-tone export raster: black = unmasked, white =
// masked. This is the only place alpha is discarded, and it runs exactly
// once per save, never during interactive drawing.
func Flatten(s *Session) *image.NRGBA {
	w, h := s.Width(), s.Height()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	black := color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if s.buf.NRGBAAt(x, y).A >= 128 {
				out.SetNRGBA(x, y, white)
			} else {
				out.SetNRGBA(x, y, black)
			}
		}
	}
	return out
}

// Encode serializes a flattened raster as lossless PNG.
func Encode(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode mask raster: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses raster bytes fetched from the store back into an image.
func Decode(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mask raster: %w", err)
	}
	return img, nil
}

// Export flattens and encodes a session in one step.
func Export(s *Session) ([]byte, error) {
	return Encode(Flatten(s))
}
