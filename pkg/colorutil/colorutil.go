// Package colorutil provides shared color helpers for overlay rendering.
package colorutil

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Common colors used throughout the application.
var (
	Black = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// FromHue returns a vivid tint at the given hue (degrees, 0-360). Hue is
// the only input so overlay recoloring stays a pure cosmetic remap.
func FromHue(deg float64) color.NRGBA {
	c := colorful.Hsv(deg, 0.85, 1.0)
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// WithAlpha returns c with its alpha channel replaced.
func WithAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
