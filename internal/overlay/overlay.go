// Package overlay renders committed mask rasters as translucent recolored
// layers over the base scan image. Recoloring is purely cosmetic: the
// stored two-tone pixel data is never modified, only read as coverage.
package overlay

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/clone"

	"scan-annotator/internal/mask"
	"scan-annotator/pkg/colorutil"
)

// Opacity is the alpha applied to committed overlay layers.
const Opacity = 0.45

// Tint returns the display color for a mask type. The region mask reads as
// warm amber, the backfat line as cyan, so both stay legible over grayscale
// ultrasound.
func Tint(t mask.Type) color.NRGBA {
	switch t {
	case mask.TypeRegion:
		return colorutil.FromHue(36)
	case mask.TypeBackfatLine:
		return colorutil.FromHue(190)
	default:
		return colorutil.White
	}
}

// Layer pairs a committed mask raster with its display tint.
type Layer struct {
	Mask image.Image
	Tint color.NRGBA
}

// Colorize converts a two-tone mask raster into a translucent tinted layer:
// masked (white) pixels carry the tint at the given opacity, unmasked
// pixels stay fully transparent.
func Colorize(maskImg image.Image, tint color.NRGBA, opacity float64) *image.NRGBA {
	bounds := maskImg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	layerColor := colorutil.WithAlpha(tint, uint8(opacity*255))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := maskImg.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			luma := (299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000
			if luma >= 128 {
				out.SetNRGBA(x, y, layerColor)
			}
		}
	}
	return out
}

// ColorizeBuffer converts a live session buffer into a tinted layer, keyed
// off the buffer's alpha channel instead of luminance so erased pixels
// reveal the scan beneath while a stroke is still in progress.
func ColorizeBuffer(buf *image.NRGBA, tint color.NRGBA, opacity float64) *image.NRGBA {
	bounds := buf.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := buf.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y).A
			if a == 0 {
				continue
			}
			scaled := uint8(float64(a) * opacity)
			out.SetNRGBA(x, y, colorutil.WithAlpha(tint, scaled))
		}
	}
	return out
}

// Render composites the base image with each layer in order using standard
// alpha-over blending. Layers must already be at the base image's natural
// size; nothing is rescaled here.
func Render(base image.Image, layers []Layer) *image.RGBA {
	out := clone.AsRGBA(base)
	for _, l := range layers {
		if l.Mask == nil {
			continue
		}
		out = blend.Normal(out, Colorize(l.Mask, l.Tint, Opacity))
	}
	return out
}

// RenderEditing composites the base image with the live session buffer,
// tinted for its mask type. Committed overlays for other mask types are
// hidden while editing so the operator sees exactly what will be saved.
func RenderEditing(base image.Image, session *mask.Session) *image.RGBA {
	tinted := ColorizeBuffer(session.Buffer(), Tint(session.Type()), Opacity)
	return blend.Normal(base, tinted)
}
