package mask

import (
	"scan-annotator/pkg/geometry"
)

// MapToCanonical converts a pointer position within the rendered drawing
// surface to canonical image-pixel coordinates.
//
// posX/posY are the pointer offsets within the rendered box, renderedW/H is
// the box size in screen units, and naturalW/H is the base image's native
// pixel size. Callers must pass the box size read at event time; a cached
// size goes stale across window resizes and misaligns strokes.
//
// Returns ok=false when the surface has not been laid out yet (non-positive
// box) or the pointer falls outside it. Rejected samples are ignored, never
// clamped.
func MapToCanonical(posX, posY, renderedW, renderedH float64, naturalW, naturalH int) (geometry.Point2D, bool) {
	if renderedW <= 0 || renderedH <= 0 || naturalW <= 0 || naturalH <= 0 {
		return geometry.Point2D{}, false
	}
	if posX < 0 || posY < 0 || posX >= renderedW || posY >= renderedH {
		return geometry.Point2D{}, false
	}

	p := geometry.Point2D{
		X: posX / renderedW * float64(naturalW),
		Y: posY / renderedH * float64(naturalH),
	}

	// Guard against float rounding pushing a sample at the very edge of the
	// box onto the exclusive upper bound.
	if p.X >= float64(naturalW) || p.Y >= float64(naturalH) {
		return geometry.Point2D{}, false
	}
	return p, true
}
