// Package mask implements the raster mask model: brush strokes, drawing
// sessions, pointer coordinate mapping, and the two-tone export encoding.
//
// A mask is a bitmap at the base scan image's native resolution. During
// editing it lives in an alpha-carrying session buffer; at save time it is
// flattened onto opaque black and reduced to strict two-tone (black =
// unmasked, white = masked) before upload.
package mask

import (
	"scan-annotator/pkg/geometry"
)

// Point is a position in canonical image-pixel space.
type Point = geometry.Point2D

// Type identifies one of the independently tracked raster overlays on a scan.
type Type int

const (
	TypeRegion      Type = iota // primary segmentation region
	TypeBackfatLine             // backfat measurement line
)

// AllTypes returns every mask type in display order.
func AllTypes() []Type {
	return []Type{TypeRegion, TypeBackfatLine}
}

func (t Type) String() string {
	switch t {
	case TypeRegion:
		return "Region"
	case TypeBackfatLine:
		return "Backfat Line"
	default:
		return "Unknown"
	}
}

// Slug returns the API path segment for the mask type.
func (t Type) Slug() string {
	switch t {
	case TypeRegion:
		return "region"
	case TypeBackfatLine:
		return "backfat_line"
	default:
		return "unknown"
	}
}
