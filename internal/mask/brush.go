package mask

import (
	"image"
	"image/color"
	"math"

	"scan-annotator/pkg/geometry"
)

// Mode selects the composite rule a stroke applies to the session buffer.
type Mode int

const (
	ModeAdd   Mode = iota // union: painted pixels become opaque
	ModeErase             // subtraction: overlapped pixels lose their alpha
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "Add"
	case ModeErase:
		return "Erase"
	default:
		return "Unknown"
	}
}

// DefaultDiameter is the brush size a fresh session starts with.
const DefaultDiameter = 24.0

// Brush holds the current stroke settings.
type Brush struct {
	Diameter float64
	Mode     Mode
}

// painted is the buffer value for a masked pixel. The buffer stays two-state
// (opaque white or fully transparent) so that an erase stroke over an add
// stroke of the same shape restores the exact prior content.
var painted = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// stampSegment draws one capsule (round caps, round joins) of the brush
// diameter along the segment from->to. A pixel belongs to the capsule when
// its center lies within diameter/2 of the segment. Edges are hard: no
// anti-aliasing, so add and erase are exact set operations.
func (b Brush) stampSegment(buf *image.NRGBA, from, to geometry.Point2D) {
	if b.Diameter <= 0 {
		return
	}
	radius := b.Diameter / 2
	bounds := buf.Bounds()

	minX := int(math.Floor(math.Min(from.X, to.X) - radius))
	maxX := int(math.Ceil(math.Max(from.X, to.X) + radius))
	minY := int(math.Floor(math.Min(from.Y, to.Y) - radius))
	maxY := int(math.Ceil(math.Max(from.Y, to.Y) + radius))

	if minX < bounds.Min.X {
		minX = bounds.Min.X
	}
	if minY < bounds.Min.Y {
		minY = bounds.Min.Y
	}
	if maxX > bounds.Max.X-1 {
		maxX = bounds.Max.X - 1
	}
	if maxY > bounds.Max.Y-1 {
		maxY = bounds.Max.Y - 1
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			center := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if geometry.DistanceToSegment(center, from, to) > radius {
				continue
			}
			if b.Mode == ModeErase {
				buf.SetNRGBA(x, y, color.NRGBA{})
			} else {
				buf.SetNRGBA(x, y, painted)
			}
		}
	}
}
