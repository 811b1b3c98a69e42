package mask

import (
	"bytes"
	"testing"

	"scan-annotator/pkg/geometry"
)

func TestFlattenIsStrictTwoTone(t *testing.T) {
	s := newTestSession(t, 120, 90)
	s.SetBrush(Brush{Diameter: 16, Mode: ModeAdd})
	s.BeginStroke(geometry.Point2D{X: 30, Y: 30})
	s.ExtendStroke(geometry.Point2D{X: 30, Y: 30}, geometry.Point2D{X: 90, Y: 60})

	out := Flatten(s)
	for y := 0; y < 90; y++ {
		for x := 0; x < 120; x++ {
			px := out.NRGBAAt(x, y)
			if px.A != 255 {
				t.Fatalf("pixel (%d,%d): alpha %d, export must be opaque", x, y, px.A)
			}
			black := px.R == 0 && px.G == 0 && px.B == 0
			white := px.R == 255 && px.G == 255 && px.B == 255
			if !black && !white {
				t.Fatalf("pixel (%d,%d): %v is neither black nor white", x, y, px)
			}
		}
	}
}

// Export, decode, re-prime, re-export must reproduce identical bytes: the
// round trip through the store is lossless.
func TestExportRoundTripIsByteIdentical(t *testing.T) {
	s := newTestSession(t, 200, 150)
	s.SetBrush(Brush{Diameter: 20, Mode: ModeAdd})
	s.BeginStroke(geometry.Point2D{X: 50, Y: 40})
	s.ExtendStroke(geometry.Point2D{X: 50, Y: 40}, geometry.Point2D{X: 150, Y: 110})
	s.SetBrush(Brush{Diameter: 8, Mode: ModeErase})
	s.BeginStroke(geometry.Point2D{X: 100, Y: 75})

	first, err := Export(s)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	decoded, err := Decode(first)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	reloaded := newTestSession(t, 200, 150)
	if err := reloaded.Prime(decoded); err != nil {
		t.Fatalf("Prime failed: %v", err)
	}

	second, err := Export(reloaded)
	if err != nil {
		t.Fatalf("re-Export failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("round trip changed raster bytes")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a png")); err == nil {
		t.Error("expected error for invalid raster bytes")
	}
}
