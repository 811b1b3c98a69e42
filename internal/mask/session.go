package mask

import (
	"fmt"
	"image"
)

// Session owns the in-memory pixel buffer for one mask type while it is
// being edited. It exists from entering edit mode until save or cancel and
// is never shared across mask types.
//
// The buffer always matches the base image's natural dimensions, never its
// rendered size. All stroke coordinates are canonical image-pixel
// coordinates (see MapToCanonical).
type Session struct {
	maskType Type
	buf      *image.NRGBA
	brush    Brush
	primed   bool
	dirty    bool
}

// NewSession creates a blank session for the given mask type at the base
// image's natural size.
func NewSession(maskType Type, naturalW, naturalH int) (*Session, error) {
	if naturalW <= 0 || naturalH <= 0 {
		return nil, fmt.Errorf("invalid session dimensions %dx%d", naturalW, naturalH)
	}
	return &Session{
		maskType: maskType,
		buf:      image.NewNRGBA(image.Rect(0, 0, naturalW, naturalH)),
		brush:    Brush{Diameter: DefaultDiameter, Mode: ModeAdd},
	}, nil
}

// Prime seeds the buffer from a previously saved two-tone raster. White
// (masked) pixels become opaque painted pixels, black stays transparent so
// erase strokes can still reveal the scan beneath.
func (s *Session) Prime(raster image.Image) error {
	bounds := raster.Bounds()
	if bounds.Dx() != s.Width() || bounds.Dy() != s.Height() {
		return fmt.Errorf("raster size %dx%d does not match session %dx%d",
			bounds.Dx(), bounds.Dy(), s.Width(), s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			r, g, b, _ := raster.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Luminance threshold: the stored raster is strict two-tone, but
			// tolerate near-white/near-black from foreign encoders.
			luma := (299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000
			if luma >= 128 {
				s.buf.SetNRGBA(x, y, painted)
			}
		}
	}
	s.primed = true
	return nil
}

// Type returns the mask type this session edits.
func (s *Session) Type() Type {
	return s.maskType
}

// Width returns the buffer width in pixels.
func (s *Session) Width() int {
	return s.buf.Bounds().Dx()
}

// Height returns the buffer height in pixels.
func (s *Session) Height() int {
	return s.buf.Bounds().Dy()
}

// Buffer exposes the live pixel buffer for display compositing.
func (s *Session) Buffer() *image.NRGBA {
	return s.buf
}

// Brush returns the current brush settings.
func (s *Session) Brush() Brush {
	return s.brush
}

// SetBrush updates the brush used by subsequent strokes.
func (s *Session) SetBrush(b Brush) {
	s.brush = b
}

// Primed reports whether the buffer was seeded from a saved raster. A blank
// never-saved session and one primed from an explicitly saved all-black
// raster hold identical pixels; this flag keeps them distinguishable.
func (s *Session) Primed() bool {
	return s.primed
}

// Dirty reports whether any stroke has touched the buffer.
func (s *Session) Dirty() bool {
	return s.dirty
}

// BeginStroke stamps the initial dab of a pointer-down at p. A click with no
// movement leaves a single filled disc of the brush diameter.
func (s *Session) BeginStroke(p Point) {
	s.brush.stampSegment(s.buf, p, p)
	s.dirty = true
}

// ExtendStroke stamps one capsule segment between consecutive pointer
// samples. All segments of a gesture accumulate into the same buffer; there
// is no per-segment undo.
func (s *Session) ExtendStroke(from, to Point) {
	s.brush.stampSegment(s.buf, from, to)
	s.dirty = true
}
