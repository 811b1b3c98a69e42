// Package canvas provides the scan display and mask painting widget.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"scan-annotator/internal/mask"
	"scan-annotator/internal/overlay"
	"scan-annotator/pkg/geometry"
)

// MaskCanvas displays the base scan image with mask overlays and, in edit
// mode, captures freehand brush strokes. The display is letterboxed to the
// widget; all stroke coordinates are mapped back to canonical image-pixel
// space before they reach the editor.
type MaskCanvas struct {
	widget.BaseWidget

	mu      sync.Mutex
	display *image.RGBA // composited at natural size
	natW    int
	natH    int

	raster *fynecanvas.Raster

	editable  bool
	isDrawing bool

	// Stroke callbacks. Begin/Move return whether the editor accepted the
	// sample, so the canvas stops tracking a gesture the state machine
	// rejected (e.g. a save went in flight).
	onStrokeBegin func(p mask.Point) bool
	onStrokeMove  func(p mask.Point) bool
	onStrokeEnd   func()
}

// NewMaskCanvas creates an empty canvas.
func NewMaskCanvas() *MaskCanvas {
	mc := &MaskCanvas{}
	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	mc.ExtendBaseWidget(mc)
	return mc
}

// OnStroke registers the stroke callbacks.
func (mc *MaskCanvas) OnStroke(begin func(mask.Point) bool, move func(mask.Point) bool, end func()) {
	mc.onStrokeBegin = begin
	mc.onStrokeMove = move
	mc.onStrokeEnd = end
}

// ShowViewing composites the base image with the committed overlay layers
// and deactivates pointer capture.
func (mc *MaskCanvas) ShowViewing(base *image.NRGBA, layers []overlay.Layer) {
	mc.mu.Lock()
	mc.natW, mc.natH = 0, 0
	if base != nil {
		mc.natW = base.Bounds().Dx()
		mc.natH = base.Bounds().Dy()
		mc.display = overlay.Render(base, layers)
	} else {
		mc.display = nil
	}
	mc.editable = false
	mc.isDrawing = false
	mc.mu.Unlock()
	mc.raster.Refresh()
}

// ShowEditing composites the base image with the live session buffer and
// activates pointer capture. Call again after strokes to repaint.
func (mc *MaskCanvas) ShowEditing(base *image.NRGBA, session *mask.Session) {
	mc.mu.Lock()
	mc.natW = session.Width()
	mc.natH = session.Height()
	mc.display = overlay.RenderEditing(base, session)
	mc.editable = true
	mc.mu.Unlock()
	mc.raster.Refresh()
}

// SetEditable toggles pointer capture without recompositing, used while a
// save is in flight.
func (mc *MaskCanvas) SetEditable(editable bool) {
	mc.mu.Lock()
	mc.editable = editable
	if !editable {
		mc.isDrawing = false
	}
	mc.mu.Unlock()
}

// letterbox returns the aspect-fit rectangle a natW x natH image occupies
// inside a widget of the given size.
func letterbox(size fyne.Size, natW, natH int) geometry.Rect {
	if natW <= 0 || natH <= 0 || size.Width <= 0 || size.Height <= 0 {
		return geometry.Rect{}
	}

	scale := float64(size.Width) / float64(natW)
	if s := float64(size.Height) / float64(natH); s < scale {
		scale = s
	}
	w := float64(natW) * scale
	h := float64(natH) * scale
	return geometry.Rect{
		X:      (float64(size.Width) - w) / 2,
		Y:      (float64(size.Height) - h) / 2,
		Width:  w,
		Height: h,
	}
}

// mapEvent converts a pointer position to canonical image coordinates. The
// rendered box is recomputed from the live widget size on every call;
// caching it would misalign strokes after a window resize. The display may
// be swapped from a background goroutine mid-gesture, so the dimensions are
// snapshotted under the lock.
func (mc *MaskCanvas) mapEvent(pos fyne.Position) (mask.Point, bool) {
	size := mc.Size()
	mc.mu.Lock()
	natW, natH := mc.natW, mc.natH
	mc.mu.Unlock()

	box := letterbox(size, natW, natH)
	return mask.MapToCanonical(
		float64(pos.X)-box.X,
		float64(pos.Y)-box.Y,
		box.Width, box.Height,
		natW, natH,
	)
}

// MouseDown begins a stroke when the canvas is editable and the pointer
// lands on the image. Samples outside the rendered box are ignored.
func (mc *MaskCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	mc.mu.Lock()
	editable := mc.editable
	mc.mu.Unlock()
	if !editable {
		return
	}
	p, ok := mc.mapEvent(ev.Position)
	if !ok {
		return
	}
	if mc.onStrokeBegin != nil && mc.onStrokeBegin(p) {
		mc.mu.Lock()
		// SetEditable(false) may have landed while the callback ran.
		if mc.editable {
			mc.isDrawing = true
		}
		mc.mu.Unlock()
	}
}

// MouseUp ends the current stroke.
func (mc *MaskCanvas) MouseUp(ev *desktop.MouseEvent) {
	mc.mu.Lock()
	drawing := mc.isDrawing
	mc.isDrawing = false
	mc.mu.Unlock()
	if !drawing {
		return
	}
	if mc.onStrokeEnd != nil {
		mc.onStrokeEnd()
	}
}

// MouseMoved extends the stroke while the button is held. Out-of-bounds
// samples are dropped without ending the gesture, so a stroke resumes when
// the pointer re-enters the image.
func (mc *MaskCanvas) MouseMoved(ev *desktop.MouseEvent) {
	mc.mu.Lock()
	drawing := mc.isDrawing
	mc.mu.Unlock()
	if !drawing {
		return
	}
	p, ok := mc.mapEvent(ev.Position)
	if !ok {
		return
	}
	if mc.onStrokeMove != nil {
		mc.onStrokeMove(p)
	}
}

// MouseIn implements desktop.Hoverable.
func (mc *MaskCanvas) MouseIn(ev *desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (mc *MaskCanvas) MouseOut() {}

// draw renders the letterboxed display image into the widget raster.
func (mc *MaskCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Opaque black background (letterbox bars included).
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	mc.mu.Lock()
	display := mc.display
	natW, natH := mc.natW, mc.natH
	mc.mu.Unlock()

	if display == nil || natW <= 0 || natH <= 0 || w <= 0 || h <= 0 {
		return output
	}

	scale := float64(w) / float64(natW)
	if s := float64(h) / float64(natH); s < scale {
		scale = s
	}
	dw := int(float64(natW) * scale)
	dh := int(float64(natH) * scale)
	ox := (w - dw) / 2
	oy := (h - dh) / 2

	// Nearest-neighbor sampling keeps mask edges crisp at any window size;
	// the underlying buffers stay at natural resolution.
	for y := 0; y < dh; y++ {
		srcY := int(float64(y) / scale)
		if srcY >= natH {
			srcY = natH - 1
		}
		for x := 0; x < dw; x++ {
			srcX := int(float64(x) / scale)
			if srcX >= natW {
				srcX = natW - 1
			}
			output.SetRGBA(ox+x, oy+y, display.RGBAAt(srcX, srcY))
		}
	}
	return output
}

// Refresh repaints the widget raster.
func (mc *MaskCanvas) Refresh() {
	mc.raster.Refresh()
	mc.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (mc *MaskCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}

// MinSize keeps the canvas usable even before an image loads.
func (mc *MaskCanvas) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}
