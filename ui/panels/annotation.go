// Package panels provides UI panels for the application.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"scan-annotator/internal/app"
	"scan-annotator/internal/editor"
	"scan-annotator/internal/mask"
)

// AnnotationPanel holds the mask editing controls: target mask type, edit
// session buttons, and brush settings. The async editing operations run in
// the main window, which wires the On* callbacks.
type AnnotationPanel struct {
	state *app.State
	box   *fyne.Container

	typeSelect *widget.RadioGroup
	editBtn    *widget.Button
	saveBtn    *widget.Button
	cancelBtn  *widget.Button

	modeSelect  *widget.RadioGroup
	sizeSlider  *widget.Slider
	sizeLabel   *widget.Label
	statusLabel *widget.Label

	// Action callbacks, set by the main window.
	OnBeginEdit func(t mask.Type)
	OnSave      func()
	OnCancel    func()
}

// NewAnnotationPanel creates the annotation panel.
func NewAnnotationPanel(state *app.State) *AnnotationPanel {
	ap := &AnnotationPanel{state: state}

	ap.typeSelect = widget.NewRadioGroup(maskTypeNames(), nil)
	ap.typeSelect.SetSelected(mask.TypeRegion.String())

	ap.editBtn = widget.NewButton("Edit Mask", func() {
		if ap.OnBeginEdit != nil {
			ap.OnBeginEdit(ap.SelectedType())
		}
	})
	ap.saveBtn = widget.NewButton("Save", func() {
		if ap.OnSave != nil {
			ap.OnSave()
		}
	})
	ap.cancelBtn = widget.NewButton("Cancel", func() {
		if ap.OnCancel != nil {
			ap.OnCancel()
		}
	})

	ap.modeSelect = widget.NewRadioGroup([]string{"Add", "Erase"}, func(string) {
		ap.pushBrush()
	})
	ap.modeSelect.Horizontal = true
	ap.modeSelect.SetSelected("Add")

	ap.sizeLabel = widget.NewLabel(fmt.Sprintf("Brush: %d px", int(mask.DefaultDiameter)))
	ap.sizeSlider = widget.NewSlider(4, 128)
	ap.sizeSlider.Step = 2
	ap.sizeSlider.Value = mask.DefaultDiameter
	ap.sizeSlider.OnChanged = func(v float64) {
		ap.sizeLabel.SetText(fmt.Sprintf("Brush: %d px", int(v)))
		ap.pushBrush()
	}

	ap.statusLabel = widget.NewLabel("No scan loaded")
	ap.statusLabel.Wrapping = fyne.TextWrapWord

	ap.box = container.NewVBox(
		widget.NewLabelWithStyle("Mask", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ap.typeSelect,
		container.NewGridWithColumns(3, ap.editBtn, ap.saveBtn, ap.cancelBtn),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Brush", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ap.modeSelect,
		ap.sizeLabel,
		ap.sizeSlider,
		widget.NewSeparator(),
		ap.statusLabel,
	)

	ap.SyncPhase(editor.PhaseViewing)
	return ap
}

// Container returns the panel container.
func (ap *AnnotationPanel) Container() fyne.CanvasObject {
	return ap.box
}

// SelectedType returns the mask type the operator has picked.
func (ap *AnnotationPanel) SelectedType() mask.Type {
	for _, t := range mask.AllTypes() {
		if t.String() == ap.typeSelect.Selected {
			return t
		}
	}
	return mask.TypeRegion
}

// Brush returns the brush configured by the panel controls.
func (ap *AnnotationPanel) Brush() mask.Brush {
	mode := mask.ModeAdd
	if ap.modeSelect.Selected == "Erase" {
		mode = mask.ModeErase
	}
	return mask.Brush{Diameter: ap.sizeSlider.Value, Mode: mode}
}

func (ap *AnnotationPanel) pushBrush() {
	if ed := ap.state.CurrentEditor(); ed != nil {
		ed.SetBrush(ap.Brush())
	}
}

// SyncPhase enables and disables controls to match the editor phase. Must be
// called on the UI goroutine.
func (ap *AnnotationPanel) SyncPhase(p editor.Phase) {
	editing := p == editor.PhaseEditing || p == editor.PhaseDrawing

	switch {
	case p == editor.PhaseViewing && ap.state.CurrentScan() != nil && ap.state.CanAnnotate():
		ap.editBtn.Enable()
	default:
		ap.editBtn.Disable()
	}
	if editing {
		ap.saveBtn.Enable()
		ap.cancelBtn.Enable()
		ap.typeSelect.Disable()
	} else {
		ap.saveBtn.Disable()
		ap.typeSelect.Enable()
		if p == editor.PhaseSaving {
			ap.cancelBtn.Enable()
		} else {
			ap.cancelBtn.Disable()
		}
	}
}

// SetStatus shows a message in the panel's status area. Must be called on
// the UI goroutine.
func (ap *AnnotationPanel) SetStatus(msg string) {
	ap.statusLabel.SetText(msg)
}

func maskTypeNames() []string {
	types := mask.AllTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
