package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"scan-annotator/internal/app"
	"scan-annotator/internal/mask"
)

// ScanInfoPanel shows the loaded scan's metadata and which masks exist.
type ScanInfoPanel struct {
	state *app.State
	box   *fyne.Container

	scanLabel     *widget.Label
	farmLabel     *widget.Label
	deviceLabel   *widget.Label
	capturedLabel *widget.Label
	statusLabel   *widget.Label
	maskLabels    map[mask.Type]*widget.Label
}

// NewScanInfoPanel creates the scan info panel.
func NewScanInfoPanel(state *app.State) *ScanInfoPanel {
	sp := &ScanInfoPanel{
		state:         state,
		scanLabel:     widget.NewLabel("-"),
		farmLabel:     widget.NewLabel("-"),
		deviceLabel:   widget.NewLabel("-"),
		capturedLabel: widget.NewLabel("-"),
		statusLabel:   widget.NewLabel("-"),
		maskLabels:    make(map[mask.Type]*widget.Label),
	}

	form := widget.NewForm(
		widget.NewFormItem("Scan", sp.scanLabel),
		widget.NewFormItem("Farm", sp.farmLabel),
		widget.NewFormItem("Device", sp.deviceLabel),
		widget.NewFormItem("Captured", sp.capturedLabel),
		widget.NewFormItem("Status", sp.statusLabel),
	)

	maskItems := make([]*widget.FormItem, 0, len(mask.AllTypes()))
	for _, t := range mask.AllTypes() {
		l := widget.NewLabel("absent")
		sp.maskLabels[t] = l
		maskItems = append(maskItems, widget.NewFormItem(t.String(), l))
	}

	sp.box = container.NewVBox(
		widget.NewLabelWithStyle("Scan", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Masks", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(maskItems...),
	)

	return sp
}

// Container returns the panel container.
func (sp *ScanInfoPanel) Container() fyne.CanvasObject {
	return sp.box
}

// Sync refreshes the labels from the loaded scan. Must be called on the UI
// goroutine.
func (sp *ScanInfoPanel) Sync() {
	scan := sp.state.CurrentScan()
	if scan == nil {
		for _, l := range []*widget.Label{sp.scanLabel, sp.farmLabel, sp.deviceLabel, sp.capturedLabel, sp.statusLabel} {
			l.SetText("-")
		}
		for _, l := range sp.maskLabels {
			l.SetText("absent")
		}
		return
	}

	sp.scanLabel.SetText(scan.Label())
	sp.farmLabel.SetText(orDash(scan.FarmName))
	device := scan.DeviceLabel
	if device == "" {
		device = scan.DeviceCode
	}
	sp.deviceLabel.SetText(orDash(device))
	if scan.CapturedAt != nil {
		sp.capturedLabel.SetText(scan.CapturedAt.Format("2006-01-02 15:04"))
	} else {
		sp.capturedLabel.SetText("-")
	}
	sp.statusLabel.SetText(string(scan.Status))

	for _, t := range mask.AllTypes() {
		if scan.HasMask(t) {
			sp.maskLabels[t].SetText("saved")
		} else {
			sp.maskLabels[t].SetText("absent")
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
