package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"scan-annotator/internal/app"
)

// SidePanel groups the scan info and annotation panels into tabs.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	Annotation *AnnotationPanel
	ScanInfo   *ScanInfoPanel
}

// NewSidePanel creates the side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.Annotation = NewAnnotationPanel(state)
	sp.ScanInfo = NewScanInfoPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Annotate", sp.Annotation.Container()),
		container.NewTabItem("Scan", sp.ScanInfo.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}
