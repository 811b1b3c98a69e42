// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"

	"scan-annotator/internal/app"
	"scan-annotator/internal/editor"
	"scan-annotator/internal/export"
	"scan-annotator/internal/mask"
	"scan-annotator/internal/overlay"
	"scan-annotator/internal/version"
	"scan-annotator/ui/canvas"
	"scan-annotator/ui/panels"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	canvas    *canvas.MaskCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State) *MainWindow {
	win := fyneApp.NewWindow("Scan Annotator")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMaskCanvas()
	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.statusBar = widget.NewLabel("Ready")

	mw.sidePanel.Annotation.OnBeginEdit = mw.onBeginEdit
	mw.sidePanel.Annotation.OnSave = mw.onSaveMask
	mw.sidePanel.Annotation.OnCancel = mw.onCancelEdit

	mw.canvas.OnStroke(mw.onStrokeBegin, mw.onStrokeMove, mw.onStrokeEnd)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		mw.canvas,
	)
	split.SetOffset(0.25) // Side panel takes 25% of width

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Scan...", mw.onOpenScan),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Report...", mw.onExportReport),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventScanLoaded, func(data interface{}) {
		scan := mw.state.CurrentScan()
		if scan != nil {
			mw.SetTitle("Scan Annotator - " + scan.Label())
		}
		mw.sidePanel.ScanInfo.Sync()
		mw.sidePanel.Annotation.SyncPhase(editor.PhaseViewing)
		mw.refreshOverlays()
		mw.updateStatus("Scan loaded")
	})

	mw.state.On(app.EventPhaseChanged, func(data interface{}) {
		phase, ok := data.(editor.Phase)
		if !ok {
			return
		}
		mw.sidePanel.Annotation.SyncPhase(phase)
		if phase == editor.PhaseSaving {
			mw.canvas.SetEditable(false)
			mw.updateStatus("Saving mask...")
		}
	})

	mw.state.On(app.EventMaskSaved, func(data interface{}) {
		mw.sidePanel.ScanInfo.Sync()
		mw.refreshOverlays()
		mw.updateStatus("Mask saved")
	})
}

// refreshOverlays fetches the committed mask rasters for the loaded scan and
// recomposites the viewing display. Runs the fetches in a goroutine.
func (mw *MainWindow) refreshOverlays() {
	scan := mw.state.CurrentScan()
	base := mw.state.Base()
	if scan == nil || base == nil {
		mw.canvas.ShowViewing(nil, nil)
		return
	}

	go func() {
		var layers []overlay.Layer
		for _, t := range mask.AllTypes() {
			url := scan.AssetURL(t)
			if !scan.HasMask(t) || url == "" {
				continue
			}
			data, err := mw.state.Client.FetchAsset(context.Background(), url)
			if err != nil {
				log.Printf("mainwindow: fetch %s overlay: %v", t.Slug(), err)
				mw.updateStatus(fmt.Sprintf("Could not load %s overlay", t))
				continue
			}
			img, err := mask.Decode(data)
			if err != nil {
				log.Printf("mainwindow: decode %s overlay: %v", t.Slug(), err)
				mw.updateStatus(fmt.Sprintf("Could not decode %s overlay", t))
				continue
			}
			layers = append(layers, overlay.Layer{Mask: img, Tint: overlay.Tint(t)})
		}
		mw.canvas.ShowViewing(base, layers)
	}()
}

// onOpenScan prompts for a scan ID and loads it.
func (mw *MainWindow) onOpenScan() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("scan UUID")

	dialog.ShowForm("Open Scan", "Load", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Scan ID", entry)},
		func(confirmed bool) {
			if !confirmed {
				return
			}
			scanID, err := uuid.Parse(entry.Text)
			if err != nil {
				dialog.ShowError(fmt.Errorf("invalid scan ID: %w", err), mw.Window)
				return
			}
			mw.loadScan(scanID)
		}, mw.Window)
}

func (mw *MainWindow) loadScan(scanID uuid.UUID) {
	if ed := mw.state.CurrentEditor(); ed != nil && ed.Phase() != editor.PhaseViewing {
		mw.updateStatus("Finish or cancel the current edit first")
		return
	}

	mw.updateStatus("Loading scan...")
	go func() {
		if err := mw.state.LoadScan(context.Background(), scanID); err != nil {
			log.Printf("mainwindow: load scan %s: %v", scanID, err)
			mw.updateStatus("Scan load failed: " + err.Error())
		}
	}()
}

// onBeginEdit enters edit mode for the chosen mask type.
func (mw *MainWindow) onBeginEdit(t mask.Type) {
	ed := mw.state.CurrentEditor()
	if ed == nil {
		mw.updateStatus("Load a scan first")
		return
	}
	if !mw.state.CanAnnotate() {
		mw.updateStatus("Your account cannot edit masks")
		return
	}

	mw.updateStatus(fmt.Sprintf("Loading %s mask...", t))
	go func() {
		err := ed.BeginEdit(context.Background(), t)
		switch {
		case errors.Is(err, editor.ErrStale):
			return
		case errors.Is(err, editor.ErrEditInProgress):
			mw.updateStatus("Another edit is already active")
			return
		}

		var lf *editor.LoadFailure
		if errors.As(err, &lf) {
			mw.updateStatus("Mask load failed; starting from a blank mask")
		} else if err != nil {
			mw.updateStatus("Edit failed: " + err.Error())
			return
		} else {
			mw.updateStatus(fmt.Sprintf("Editing %s mask", t))
		}

		ed.SetBrush(mw.sidePanel.Annotation.Brush())
		mw.canvas.ShowEditing(mw.state.Base(), ed.Session())
	}()
}

// onSaveMask uploads the session buffer.
func (mw *MainWindow) onSaveMask() {
	ed := mw.state.CurrentEditor()
	if ed == nil {
		return
	}

	go func() {
		_, err := ed.Save(context.Background())
		switch {
		case err == nil, errors.Is(err, editor.ErrStale):
			return
		case errors.Is(err, editor.ErrSaveInFlight):
			mw.updateStatus("Save already in progress")
			return
		}

		var sf *editor.SaveFailure
		if errors.As(err, &sf) {
			// Still editing; the buffer is intact for a retry.
			mw.canvas.SetEditable(true)
			mw.updateStatus("Save failed, edits kept: " + sf.Err.Error())
			return
		}
		mw.updateStatus("Save failed: " + err.Error())
	}()
}

// onCancelEdit discards the session without saving.
func (mw *MainWindow) onCancelEdit() {
	ed := mw.state.CurrentEditor()
	if ed == nil {
		return
	}
	if err := ed.Cancel(); err != nil {
		mw.updateStatus("Nothing to cancel")
		return
	}
	mw.refreshOverlays()
	mw.updateStatus("Edit cancelled")
}

// Stroke handlers bridge canvas pointer events to the editor and repaint the
// live session after each accepted sample.

func (mw *MainWindow) onStrokeBegin(p mask.Point) bool {
	ed := mw.state.CurrentEditor()
	if ed == nil || !ed.PointerDown(p) {
		return false
	}
	mw.repaintSession(ed)
	return true
}

func (mw *MainWindow) onStrokeMove(p mask.Point) bool {
	ed := mw.state.CurrentEditor()
	if ed == nil || !ed.PointerMove(p) {
		return false
	}
	mw.repaintSession(ed)
	return true
}

func (mw *MainWindow) onStrokeEnd() {
	if ed := mw.state.CurrentEditor(); ed != nil {
		ed.PointerUp()
	}
}

func (mw *MainWindow) repaintSession(ed *editor.Editor) {
	if session := ed.Session(); session != nil {
		mw.canvas.ShowEditing(mw.state.Base(), session)
	}
}

// onExportReport writes a PDF of the scan with its committed overlays.
func (mw *MainWindow) onExportReport() {
	scan := mw.state.CurrentScan()
	base := mw.state.Base()
	if scan == nil || base == nil {
		mw.updateStatus("Load a scan first")
		return
	}

	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		mw.updateStatus("Exporting report...")
		go func() {
			var layers []overlay.Layer
			for _, t := range mask.AllTypes() {
				url := scan.AssetURL(t)
				if !scan.HasMask(t) || url == "" {
					continue
				}
				data, ferr := mw.state.Client.FetchAsset(context.Background(), url)
				if ferr != nil {
					continue
				}
				img, derr := mask.Decode(data)
				if derr != nil {
					continue
				}
				layers = append(layers, overlay.Layer{Mask: img, Tint: overlay.Tint(t)})
			}

			annotated := overlay.Render(base, layers)
			if werr := export.WriteReport(path, scan, annotated); werr != nil {
				log.Printf("mainwindow: export report: %v", werr)
				mw.updateStatus("Report export failed: " + werr.Error())
				return
			}
			mw.updateStatus("Report written to " + path)
		}()
	}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		fmt.Sprintf("Scan Annotator %s\nCommit %s, built %s\n\nMask annotation for ultrasound scans.",
			version.Version, version.GitCommit, version.BuildTime),
		mw.Window)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}
