// Package editor implements the mask editing state machine for one scan:
// viewing, editing, the drawing sub-state while a pointer button is held,
// and saving. It owns the drawing session lifecycle and sequences the two
// async operations (mask load on entering edit mode, upload on save) with
// per-(scan, mask type) generation tokens so stale results are dropped.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"scan-annotator/internal/api"
	"scan-annotator/internal/mask"
)

// Phase is the editor's interaction state.
type Phase int

const (
	PhaseViewing Phase = iota // overlays shown, canvas inactive
	PhaseEditing              // session live, pointer input accepted
	PhaseDrawing              // pointer button held, stroke in progress
	PhaseSaving               // upload in flight, pointer input ignored
)

func (p Phase) String() string {
	switch p {
	case PhaseViewing:
		return "Viewing"
	case PhaseEditing:
		return "Editing"
	case PhaseDrawing:
		return "Drawing"
	case PhaseSaving:
		return "Saving"
	default:
		return "Unknown"
	}
}

var (
	// ErrEditInProgress rejects entering edit mode while another mask type
	// is already being edited. Switching targets requires an explicit save
	// or cancel first.
	ErrEditInProgress = errors.New("editor: another edit session is active")

	// ErrNotEditing rejects save/cancel outside an edit session.
	ErrNotEditing = errors.New("editor: no active edit session")

	// ErrSaveInFlight rejects a save while one is already running for the
	// same session.
	ErrSaveInFlight = errors.New("editor: save already in flight")

	// ErrStale marks an async result that resolved after its session was
	// discarded; callers drop it silently.
	ErrStale = errors.New("editor: stale result discarded")
)

// LoadFailure is the non-fatal outcome of a mask fetch that failed for a
// reason other than "never saved". Editing still starts from a blank buffer;
// the UI surfaces the message inline.
type LoadFailure struct {
	Err error
}

func (f *LoadFailure) Error() string {
	return fmt.Sprintf("mask load failed, starting blank: %v", f.Err)
}

func (f *LoadFailure) Unwrap() error {
	return f.Err
}

// SaveFailure is the non-fatal outcome of a failed upload. The session
// buffer is retained so the operator can retry without repainting.
type SaveFailure struct {
	Err error
}

func (f *SaveFailure) Error() string {
	return fmt.Sprintf("mask save failed, edits retained: %v", f.Err)
}

func (f *SaveFailure) Unwrap() error {
	return f.Err
}

// Store is the mask persistence surface the editor depends on.
type Store interface {
	FetchMask(ctx context.Context, scanID uuid.UUID, t mask.Type) ([]byte, bool, error)
	SaveMask(ctx context.Context, scanID uuid.UUID, t mask.Type, raster []byte) (*api.Scan, error)
}

// Editor drives mask editing for a single scan. Methods are safe for use
// from the UI goroutine plus the goroutines running BeginEdit and Save.
type Editor struct {
	mu sync.Mutex

	store Store
	scan  *api.Scan
	natW  int
	natH  int

	phase   Phase
	session *mask.Session
	last    mask.Point // previous pointer sample while drawing

	// pending guards the load window between requesting edit mode and the
	// fetch resolving; pointer input and further BeginEdit calls are
	// rejected during it.
	pending bool

	// gen is bumped per mask type whenever a session starts or ends, so
	// async results can detect they are stale before applying.
	gen map[mask.Type]uint64

	onPhase func(Phase)
	onScan  func(*api.Scan)
}

// New creates an editor for the scan whose base image has the given natural
// pixel dimensions.
func New(store Store, scan *api.Scan, naturalW, naturalH int) (*Editor, error) {
	if naturalW <= 0 || naturalH <= 0 {
		return nil, fmt.Errorf("editor: invalid natural size %dx%d", naturalW, naturalH)
	}
	return &Editor{
		store: store,
		scan:  scan,
		natW:  naturalW,
		natH:  naturalH,
		gen:   make(map[mask.Type]uint64),
	}, nil
}

// OnPhaseChange registers a callback fired after every phase transition.
// Safe to call while a load or save is in flight.
func (e *Editor) OnPhaseChange(fn func(Phase)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onPhase = fn
}

// OnScanUpdated registers a callback fired when a save returns a fresh scan
// record.
func (e *Editor) OnScanUpdated(fn func(*api.Scan)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onScan = fn
}

// Phase returns the current interaction phase.
func (e *Editor) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Scan returns the most recent scan record the editor knows about.
func (e *Editor) Scan() *api.Scan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scan
}

// Session returns the live drawing session, or nil outside edit mode.
func (e *Editor) Session() *mask.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// BeginEdit enters edit mode for the given mask type. It fetches the
// current raster first and only then activates the session, so pointer
// input can never race a late-arriving load. Call from a goroutine; the
// fetch blocks.
//
// Returns nil on a clean start (existing raster primed, or none saved yet),
// *LoadFailure when the fetch failed and the session starts blank, and
// ErrEditInProgress while another session or load is active.
func (e *Editor) BeginEdit(ctx context.Context, t mask.Type) error {
	e.mu.Lock()
	if e.phase != PhaseViewing || e.pending {
		e.mu.Unlock()
		return ErrEditInProgress
	}
	e.pending = true
	e.gen[t]++
	gen := e.gen[t]
	scanID := e.scan.ID
	e.mu.Unlock()

	data, found, err := e.store.FetchMask(ctx, scanID, t)

	e.mu.Lock()
	if e.gen[t] != gen || !e.pending {
		e.mu.Unlock()
		return ErrStale
	}
	e.pending = false

	session, serr := mask.NewSession(t, e.natW, e.natH)
	if serr != nil {
		e.mu.Unlock()
		return serr
	}

	var warn error
	switch {
	case err != nil:
		log.Printf("editor: load %s mask for scan %s: %v", t.Slug(), scanID, err)
		warn = &LoadFailure{Err: err}
	case found:
		if perr := e.primeSession(session, data); perr != nil {
			log.Printf("editor: prime %s mask for scan %s: %v", t.Slug(), scanID, perr)
			warn = &LoadFailure{Err: perr}
		}
	}

	e.session = session
	e.phase = PhaseEditing
	e.mu.Unlock()

	e.notifyPhase(PhaseEditing)
	return warn
}

func (e *Editor) primeSession(s *mask.Session, data []byte) error {
	img, err := mask.Decode(data)
	if err != nil {
		return err
	}
	return s.Prime(img)
}

// PointerDown begins a stroke at the canonical point. Returns false when
// the editor is not accepting pointer input (viewing, loading, or saving).
func (e *Editor) PointerDown(p mask.Point) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseEditing {
		return false
	}
	e.phase = PhaseDrawing
	e.session.BeginStroke(p)
	e.last = p
	return true
}

// PointerMove extends the current stroke by one segment from the previous
// sample. Ignored outside the drawing sub-state.
func (e *Editor) PointerMove(p mask.Point) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseDrawing {
		return false
	}
	e.session.ExtendStroke(e.last, p)
	e.last = p
	return true
}

// PointerUp ends the current stroke.
func (e *Editor) PointerUp() {
	e.mu.Lock()
	if e.phase == PhaseDrawing {
		e.phase = PhaseEditing
	}
	e.mu.Unlock()
}

// SetBrush updates the active session's brush.
func (e *Editor) SetBrush(b mask.Brush) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.SetBrush(b)
	}
}

// Cancel discards the session with no network effect and returns to
// viewing. It also invalidates any in-flight load or save result for the
// session's mask type, so a late resolution cannot resurrect the discarded
// edits.
func (e *Editor) Cancel() error {
	e.mu.Lock()
	if e.pending {
		// Abandon the load that is still in flight.
		e.pending = false
		e.mu.Unlock()
		return nil
	}
	if e.phase != PhaseEditing && e.phase != PhaseDrawing && e.phase != PhaseSaving {
		e.mu.Unlock()
		return ErrNotEditing
	}
	t := e.session.Type()
	e.gen[t]++
	e.session = nil
	e.phase = PhaseViewing
	e.mu.Unlock()

	e.notifyPhase(PhaseViewing)
	return nil
}

// Save flattens and uploads the session buffer. On success the editor
// returns to viewing with the fresh scan record; on failure it returns to
// editing with the buffer retained for retry. A save already in flight for
// this session rejects further attempts. Call from a goroutine; the upload
// blocks.
func (e *Editor) Save(ctx context.Context) (*api.Scan, error) {
	e.mu.Lock()
	switch e.phase {
	case PhaseSaving:
		e.mu.Unlock()
		return nil, ErrSaveInFlight
	case PhaseEditing:
		// proceed
	default:
		e.mu.Unlock()
		return nil, ErrNotEditing
	}

	t := e.session.Type()
	gen := e.gen[t]
	scanID := e.scan.ID
	raster, err := mask.Export(e.session)
	if err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("editor: export session: %w", err)
	}
	e.phase = PhaseSaving
	e.mu.Unlock()
	e.notifyPhase(PhaseSaving)

	scan, err := e.store.SaveMask(ctx, scanID, t, raster)

	e.mu.Lock()
	if e.gen[t] != gen {
		// Session was discarded while the upload was in flight. The server
		// may or may not have applied it; either way the local result is
		// dead.
		e.mu.Unlock()
		return nil, ErrStale
	}

	if err != nil {
		log.Printf("editor: save %s mask for scan %s: %v", t.Slug(), scanID, err)
		e.phase = PhaseEditing
		e.mu.Unlock()
		e.notifyPhase(PhaseEditing)
		return nil, &SaveFailure{Err: err}
	}

	e.gen[t]++
	e.session = nil
	e.scan = scan
	e.phase = PhaseViewing
	e.mu.Unlock()

	e.notifyPhase(PhaseViewing)
	e.notifyScan(scan)
	return scan, nil
}

func (e *Editor) notifyPhase(p Phase) {
	e.mu.Lock()
	fn := e.onPhase
	e.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

func (e *Editor) notifyScan(s *api.Scan) {
	e.mu.Lock()
	fn := e.onScan
	e.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
