package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"scan-annotator/internal/api"
	"scan-annotator/internal/mask"
)

// fakeStore is a controllable in-memory mask store.
type fakeStore struct {
	mu      sync.Mutex
	masks   map[mask.Type][]byte
	loadErr error
	saveErr error

	// when set, FetchMask/SaveMask block until released
	loadGate chan struct{}
	saveGate chan struct{}

	saveCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{masks: make(map[mask.Type][]byte)}
}

func (f *fakeStore) FetchMask(ctx context.Context, scanID uuid.UUID, t mask.Type) ([]byte, bool, error) {
	if f.loadGate != nil {
		<-f.loadGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	data, ok := f.masks[t]
	return data, ok, nil
}

func (f *fakeStore) SaveMask(ctx context.Context, scanID uuid.UUID, t mask.Type, raster []byte) (*api.Scan, error) {
	if f.saveGate != nil {
		<-f.saveGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCount++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.masks[t] = raster
	assetID := uuid.New()
	scan := &api.Scan{ID: scanID, CaptureID: "cap"}
	switch t {
	case mask.TypeRegion:
		scan.MaskAssetID = &assetID
	case mask.TypeBackfatLine:
		scan.BackfatLineAssetID = &assetID
	}
	return scan, nil
}

func newTestEditor(t *testing.T, store Store) *Editor {
	t.Helper()
	e, err := New(store, &api.Scan{ID: uuid.New(), CaptureID: "cap"}, 200, 150)
	require.NoError(t, err)
	return e
}

func paintedRaster(t *testing.T) []byte {
	t.Helper()
	s, err := mask.NewSession(mask.TypeRegion, 200, 150)
	require.NoError(t, err)
	s.SetBrush(mask.Brush{Diameter: 30, Mode: mask.ModeAdd})
	s.BeginStroke(mask.Point{X: 100, Y: 75})
	data, err := mask.Export(s)
	require.NoError(t, err)
	return data
}

func TestBeginEditBlankWhenAbsent(t *testing.T) {
	e := newTestEditor(t, newFakeStore())

	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))
	require.Equal(t, PhaseEditing, e.Phase())
	require.NotNil(t, e.Session())
	require.False(t, e.Session().Primed(), "absent mask must start a blank, unprimed session")
}

func TestBeginEditPrimesFromSavedRaster(t *testing.T) {
	store := newFakeStore()
	store.masks[mask.TypeRegion] = paintedRaster(t)
	e := newTestEditor(t, store)

	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))
	require.True(t, e.Session().Primed())
	require.Equal(t, uint8(255), e.Session().Buffer().NRGBAAt(100, 75).A)
}

func TestBeginEditLoadFailureStartsBlank(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("connection refused")
	e := newTestEditor(t, store)

	err := e.BeginEdit(context.Background(), mask.TypeRegion)
	var lf *LoadFailure
	require.ErrorAs(t, err, &lf)
	require.Equal(t, PhaseEditing, e.Phase(), "load failure is non-fatal")
	require.False(t, e.Session().Primed())
}

func TestBeginEditBlockedWhileEditing(t *testing.T) {
	e := newTestEditor(t, newFakeStore())
	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))

	err := e.BeginEdit(context.Background(), mask.TypeBackfatLine)
	require.ErrorIs(t, err, ErrEditInProgress)
}

func TestPointerInputIgnoredOutsideEditing(t *testing.T) {
	e := newTestEditor(t, newFakeStore())
	require.False(t, e.PointerDown(mask.Point{X: 10, Y: 10}))
	require.False(t, e.PointerMove(mask.Point{X: 11, Y: 10}))
}

func TestDrawingSubState(t *testing.T) {
	e := newTestEditor(t, newFakeStore())
	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))

	require.True(t, e.PointerDown(mask.Point{X: 50, Y: 50}))
	require.Equal(t, PhaseDrawing, e.Phase())
	require.True(t, e.PointerMove(mask.Point{X: 60, Y: 55}))
	e.PointerUp()
	require.Equal(t, PhaseEditing, e.Phase())
	require.True(t, e.Session().Dirty())
}

func TestCancelDiscardsWithoutNetwork(t *testing.T) {
	store := newFakeStore()
	e := newTestEditor(t, store)
	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))
	e.PointerDown(mask.Point{X: 50, Y: 50})
	e.PointerUp()

	require.NoError(t, e.Cancel())
	require.Equal(t, PhaseViewing, e.Phase())
	require.Nil(t, e.Session())
	require.Zero(t, store.saveCount)
}

func TestSaveSuccessReturnsFreshScan(t *testing.T) {
	e := newTestEditor(t, newFakeStore())
	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))
	e.PointerDown(mask.Point{X: 50, Y: 50})
	e.PointerUp()

	scan, err := e.Save(context.Background())
	require.NoError(t, err)
	require.True(t, scan.HasMask(mask.TypeRegion))
	require.Equal(t, PhaseViewing, e.Phase())
	require.Nil(t, e.Session())
	require.Same(t, scan, e.Scan(), "editor must adopt the updated record")
}

func TestSaveFailureRetainsBuffer(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("503 service unavailable")
	e := newTestEditor(t, store)
	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))
	e.PointerDown(mask.Point{X: 50, Y: 50})
	e.PointerUp()

	_, err := e.Save(context.Background())
	var sf *SaveFailure
	require.ErrorAs(t, err, &sf)
	require.Equal(t, PhaseEditing, e.Phase())
	require.NotNil(t, e.Session(), "buffer must survive a failed save")
	require.True(t, e.Session().Dirty())

	// Retry succeeds once the store recovers.
	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()
	_, err = e.Save(context.Background())
	require.NoError(t, err)
	require.Equal(t, PhaseViewing, e.Phase())
}

func TestConcurrentSaveRejected(t *testing.T) {
	store := newFakeStore()
	store.saveGate = make(chan struct{})
	e := newTestEditor(t, store)
	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))
	e.PointerDown(mask.Point{X: 50, Y: 50})
	e.PointerUp()

	done := make(chan error, 1)
	go func() {
		_, err := e.Save(context.Background())
		done <- err
	}()

	// Wait for the first save to reach the in-flight phase.
	require.Eventually(t, func() bool {
		return e.Phase() == PhaseSaving
	}, time.Second, time.Millisecond)

	_, err := e.Save(context.Background())
	require.ErrorIs(t, err, ErrSaveInFlight)

	close(store.saveGate)
	require.NoError(t, <-done)
	require.Equal(t, 1, store.saveCount)
}

func TestCancelDuringSaveDropsLateResult(t *testing.T) {
	store := newFakeStore()
	store.saveGate = make(chan struct{})
	e := newTestEditor(t, store)
	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))
	e.PointerDown(mask.Point{X: 50, Y: 50})
	e.PointerUp()

	done := make(chan error, 1)
	go func() {
		_, err := e.Save(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool {
		return e.Phase() == PhaseSaving
	}, time.Second, time.Millisecond)

	require.NoError(t, e.Cancel())
	require.Equal(t, PhaseViewing, e.Phase())

	close(store.saveGate)
	require.ErrorIs(t, <-done, ErrStale)
	require.Equal(t, PhaseViewing, e.Phase(), "late save result must not reopen the session")
	require.Nil(t, e.Session())
}

func TestCancelDuringLoadDropsLateResult(t *testing.T) {
	store := newFakeStore()
	store.loadGate = make(chan struct{})
	store.masks[mask.TypeRegion] = paintedRaster(t)
	e := newTestEditor(t, store)

	done := make(chan error, 1)
	go func() {
		done <- e.BeginEdit(context.Background(), mask.TypeRegion)
	}()

	// Abandon edit mode before the load resolves.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, e.Cancel())

	close(store.loadGate)
	require.ErrorIs(t, <-done, ErrStale)
	require.Equal(t, PhaseViewing, e.Phase())
	require.Nil(t, e.Session())
}

func TestCallbackRegisteredDuringLoad(t *testing.T) {
	store := newFakeStore()
	store.loadGate = make(chan struct{})
	e := newTestEditor(t, store)

	done := make(chan error, 1)
	go func() {
		done <- e.BeginEdit(context.Background(), mask.TypeRegion)
	}()

	// Register while the load is still in flight; the notification after the
	// load resolves must observe it.
	phases := make(chan Phase, 1)
	e.OnPhaseChange(func(p Phase) { phases <- p })

	close(store.loadGate)
	require.NoError(t, <-done)
	require.Equal(t, PhaseEditing, <-phases)
}

func TestPhaseCallbacks(t *testing.T) {
	e := newTestEditor(t, newFakeStore())
	var phases []Phase
	e.OnPhaseChange(func(p Phase) { phases = append(phases, p) })

	require.NoError(t, e.BeginEdit(context.Background(), mask.TypeRegion))
	_, err := e.Save(context.Background())
	require.NoError(t, err)

	require.Equal(t, []Phase{PhaseEditing, PhaseSaving, PhaseViewing}, phases)
}
