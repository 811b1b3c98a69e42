// Package app provides application state, events, and theming.
package app

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"

	"scan-annotator/internal/api"
	"scan-annotator/internal/editor"
	"scan-annotator/internal/scanimage"
)

// State holds the application state: the API client, the authenticated
// user, the loaded scan with its base image, and the mask editor for it.
type State struct {
	mu sync.RWMutex

	Client *api.Client

	User      *api.User
	Scan      *api.Scan
	BaseImage *image.NRGBA
	Editor    *editor.Editor

	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventUserLoaded EventType = iota
	EventScanLoaded
	EventPhaseChanged
	EventMaskSaved
	EventStatus
	EventError
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state backed by the given API client.
func NewState(client *api.Client) *State {
	return &State{
		Client:    client,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadUser fetches the authenticated user record.
func (s *State) LoadUser(ctx context.Context) error {
	user, err := s.Client.Me(ctx)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	s.mu.Lock()
	s.User = user
	s.mu.Unlock()

	s.Emit(EventUserLoaded, user)
	return nil
}

// CanAnnotate reports whether the current user may enter edit mode.
func (s *State) CanAnnotate() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.User != nil && s.User.CanAnnotate()
}

// LoadScan fetches a scan record and its base image, then builds a fresh
// editor for it. Any previous scan's editor is dropped wholesale; sessions
// never leak across scans.
func (s *State) LoadScan(ctx context.Context, scanID uuid.UUID) error {
	scan, err := s.Client.FetchScan(ctx, scanID)
	if err != nil {
		return fmt.Errorf("load scan: %w", err)
	}
	if scan.ImageURL == "" {
		return fmt.Errorf("scan %s has no base image", scan.Label())
	}

	imgBytes, err := s.Client.FetchAsset(ctx, scan.ImageURL)
	if err != nil {
		return fmt.Errorf("load scan image: %w", err)
	}
	base, err := scanimage.Decode(imgBytes)
	if err != nil {
		return fmt.Errorf("load scan image: %w", err)
	}

	w, h := scanimage.NaturalSize(base)
	ed, err := editor.New(s.Client, scan, w, h)
	if err != nil {
		return err
	}
	ed.OnPhaseChange(func(p editor.Phase) {
		s.Emit(EventPhaseChanged, p)
	})
	ed.OnScanUpdated(func(updated *api.Scan) {
		s.mu.Lock()
		s.Scan = updated
		s.mu.Unlock()
		s.Emit(EventMaskSaved, updated)
	})

	s.mu.Lock()
	s.Scan = scan
	s.BaseImage = base
	s.Editor = ed
	s.mu.Unlock()

	s.Emit(EventScanLoaded, scan)
	return nil
}

// CurrentScan returns the loaded scan record, or nil.
func (s *State) CurrentScan() *api.Scan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Scan
}

// Base returns the loaded base image, or nil.
func (s *State) Base() *image.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseImage
}

// CurrentEditor returns the editor for the loaded scan, or nil.
func (s *State) CurrentEditor() *editor.Editor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Editor
}
