// Package state holds the layout assignment of every window the daemon has
// seen. Entries live for the lifetime of the process.
package state

import (
	"sync"

	"github.com/yourusername/wise/internal/entity"
	"github.com/yourusername/wise/internal/layout"
)

// Assignment is the desired layout of one window. A disabled assignment
// keeps its preset so it can be re-enabled without losing it.
type Assignment struct {
	Preset  layout.Preset `json:"preset"`
	Enabled bool          `json:"enabled"`
}

// DefaultAssignment is the effective assignment of a window that was never
// assigned: observed, but left alone.
var DefaultAssignment = Assignment{Preset: layout.Full, Enabled: false}

// WindowState tracks one window.
type WindowState struct {
	Assignment
	Observed bool `json:"observed"` // move/resize notifications are subscribed
}

// bundleState holds the windows of one bundle id. It is locked on its own so
// that callers working on different applications never contend.
type bundleState struct {
	mu      sync.RWMutex
	windows map[entity.WindowID]*WindowState
}

// Store maps (bundle id, window id) to a WindowState. It is safe for
// concurrent use.
type Store struct {
	bundles sync.Map // string -> *bundleState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// bundle returns the state for bundleID, creating it if needed.
func (s *Store) bundle(bundleID string) *bundleState {
	if b, ok := s.bundles.Load(bundleID); ok {
		return b.(*bundleState)
	}
	b, _ := s.bundles.LoadOrStore(bundleID, &bundleState{
		windows: make(map[entity.WindowID]*WindowState),
	})
	return b.(*bundleState)
}

// lookup returns the state for bundleID without creating it.
func (s *Store) lookup(bundleID string) *bundleState {
	b, ok := s.bundles.Load(bundleID)
	if !ok {
		return nil
	}
	return b.(*bundleState)
}

// window returns the entry for id, creating it with the default assignment.
// Must be called with b.mu held for writing.
func (b *bundleState) window(id entity.WindowID) *WindowState {
	ws, ok := b.windows[id]
	if !ok {
		ws = &WindowState{Assignment: DefaultAssignment}
		b.windows[id] = ws
	}
	return ws
}

// Get returns the assignment of a window, or DefaultAssignment if it has none.
func (s *Store) Get(bundleID string, id entity.WindowID) Assignment {
	b := s.lookup(bundleID)
	if b == nil {
		return DefaultAssignment
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if ws, ok := b.windows[id]; ok {
		return ws.Assignment
	}
	return DefaultAssignment
}

// Set replaces the assignment of a window.
func (s *Store) Set(bundleID string, id entity.WindowID, a Assignment) {
	b := s.bundle(bundleID)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.window(id).Assignment = a
}

// Assign sets a window to preset and enables it.
func (s *Store) Assign(bundleID string, id entity.WindowID, preset layout.Preset) Assignment {
	a := Assignment{Preset: preset, Enabled: true}
	s.Set(bundleID, id, a)
	return a
}

// Toggle flips whether a window is managed and returns the new assignment.
// The preset is left unchanged. A window without an entry starts from
// DefaultAssignment, so its first toggle enables it at Full.
func (s *Store) Toggle(bundleID string, id entity.WindowID) Assignment {
	b := s.bundle(bundleID)
	b.mu.Lock()
	defer b.mu.Unlock()

	ws := b.window(id)
	ws.Enabled = !ws.Enabled
	return ws.Assignment
}

// MarkObserved records that notifications are subscribed for a window. It
// returns false if the window was already marked.
func (s *Store) MarkObserved(bundleID string, id entity.WindowID) bool {
	b := s.bundle(bundleID)
	b.mu.Lock()
	defer b.mu.Unlock()

	ws := b.window(id)
	if ws.Observed {
		return false
	}
	ws.Observed = true
	return true
}

// Observed reports whether notifications are subscribed for a window.
func (s *Store) Observed(bundleID string, id entity.WindowID) bool {
	b := s.lookup(bundleID)
	if b == nil {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	ws, ok := b.windows[id]
	return ok && ws.Observed
}
