// Package engine keeps managed windows at their assigned layout. It lays
// out windows when an application is registered, puts them back whenever
// they move or resize, and applies keyboard commands to the focused window.
package engine

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/entity"
	"github.com/yourusername/wise/internal/foreign"
	"github.com/yourusername/wise/internal/hotkeys"
	"github.com/yourusername/wise/internal/layout"
	"github.com/yourusername/wise/internal/logging"
	"github.com/yourusername/wise/internal/state"
)

// observed are the notifications subscribed for every managed window.
var observed = []ax.Notification{ax.WindowMoved, ax.WindowResized}

// Engine applies layout assignments. Its notification handler and key
// handler may run concurrently on different goroutines.
type Engine struct {
	api     ax.API
	presets *layout.Presets
	store   *state.Store
	tracker *hotkeys.Tracker
	log     zerolog.Logger

	// context is handed to the runtime with every subscription and resolves
	// back to this engine in Dispatch.
	context   uintptr
	closeOnce sync.Once
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is logging.Logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an engine and installs its notification handler on api.
// presets must outlive the engine.
func New(api ax.API, presets *layout.Presets, store *state.Store, opts ...Option) *Engine {
	e := &Engine{
		api:     api,
		presets: presets,
		store:   store,
		tracker: hotkeys.NewTracker(),
		log:     logging.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.context = foreign.Pin(e)
	api.SetNotificationHandler(Dispatch)
	return e
}

// Store returns the assignment store.
func (e *Engine) Store() *state.Store {
	return e.store
}

// Context returns the value passed to the runtime with every subscription.
func (e *Engine) Context() uintptr {
	return e.context
}

// Close detaches the engine from notifications still in flight. It does
// not close the presets.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		foreign.Unpin(e.context)
	})
}

// Register lays out every window of every running application with
// bundleID at Full and subscribes to its moves and resizes. It returns the
// number of windows registered. Any failure aborts registration.
func (e *Engine) Register(bundleID string) (int, error) {
	apps, err := entity.RunningApplications(e.api, bundleID)
	if err != nil {
		return 0, fmt.Errorf("failed to find running applications for %s: %w", bundleID, err)
	}
	defer entity.CloseApplications(apps)

	registered := 0
	for _, app := range apps {
		windows, err := app.Windows()
		if err != nil {
			return registered, err
		}
		for _, w := range windows {
			if err := e.registerWindow(w); err != nil {
				entity.CloseWindows(windows)
				return registered, err
			}
			registered++
		}
		entity.CloseWindows(windows)
	}

	e.log.Info().
		Str("bundleId", bundleID).
		Int("apps", len(apps)).
		Int("windows", registered).
		Msg("registered")
	return registered, nil
}

func (e *Engine) registerWindow(w *entity.Window) error {
	id, err := w.ID()
	if err != nil {
		return err
	}
	a := e.store.Assign(w.BundleID(), id, layout.Full)
	if err := w.Relayout(e.presets.Get(a.Preset)); err != nil {
		return err
	}
	return e.observe(w, id)
}

// observe subscribes to moves and resizes of w unless that was already done.
func (e *Engine) observe(w *entity.Window, id entity.WindowID) error {
	if e.store.Observed(w.BundleID(), id) {
		return nil
	}
	for _, n := range observed {
		err := w.Observe(n, e.context)
		if err != nil && !ax.IsCode(err, ax.ErrorNotificationAlreadyRegistered) {
			return err
		}
	}
	e.store.MarkObserved(w.BundleID(), id)
	e.log.Debug().
		Str("bundleId", w.BundleID()).
		Uint32("windowId", uint32(id)).
		Msg("observing window")
	return nil
}
