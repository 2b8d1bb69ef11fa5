package engine

import (
	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/entity"
	"github.com/yourusername/wise/internal/foreign"
	"github.com/yourusername/wise/internal/logging"
)

// Dispatch is the runtime's notification handler. context selects the
// engine that subscribed. Unknown contexts are logged and dropped.
func Dispatch(element foreign.Handle, notification ax.Notification, context uintptr) {
	e, ok := foreign.Lookup(context).(*Engine)
	if !ok {
		logging.Warn().
			Str("notification", string(notification)).
			Uint64("context", uint64(context)).
			Msg("notification for unknown context")
		return
	}
	e.HandleNotification(element, notification)
}

// HandleNotification puts a moved or resized window back at its assigned
// preset if the window is enabled. element is only valid for the duration
// of the call. Failures are logged, never returned or panicked, since the
// caller is the runtime's callback.
func (e *Engine) HandleNotification(element foreign.Handle, notification ax.Notification) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().
				Interface("panic", r).
				Str("notification", string(notification)).
				Msg("notification handler panicked")
		}
	}()

	w, err := entity.BorrowFromNotification(e.api, element)
	if err != nil {
		e.log.Warn().Err(err).Str("notification", string(notification)).Msg("failed to resolve window")
		return
	}
	defer w.Close()

	id, err := w.ID()
	if err != nil {
		e.log.Warn().Err(err).Str("bundleId", w.BundleID()).Msg("failed to resolve window id")
		return
	}

	a := e.store.Get(w.BundleID(), id)
	if !a.Enabled {
		e.log.Debug().
			Str("bundleId", w.BundleID()).
			Uint32("windowId", uint32(id)).
			Str("notification", string(notification)).
			Msg("window not managed")
		return
	}

	if err := w.Relayout(e.presets.Get(a.Preset)); err != nil {
		e.log.Warn().
			Err(err).
			Str("bundleId", w.BundleID()).
			Uint32("windowId", uint32(id)).
			Stringer("preset", a.Preset).
			Msg("relayout failed")
		return
	}
	e.log.Debug().
		Str("bundleId", w.BundleID()).
		Uint32("windowId", uint32(id)).
		Stringer("preset", a.Preset).
		Str("notification", string(notification)).
		Msg("relaid out")
}
