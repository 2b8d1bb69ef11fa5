package entity

import (
	"fmt"

	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/foreign"
	"github.com/yourusername/wise/internal/layout"
)

// WindowID identifies a window within its process for the lifetime of the
// process. Two Window values for the same window report the same ID.
type WindowID uint32

// Window is a window element tagged with its application's bundle id.
type Window struct {
	api      ax.API
	handle   foreign.MaybeOwned[ax.UIElement]
	pid      int
	bundleID string

	id      WindowID
	idKnown bool
}

var _ ax.Element = (*Window)(nil)

// BorrowFromNotification wraps an element delivered to a notification
// handler. The element is borrowed: the returned Window must not be used
// after the handler returns, and closing it releases nothing.
func BorrowFromNotification(api ax.API, element foreign.Handle) (*Window, error) {
	if element.IsNull() {
		return nil, fmt.Errorf("notification element: %w", ax.ErrUnexpectedNull)
	}

	pid, code := api.ElementPID(element)
	if err := ax.Check(code); err != nil {
		return nil, fmt.Errorf("failed to get pid of notification element: %w", err)
	}

	running, ok := foreign.AdoptRc[ax.RunningApplication](api, api.RunningApplicationForPID(pid))
	if !ok {
		return nil, fmt.Errorf("no running application for pid %d: %w", pid, ax.ErrUnexpectedNull)
	}
	defer running.Close()

	bundleID, err := bundleIdentifier(api, running.Get())
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle identifier of pid %d: %w", pid, err)
	}

	return &Window{
		api:      api,
		handle:   foreign.Borrowed[ax.UIElement](element),
		pid:      pid,
		bundleID: bundleID,
	}, nil
}

// Inner implements ax.Element.
func (w *Window) Inner() foreign.Handle {
	return w.handle.Get()
}

// BundleID returns the bundle identifier of the owning application.
func (w *Window) BundleID() string {
	return w.bundleID
}

// PID returns the owning process identifier.
func (w *Window) PID() int {
	return w.pid
}

// ID returns the window identifier, fetching it on first use.
func (w *Window) ID() (WindowID, error) {
	if w.idKnown {
		return w.id, nil
	}
	number, code := w.api.WindowNumber(w.Inner())
	if err := ax.Check(code); err != nil {
		return 0, fmt.Errorf("failed to get window id in %s: %w", w.bundleID, err)
	}
	w.id = WindowID(number)
	w.idKnown = true
	return w.id, nil
}

// Relayout moves then resizes the window to rect. If the move fails the
// resize is not attempted; a successful move is not undone.
func (w *Window) Relayout(rect *layout.AXRect) error {
	if err := ax.Set(w.api, w, ax.KeyPosition, rect.Origin()); err != nil {
		return fmt.Errorf("failed to set %s position: %w", w.bundleID, err)
	}
	if err := ax.Set(w.api, w, ax.KeySize, rect.Size()); err != nil {
		return fmt.Errorf("failed to set %s size: %w", w.bundleID, err)
	}
	return nil
}

// Observe subscribes to notification for this window. context is handed to
// the notification handler.
func (w *Window) Observe(notification ax.Notification, context uintptr) error {
	code := w.api.AddNotification(w.pid, w.Inner(), notification, context)
	if err := ax.Check(code); err != nil {
		return fmt.Errorf("failed to observe %s for window in %s: %w", notification, w.bundleID, err)
	}
	return nil
}

// Close releases the window handle if it is owned.
func (w *Window) Close() {
	if w == nil {
		return
	}
	w.handle.Close()
}

// CloseWindows closes every window in windows.
func CloseWindows(windows []*Window) {
	for _, w := range windows {
		w.Close()
	}
}
