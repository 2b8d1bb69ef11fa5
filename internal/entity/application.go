// Package entity provides typed application and window handles on top of
// the accessibility runtime.
package entity

import (
	"fmt"

	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/foreign"
)

// Application is a running application and its accessibility element.
type Application struct {
	api      ax.API
	running  foreign.MaybeOwned[ax.RunningApplication]
	element  *foreign.Rc[ax.UIElement]
	pid      int
	bundleID string
}

var _ ax.Element = (*Application)(nil)

// ApplicationFromHandle wraps a running application. If bundleID is empty
// it is read from the running application. The application takes over
// running and closes it on error.
func ApplicationFromHandle(api ax.API, running foreign.MaybeOwned[ax.RunningApplication], bundleID string) (*Application, error) {
	pid := api.ProcessIdentifier(running.Get())

	element, ok := foreign.AdoptRc[ax.UIElement](api, api.CreateApplication(pid))
	if !ok {
		running.Close()
		return nil, fmt.Errorf("failed to create accessibility element for pid %d: %w", pid, ax.ErrCouldNotCreateForeignObject)
	}

	if bundleID == "" {
		id, err := bundleIdentifier(api, running.Get())
		if err != nil {
			element.Close()
			running.Close()
			return nil, fmt.Errorf("failed to read bundle identifier of pid %d: %w", pid, err)
		}
		bundleID = id
	}

	return &Application{
		api:      api,
		running:  running,
		element:  element,
		pid:      pid,
		bundleID: bundleID,
	}, nil
}

func bundleIdentifier(api ax.API, running foreign.Handle) (string, error) {
	h := api.BundleIdentifier(running)
	if h.IsNull() {
		return "", ax.ErrUnexpectedNull
	}
	id, ok := api.StringValue(h)
	if !ok {
		return "", ax.ErrUnexpectedNull
	}
	return id, nil
}

// Inner implements ax.Element.
func (a *Application) Inner() foreign.Handle {
	return a.element.Get()
}

// PID returns the process identifier.
func (a *Application) PID() int {
	return a.pid
}

// BundleID returns the bundle identifier.
func (a *Application) BundleID() string {
	return a.bundleID
}

// Windows returns every window of the application. The caller closes each.
func (a *Application) Windows() ([]*Window, error) {
	value, err := ax.Copy(a.api, a, ax.KeyWindows)
	if err != nil {
		return nil, fmt.Errorf("failed to get accessibility elements for %s windows: %w", a.bundleID, err)
	}
	array := foreign.Cast[ax.CFArray](value)
	defer array.Close()

	count := a.api.ArrayCount(array.Get())
	windows := make([]*Window, 0, count)
	for i := 0; i < count; i++ {
		// Items belong to the array, so each window takes its own reference.
		element, ok := foreign.BorrowRc[ax.UIElement](a.api, a.api.ArrayValueAt(array.Get(), i))
		if !ok {
			CloseWindows(windows)
			return nil, fmt.Errorf("window %d of %s: %w", i, a.bundleID, ax.ErrUnexpectedNull)
		}
		windows = append(windows, &Window{
			api:      a.api,
			handle:   foreign.Owned(element),
			pid:      a.pid,
			bundleID: a.bundleID,
		})
	}
	return windows, nil
}

// FocusedWindow returns the focused window, or false if the application has
// none, as with Finder when no Finder window is open.
func (a *Application) FocusedWindow() (*Window, bool, error) {
	value, ok, err := ax.CopyOptional(a.api, a, ax.KeyFocusedWindow)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get focused window of %s: %w", a.bundleID, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Window{
		api:      a.api,
		handle:   foreign.Owned(foreign.Cast[ax.UIElement](value)),
		pid:      a.pid,
		bundleID: a.bundleID,
	}, true, nil
}

// Close releases the application handles.
func (a *Application) Close() {
	if a == nil {
		return
	}
	a.element.Close()
	a.running.Close()
}

// CloseApplications closes every application in apps.
func CloseApplications(apps []*Application) {
	for _, app := range apps {
		app.Close()
	}
}
