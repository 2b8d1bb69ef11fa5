package entity

import (
	"fmt"

	"github.com/yourusername/wise/internal/ax"
	"github.com/yourusername/wise/internal/foreign"
)

// HasAccessibilityPermission reports whether the process is trusted to use
// the accessibility API. With prompt set the system asks the user to grant
// access if it has not been granted yet.
func HasAccessibilityPermission(api ax.API, prompt bool) (bool, error) {
	trusted, ok := api.IsProcessTrusted(prompt)
	if !ok {
		return false, fmt.Errorf("failed to create trust check options: %w", ax.ErrCouldNotCreateForeignObject)
	}
	return trusted, nil
}

// RunningApplications returns every running application with bundleID.
// The caller closes each.
func RunningApplications(api ax.API, bundleID string) ([]*Application, error) {
	name, ok := foreign.AdoptUnique[ax.CFString](api, api.CreateString(bundleID))
	if !ok {
		return nil, fmt.Errorf("failed to create string for %s: %w", bundleID, ax.ErrCouldNotCreateForeignObject)
	}
	defer name.Close()

	array, ok := foreign.AdoptRc[ax.CFArray](api, api.RunningApplications(name.Get()))
	if !ok {
		return nil, fmt.Errorf("running applications with %s: %w", bundleID, ax.ErrUnexpectedNull)
	}
	defer array.Close()

	count := api.ArrayCount(array.Get())
	apps := make([]*Application, 0, count)
	for i := 0; i < count; i++ {
		running, ok := foreign.BorrowRc[ax.RunningApplication](api, api.ArrayValueAt(array.Get(), i))
		if !ok {
			CloseApplications(apps)
			return nil, fmt.Errorf("running application %d with %s: %w", i, bundleID, ax.ErrUnexpectedNull)
		}
		app, err := ApplicationFromHandle(api, foreign.Owned(running), bundleID)
		if err != nil {
			CloseApplications(apps)
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// FrontmostApplication returns the application receiving key events, or
// false if there is none.
func FrontmostApplication(api ax.API) (*Application, bool, error) {
	running, ok := foreign.AdoptRc[ax.RunningApplication](api, api.FrontmostApplication())
	if !ok {
		return nil, false, nil
	}
	app, err := ApplicationFromHandle(api, foreign.Owned(running), "")
	if err != nil {
		return nil, false, err
	}
	return app, true, nil
}
