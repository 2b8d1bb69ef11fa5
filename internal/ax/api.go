// Package ax is the boundary to the accessibility runtime: the foreign API
// the rest of the program calls through, its error taxonomy, and typed
// attribute access shared by every element kind.
package ax

import (
	"github.com/yourusername/wise/internal/foreign"
	"github.com/yourusername/wise/internal/types"
)

// NotificationHandler receives notifications registered with
// API.AddNotification. element is borrowed for the duration of the call.
type NotificationHandler func(element foreign.Handle, notification Notification, context uintptr)

// API is the accessibility runtime. Handles returned by Create and Copy
// calls carry a reference the caller owns; handles returned by Get-style
// calls (ArrayValueAt, BundleIdentifier) do not.
//
// Only package foreign may call the Runtime methods.
type API interface {
	foreign.Runtime

	// CreateString returns a new string, or Null.
	CreateString(s string) foreign.Handle
	// StringValue reads a string handle.
	StringValue(h foreign.Handle) (string, bool)

	// ArrayCount returns the length of an array handle.
	ArrayCount(array foreign.Handle) int
	// ArrayValueAt returns an element the array still owns.
	ArrayValueAt(array foreign.Handle, index int) foreign.Handle

	// CopyAttributeValue copies an attribute of element. The value may be
	// Null on success.
	CopyAttributeValue(element, attribute foreign.Handle) (foreign.Handle, Code)
	// SetAttributeValue writes an attribute of element.
	SetAttributeValue(element, attribute, value foreign.Handle) Code

	// CreateApplication returns the application element for pid, or Null.
	CreateApplication(pid int) foreign.Handle
	// ElementPID returns the process owning element.
	ElementPID(element foreign.Handle) (int, Code)
	// WindowNumber returns the window server identifier of a window element.
	WindowNumber(element foreign.Handle) (uint32, Code)

	// CreatePointValue and CreateSizeValue wrap geometry for attribute writes.
	CreatePointValue(p types.Point) foreign.Handle
	CreateSizeValue(s types.Size) foreign.Handle

	// RunningApplications returns an array of running applications with
	// the given bundle identifier string handle.
	RunningApplications(bundleID foreign.Handle) foreign.Handle
	// RunningApplicationForPID returns the running application for pid.
	RunningApplicationForPID(pid int) foreign.Handle
	// FrontmostApplication returns the application receiving key events.
	FrontmostApplication() foreign.Handle
	// ProcessIdentifier returns the pid of a running application.
	ProcessIdentifier(app foreign.Handle) int
	// BundleIdentifier returns the bundle identifier of a running
	// application, owned by the application. It may be Null.
	BundleIdentifier(app foreign.Handle) foreign.Handle

	// MainScreenFrame returns the frame of the primary screen.
	MainScreenFrame() (types.Rect, bool)
	// IsProcessTrusted reports whether this process may use the
	// accessibility API, optionally asking the system to prompt the user.
	// ok is false when the options for the check could not be created.
	IsProcessTrusted(prompt bool) (trusted, ok bool)

	// AddNotification subscribes to notification on element of process pid.
	// context is handed back to the handler untouched.
	AddNotification(pid int, element foreign.Handle, notification Notification, context uintptr) Code
	// SetNotificationHandler installs the function notifications are
	// delivered to.
	SetNotificationHandler(handler NotificationHandler)
}
