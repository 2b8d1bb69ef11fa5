package ax

// Marker types naming the logical kind behind a foreign handle. They are
// only ever used as type parameters of the foreign owners.
type (
	// CFType is any foreign object of unknown kind.
	CFType struct{}
	// CFString is an immutable foreign string.
	CFString struct{}
	// CFArray is an immutable foreign array.
	CFArray struct{}
	// UIElement is an accessibility element: an application or a window.
	UIElement struct{}
	// Value wraps a point or size for attribute writes.
	Value struct{}
	// RunningApplication is a process entry from the workspace.
	RunningApplication struct{}
)

// Code is a status returned by an accessibility call.
type Code int32

// Status codes returned by the accessibility runtime.
const (
	Success                            Code = 0
	ErrorFailure                       Code = -25200
	ErrorIllegalArgument               Code = -25201
	ErrorInvalidUIElement              Code = -25202
	ErrorInvalidUIElementObserver      Code = -25203
	ErrorCannotComplete                Code = -25204
	ErrorAttributeUnsupported          Code = -25205
	ErrorActionUnsupported             Code = -25206
	ErrorNotificationUnsupported       Code = -25207
	ErrorNotImplemented                Code = -25208
	ErrorNotificationAlreadyRegistered Code = -25209
	ErrorNotificationNotRegistered     Code = -25210
	ErrorAPIDisabled                   Code = -25211
	ErrorNoValue                       Code = -25212
	ErrorParameterizedAttrUnsupported  Code = -25213
	ErrorNotEnoughPrecision            Code = -25214
)

// Notification is a kind of event the runtime can deliver for an element.
type Notification string

const (
	WindowMoved   Notification = "AXWindowMoved"
	WindowResized Notification = "AXWindowResized"
)
