package ax

import (
	"errors"
	"fmt"
)

var (
	// ErrCouldNotCreateForeignObject is returned when a foreign allocation
	// or creation call returns null.
	ErrCouldNotCreateForeignObject = errors.New("failed to create or copy foreign object")

	// ErrUnexpectedNull is returned when a foreign accessor returns null
	// where a value is required.
	ErrUnexpectedNull = errors.New("foreign object was unexpectedly null")
)

// AXError is a non-success status from an accessibility call.
type AXError struct {
	Code Code
}

func (e *AXError) Error() string {
	if discussion, ok := e.Discussion(); ok {
		return fmt.Sprintf("accessibility API error %d: %s", e.Code, discussion)
	}
	return fmt.Sprintf("accessibility API error %d", e.Code)
}

// Discussion returns the documented meaning of the code, if known.
func (e *AXError) Discussion() (string, bool) {
	d, ok := discussions[e.Code]
	return d, ok
}

// Check classifies a status code: Success maps to nil, anything else to an
// *AXError.
func Check(code Code) error {
	if code == Success {
		return nil
	}
	return &AXError{Code: code}
}

// IsCode reports whether err wraps an *AXError with the given code.
func IsCode(err error, code Code) bool {
	var axErr *AXError
	return errors.As(err, &axErr) && axErr.Code == code
}

var discussions = map[Code]string{
	ErrorFailure:                       "a system error occurred, such as the failure to allocate an object",
	ErrorIllegalArgument:               "an illegal argument was passed to the function",
	ErrorInvalidUIElement:              "the element passed to the function is invalid",
	ErrorInvalidUIElementObserver:      "the observer passed to the function is not a valid observer",
	ErrorCannotComplete:                "messaging failed or the application is busy or unresponsive",
	ErrorAttributeUnsupported:          "the attribute is not supported by the element",
	ErrorActionUnsupported:             "the action is not supported by the element",
	ErrorNotificationUnsupported:       "the notification is not supported by the element",
	ErrorNotImplemented:                "the process does not support the accessibility API",
	ErrorNotificationAlreadyRegistered: "this notification has already been registered for",
	ErrorNotificationNotRegistered:     "the notification is not registered yet",
	ErrorAPIDisabled:                   "the accessibility API is disabled",
	ErrorNoValue:                       "the requested value or element does not exist",
	ErrorParameterizedAttrUnsupported:  "the parameterized attribute is not supported by the element",
	ErrorNotEnoughPrecision:            "not enough precision",
}
