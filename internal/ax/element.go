package ax

import (
	"fmt"

	"github.com/yourusername/wise/internal/foreign"
)

// Key names an attribute readable or writable through an Element.
type Key int

const (
	KeyPosition Key = iota
	KeySize
	KeyWindows
	KeyFocusedWindow
)

// Attribute returns the foreign attribute name for k.
func (k Key) Attribute() string {
	switch k {
	case KeyPosition:
		return "AXPosition"
	case KeySize:
		return "AXSize"
	case KeyWindows:
		return "AXWindows"
	case KeyFocusedWindow:
		return "AXFocusedWindow"
	default:
		return ""
	}
}

func (k Key) String() string {
	switch k {
	case KeyPosition:
		return "position"
	case KeySize:
		return "size"
	case KeyWindows:
		return "windows"
	case KeyFocusedWindow:
		return "focused window"
	default:
		return "unknown"
	}
}

// Element is anything backed by an accessibility element handle. The handle
// returned by Inner is only valid while the element is open.
type Element interface {
	Inner() foreign.Handle
}

func attributeName(api API, key Key) (*foreign.Unique[CFString], error) {
	name := key.Attribute()
	if name == "" {
		return nil, fmt.Errorf("unknown attribute key %d: %w", int(key), ErrCouldNotCreateForeignObject)
	}
	u, ok := foreign.AdoptUnique[CFString](api, api.CreateString(name))
	if !ok {
		return nil, ErrCouldNotCreateForeignObject
	}
	return u, nil
}

// Copy reads an attribute of e. Every failure code, kAXErrorNoValue
// included, is returned as an *AXError; a null value after success is
// reported as ErrUnexpectedNull.
func Copy(api API, e Element, key Key) (*foreign.Rc[CFType], error) {
	name, err := attributeName(api, key)
	if err != nil {
		return nil, fmt.Errorf("failed to construct string from accessibility key: %w", err)
	}
	defer name.Close()

	value, code := api.CopyAttributeValue(e.Inner(), name.Get())
	if err := Check(code); err != nil {
		return nil, err
	}
	rc, ok := foreign.AdoptRc[CFType](api, value)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrUnexpectedNull)
	}
	return rc, nil
}

func CopyOptional(api API, e Element, key Key) (*foreign.Rc[CFType], bool, error) {
	name, err := attributeName(api, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to construct string from accessibility key: %w", err)
	}
	defer name.Close()

	value, code := api.CopyAttributeValue(e.Inner(), name.Get())
	if code == ErrorNoValue {
		return nil, false, nil
	}
	if err := Check(code); err != nil {
		return nil, false, err
	}

	rc, ok := foreign.AdoptRc[CFType](api, value)
	return rc, ok, nil
}

// Set writes an attribute of e.
func Set(api API, e Element, key Key, value foreign.Handle) error {
	name, err := attributeName(api, key)
	if err != nil {
		return fmt.Errorf("failed to construct string from accessibility key: %w", err)
	}
	defer name.Close()

	return Check(api.SetAttributeValue(e.Inner(), name.Get(), value))
}
