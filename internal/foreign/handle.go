// Package foreign wraps handles to objects whose lifetime is managed by an
// external reference-counting runtime.
//
// Three owners exist and no other code touches retain counts:
//
//   - Unique: the only reference to a freshly created object.
//   - Rc: one counted reference; Clone retains, Close releases.
//   - MaybeOwned: either an Rc or a handle borrowed for the current scope.
//
// Go has no destructors, so every owner must be closed explicitly, usually
// with defer. Closing an owner more than once is a no-op.
package foreign

// Handle is an opaque reference into the foreign runtime. It is never
// dereferenced, only passed back to the runtime.
type Handle uintptr

// Null is the null handle.
const Null Handle = 0

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool {
	return h == Null
}

// Runtime is the reference-counting half of the foreign API.
type Runtime interface {
	// Retain increments the external count of h and returns h.
	Retain(h Handle) Handle
	// Release decrements the external count of h. The object is destroyed
	// when the count reaches zero.
	Release(h Handle)
	// RetainCount returns the current external count of h.
	RetainCount(h Handle) int
}
