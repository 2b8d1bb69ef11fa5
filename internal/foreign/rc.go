package foreign

import "sync/atomic"

// Rc is one counted reference to a foreign object of logical type T. T is a
// marker type and is never instantiated; it keeps handles of unrelated kinds
// from being mixed up at compile time.
//
// Each *Rc accounts for exactly one retain. The object stays valid while at
// least one Rc referring to it is open.
type Rc[T any] struct {
	rt       Runtime
	handle   Handle
	released atomic.Bool
}

// AdoptRc takes ownership of an existing reference without retaining it,
// typically the result of a Create or Copy call. It returns false for a
// null handle.
func AdoptRc[T any](rt Runtime, h Handle) (*Rc[T], bool) {
	if h.IsNull() {
		return nil, false
	}
	return &Rc[T]{rt: rt, handle: h}, true
}

// BorrowRc retains a handle that is already owned elsewhere, such as an
// element of a foreign array, and returns an independent reference to it.
// It returns false for a null handle without retaining anything.
func BorrowRc[T any](rt Runtime, h Handle) (*Rc[T], bool) {
	if h.IsNull() {
		return nil, false
	}
	return &Rc[T]{rt: rt, handle: rt.Retain(h)}, true
}

// Get returns the raw handle for a foreign call. The handle must not outlive
// r and must not be released by the caller.
func (r *Rc[T]) Get() Handle {
	return r.handle
}

// Clone returns a new reference to the same object.
func (r *Rc[T]) Clone() *Rc[T] {
	return &Rc[T]{rt: r.rt, handle: r.rt.Retain(r.handle)}
}

// StrongCount returns the external count of the object.
func (r *Rc[T]) StrongCount() int {
	return r.rt.RetainCount(r.handle)
}

// Close releases this reference. Only the first call has an effect.
func (r *Rc[T]) Close() {
	if r == nil {
		return
	}
	if r.released.CompareAndSwap(false, true) {
		r.rt.Release(r.handle)
	}
}

// Cast moves the reference held by r into an Rc of logical type U. r is
// left closed without releasing anything. Cast returns nil if r was already
// closed.
func Cast[U, T any](r *Rc[T]) *Rc[U] {
	if r == nil || !r.released.CompareAndSwap(false, true) {
		return nil
	}
	return &Rc[U]{rt: r.rt, handle: r.handle}
}
