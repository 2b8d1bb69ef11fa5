package foreign

import "sync/atomic"

// Unique owns the single reference to a foreign object. It must not be
// copied; pass *Unique around instead.
type Unique[T any] struct {
	rt       Runtime
	handle   Handle
	released atomic.Bool
}

// AdoptUnique takes ownership of a freshly created handle whose only
// reference belongs to the caller. It returns false for a null handle and
// never releases it.
func AdoptUnique[T any](rt Runtime, h Handle) (*Unique[T], bool) {
	if h.IsNull() {
		return nil, false
	}
	return &Unique[T]{rt: rt, handle: h}, true
}

// Get returns the raw handle for a foreign call. The handle must not outlive
// u and must not be released by the caller.
func (u *Unique[T]) Get() Handle {
	return u.handle
}

// Close releases the handle. Only the first call has an effect.
func (u *Unique[T]) Close() {
	if u == nil {
		return
	}
	if u.released.CompareAndSwap(false, true) {
		u.rt.Release(u.handle)
	}
}
