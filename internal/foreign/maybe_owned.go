package foreign

// MaybeOwned holds either a counted reference or a handle borrowed from the
// caller. Borrowed handles are typically callback arguments whose lifetime
// the foreign runtime controls; they are valid only for the enclosing call
// and are never released here.
type MaybeOwned[T any] struct {
	owned    *Rc[T]
	borrowed Handle
}

// Owned wraps a reference that Close will release.
func Owned[T any](r *Rc[T]) MaybeOwned[T] {
	return MaybeOwned[T]{owned: r}
}

// Borrowed wraps a handle that Close will leave alone.
func Borrowed[T any](h Handle) MaybeOwned[T] {
	return MaybeOwned[T]{borrowed: h}
}

// Get returns the raw handle regardless of ownership.
func (m MaybeOwned[T]) Get() Handle {
	if m.owned != nil {
		return m.owned.Get()
	}
	return m.borrowed
}

// IsOwned reports whether Close releases the handle.
func (m MaybeOwned[T]) IsOwned() bool {
	return m.owned != nil
}

// Close releases the handle if it is owned.
func (m MaybeOwned[T]) Close() {
	if m.owned != nil {
		m.owned.Close()
	}
}
