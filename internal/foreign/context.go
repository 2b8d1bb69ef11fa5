package foreign

import "sync"

// Callback context pointers handed to the foreign runtime cannot carry Go
// pointers. Go values are pinned here and the runtime is given the key.
var (
	contextMu sync.RWMutex
	contexts  = make(map[uintptr]any)
	nextID    uintptr = 1
)

// Pin stores v and returns a key that is safe to pass as a context pointer.
// v stays reachable until Unpin is called.
func Pin(v any) uintptr {
	contextMu.Lock()
	defer contextMu.Unlock()
	id := nextID
	nextID++
	contexts[id] = v
	return id
}

// Lookup returns the value pinned under id, or nil.
func Lookup(id uintptr) any {
	contextMu.RLock()
	defer contextMu.RUnlock()
	return contexts[id]
}

// Unpin drops the value pinned under id.
func Unpin(id uintptr) {
	contextMu.Lock()
	defer contextMu.Unlock()
	delete(contexts, id)
}
