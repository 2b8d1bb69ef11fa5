package foreign

import (
	"sync"
	"testing"
)

type marker struct{}

type otherMarker struct{}

// countingRuntime tracks retain counts and records misuse.
type countingRuntime struct {
	mu        sync.Mutex
	counts    map[Handle]int
	releases  int
	overflows []Handle
}

func newCountingRuntime(handles ...Handle) *countingRuntime {
	rt := &countingRuntime{counts: make(map[Handle]int)}
	for _, h := range handles {
		rt.counts[h] = 1
	}
	return rt
}

func (rt *countingRuntime) Retain(h Handle) Handle {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.counts[h]++
	return h
}

func (rt *countingRuntime) Release(h Handle) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.releases++
	if rt.counts[h] <= 0 {
		rt.overflows = append(rt.overflows, h)
		return
	}
	rt.counts[h]--
}

func (rt *countingRuntime) RetainCount(h Handle) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.counts[h]
}

func TestAdoptNullHandle(t *testing.T) {
	rt := newCountingRuntime()

	if u, ok := AdoptUnique[marker](rt, Null); ok || u != nil {
		t.Error("AdoptUnique(Null) should return nothing")
	}
	if r, ok := AdoptRc[marker](rt, Null); ok || r != nil {
		t.Error("AdoptRc(Null) should return nothing")
	}
	if r, ok := BorrowRc[marker](rt, Null); ok || r != nil {
		t.Error("BorrowRc(Null) should return nothing")
	}
	if rt.releases != 0 {
		t.Errorf("releases = %d, want 0", rt.releases)
	}
	if rt.RetainCount(Null) != 0 {
		t.Error("null handle should never be retained")
	}
}

func TestUniqueReleasesOnce(t *testing.T) {
	rt := newCountingRuntime(7)

	u, ok := AdoptUnique[marker](rt, 7)
	if !ok {
		t.Fatal("AdoptUnique returned nothing for a live handle")
	}
	if u.Get() != 7 {
		t.Errorf("Get() = %d, want 7", u.Get())
	}
	if got := rt.RetainCount(7); got != 1 {
		t.Errorf("adopt changed count to %d, want 1", got)
	}

	u.Close()
	u.Close()

	if got := rt.RetainCount(7); got != 0 {
		t.Errorf("count after close = %d, want 0", got)
	}
	if rt.releases != 1 {
		t.Errorf("releases = %d, want 1", rt.releases)
	}
}

func TestRcCloneThenCloseRestoresCount(t *testing.T) {
	rt := newCountingRuntime(3)

	owner, ok := AdoptRc[marker](rt, 3)
	if !ok {
		t.Fatal("AdoptRc returned nothing")
	}

	before := owner.StrongCount()
	clones := make([]*Rc[marker], 5)
	for i := range clones {
		clones[i] = owner.Clone()
	}
	if got := owner.StrongCount(); got != before+5 {
		t.Errorf("count after clones = %d, want %d", got, before+5)
	}

	for _, c := range clones {
		c.Close()
		c.Close()
	}
	if got := owner.StrongCount(); got != before {
		t.Errorf("count after closing clones = %d, want %d", got, before)
	}

	owner.Close()
	if got := rt.RetainCount(3); got != 0 {
		t.Errorf("final count = %d, want 0", got)
	}
	if len(rt.overflows) != 0 {
		t.Errorf("over-released handles: %v", rt.overflows)
	}
}

func TestBorrowRcRetains(t *testing.T) {
	// Handle 9 is owned by some container with a count of one.
	rt := newCountingRuntime(9)

	r, ok := BorrowRc[marker](rt, 9)
	if !ok {
		t.Fatal("BorrowRc returned nothing")
	}
	if got := rt.RetainCount(9); got != 2 {
		t.Errorf("count after borrow = %d, want 2", got)
	}

	r.Close()
	if got := rt.RetainCount(9); got != 1 {
		t.Errorf("count after close = %d, want 1 (container reference)", got)
	}
}

func TestCastMovesReference(t *testing.T) {
	rt := newCountingRuntime(4)
	r, _ := AdoptRc[marker](rt, 4)

	moved := Cast[otherMarker](r)
	if moved == nil {
		t.Fatal("Cast returned nil")
	}
	if moved.Get() != 4 {
		t.Errorf("moved handle = %d, want 4", moved.Get())
	}

	r.Close()
	if got := rt.RetainCount(4); got != 1 {
		t.Errorf("closing the source after a move released it: count = %d", got)
	}
	if again := Cast[otherMarker](r); again != nil {
		t.Error("Cast of a moved reference should return nil")
	}

	moved.Close()
	if got := rt.RetainCount(4); got != 0 {
		t.Errorf("count after closing moved reference = %d, want 0", got)
	}
}

func TestMaybeOwned(t *testing.T) {
	t.Run("borrowed never releases", func(t *testing.T) {
		rt := newCountingRuntime(11)
		m := Borrowed[marker](11)

		if m.IsOwned() {
			t.Error("borrowed handle reported as owned")
		}
		if m.Get() != 11 {
			t.Errorf("Get() = %d, want 11", m.Get())
		}
		m.Close()
		if rt.releases != 0 {
			t.Errorf("releases = %d, want 0", rt.releases)
		}
	})

	t.Run("owned releases once", func(t *testing.T) {
		rt := newCountingRuntime(12)
		r, _ := AdoptRc[marker](rt, 12)
		m := Owned(r)

		if !m.IsOwned() {
			t.Error("owned handle reported as borrowed")
		}
		if m.Get() != 12 {
			t.Errorf("Get() = %d, want 12", m.Get())
		}
		m.Close()
		m.Close()
		if rt.releases != 1 {
			t.Errorf("releases = %d, want 1", rt.releases)
		}
	})
}

func TestConcurrentCloneAndClose(t *testing.T) {
	rt := newCountingRuntime(21)
	owner, _ := AdoptRc[marker](rt, 21)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := owner.Clone()
			defer c.Close()
			_ = c.Get()
		}()
	}
	wg.Wait()

	if got := owner.StrongCount(); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
	owner.Close()
}

func TestPinLookupUnpin(t *testing.T) {
	value := &struct{ name string }{name: "presets"}

	id := Pin(value)
	if id == 0 {
		t.Fatal("Pin returned the zero key")
	}
	if got := Lookup(id); got != value {
		t.Errorf("Lookup returned %v, want pinned value", got)
	}

	other := Pin("second")
	if other == id {
		t.Error("Pin reused a live key")
	}

	Unpin(id)
	if Lookup(id) != nil {
		t.Error("Lookup should return nil after Unpin")
	}
	Unpin(other)
}
