// Package pool provides typed arenas for hot, short-lived simulation objects.
//
// Objects are addressed by Handle rather than by pointer. A handle carries the
// generation of the slot it was issued for, so a stale handle (one whose slot
// has been freed, and possibly reused) is detected instead of silently aliasing
// another object. Arenas are not safe for concurrent use.
package pool

// Handle addresses one live slot of an Arena. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) IsZero() bool {
	return h.gen == 0
}

type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{slots: make([]slot[T], 0, capacity)}
}

// Alloc returns a handle to a zeroed slot and a pointer for initialisation.
// The pointer stays valid until the slot is freed or the arena grows; callers
// keep the handle, not the pointer.
func (a *Arena[T]) Alloc() (Handle, *T) {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		idx = uint32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	var zero T
	s.value = zero
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true
	a.live++
	return Handle{index: idx, gen: s.gen}, &s.value
}

// Get resolves h, reporting false for stale or foreign handles.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if h.gen == 0 || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return &s.value, true
}

// Free releases the slot. Freeing a stale handle is a no-op that returns false,
// so double frees cannot corrupt the free list.
func (a *Arena[T]) Free(h Handle) bool {
	if _, ok := a.Get(h); !ok {
		return false
	}
	s := &a.slots[h.index]
	var zero T
	s.value = zero
	s.live = false
	a.free = append(a.free, h.index)
	a.live--
	return true
}

func (a *Arena[T]) Len() int {
	return a.live
}

// Each visits live slots in index order until fn returns false.
func (a *Arena[T]) Each(fn func(Handle, *T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		if !fn(Handle{index: uint32(i), gen: s.gen}, &s.value) {
			return
		}
	}
}
