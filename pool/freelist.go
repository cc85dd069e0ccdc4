package pool

// FreeList recycles objects of one type by pointer. Unlike an Arena it hands
// out stable pointers, so it suits objects that are referenced directly while
// live. Get does not clear a recycled object; callers reinitialise it and can
// reuse whatever slices it still holds.
type FreeList[T any] struct {
	free []*T
}

func NewFreeList[T any]() *FreeList[T] {
	return &FreeList[T]{}
}

// Get pops a recycled object, or allocates one when the list is empty.
func (l *FreeList[T]) Get() *T {
	n := len(l.free)
	if n == 0 {
		return new(T)
	}
	p := l.free[n-1]
	l.free[n-1] = nil
	l.free = l.free[:n-1]
	return p
}

// Put returns p to the list. p must not be used by the caller afterwards.
func (l *FreeList[T]) Put(p *T) {
	if p != nil {
		l.free = append(l.free, p)
	}
}

// Idle is the number of objects waiting for reuse.
func (l *FreeList[T]) Idle() int {
	return len(l.free)
}
