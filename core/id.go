package core

// IDAllocator hands out increasing non-zero ids. Each World owns one so
// separate simulations never share counters.
type IDAllocator struct {
	next uint32
}

func (a *IDAllocator) Next() uint32 {
	a.next++
	return a.next
}

func (a *IDAllocator) Reset() {
	a.next = 0
}
