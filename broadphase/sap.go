package broadphase

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/core"
)

type marker struct {
	body  *body.Body
	start bool
	prev  *marker
	next  *marker
}

func (m *marker) value(axis int) float64 {
	box := m.body.AABB()
	if m.start {
		return box.Min[axis]
	}
	return box.Max[axis]
}

type axisList struct {
	axis int
	head *marker
	tail *marker
}

func (l *axisList) pushBack(m *marker) {
	m.prev, m.next = l.tail, nil
	if l.tail != nil {
		l.tail.next = m
	} else {
		l.head = m
	}
	l.tail = m
}

func (l *axisList) unlink(m *marker) {
	if m.prev != nil {
		m.prev.next = m.next
	} else {
		l.head = m.next
	}
	if m.next != nil {
		m.next.prev = m.prev
	} else {
		l.tail = m.prev
	}
	m.prev, m.next = nil, nil
}

// less orders markers by coordinate; on ties a start sorts before an end so
// touching intervals count as overlapping.
func (l *axisList) less(a, b *marker) bool {
	va, vb := a.value(l.axis), b.value(l.axis)
	if va != vb {
		return va < vb
	}
	return a.start && !b.start
}

// SAP is an incremental sweep-and-prune over three axis-sorted marker lists.
// Each body owns a start and end marker per axis. The lists are kept sorted
// by insertion sort, and every swap of a start past another body's end (or
// back) adjusts an overlap counter for that pair. A pair overlapping on all
// three axes is a candidate.
type SAP struct {
	lists      [3]axisList
	markers    map[uint32][6]*marker
	pending    []*body.Body
	counters   map[pairKey]int
	candidates map[pairKey]Pair
}

func NewSAP() *SAP {
	s := &SAP{
		markers:    make(map[uint32][6]*marker),
		counters:   make(map[pairKey]int),
		candidates: make(map[pairKey]Pair),
	}
	for axis := range s.lists {
		s.lists[axis].axis = axis
	}
	return s
}

// AddBody queues b; its markers are inserted on the next Update.
func (s *SAP) AddBody(b *body.Body) {
	s.pending = append(s.pending, b)
}

func (s *SAP) RemoveBody(b *body.Body) {
	for i, p := range s.pending {
		if p == b {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
	ms, ok := s.markers[b.ID]
	if !ok {
		return
	}
	for i, m := range ms {
		s.lists[i/2].unlink(m)
	}
	delete(s.markers, b.ID)
	for key := range s.counters {
		if key.lo == b.ID || key.hi == b.ID {
			delete(s.counters, key)
			delete(s.candidates, key)
		}
	}
}

func (s *SAP) Update() {
	for _, b := range s.pending {
		var ms [6]*marker
		for axis := 0; axis < 3; axis++ {
			ms[2*axis] = &marker{body: b, start: true}
			ms[2*axis+1] = &marker{body: b, start: false}
			s.lists[axis].pushBack(ms[2*axis])
			s.lists[axis].pushBack(ms[2*axis+1])
		}
		s.markers[b.ID] = ms
	}
	s.pending = s.pending[:0]

	for axis := range s.lists {
		s.sortAxis(&s.lists[axis])
	}
}

func (s *SAP) sortAxis(l *axisList) {
	for m := l.head; m != nil; {
		next := m.next
		for m.prev != nil && l.less(m, m.prev) {
			s.swapped(m, m.prev)
			l.moveBefore(m, m.prev)
		}
		m = next
	}
}

// moveBefore swaps m with its predecessor p.
func (l *axisList) moveBefore(m, p *marker) {
	a, c := p.prev, m.next
	if a != nil {
		a.next = m
	} else {
		l.head = m
	}
	m.prev, m.next = a, p
	p.prev, p.next = m, c
	if c != nil {
		c.prev = p
	} else {
		l.tail = p
	}
}

// swapped records that m moved left past p.
func (s *SAP) swapped(m, p *marker) {
	if m.body == p.body || m.start == p.start {
		return
	}
	key := keyOf(m.body, p.body)
	if m.start {
		s.counters[key]++
		if s.counters[key] == 3 {
			s.candidates[key] = makePair(m.body, p.body)
		}
		return
	}
	s.counters[key]--
	if s.counters[key] == 2 {
		delete(s.candidates, key)
	}
	if s.counters[key] <= 0 {
		delete(s.counters, key)
	}
}

func (s *SAP) CollisionPairs() []Pair {
	pairs := make([]Pair, 0, len(s.candidates))
	for _, p := range s.candidates {
		if CanCollide(p.A, p.B) {
			pairs = append(pairs, p)
		}
	}
	sortPairs(pairs)
	return pairs
}

// sweepX collects bodies whose x interval overlaps [lo, hi], walking the x
// list until the first start marker past hi.
func (s *SAP) sweepX(lo, hi float64, fn func(b *body.Body)) {
	active := make(map[uint32]*body.Body)
	for m := s.lists[0].head; m != nil; m = m.next {
		v := m.value(0)
		if m.start {
			if v > hi {
				break
			}
			active[m.body.ID] = m.body
			continue
		}
		delete(active, m.body.ID)
		if v >= lo {
			fn(m.body)
		}
	}
	for _, b := range active {
		fn(b)
	}
	for _, b := range s.pending {
		box := b.AABB()
		if box.Max.X() >= lo && box.Min.X() <= hi {
			fn(b)
		}
	}
}

func (s *SAP) RayIntersect(from, to mgl64.Vec3) []*body.Body {
	var out []*body.Body
	lo, hi := min(from.X(), to.X()), max(from.X(), to.X())
	s.sweepX(lo, hi, func(b *body.Body) {
		if rayHitsAABB(b, from, to) {
			out = append(out, b)
		}
	})
	sortBodies(out)
	return out
}

func (s *SAP) QueryAABB(box core.AABB) []*body.Body {
	var out []*body.Body
	s.sweepX(box.Min.X(), box.Max.X(), func(b *body.Body) {
		if b.AABB().Overlaps(box) {
			out = append(out, b)
		}
	})
	sortBodies(out)
	return out
}
