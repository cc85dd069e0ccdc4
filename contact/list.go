package contact

import (
	"sort"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/narrowphase"
	"github.com/gekko3d/rigid/pool"
)

type pairKey struct {
	lo, hi uint32
}

// List maps body pairs to their manifolds and owns the contact arena.
type List struct {
	arena     *pool.Arena[Details]
	manifolds map[pairKey]*Manifold
	tick      uint64
}

func NewList() *List {
	return &List{
		arena:     pool.NewArena[Details](256),
		manifolds: make(map[pairKey]*Manifold),
	}
}

func keyOf(a, b *body.Body) pairKey {
	if a.ID < b.ID {
		return pairKey{a.ID, b.ID}
	}
	return pairKey{b.ID, a.ID}
}

// Tick advances the list's clock; manifolds created afterwards are new.
func (l *List) Tick() uint64 {
	l.tick++
	return l.tick
}

func (l *List) CurrentTick() uint64 {
	return l.tick
}

func (l *List) Get(a, b *body.Body) *Manifold {
	return l.manifolds[keyOf(a, b)]
}

// Details resolves a contact handle; ok is false once the contact is gone.
func (l *List) Details(h pool.Handle) (*Details, bool) {
	return l.arena.Get(h)
}

func (l *List) Len() int {
	return len(l.manifolds)
}

// Manifolds returns every manifold ordered by body IDs.
func (l *List) Manifolds() []*Manifold {
	keys := make([]pairKey, 0, len(l.manifolds))
	for k := range l.manifolds {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].lo != keys[j].lo {
			return keys[i].lo < keys[j].lo
		}
		return keys[i].hi < keys[j].hi
	})
	out := make([]*Manifold, len(keys))
	for i, k := range keys {
		out[i] = l.manifolds[k]
	}
	return out
}

// AddContact records a narrowphase contact between a and b, creating the
// manifold if needed.
func (l *List) AddContact(a, b *body.Body, c narrowphase.Contact) bool {
	key := keyOf(a, b)
	m, ok := l.manifolds[key]
	if !ok {
		m = &Manifold{born: l.tick, list: l}
		if a.ID < b.ID {
			m.A, m.B = a, b
		} else {
			m.A, m.B = b, a
		}
		l.manifolds[key] = m
	}
	if m.A != a {
		c = c.Swapped()
	}

	added := m.AddContact(Details{
		BodyA:       m.A,
		BodyB:       m.B,
		Point:       c.Point,
		LocalA:      c.LocalA,
		LocalB:      c.LocalB,
		Normal:      c.Normal,
		Depth:       c.Depth,
		Offset:      c.Offset,
		Restitution: CombineRestitution(m.A, m.B),
		Friction:    CombineFriction(m.A, m.B),
	})
	if len(m.Points) == 0 {
		delete(l.manifolds, key)
	}
	return added
}

// Update refreshes every manifold and removes the empty ones, firing
// endAllContact on both bodies. The removed manifolds are returned in ID
// order.
func (l *List) Update() []*Manifold {
	var ended []*Manifold
	for _, m := range l.Manifolds() {
		m.update()
		if len(m.Points) > 0 {
			continue
		}
		delete(l.manifolds, keyOf(m.A, m.B))
		m.A.NotifyEndAllContact(m.B)
		m.B.NotifyEndAllContact(m.A)
		ended = append(ended, m)
	}
	return ended
}

// RemoveBody destroys every manifold touching b.
func (l *List) RemoveBody(b *body.Body) []*Manifold {
	var ended []*Manifold
	for _, m := range l.Manifolds() {
		if m.A != b && m.B != b {
			continue
		}
		m.release()
		delete(l.manifolds, keyOf(m.A, m.B))
		m.A.NotifyEndAllContact(m.B)
		m.B.NotifyEndAllContact(m.A)
		ended = append(ended, m)
	}
	return ended
}

func (l *List) Clear() {
	for _, m := range l.manifolds {
		m.release()
	}
	clear(l.manifolds)
}
