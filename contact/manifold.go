package contact

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/pool"
)

// Manifold holds up to MaxPoints contact points for one body pair. A always
// has the lower body ID.
type Manifold struct {
	A, B   *body.Body
	Points []pool.Handle
	born   uint64
	list   *List
}

func (m *Manifold) Details(h pool.Handle) (*Details, bool) {
	return m.list.arena.Get(h)
}

// Born is the tick the manifold was created on.
func (m *Manifold) Born() uint64 {
	return m.born
}

// Deepest returns the point with the largest depth.
func (m *Manifold) Deepest() (*Details, bool) {
	var best *Details
	for _, h := range m.Points {
		d, ok := m.Details(h)
		if ok && (best == nil || d.Depth > best.Depth) {
			best = d
		}
	}
	return best, best != nil
}

// AddContact merges a new point. Points within MergeDistance of an existing
// point are rejected. A full manifold swaps out the point whose removal keeps
// the largest contact area, never dropping the deepest point.
func (m *Manifold) AddContact(d Details) bool {
	for _, h := range m.Points {
		old, ok := m.Details(h)
		if ok && old.Point.Sub(d.Point).LenSqr() < MergeDistance*MergeDistance {
			return false
		}
	}

	if len(m.Points) < MaxPoints {
		h, slot := m.list.arena.Alloc()
		*slot = d
		m.Points = append(m.Points, h)
	} else {
		victim := m.replacementIndex(d)
		if victim < 0 {
			return false
		}
		m.list.arena.Free(m.Points[victim])
		h, slot := m.list.arena.Alloc()
		*slot = d
		m.Points[victim] = h
	}

	m.A.NotifyContact(body.Contact{Other: m.B, Point: d.Point, Normal: d.Normal, Depth: d.Depth})
	m.B.NotifyContact(body.Contact{Other: m.A, Point: d.Point, Normal: d.Normal.Mul(-1), Depth: d.Depth})
	return true
}

func (m *Manifold) replacementIndex(d Details) int {
	var pts [MaxPoints]mgl64.Vec3
	deepest := -1
	deepestDepth := d.Depth
	for i, h := range m.Points {
		old, ok := m.Details(h)
		if !ok {
			return i
		}
		pts[i] = old.Point
		if old.Depth > deepestDepth {
			deepest, deepestDepth = i, old.Depth
		}
	}

	best := -1
	bestArea := -1.0
	for i := 0; i < MaxPoints; i++ {
		if i == deepest {
			continue
		}
		var quad [4]mgl64.Vec3
		k := 0
		for j := 0; j < MaxPoints; j++ {
			if j != i {
				quad[k] = pts[j]
				k++
			}
		}
		quad[3] = d.Point
		if area := quadArea(quad); area > bestArea {
			best, bestArea = i, area
		}
	}
	return best
}

// quadArea is the largest diagonal cross product over the three ways of
// pairing four points, proportional to the area they span.
func quadArea(p [4]mgl64.Vec3) float64 {
	a := p[0].Sub(p[1]).Cross(p[2].Sub(p[3])).LenSqr()
	b := p[0].Sub(p[2]).Cross(p[1].Sub(p[3])).LenSqr()
	c := p[0].Sub(p[3]).Cross(p[1].Sub(p[2])).LenSqr()
	return max(a, b, c)
}

// update refreshes every point and frees the ones that broke.
func (m *Manifold) update() {
	kept := m.Points[:0]
	for _, h := range m.Points {
		d, ok := m.Details(h)
		if ok && d.Refresh() {
			kept = append(kept, h)
			continue
		}
		m.list.arena.Free(h)
	}
	m.Points = kept
}

func (m *Manifold) release() {
	for _, h := range m.Points {
		m.list.arena.Free(h)
	}
	m.Points = nil
}
