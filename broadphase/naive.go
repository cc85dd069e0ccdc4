package broadphase

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/core"
)

// Naive tests every pair. It is the reference the other broadphases are
// checked against and is fine for small scenes.
type Naive struct {
	bodies []*body.Body
}

func NewNaive() *Naive {
	return &Naive{}
}

func (n *Naive) AddBody(b *body.Body) {
	n.bodies = append(n.bodies, b)
}

func (n *Naive) RemoveBody(b *body.Body) {
	for i, other := range n.bodies {
		if other == b {
			n.bodies = append(n.bodies[:i], n.bodies[i+1:]...)
			return
		}
	}
}

func (n *Naive) Update() {}

func (n *Naive) CollisionPairs() []Pair {
	var pairs []Pair
	for i, a := range n.bodies {
		for _, b := range n.bodies[i+1:] {
			if CanCollide(a, b) && a.AABB().Overlaps(b.AABB()) {
				pairs = append(pairs, makePair(a, b))
			}
		}
	}
	sortPairs(pairs)
	return pairs
}

func (n *Naive) RayIntersect(from, to mgl64.Vec3) []*body.Body {
	var out []*body.Body
	for _, b := range n.bodies {
		if rayHitsAABB(b, from, to) {
			out = append(out, b)
		}
	}
	sortBodies(out)
	return out
}

func (n *Naive) QueryAABB(box core.AABB) []*body.Body {
	var out []*body.Body
	for _, b := range n.bodies {
		if b.AABB().Overlaps(box) {
			out = append(out, b)
		}
	}
	sortBodies(out)
	return out
}
