// Package broadphase finds candidate body pairs whose world AABBs overlap.
package broadphase

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/core"
)

// Pair is ordered so that A.ID < B.ID.
type Pair struct {
	A, B *body.Body
}

type Broadphase interface {
	AddBody(b *body.Body)
	RemoveBody(b *body.Body)
	// Update refreshes the structure from the bodies' current AABBs.
	Update()
	// CollisionPairs returns filtered candidate pairs sorted by body ID.
	CollisionPairs() []Pair
	// RayIntersect returns bodies whose AABB the segment crosses, by ID.
	RayIntersect(from, to mgl64.Vec3) []*body.Body
	// QueryAABB returns bodies whose AABB overlaps box, by ID.
	QueryAABB(box core.AABB) []*body.Body
}

type pairKey struct {
	lo, hi uint32
}

func keyOf(a, b *body.Body) pairKey {
	if a.ID < b.ID {
		return pairKey{a.ID, b.ID}
	}
	return pairKey{b.ID, a.ID}
}

func makePair(a, b *body.Body) Pair {
	if b.ID < a.ID {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A.ID != pairs[j].A.ID {
			return pairs[i].A.ID < pairs[j].A.ID
		}
		return pairs[i].B.ID < pairs[j].B.ID
	})
}

func sortBodies(bodies []*body.Body) {
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].ID < bodies[j].ID })
}

// CanCollide applies the pair filter. Two static bodies never collide. A
// non-zero mask filters the other body's group: with bit 0 clear the mask is
// a whitelist (some group bit must match), with bit 0 set it is a blacklist
// (no group bit may match). Both bodies' masks must accept the pair.
func CanCollide(a, b *body.Body) bool {
	if a == b {
		return false
	}
	if a.IsStatic() && b.IsStatic() {
		return false
	}
	return accepts(a, b) && accepts(b, a)
}

func accepts(a, b *body.Body) bool {
	if a.Mask == 0 {
		return true
	}
	bits := a.Mask &^ 1
	if a.Mask&1 == 0 {
		return b.Group&bits != 0
	}
	return b.Group&bits == 0
}

func rayHitsAABB(b *body.Body, from, to mgl64.Vec3) bool {
	_, ok := b.AABB().RayIntersect(from, to)
	return ok
}
