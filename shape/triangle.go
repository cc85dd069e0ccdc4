package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

type Triangle struct {
	A, B, C mgl64.Vec3
}

func NewTriangle(a, b, c mgl64.Vec3) *Triangle {
	return &Triangle{A: a, B: b, C: c}
}

func (t *Triangle) Kind() Kind { return KindTriangle }

func (t *Triangle) LocalAABB() core.AABB {
	return core.AABBFromPoints(t.A, t.B, t.C)
}

func (t *Triangle) Support(dir mgl64.Vec3) mgl64.Vec3 {
	best := t.A
	bestDot := t.A.Dot(dir)
	if d := t.B.Dot(dir); d > bestDot {
		best, bestDot = t.B, d
	}
	if d := t.C.Dot(dir); d > bestDot {
		best = t.C
	}
	return best
}

func (t *Triangle) Vertices() []mgl64.Vec3 {
	return []mgl64.Vec3{t.A, t.B, t.C}
}

// Normal is the unit face normal following the A, B, C winding.
func (t *Triangle) Normal() (mgl64.Vec3, bool) {
	return core.SafeNormalize(t.B.Sub(t.A).Cross(t.C.Sub(t.A)))
}

func (t *Triangle) Inertia(mass float64) mgl64.Mat3 {
	return boxInertia(mass, t.LocalAABB().HalfExtents())
}

func (t *Triangle) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	return rayTriangle(from, to, t.A, t.B, t.C)
}

// rayTriangle is a two-sided Moller-Trumbore test; the normal faces the ray.
func rayTriangle(from, to, a, b, c mgl64.Vec3) (RayHit, bool) {
	dir := to.Sub(from)
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < core.Epsilon {
		return RayHit{}, false
	}
	inv := 1 / det
	s := from.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return RayHit{}, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return RayHit{}, false
	}
	t := e2.Dot(q) * inv
	if t < 0 || t > 1 {
		return RayHit{}, false
	}
	normal, ok := core.SafeNormalize(e1.Cross(e2))
	if !ok {
		return RayHit{}, false
	}
	if normal.Dot(dir) > 0 {
		normal = normal.Mul(-1)
	}
	return RayHit{Point: from.Add(dir.Mul(t)), Normal: normal, Fraction: t, Feature: -1}, true
}
