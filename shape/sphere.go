package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

type Sphere struct {
	Radius float64
}

func NewSphere(radius float64) *Sphere {
	return &Sphere{Radius: radius}
}

func (s *Sphere) Kind() Kind { return KindSphere }

func (s *Sphere) LocalAABB() core.AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return core.AABB{Min: r.Mul(-1), Max: r}
}

func (s *Sphere) Support(dir mgl64.Vec3) mgl64.Vec3 {
	n, ok := core.SafeNormalize(dir)
	if !ok {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return n.Mul(s.Radius)
}

func (s *Sphere) Inertia(mass float64) mgl64.Mat3 {
	i := 0.4 * mass * s.Radius * s.Radius
	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

func (s *Sphere) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	dir := to.Sub(from)
	a := dir.Dot(dir)
	c := from.Dot(from) - s.Radius*s.Radius
	if c <= 0 {
		normal, _ := core.SafeNormalize(dir.Mul(-1))
		return RayHit{Point: from, Normal: normal, Fraction: 0, Feature: -1}, true
	}
	if a < core.Epsilon {
		return RayHit{}, false
	}
	b := from.Dot(dir)
	disc := b*b - a*c
	if disc < 0 {
		return RayHit{}, false
	}
	t := (-b - math.Sqrt(disc)) / a
	if t < 0 || t > 1 {
		return RayHit{}, false
	}
	p := from.Add(dir.Mul(t))
	return RayHit{Point: p, Normal: p.Mul(1 / s.Radius), Fraction: t, Feature: -1}, true
}
