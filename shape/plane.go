package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

// Plane is a finite, two-sided rectangle in the local XZ plane with its
// normal along +Y.
type Plane struct {
	HalfWidth  float64
	HalfLength float64
	corners    [4]mgl64.Vec3
}

func NewPlane(halfWidth, halfLength float64) *Plane {
	return &Plane{
		HalfWidth:  halfWidth,
		HalfLength: halfLength,
		corners: [4]mgl64.Vec3{
			{halfWidth, 0, halfLength},
			{-halfWidth, 0, halfLength},
			{-halfWidth, 0, -halfLength},
			{halfWidth, 0, -halfLength},
		},
	}
}

func (p *Plane) Kind() Kind { return KindPlane }

func (p *Plane) Normal() mgl64.Vec3 { return mgl64.Vec3{0, 1, 0} }

func (p *Plane) LocalAABB() core.AABB {
	e := mgl64.Vec3{p.HalfWidth, 0, p.HalfLength}
	return core.AABB{Min: e.Mul(-1), Max: e}
}

func (p *Plane) Support(dir mgl64.Vec3) mgl64.Vec3 {
	s := mgl64.Vec3{p.HalfWidth, 0, p.HalfLength}
	if dir.X() < 0 {
		s[0] = -s[0]
	}
	if dir.Z() < 0 {
		s[2] = -s[2]
	}
	return s
}

func (p *Plane) Vertices() []mgl64.Vec3 {
	return p.corners[:]
}

// Contains reports whether the local point projects inside the rectangle.
func (p *Plane) Contains(local mgl64.Vec3) bool {
	return math.Abs(local.X()) <= p.HalfWidth && math.Abs(local.Z()) <= p.HalfLength
}

func (p *Plane) Inertia(mass float64) mgl64.Mat3 {
	return boxInertia(mass, mgl64.Vec3{p.HalfWidth, 0, p.HalfLength})
}

func (p *Plane) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	dir := to.Sub(from)
	if math.Abs(dir.Y()) < core.Epsilon {
		return RayHit{}, false
	}
	t := -from.Y() / dir.Y()
	if t < 0 || t > 1 {
		return RayHit{}, false
	}
	hit := from.Add(dir.Mul(t))
	if !p.Contains(hit) {
		return RayHit{}, false
	}
	normal := mgl64.Vec3{0, 1, 0}
	if dir.Y() > 0 {
		normal = mgl64.Vec3{0, -1, 0}
	}
	return RayHit{Point: hit, Normal: normal, Fraction: t, Feature: -1}, true
}
