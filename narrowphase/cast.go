package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/shape"
)

// RayCast intersects a world segment with a placed shape. The hit is
// returned in world space.
func RayCast(p Proxy, from, to mgl64.Vec3) (shape.RayHit, bool) {
	hit, ok := p.Shape.RayIntersect(p.Transform.ApplyInverse(from), p.Transform.ApplyInverse(to))
	if !ok {
		return shape.RayHit{}, false
	}
	hit.Point = p.Transform.Apply(hit.Point)
	hit.Normal = p.Transform.Rotate(hit.Normal)
	return hit, true
}

// CastHit is the first touch of a shape moved along a segment.
type CastHit struct {
	// Fraction of the motion at first contact, in [0, 1].
	Fraction float64
	// Point and Normal are in world space; Normal points from the target
	// toward the moving shape.
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// sweptDifference is the Minkowski difference target - moving, whose ray
// cast from the origin along the motion gives the time of impact.
type sweptDifference struct {
	target, moving Proxy
}

func (s sweptDifference) Support(dir mgl64.Vec3) mgl64.Vec3 {
	return s.target.Support(dir).Sub(s.moving.Support(dir.Mul(-1)))
}

// ShapeCast moves the convex proxy `moving` by translation and reports the
// first time it touches target. Compound and mesh targets are searched
// piecewise; the moving shape must be convex.
func ShapeCast(moving Proxy, translation mgl64.Vec3, target Proxy) (CastHit, bool) {
	if !shape.IsConvex(moving.Shape) {
		return CastHit{}, false
	}

	switch target.Shape.Kind() {
	case shape.KindCompound:
		var best CastHit
		found := false
		for _, child := range target.Shape.(*shape.Compound).Children() {
			if hit, ok := ShapeCast(moving, translation, target.Child(child)); ok && (!found || hit.Fraction < best.Fraction) {
				best, found = hit, true
			}
		}
		return best, found
	case shape.KindMesh:
		return meshCast(moving, translation, target)
	}

	hit, ok := shape.CastRay(sweptDifference{target: target, moving: moving}, mgl64.Vec3{}, translation)
	if !ok {
		return CastHit{}, false
	}
	at := moving
	at.Transform.Position = at.Transform.Position.Add(translation.Mul(hit.Fraction))
	return CastHit{
		Fraction: hit.Fraction,
		Point:    at.Support(hit.Normal.Mul(-1)),
		Normal:   hit.Normal,
	}, true
}

func meshCast(moving Proxy, translation mgl64.Vec3, target Proxy) (CastHit, bool) {
	mesh := target.Shape.(*shape.Mesh)
	sweep := shape.NewSwept(moving.Shape, mgl64.Vec3{}, moving.Transform.InverseRotate(translation))
	toMesh := target.Transform.Inverse().Mul(moving.Transform)
	bounds := sweep.LocalAABB().Transform(toMesh)

	var best CastHit
	found := false
	mesh.Tree().Query(bounds, func(item int) bool {
		tri := Proxy{Shape: mesh.Triangle(item), Transform: target.Transform}
		if hit, ok := ShapeCast(moving, translation, tri); ok && (!found || hit.Fraction < best.Fraction) {
			best, found = hit, true
		}
		return true
	})
	return best, found
}

// SweptBounds is the world AABB covering a proxy over the whole motion.
func SweptBounds(moving Proxy, translation mgl64.Vec3) core.AABB {
	sweep := shape.NewSwept(moving.Shape, mgl64.Vec3{}, moving.Transform.InverseRotate(translation))
	return sweep.LocalAABB().Transform(moving.Transform)
}
