// Package shape holds the collision geometry a body can carry. Shapes are
// described in their own local frame; callers map them into the world through
// a core.Transform.
package shape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

type Kind int

const (
	KindBox Kind = iota
	KindSphere
	KindCylinder
	KindCone
	KindConvexHull
	KindCompound
	KindMesh
	KindPlane
	KindTriangle
	KindSwept
)

var kindNames = [...]string{
	KindBox:        "box",
	KindSphere:     "sphere",
	KindCylinder:   "cylinder",
	KindCone:       "cone",
	KindConvexHull: "convexhull",
	KindCompound:   "compound",
	KindMesh:       "mesh",
	KindPlane:      "plane",
	KindTriangle:   "triangle",
	KindSwept:      "swept",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Shape is the capability set shared by every geometry kind.
type Shape interface {
	Kind() Kind
	// LocalAABB bounds the shape in its local frame.
	LocalAABB() core.AABB
	// Support returns the local point furthest along dir.
	Support(dir mgl64.Vec3) mgl64.Vec3
	// RayIntersect tests the local segment from->to.
	RayIntersect(from, to mgl64.Vec3) (RayHit, bool)
	// Inertia returns the local inertia tensor for the given mass.
	Inertia(mass float64) mgl64.Mat3
}

// Polyhedron is implemented by shapes with a finite vertex set.
type Polyhedron interface {
	Shape
	Vertices() []mgl64.Vec3
}

// RayHit is expressed in the frame the ray was given in. Fraction is the
// parametric position along the segment, in [0, 1].
type RayHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Fraction float64
	// Feature is the triangle index for meshes, the child index for
	// compounds and -1 otherwise.
	Feature int
}

// IsConvex reports whether narrowphase may feed s to GJK directly.
func IsConvex(s Shape) bool {
	switch s.Kind() {
	case KindCompound, KindMesh:
		return false
	}
	return true
}

func boxInertia(mass float64, half mgl64.Vec3) mgl64.Mat3 {
	x2, y2, z2 := half.X()*half.X(), half.Y()*half.Y(), half.Z()*half.Z()
	k := mass / 3
	return mgl64.Diag3(mgl64.Vec3{k * (y2 + z2), k * (x2 + z2), k * (x2 + y2)})
}

func maxDot(points []mgl64.Vec3, dir mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{}
	}
	best := points[0]
	bestDot := best.Dot(dir)
	for _, p := range points[1:] {
		if d := p.Dot(dir); d > bestDot {
			best, bestDot = p, d
		}
	}
	return best
}
