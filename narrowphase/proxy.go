// Package narrowphase computes exact contacts between placed shapes.
//
// All contacts use one convention: Normal is a unit vector pointing from A
// toward B, Depth is positive when the shapes overlap, and
// (PointA-PointB).Normal + Offset == Depth. Offset carries the collision
// margin folded into GJK/EPA depths so a persisted contact can recompute its
// depth from its anchors alone.
package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/shape"
)

// Margin is the skin around convex shapes inside which GJK reports a
// shallow contact before the shapes actually touch.
const Margin = 0.03

// Proxy places a shape in the world for one detection query.
type Proxy struct {
	Shape     shape.Shape
	Transform core.Transform
}

func NewProxy(s shape.Shape, t core.Transform) Proxy {
	return Proxy{Shape: s, Transform: t}
}

// Support is the world-space support point along a world direction.
func (p Proxy) Support(dir mgl64.Vec3) mgl64.Vec3 {
	return p.Transform.Apply(p.Shape.Support(p.Transform.InverseRotate(dir)))
}

// Child returns a proxy for the i-th child of a compound proxy.
func (p Proxy) Child(c shape.Child) Proxy {
	return Proxy{Shape: c.Shape, Transform: p.Transform.Mul(c.Transform)}
}

type Contact struct {
	// Point is the midpoint of the two witness points.
	Point  mgl64.Vec3
	PointA mgl64.Vec3
	PointB mgl64.Vec3
	// LocalA and LocalB are the witness points in each proxy's frame.
	LocalA mgl64.Vec3
	LocalB mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
	Offset float64
}

func newContact(a, b Proxy, pointA, pointB, normal mgl64.Vec3, depth, offset float64) Contact {
	return Contact{
		Point:  pointA.Add(pointB).Mul(0.5),
		PointA: pointA,
		PointB: pointB,
		LocalA: a.Transform.ApplyInverse(pointA),
		LocalB: b.Transform.ApplyInverse(pointB),
		Normal: normal,
		Depth:  depth,
		Offset: offset,
	}
}

// Swapped exchanges the roles of A and B.
func (c Contact) Swapped() Contact {
	return Contact{
		Point:  c.Point,
		PointA: c.PointB,
		PointB: c.PointA,
		LocalA: c.LocalB,
		LocalB: c.LocalA,
		Normal: c.Normal.Mul(-1),
		Depth:  c.Depth,
		Offset: c.Offset,
	}
}

func swapAll(contacts []Contact) []Contact {
	for i := range contacts {
		contacts[i] = contacts[i].Swapped()
	}
	return contacts
}
