package narrowphase

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/shape"
)

// maxPlaneContacts bounds the vertex contacts a plane reports per query.
const maxPlaneContacts = 4

func sphereSphere(a, b Proxy) (Contact, bool) {
	sa := a.Shape.(*shape.Sphere)
	sb := b.Shape.(*shape.Sphere)
	ca, cb := a.Transform.Position, b.Transform.Position
	delta := cb.Sub(ca)
	dist := delta.Len()
	radii := sa.Radius + sb.Radius
	if dist > radii {
		return Contact{}, false
	}
	normal := mgl64.Vec3{0, 1, 0}
	if dist > core.Epsilon {
		normal = delta.Mul(1 / dist)
	}
	pa := ca.Add(normal.Mul(sa.Radius))
	pb := cb.Sub(normal.Mul(sb.Radius))
	return newContact(a, b, pa, pb, normal, radii-dist, 0), true
}

// boxSphere clamps the sphere centre into the box. A centre inside the box
// is pushed out through the face of least penetration.
func boxSphere(a, b Proxy) (Contact, bool) {
	box := a.Shape.(*shape.Box)
	sphere := b.Shape.(*shape.Sphere)
	center := b.Transform.Position
	local := a.Transform.ApplyInverse(center)
	h := box.HalfExtents

	clamped := mgl64.Vec3{
		core.Clamp(local.X(), -h.X(), h.X()),
		core.Clamp(local.Y(), -h.Y(), h.Y()),
		core.Clamp(local.Z(), -h.Z(), h.Z()),
	}

	var localNormal, surface mgl64.Vec3
	var depth float64
	if diff := local.Sub(clamped); diff.LenSqr() > core.Epsilon {
		dist := diff.Len()
		if dist > sphere.Radius {
			return Contact{}, false
		}
		localNormal = diff.Mul(1 / dist)
		surface = clamped
		depth = sphere.Radius - dist
	} else {
		axis := 0
		least := math.Inf(1)
		for i := 0; i < 3; i++ {
			if pen := h[i] - math.Abs(local[i]); pen < least {
				axis, least = i, pen
			}
		}
		sign := 1.0
		if local[axis] < 0 {
			sign = -1
		}
		localNormal[axis] = sign
		surface = local
		surface[axis] = sign * h[axis]
		depth = sphere.Radius + least
	}

	normal := a.Transform.Rotate(localNormal)
	pa := a.Transform.Apply(surface)
	pb := center.Sub(normal.Mul(sphere.Radius))
	return newContact(a, b, pa, pb, normal, depth, 0), true
}

// planeSphere handles a sphere whose centre projects onto the finite plane.
// handled is false when the centre lies beyond the rectangle and the general
// path must decide.
func planeSphere(a, b Proxy) (c Contact, ok, handled bool) {
	plane := a.Shape.(*shape.Plane)
	sphere := b.Shape.(*shape.Sphere)
	local := a.Transform.ApplyInverse(b.Transform.Position)
	if !plane.Contains(local) {
		return Contact{}, false, false
	}
	side := 1.0
	if local.Y() < 0 {
		side = -1
	}
	dist := math.Abs(local.Y())
	if dist > sphere.Radius {
		return Contact{}, false, true
	}
	normal := a.Transform.Rotate(mgl64.Vec3{0, side, 0})
	pa := a.Transform.Apply(mgl64.Vec3{local.X(), 0, local.Z()})
	pb := b.Transform.Position.Sub(normal.Mul(sphere.Radius))
	return newContact(a, b, pa, pb, normal, sphere.Radius-dist, 0), true, true
}

// planePolyhedron reports every polyhedron vertex that sits behind the plane,
// on the side away from the polyhedron's centre, keeping the deepest few.
// handled is false when no vertex produced a contact and some vertex falls
// outside the rectangle.
func planePolyhedron(a, b Proxy) (contacts []Contact, handled bool) {
	plane := a.Shape.(*shape.Plane)
	poly := b.Shape.(shape.Polyhedron)

	side := 1.0
	if a.Transform.ApplyInverse(b.Transform.Position).Y() < 0 {
		side = -1
	}
	normal := a.Transform.Rotate(mgl64.Vec3{0, side, 0})

	allInside := true
	for _, v := range poly.Vertices() {
		world := b.Transform.Apply(v)
		local := a.Transform.ApplyInverse(world)
		if !plane.Contains(local) {
			allInside = false
			continue
		}
		height := side * local.Y()
		if height >= 0 {
			continue
		}
		pa := a.Transform.Apply(mgl64.Vec3{local.X(), 0, local.Z()})
		contacts = append(contacts, newContact(a, b, pa, world, normal, -height, 0))
	}
	if len(contacts) == 0 {
		return nil, allInside
	}
	sort.SliceStable(contacts, func(i, j int) bool { return contacts[i].Depth > contacts[j].Depth })
	if len(contacts) > maxPlaneContacts {
		contacts = contacts[:maxPlaneContacts]
	}
	return contacts, true
}
