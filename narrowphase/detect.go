package narrowphase

import (
	"github.com/gekko3d/rigid/shape"
)

// Detector dispatches a proxy pair to the right collision routine. It keeps
// scratch state between calls and is not safe for concurrent use.
type Detector struct {
	simplex simplex
}

func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the contacts between a and b, possibly none.
func (d *Detector) Detect(a, b Proxy) []Contact {
	ka, kb := a.Shape.Kind(), b.Shape.Kind()

	switch {
	case ka == shape.KindCompound:
		return d.compoundContacts(a, b)
	case kb == shape.KindCompound:
		return swapAll(d.compoundContacts(b, a))
	case ka == shape.KindMesh && kb == shape.KindMesh:
		return d.meshMesh(a, b)
	case ka == shape.KindMesh:
		return d.meshConvex(a, b)
	case kb == shape.KindMesh:
		return swapAll(d.meshConvex(b, a))
	}

	switch {
	case ka == shape.KindSphere && kb == shape.KindSphere:
		return single(sphereSphere(a, b))
	case ka == shape.KindBox && kb == shape.KindSphere:
		return single(boxSphere(a, b))
	case ka == shape.KindSphere && kb == shape.KindBox:
		return swapAll(single(boxSphere(b, a)))
	case ka == shape.KindPlane && kb == shape.KindSphere:
		if c, ok, handled := planeSphere(a, b); handled {
			return single(c, ok)
		}
	case ka == shape.KindSphere && kb == shape.KindPlane:
		if c, ok, handled := planeSphere(b, a); handled {
			return swapAll(single(c, ok))
		}
	case ka == shape.KindPlane && isPolyhedron(b.Shape):
		if contacts, handled := planePolyhedron(a, b); handled {
			return contacts
		}
	case kb == shape.KindPlane && isPolyhedron(a.Shape):
		if contacts, handled := planePolyhedron(b, a); handled {
			return swapAll(contacts)
		}
	}
	return single(d.convex(a, b))
}

func isPolyhedron(s shape.Shape) bool {
	if s.Kind() == shape.KindPlane {
		return false
	}
	_, ok := s.(shape.Polyhedron)
	return ok
}

func single(c Contact, ok bool) []Contact {
	if !ok {
		return nil
	}
	return []Contact{c}
}

// convex runs GJK and, for overlapping shapes, EPA.
func (d *Detector) convex(a, b Proxy) (Contact, bool) {
	s := &d.simplex
	status, c := gjk(a, b, s)
	switch status {
	case gjkShallow:
		return c, true
	case gjkSeparated:
		return Contact{}, false
	}
	if s.count < 4 && !completeSimplex(a, b, s) {
		return Contact{}, false
	}
	return epa(a, b, s)
}

// Overlap returns the deepest contact of two overlapping proxies. Contacts
// that only touch the margin skin do not count.
func (d *Detector) Overlap(a, b Proxy) (Contact, bool) {
	var deepest Contact
	found := false
	for _, c := range d.Detect(a, b) {
		if c.Depth-c.Offset < 0 {
			continue
		}
		if !found || c.Depth > deepest.Depth {
			deepest, found = c, true
		}
	}
	return deepest, found
}

// Intersects reports whether two proxies overlap.
func (d *Detector) Intersects(a, b Proxy) bool {
	_, ok := d.Overlap(a, b)
	return ok
}
