package shape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

// Swept is a convex shape swept along the local segment From->To, i.e. the
// Minkowski sum of the shape and the segment.
type Swept struct {
	Shape    Shape
	From, To mgl64.Vec3
}

func NewSwept(s Shape, from, to mgl64.Vec3) *Swept {
	return &Swept{Shape: s, From: from, To: to}
}

func (s *Swept) Kind() Kind { return KindSwept }

func (s *Swept) LocalAABB() core.AABB {
	box := s.Shape.LocalAABB()
	return core.AABB{
		Min: core.MinVec(box.Min.Add(s.From), box.Min.Add(s.To)),
		Max: core.MaxVec(box.Max.Add(s.From), box.Max.Add(s.To)),
	}
}

func (s *Swept) Support(dir mgl64.Vec3) mgl64.Vec3 {
	end := s.From
	if s.To.Dot(dir) > s.From.Dot(dir) {
		end = s.To
	}
	return s.Shape.Support(dir).Add(end)
}

func (s *Swept) Inertia(mass float64) mgl64.Mat3 {
	box := s.LocalAABB()
	half := core.MaxVec(core.AbsVec(box.Min), core.AbsVec(box.Max))
	return boxInertia(mass, half)
}

func (s *Swept) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	return convexRayCast(s, from, to)
}
