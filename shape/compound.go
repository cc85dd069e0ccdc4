package shape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

type Child struct {
	Shape     Shape
	Transform core.Transform
}

// Compound groups child shapes, each placed by a local transform. Children
// can only be appended.
type Compound struct {
	children []Child
	bounds   core.AABB
}

func NewCompound() *Compound {
	return &Compound{bounds: core.EmptyAABB()}
}

func (c *Compound) AddChild(s Shape, t core.Transform) *Compound {
	c.children = append(c.children, Child{Shape: s, Transform: t})
	c.bounds = c.bounds.Union(s.LocalAABB().Transform(t))
	return c
}

func (c *Compound) Children() []Child {
	return c.children
}

func (c *Compound) Kind() Kind { return KindCompound }

func (c *Compound) LocalAABB() core.AABB { return c.bounds }

// Support is the support of the convex hull of all children.
func (c *Compound) Support(dir mgl64.Vec3) mgl64.Vec3 {
	var best mgl64.Vec3
	bestDot := 0.0
	for i, child := range c.children {
		p := child.Transform.Apply(child.Shape.Support(child.Transform.InverseRotate(dir)))
		if d := p.Dot(dir); i == 0 || d > bestDot {
			best, bestDot = p, d
		}
	}
	return best
}

// Inertia splits mass between children by bounding volume and shifts each
// child tensor to the compound origin.
func (c *Compound) Inertia(mass float64) mgl64.Mat3 {
	var out mgl64.Mat3
	if len(c.children) == 0 {
		return out
	}
	total := 0.0
	for _, child := range c.children {
		total += child.Shape.LocalAABB().Volume()
	}
	for _, child := range c.children {
		share := 1 / float64(len(c.children))
		if total > core.Epsilon {
			share = child.Shape.LocalAABB().Volume() / total
		}
		m := mass * share
		rot := core.RotationMat3(child.Transform.Rotation)
		local := rot.Mul3(child.Shape.Inertia(m)).Mul3(rot.Transpose())

		d := child.Transform.Position
		shift := mgl64.Ident3().Mul(d.Dot(d)).Sub(d.OuterProd3(d)).Mul(m)
		out = out.Add(local).Add(shift)
	}
	return out
}

func (c *Compound) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	if _, ok := c.bounds.RayIntersect(from, to); !ok {
		return RayHit{}, false
	}
	var best RayHit
	found := false
	for i, child := range c.children {
		hit, ok := child.Shape.RayIntersect(child.Transform.ApplyInverse(from), child.Transform.ApplyInverse(to))
		if !ok || (found && hit.Fraction >= best.Fraction) {
			continue
		}
		best = RayHit{
			Point:    child.Transform.Apply(hit.Point),
			Normal:   child.Transform.Rotate(hit.Normal),
			Fraction: hit.Fraction,
			Feature:  i,
		}
		found = true
	}
	return best, found
}
