// Package contact keeps persistent contact manifolds between body pairs.
package contact

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
)

const (
	// MaxPoints bounds the points kept per manifold.
	MaxPoints = 4
	// MergeDistance rejects a new point this close to an existing one.
	MergeDistance = 0.02
	// BreakDepth drops a point that has separated by more than this.
	BreakDepth = -0.02
	// BreakDrift drops a point whose anchors slid apart tangentially by
	// more than this.
	BreakDrift = 0.2
)

// Details is one persisted contact point between BodyA and BodyB.
type Details struct {
	BodyA  *body.Body
	BodyB  *body.Body
	Point  mgl64.Vec3
	LocalA mgl64.Vec3
	LocalB mgl64.Vec3
	// Normal points from A toward B and is fixed at creation.
	Normal mgl64.Vec3
	Depth  float64
	// Offset is added to the anchor separation to get Depth.
	Offset      float64
	Restitution float64
	Friction    float64
}

// Refresh re-derives the world point and depth from the anchors and the
// bodies' current transforms. It reports whether the point should be kept.
func (d *Details) Refresh() bool {
	wa := d.BodyA.Transform().Apply(d.LocalA)
	wb := d.BodyB.Transform().Apply(d.LocalB)
	d.Point = wa.Add(wb).Mul(0.5)

	sep := wa.Sub(wb)
	along := sep.Dot(d.Normal)
	d.Depth = along + d.Offset
	if d.Depth < BreakDepth {
		return false
	}
	drift := sep.Sub(d.Normal.Mul(along))
	return drift.LenSqr() <= BreakDrift*BreakDrift
}

// WorldAnchors returns the anchors in world space.
func (d *Details) WorldAnchors() (mgl64.Vec3, mgl64.Vec3) {
	return d.BodyA.Transform().Apply(d.LocalA), d.BodyB.Transform().Apply(d.LocalB)
}

// CombineRestitution and CombineFriction multiply the two bodies' values.
func CombineRestitution(a, b *body.Body) float64 {
	return a.Restitution * b.Restitution
}

func CombineFriction(a, b *body.Body) float64 {
	return a.Friction * b.Friction
}
