package constraint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
)

// Point pins an anchor on A to an anchor on B, leaving rotation free. A nil
// B pins A to the world and AnchorB is then a world point.
type Point struct {
	Base
	AnchorA mgl64.Vec3
	AnchorB mgl64.Vec3
}

func NewPoint(a, b *body.Body, anchorA, anchorB mgl64.Vec3) *Point {
	return &Point{Base: newBase(a, b, 3), AnchorA: anchorA, AnchorB: anchorB}
}

func (j *Point) Kind() Kind { return KindPoint }

func (j *Point) Build(dt float64, p Params) {
	pointRows(j.rows, j.a, j.b, j.AnchorA, j.AnchorB, dt, p)
}

// Separation is the world distance between the two anchors.
func (j *Point) Separation() float64 {
	wa := j.a.Transform().Apply(j.AnchorA)
	wb := j.b.Transform().Apply(j.AnchorB)
	return wb.Sub(wa).Len()
}
