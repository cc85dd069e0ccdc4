package constraint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
)

// Weld freezes B's pose relative to A as it was at construction.
type Weld struct {
	Base
	AnchorA mgl64.Vec3
	rest    mgl64.Quat
}

func NewWeld(a, b *body.Body) *Weld {
	j := &Weld{Base: newBase(a, b, 6)}
	j.AnchorA = j.a.Transform().ApplyInverse(j.b.Position)
	j.rest = relativeRotation(j.a, j.b)
	return j
}

func (j *Weld) Kind() Kind { return KindWeld }

func (j *Weld) Build(dt float64, p Params) {
	pointRows(j.rows[:3], j.a, j.b, j.AnchorA, mgl64.Vec3{}, dt, p)
	lockRows(j.rows[3:], j.a, j.b, j.rest, dt, p)
}
