package rigid

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
)

// ForceGenerator adds forces to bodies once per substep, before integration.
type ForceGenerator interface {
	Apply(dt float64)
}

// bodyBound is implemented by generators tied to particular bodies. The world
// drops such a generator when one of its bodies is removed.
type bodyBound interface {
	Targets(b *body.Body) bool
}

// ConstantForce pushes one body with a fixed world force, optionally at a
// body-local point. Sleeping bodies are left asleep.
type ConstantForce struct {
	Body    *body.Body
	Force   mgl64.Vec3
	Local   mgl64.Vec3
	AtPoint bool
	Enabled bool
}

func NewConstantForce(b *body.Body, force mgl64.Vec3) *ConstantForce {
	return &ConstantForce{Body: b, Force: force, Enabled: true}
}

// Targets reports whether f pushes b.
func (f *ConstantForce) Targets(b *body.Body) bool {
	return f.Body == b
}

// Apply skips bodies that are not in a world.
func (f *ConstantForce) Apply(dt float64) {
	if !f.Enabled || f.Body == nil || f.Body.ID == 0 || f.Body.Sleeping {
		return
	}
	if f.AtPoint {
		f.Body.ApplyForceAtLocalPoint(f.Force, f.Local)
		return
	}
	f.Body.ApplyForce(f.Force)
}
