package rigid

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyState is the per-step view of one body handed to hosts. Matrix is
// single precision for scene graphs and renderers.
type BodyState struct {
	ID              uint32
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	Matrix          mgl32.Mat4
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Sleeping        bool
}

// Snapshot returns the state of every body in ID order.
func (w *World) Snapshot() []BodyState {
	out := make([]BodyState, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = BodyState{
			ID:              b.ID,
			Position:        b.Position,
			Rotation:        b.Rotation,
			Matrix:          toMat32(b.Matrix()),
			LinearVelocity:  b.LinearVelocity,
			AngularVelocity: b.AngularVelocity,
			Sleeping:        b.Sleeping,
		}
	}
	return out
}

func toMat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
