package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid placement: rotation followed by translation.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

func TransformFrom(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	return Transform{Position: position, Rotation: rotation}
}

func (t Transform) ObjectToWorld() mgl64.Mat4 {
	// M = T * R
	translate := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()

	return translate.Mul4(rotate)
}

func (t Transform) WorldToObject() mgl64.Mat4 {
	// inv(M) = inv(R) * inv(T); the rotation inverse is the conjugate for a unit quaternion.
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl64.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invRotate.Mul4(invTranslate)
}

// Apply maps a point from object space into world space.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(p))
}

// ApplyInverse maps a world-space point into object space.
func (t Transform) ApplyInverse(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(p.Sub(t.Position))
}

func (t Transform) Rotate(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(v)
}

func (t Transform) InverseRotate(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(v)
}

// Mul composes t with a transform expressed in t's object space.
func (t Transform) Mul(local Transform) Transform {
	return Transform{
		Position: t.Apply(local.Position),
		Rotation: t.Rotation.Mul(local.Rotation).Normalize(),
	}
}

func (t Transform) Inverse() Transform {
	inv := t.Rotation.Conjugate()
	return Transform{
		Position: inv.Rotate(t.Position.Mul(-1)),
		Rotation: inv,
	}
}
