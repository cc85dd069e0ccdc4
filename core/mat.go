package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

// Epsilon is the shared tolerance for near-zero checks on lengths and determinants.
const Epsilon = 1e-10

func Clamp[T constraints.Float | constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func MinVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func MaxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

func AbsVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])}
}

// MulVec multiplies component-wise.
func MulVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// SafeNormalize returns the unit vector and false when v is too short to normalize.
func SafeNormalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// RotationMat3 builds the rotation matrix of q. For a unit q,
// RotationMat3(q).Mul3x1(v) equals q.Rotate(v).
func RotationMat3(q mgl64.Quat) mgl64.Mat3 {
	return q.Normalize().Mat4().Mat3()
}

// InvertMat3 inverts m, reporting false for singular or non-finite input.
func InvertMat3(m mgl64.Mat3) (mgl64.Mat3, bool) {
	det := m.Det()
	if math.Abs(det) < Epsilon || math.IsNaN(det) || math.IsInf(det, 0) {
		return mgl64.Mat3{}, false
	}
	return m.Inv(), true
}

// WorldInverseInertia rotates a local inverse inertia tensor into world space: R * I⁻¹ * Rᵀ.
func WorldInverseInertia(rotation mgl64.Quat, invLocal mgl64.Mat3) mgl64.Mat3 {
	r := RotationMat3(rotation)
	return r.Mul3(invLocal).Mul3(r.Transpose())
}

// Basis returns two unit tangents that form a right-handed frame with the unit normal n.
func Basis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if math.Abs(n.X()) >= 0.57735 {
		t1 = mgl64.Vec3{n.Y(), -n.X(), 0}
	} else {
		t1 = mgl64.Vec3{0, n.Z(), -n.Y()}
	}
	t1 = t1.Normalize()
	t2 := n.Cross(t1)
	return t1, t2
}

// IntegrateRotation advances q by the angular velocity w over dt: q += 0.5*dt*(w,0)*q.
func IntegrateRotation(q mgl64.Quat, w mgl64.Vec3, dt float64) mgl64.Quat {
	spin := mgl64.Quat{W: 0, V: w}
	dq := spin.Mul(q).Scale(0.5 * dt)
	return q.Add(dq).Normalize()
}
