package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/core"
)

const (
	hingeAxisRows = 3
	hingeLimitRow = 5
	hingeMotorRow = 6
)

// Hinge lets B rotate about one axis relative to A. Axes are given in each
// body's local frame; the rest angle is zero at construction.
type Hinge struct {
	Base
	AnchorA mgl64.Vec3
	AnchorB mgl64.Vec3
	AxisA   mgl64.Vec3
	AxisB   mgl64.Vec3

	LimitEnabled bool
	Lower, Upper float64

	MotorEnabled   bool
	MotorSpeed     float64
	MaxMotorTorque float64

	refA, refB mgl64.Vec3
}

func NewHinge(a, b *body.Body, anchorA, anchorB, axisA, axisB mgl64.Vec3) *Hinge {
	j := &Hinge{
		Base:    newBase(a, b, 7),
		AnchorA: anchorA,
		AnchorB: anchorB,
		AxisA:   axisA.Normalize(),
		AxisB:   axisB.Normalize(),
	}
	j.refA, _ = core.Basis(j.AxisA)
	world := j.a.Transform().Rotate(j.refA)
	j.refB = j.b.Transform().InverseRotate(world)
	return j
}

func (j *Hinge) Kind() Kind { return KindHinge }

// SetLimit restricts the hinge angle to [lower, upper] radians.
func (j *Hinge) SetLimit(lower, upper float64) {
	j.LimitEnabled = true
	j.Lower, j.Upper = lower, upper
}

// SetMotor drives the hinge at speed rad/s with at most maxTorque.
func (j *Hinge) SetMotor(speed, maxTorque float64) {
	j.MotorEnabled = true
	j.MotorSpeed, j.MaxMotorTorque = speed, maxTorque
}

// Angle is B's rotation about the hinge axis relative to the rest pose.
func (j *Hinge) Angle() float64 {
	axis := j.a.Transform().Rotate(j.AxisA)
	ra := j.a.Transform().Rotate(j.refA)
	rb := j.b.Transform().Rotate(j.refB)
	return math.Atan2(ra.Cross(rb).Dot(axis), ra.Dot(rb))
}

func (j *Hinge) Build(dt float64, p Params) {
	pointRows(j.rows[:hingeAxisRows], j.a, j.b, j.AnchorA, j.AnchorB, dt, p)

	axisA := j.a.Transform().Rotate(j.AxisA)
	axisB := j.b.Transform().Rotate(j.AxisB)
	misalign := axisA.Cross(axisB)
	t1, t2 := core.Basis(axisA)
	for i, t := range [2]mgl64.Vec3{t1, t2} {
		r := &j.rows[hingeAxisRows+i]
		r.Skip = false
		r.Angular(t)
		r.Unbounded()
		r.Bias = -p.Baumgarte * misalign.Dot(t) / dt
	}

	limit := &j.rows[hingeLimitRow]
	limit.Angular(axisA)
	if !j.LimitEnabled || !limitRow(limit, j.Angle(), j.Lower, j.Upper, dt, p) {
		limit.Disable()
	}

	motor := &j.rows[hingeMotorRow]
	motor.Angular(axisA)
	if j.MotorEnabled {
		motorRow(motor, j.MotorSpeed, j.MaxMotorTorque, dt)
	} else {
		motor.Disable()
	}
}
