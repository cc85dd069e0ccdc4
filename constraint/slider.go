package constraint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/core"
)

const (
	sliderLockRows = 2
	sliderLimitRow = 5
	sliderMotorRow = 6
)

// Slider lets B translate along one axis of A without relative rotation.
// The axis is in A's local frame and the rest offset is zero at
// construction.
type Slider struct {
	Base
	AnchorA mgl64.Vec3
	Axis    mgl64.Vec3

	LimitEnabled bool
	Lower, Upper float64

	MotorEnabled  bool
	MotorSpeed    float64
	MaxMotorForce float64

	rest mgl64.Quat
}

func NewSlider(a, b *body.Body, axis mgl64.Vec3) *Slider {
	j := &Slider{Base: newBase(a, b, 7), Axis: axis.Normalize()}
	j.AnchorA = j.a.Transform().ApplyInverse(j.b.Position)
	j.rest = relativeRotation(j.a, j.b)
	return j
}

func (j *Slider) Kind() Kind { return KindSlider }

func (j *Slider) SetLimit(lower, upper float64) {
	j.LimitEnabled = true
	j.Lower, j.Upper = lower, upper
}

func (j *Slider) SetMotor(speed, maxForce float64) {
	j.MotorEnabled = true
	j.MotorSpeed, j.MaxMotorForce = speed, maxForce
}

func (j *Slider) offset() (mgl64.Vec3, mgl64.Vec3) {
	anchor := j.a.Transform().Apply(j.AnchorA)
	return j.b.Position.Sub(anchor), j.a.Transform().Rotate(j.Axis)
}

// Position is B's travel along the axis from the rest pose.
func (j *Slider) Position() float64 {
	d, axis := j.offset()
	return d.Dot(axis)
}

func (j *Slider) Build(dt float64, p Params) {
	d, axis := j.offset()
	rA := j.b.Position.Sub(j.a.Position)
	var zero mgl64.Vec3

	t1, t2 := core.Basis(axis)
	for i, t := range [2]mgl64.Vec3{t1, t2} {
		r := &j.rows[i]
		r.Skip = false
		r.Linear(t, rA, zero)
		r.Unbounded()
		r.Bias = -p.Baumgarte * d.Dot(t) / dt
	}
	lockRows(j.rows[sliderLockRows:sliderLimitRow], j.a, j.b, j.rest, dt, p)

	limit := &j.rows[sliderLimitRow]
	limit.Linear(axis, rA, zero)
	if !j.LimitEnabled || !limitRow(limit, d.Dot(axis), j.Lower, j.Upper, dt, p) {
		limit.Disable()
	}

	motor := &j.rows[sliderMotorRow]
	motor.Linear(axis, rA, zero)
	if j.MotorEnabled {
		motorRow(motor, j.MotorSpeed, j.MaxMotorForce, dt)
	} else {
		motor.Disable()
	}
}
