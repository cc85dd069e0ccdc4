// Package constraint defines contact, friction and joint constraints as sets
// of Jacobian rows for the solver.
package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/shape"
)

type Kind uint8

const (
	KindContact Kind = iota
	KindFriction
	KindPoint
	KindHinge
	KindSlider
	KindWeld
)

var kindNames = [...]string{"contact", "friction", "point", "hinge", "slider", "weld"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Params carries the solver tuning that row construction needs.
type Params struct {
	// Baumgarte is the fraction of joint drift corrected per step.
	Baumgarte float64
	// RestitutionThreshold is the closing speed below which contacts do not
	// bounce.
	RestitutionThreshold float64
}

func DefaultParams() Params {
	return Params{Baumgarte: 0.2, RestitutionThreshold: 0.2}
}

// Constraint is anything the solver can drive.
type Constraint interface {
	Kind() Kind
	Bodies() (*body.Body, *body.Body)
	Rows() []Row
	Active() bool
	// Build refreshes Jacobians, biases and bounds from the bodies' current
	// state.
	Build(dt float64, p Params)
	// Common exposes the shared bookkeeping.
	Common() *Base
}

// Base carries what every constraint shares.
type Base struct {
	// ID is assigned by the world; 0 means unregistered.
	ID uint32
	// BreakingThreshold deactivates a joint whose net constraint force
	// exceeds it. Zero means unbreakable.
	BreakingThreshold float64

	a, b       *body.Body
	rows       []Row
	anchored   bool
	inactive   bool
	deactivate []func()
}

func newBase(a, b *body.Body, rows int) Base {
	c := Base{a: a, b: b, rows: make([]Row, rows)}
	if b == nil {
		c.b = worldAnchor()
		c.anchored = true
	}
	return c
}

// reuseRows returns n zeroed rows, backed by rows when it is large enough.
func reuseRows(rows []Row, n int) []Row {
	if cap(rows) < n {
		return make([]Row, n)
	}
	rows = rows[:n]
	clear(rows)
	return rows
}

// worldAnchor stands in for the world when a joint has a single body.
func worldAnchor() *body.Body {
	return body.NewRigid(shape.NewSphere(1), body.InfiniteMass)
}

func (c *Base) Common() *Base                    { return c }
func (c *Base) Bodies() (*body.Body, *body.Body) { return c.a, c.b }
func (c *Base) Rows() []Row                      { return c.rows }
func (c *Base) Active() bool                     { return !c.inactive }

// Anchored reports whether B is the implicit world anchor.
func (c *Base) Anchored() bool {
	return c.anchored
}

// OnDeactivate registers fn to run when the constraint breaks.
func (c *Base) OnDeactivate(fn func()) {
	c.deactivate = append(c.deactivate, fn)
}

func (c *Base) Activate() {
	c.inactive = false
}

// Deactivate removes the constraint from the solve and notifies listeners.
func (c *Base) Deactivate() {
	if c.inactive {
		return
	}
	c.inactive = true
	for i := range c.rows {
		c.rows[i].Disable()
	}
	for _, fn := range c.deactivate {
		fn()
	}
}

// NetImpulse is the magnitude of this step's impulses across all rows.
func (c *Base) NetImpulse() float64 {
	var sum float64
	for i := range c.rows {
		if !c.rows[i].Skip {
			sum += c.rows[i].Multiplier * c.rows[i].Multiplier
		}
	}
	return math.Sqrt(sum)
}

// CheckBreak deactivates the constraint if the impulse applied over dt
// exceeds the breaking threshold. It reports whether it broke.
func CheckBreak(c Constraint, dt float64) bool {
	b := c.Common()
	if b.BreakingThreshold <= 0 || b.inactive || dt <= 0 {
		return false
	}
	if b.NetImpulse()/dt <= b.BreakingThreshold {
		return false
	}
	b.Deactivate()
	return true
}

// pointRows constrains the world positions of two anchors to coincide.
func pointRows(rows []Row, a, b *body.Body, localA, localB mgl64.Vec3, dt float64, p Params) {
	rA := a.Transform().Rotate(localA)
	rB := b.Transform().Rotate(localB)
	drift := b.Position.Add(rB).Sub(a.Position.Add(rA))
	for i := 0; i < 3; i++ {
		var axis mgl64.Vec3
		axis[i] = 1
		r := &rows[i]
		r.Skip = false
		r.Linear(axis, rA, rB)
		r.Unbounded()
		r.Bias = -p.Baumgarte * drift[i] / dt
	}
}

// relativeRotation is B's rotation expressed in A's frame.
func relativeRotation(a, b *body.Body) mgl64.Quat {
	return a.Rotation.Conjugate().Mul(b.Rotation).Normalize()
}

// orientationError is the small-angle rotation vector taking B from its
// rest orientation relative to A to its current one.
func orientationError(a, b *body.Body, rest mgl64.Quat) mgl64.Vec3 {
	target := a.Rotation.Mul(rest)
	q := b.Rotation.Mul(target.Conjugate())
	if q.W < 0 {
		q = q.Scale(-1)
	}
	return q.V.Mul(2)
}

// lockRows removes all relative rotation.
func lockRows(rows []Row, a, b *body.Body, rest mgl64.Quat, dt float64, p Params) {
	err := orientationError(a, b, rest)
	for i := 0; i < 3; i++ {
		var axis mgl64.Vec3
		axis[i] = 1
		r := &rows[i]
		r.Skip = false
		r.Angular(axis)
		r.Unbounded()
		r.Bias = -p.Baumgarte * err[i] / dt
	}
}

// limitRow drives value back inside [lower, upper]. It reports whether the
// row is active.
func limitRow(r *Row, value, lower, upper, dt float64, p Params) bool {
	switch {
	case value < lower:
		r.Bounds(0, math.Inf(1))
		r.Bias = p.Baumgarte * (lower - value) / dt
	case value > upper:
		r.Bounds(math.Inf(-1), 0)
		r.Bias = p.Baumgarte * (upper - value) / dt
	default:
		r.Disable()
		return false
	}
	r.Skip = false
	return true
}

// motorRow drives the relative velocity toward speed with a bounded impulse.
func motorRow(r *Row, speed, maxForce, dt float64) {
	r.Skip = false
	r.Bias = speed
	limit := math.Abs(maxForce) * dt
	r.Bounds(-limit, limit)
}
