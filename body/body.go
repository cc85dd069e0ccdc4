// Package body holds the simulated state of a rigid or ghost body and its
// integrator.
package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/shape"
)

// InfiniteMass marks a static body: it never integrates and is unaffected by
// impulses.
var InfiniteMass = math.Inf(1)

type Kind int

const (
	KindRigid Kind = iota
	// KindGhost bodies only sense overlaps; they are never pushed and never
	// push anything.
	KindGhost
)

func (k Kind) String() string {
	if k == KindGhost {
		return "ghost"
	}
	return "rigid"
}

const (
	DefaultRestitution = 0.1
	DefaultFriction    = 0.5
)

type Body struct {
	// ID is assigned by the world on registration; 0 means unregistered.
	ID       uint32
	UserData any

	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	// Force and Torque accumulate over one tick and are cleared by Integrate.
	Force  mgl64.Vec3
	Torque mgl64.Vec3

	// Per-axis multipliers on velocity changes; zero locks an axis.
	LinearFactor  mgl64.Vec3
	AngularFactor mgl64.Vec3

	Restitution    float64
	Friction       float64
	LinearDamping  float64
	AngularDamping float64

	Group uint32
	Mask  uint32

	// Solver scratch, owned by the solver during a step.
	SolverImpulse [6]float64
	PushVelocity  mgl64.Vec3
	TurnVelocity  mgl64.Vec3

	Sleeping bool
	idleTime float64

	kind            Kind
	shape           shape.Shape
	mass            float64
	invMass         float64
	invLocalInertia mgl64.Mat3
	massValid       bool
	gravity         *mgl64.Vec3

	transform       core.Transform
	matrix          mgl64.Mat4
	inverseMatrix   mgl64.Mat4
	invInertiaWorld mgl64.Mat3
	aabb            core.AABB

	listeners listeners
	sensed    map[uint32]Contact
	prevSense map[uint32]Contact
}

func newBody(kind Kind, s shape.Shape, mass float64) *Body {
	b := &Body{
		Rotation:      mgl64.QuatIdent(),
		LinearFactor:  mgl64.Vec3{1, 1, 1},
		AngularFactor: mgl64.Vec3{1, 1, 1},
		Restitution:   DefaultRestitution,
		Friction:      DefaultFriction,
		kind:          kind,
		shape:         s,
	}
	b.SetMass(mass)
	b.UpdateDerived()
	return b
}

// NewRigid creates a body that takes part in dynamics. Pass InfiniteMass for
// a static body.
func NewRigid(s shape.Shape, mass float64) *Body {
	return newBody(KindRigid, s, mass)
}

// NewGhost creates a sensor body with infinite mass.
func NewGhost(s shape.Shape) *Body {
	b := newBody(KindGhost, s, InfiniteMass)
	b.sensed = make(map[uint32]Contact)
	b.prevSense = make(map[uint32]Contact)
	return b
}

func (b *Body) Kind() Kind          { return b.kind }
func (b *Body) IsGhost() bool       { return b.kind == KindGhost }
func (b *Body) Shape() shape.Shape  { return b.shape }
func (b *Body) Mass() float64       { return b.mass }
func (b *Body) MassValid() bool     { return b.massValid }
func (b *Body) AABB() core.AABB     { return b.aabb }
func (b *Body) Matrix() mgl64.Mat4  { return b.matrix }
func (b *Body) Inverse() mgl64.Mat4 { return b.inverseMatrix }

func (b *Body) Transform() core.Transform { return b.transform }

// IsStatic reports infinite mass. Ghosts are always static.
func (b *Body) IsStatic() bool {
	return b.invMass == 0 && b.massValid
}

// SetMass recomputes inverse mass and inertia. Zero, negative or non-finite
// finite masses and singular inertia tensors leave the body with invalid
// mass data; such bodies skip dynamics until a valid mass is set.
func (b *Body) SetMass(mass float64) {
	if b.kind == KindGhost {
		mass = InfiniteMass
	}
	b.mass = mass
	b.invMass = 0
	b.invLocalInertia = mgl64.Mat3{}
	b.massValid = false

	switch {
	case math.IsInf(mass, 1):
		b.massValid = true
	case mass > 0 && !math.IsNaN(mass):
		inv, ok := core.InvertMat3(b.shape.Inertia(mass))
		if !ok {
			return
		}
		b.invMass = 1 / mass
		b.invLocalInertia = inv
		b.massValid = true
	}
	b.invInertiaWorld = core.WorldInverseInertia(b.Rotation, b.invLocalInertia)
}

// Dynamic reports whether the body integrates this tick.
func (b *Body) Dynamic() bool {
	return b.kind == KindRigid && b.massValid && b.invMass > 0 && !b.Sleeping
}

// InverseMass is zero for anything that does not integrate, so the solver
// treats sleeping bodies and bodies with invalid mass as static.
func (b *Body) InverseMass() float64 {
	if !b.Dynamic() {
		return 0
	}
	return b.invMass
}

func (b *Body) InverseInertiaWorld() mgl64.Mat3 {
	if !b.Dynamic() {
		return mgl64.Mat3{}
	}
	return b.invInertiaWorld
}

// SetGravity overrides the world gravity for this body.
func (b *Body) SetGravity(g mgl64.Vec3) {
	b.gravity = &g
}

func (b *Body) ClearGravity() {
	b.gravity = nil
}

// Gravity returns the per-body override, if any.
func (b *Body) Gravity() (mgl64.Vec3, bool) {
	if b.gravity == nil {
		return mgl64.Vec3{}, false
	}
	return *b.gravity, true
}

func (b *Body) SetTransform(position mgl64.Vec3, rotation mgl64.Quat) {
	b.Position = position
	b.Rotation = rotation
	b.UpdateDerived()
	b.Wake()
}

func (b *Body) SetVelocity(linear, angular mgl64.Vec3) {
	b.LinearVelocity = linear
	b.AngularVelocity = angular
	b.Wake()
}

// UpdateDerived renormalises the rotation and refreshes the transform, its
// matrices, the world inertia and the world AABB.
func (b *Body) UpdateDerived() {
	if b.Rotation.Len() < core.Epsilon {
		b.Rotation = mgl64.QuatIdent()
	}
	b.Rotation = b.Rotation.Normalize()
	b.transform = core.TransformFrom(b.Position, b.Rotation)
	b.matrix = b.transform.ObjectToWorld()
	b.inverseMatrix = b.transform.WorldToObject()
	b.invInertiaWorld = core.WorldInverseInertia(b.Rotation, b.invLocalInertia)
	b.aabb = b.shape.LocalAABB().Transform(b.transform)
}

// Integrate advances the body by dt with semi-implicit Euler and clears the
// force accumulators.
func (b *Body) Integrate(dt float64) {
	if !b.Dynamic() {
		b.Force = mgl64.Vec3{}
		b.Torque = mgl64.Vec3{}
		return
	}

	accel := core.MulVec(b.Force.Mul(b.invMass*dt), b.LinearFactor)
	b.LinearVelocity = b.LinearVelocity.Add(accel)
	spin := core.MulVec(b.invInertiaWorld.Mul3x1(b.Torque).Mul(dt), b.AngularFactor)
	b.AngularVelocity = b.AngularVelocity.Add(spin)

	b.LinearVelocity = b.LinearVelocity.Mul(dampingFactor(b.LinearDamping, dt))
	b.AngularVelocity = b.AngularVelocity.Mul(dampingFactor(b.AngularDamping, dt))

	b.Position = b.Position.Add(b.LinearVelocity.Mul(dt))
	b.Rotation = core.IntegrateRotation(b.Rotation, b.AngularVelocity, dt)

	b.Force = mgl64.Vec3{}
	b.Torque = mgl64.Vec3{}
}

// dampingFactor is (1-d)^dt: the fraction of velocity kept after dt seconds.
func dampingFactor(d, dt float64) float64 {
	if d <= 0 {
		return 1
	}
	return math.Pow(1-core.Clamp(d, 0, 1), dt)
}

// VelocityAt is the world velocity of a world point rigidly attached to b.
func (b *Body) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	return b.LinearVelocity.Add(b.AngularVelocity.Cross(point.Sub(b.Position)))
}

func (b *Body) ApplyForce(force mgl64.Vec3) {
	b.Force = b.Force.Add(force)
	b.Wake()
}

func (b *Body) ApplyForceAtWorldPoint(force, point mgl64.Vec3) {
	b.Force = b.Force.Add(force)
	b.Torque = b.Torque.Add(point.Sub(b.Position).Cross(force))
	b.Wake()
}

// ApplyForceAtLocalPoint applies a world-space force at a body-local point.
func (b *Body) ApplyForceAtLocalPoint(force, local mgl64.Vec3) {
	b.ApplyForceAtWorldPoint(force, b.transform.Apply(local))
}

func (b *Body) ApplyTorque(torque mgl64.Vec3) {
	b.Torque = b.Torque.Add(torque)
	b.Wake()
}

// ApplyImpulse changes velocity immediately for a world impulse at a world
// point.
func (b *Body) ApplyImpulse(impulse, point mgl64.Vec3) {
	b.Wake()
	if !b.Dynamic() {
		return
	}
	b.LinearVelocity = b.LinearVelocity.Add(core.MulVec(impulse.Mul(b.invMass), b.LinearFactor))
	angular := b.invInertiaWorld.Mul3x1(point.Sub(b.Position).Cross(impulse))
	b.AngularVelocity = b.AngularVelocity.Add(core.MulVec(angular, b.AngularFactor))
}

// ApplyLocalImpulse takes both the impulse and its point in body space.
func (b *Body) ApplyLocalImpulse(impulse, local mgl64.Vec3) {
	b.ApplyImpulse(b.transform.Rotate(impulse), b.transform.Apply(local))
}

func (b *Body) Wake() {
	b.Sleeping = false
	b.idleTime = 0
}

// UpdateSleep puts the body to sleep once both speeds stay under threshold
// for the given time. A threshold of zero disables sleeping.
func (b *Body) UpdateSleep(dt, threshold, timeToSleep float64) {
	if threshold <= 0 || !b.Dynamic() {
		return
	}
	if b.LinearVelocity.Len() < threshold && b.AngularVelocity.Len() < threshold {
		b.idleTime += dt
		if b.idleTime > timeToSleep {
			b.Sleeping = true
			b.LinearVelocity = mgl64.Vec3{}
			b.AngularVelocity = mgl64.Vec3{}
		}
	} else {
		b.idleTime = 0
	}
}

// ResetSolver clears the per-step solver scratch.
func (b *Body) ResetSolver() {
	b.SolverImpulse = [6]float64{}
	b.PushVelocity = mgl64.Vec3{}
	b.TurnVelocity = mgl64.Vec3{}
}
