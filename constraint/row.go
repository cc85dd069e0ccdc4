package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/core"
)

// Row is one scalar velocity constraint between two bodies. The Jacobian is
// laid out as linear A, angular A, linear B, angular B.
type Row struct {
	Jacobian [12]float64
	// B is the Jacobian premultiplied by each body's inverse mass and inertia.
	B [12]float64
	// D is Jacobian·B, the inverse effective mass.
	D float64
	// Bias is the target relative velocity along the row.
	Bias float64
	// Eta is Bias minus the current relative velocity.
	Eta   float64
	Lower float64
	Upper float64
	// Multiplier is the accumulated impulse of the current solve; Cached
	// carries it into the next step's warm start.
	Multiplier float64
	Cached     float64
	// Skip leaves the row out of this step's solve.
	Skip bool
}

func vec(j *[12]float64, off int) mgl64.Vec3 {
	return mgl64.Vec3{j[off], j[off+1], j[off+2]}
}

func put(j *[12]float64, off int, v mgl64.Vec3) {
	j[off], j[off+1], j[off+2] = v[0], v[1], v[2]
}

// Linear sets the row to constrain the velocity of a point along n. rA and rB
// are the offsets of the point from each body's center.
func (r *Row) Linear(n, rA, rB mgl64.Vec3) {
	put(&r.Jacobian, 0, n.Mul(-1))
	put(&r.Jacobian, 3, rA.Cross(n).Mul(-1))
	put(&r.Jacobian, 6, n)
	put(&r.Jacobian, 9, rB.Cross(n))
}

// Angular sets the row to constrain relative angular velocity about axis.
func (r *Row) Angular(axis mgl64.Vec3) {
	put(&r.Jacobian, 0, mgl64.Vec3{})
	put(&r.Jacobian, 3, axis.Mul(-1))
	put(&r.Jacobian, 6, mgl64.Vec3{})
	put(&r.Jacobian, 9, axis)
}

// Bounds sets the impulse interval.
func (r *Row) Bounds(lower, upper float64) {
	r.Lower, r.Upper = lower, upper
}

func (r *Row) Unbounded() {
	r.Lower, r.Upper = math.Inf(-1), math.Inf(1)
}

// Disable skips the row and forgets its warm start.
func (r *Row) Disable() {
	r.Skip = true
	r.Multiplier = 0
	r.Cached = 0
}

// Prepare computes B, D and Eta from the bodies' current state.
func (r *Row) Prepare(a, b *body.Body) {
	j := &r.Jacobian
	put(&r.B, 0, core.MulVec(vec(j, 0).Mul(a.InverseMass()), a.LinearFactor))
	put(&r.B, 3, core.MulVec(a.InverseInertiaWorld().Mul3x1(vec(j, 3)), a.AngularFactor))
	put(&r.B, 6, core.MulVec(vec(j, 6).Mul(b.InverseMass()), b.LinearFactor))
	put(&r.B, 9, core.MulVec(b.InverseInertiaWorld().Mul3x1(vec(j, 9)), b.AngularFactor))

	r.D = 0
	for i := range r.Jacobian {
		r.D += r.Jacobian[i] * r.B[i]
	}
	if r.D < core.Epsilon {
		r.D = 1
	}
	r.Eta = r.Bias - r.Velocity(a, b)
}

// Velocity is the relative velocity of the bodies along the row.
func (r *Row) Velocity(a, b *body.Body) float64 {
	return r.dot(a.LinearVelocity, a.AngularVelocity, b.LinearVelocity, b.AngularVelocity)
}

// Accumulated is the velocity change along the row from the impulses applied
// so far in this solve.
func (r *Row) Accumulated(a, b *body.Body) float64 {
	ia, ib := &a.SolverImpulse, &b.SolverImpulse
	return r.dot(
		mgl64.Vec3{ia[0], ia[1], ia[2]}, mgl64.Vec3{ia[3], ia[4], ia[5]},
		mgl64.Vec3{ib[0], ib[1], ib[2]}, mgl64.Vec3{ib[3], ib[4], ib[5]},
	)
}

// Push is the split-impulse velocity along the row.
func (r *Row) Push(a, b *body.Body) float64 {
	return r.dot(a.PushVelocity, a.TurnVelocity, b.PushVelocity, b.TurnVelocity)
}

func (r *Row) dot(la, aa, lb, ab mgl64.Vec3) float64 {
	j := &r.Jacobian
	return vec(j, 0).Dot(la) + vec(j, 3).Dot(aa) + vec(j, 6).Dot(lb) + vec(j, 9).Dot(ab)
}

// Apply adds the velocity change of impulse lambda to both bodies' solver
// accumulators.
func (r *Row) Apply(a, b *body.Body, lambda float64) {
	for i := 0; i < 6; i++ {
		a.SolverImpulse[i] += r.B[i] * lambda
		b.SolverImpulse[i] += r.B[6+i] * lambda
	}
}

// ApplyPush adds the velocity change of impulse lambda to the split-impulse
// channel.
func (r *Row) ApplyPush(a, b *body.Body, lambda float64) {
	a.PushVelocity = a.PushVelocity.Add(vec(&r.B, 0).Mul(lambda))
	a.TurnVelocity = a.TurnVelocity.Add(vec(&r.B, 3).Mul(lambda))
	b.PushVelocity = b.PushVelocity.Add(vec(&r.B, 6).Mul(lambda))
	b.TurnVelocity = b.TurnVelocity.Add(vec(&r.B, 9).Mul(lambda))
}

func (r *Row) Clamp(lambda float64) float64 {
	return math.Max(r.Lower, math.Min(r.Upper, lambda))
}
