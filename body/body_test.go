package body

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/rigid/shape"
)

func TestNewRigidDefaults(t *testing.T) {
	b := NewRigid(shape.NewSphere(1), 2)
	assert.Equal(t, KindRigid, b.Kind())
	assert.True(t, b.MassValid())
	assert.True(t, b.Dynamic())
	assert.False(t, b.IsStatic())
	assert.Equal(t, DefaultRestitution, b.Restitution)
	assert.Equal(t, DefaultFriction, b.Friction)
	assert.InDelta(t, 0.5, b.InverseMass(), 1e-12)
}

func TestStaticBodyNeverIntegrates(t *testing.T) {
	b := NewRigid(shape.NewBox(mgl64.Vec3{1, 1, 1}), InfiniteMass)
	require.True(t, b.IsStatic())
	b.LinearVelocity = mgl64.Vec3{1, 0, 0}
	b.ApplyForce(mgl64.Vec3{0, -100, 0})
	b.Integrate(0.1)
	assert.Equal(t, mgl64.Vec3{}, b.Position)
	assert.Equal(t, mgl64.Vec3{}, b.Force)
	assert.Equal(t, 0.0, b.InverseMass())
}

func TestInvalidMassSkipsDynamics(t *testing.T) {
	for _, m := range []float64{0, -1, math.NaN()} {
		b := NewRigid(shape.NewSphere(1), m)
		assert.False(t, b.MassValid())
		assert.False(t, b.Dynamic())
		assert.False(t, b.IsStatic())
		b.ApplyForce(mgl64.Vec3{0, 10, 0})
		b.Integrate(0.1)
		assert.Equal(t, mgl64.Vec3{}, b.Position)
	}

	// Zero extents give a singular inertia tensor.
	flat := NewRigid(shape.NewBox(mgl64.Vec3{0, 0, 0}), 1)
	assert.False(t, flat.MassValid())
}

func TestIntegrateSemiImplicit(t *testing.T) {
	b := NewRigid(shape.NewSphere(1), 2)
	b.ApplyForce(mgl64.Vec3{0, -20, 0})
	b.Integrate(0.5)
	// v = F/m*dt, then x = v*dt.
	assert.InDelta(t, -5.0, b.LinearVelocity.Y(), 1e-12)
	assert.InDelta(t, -2.5, b.Position.Y(), 1e-12)
	assert.Equal(t, mgl64.Vec3{}, b.Force)
}

func TestRotationStaysNormalized(t *testing.T) {
	b := NewRigid(shape.NewBox(mgl64.Vec3{1, 0.5, 0.25}), 1)
	b.AngularVelocity = mgl64.Vec3{3, -7, 11}
	for i := 0; i < 500; i++ {
		b.Integrate(1.0 / 60)
		b.UpdateDerived()
		require.InDelta(t, 1.0, b.Rotation.Len(), 1e-9)
	}
	id := b.Matrix().Mul4(b.Inverse())
	ident := mgl64.Ident4()
	for i := 0; i < 16; i++ {
		assert.InDelta(t, ident[i], id[i], 1e-9)
	}
}

func TestLinearFactorLocksAxis(t *testing.T) {
	b := NewRigid(shape.NewSphere(1), 1)
	b.LinearFactor = mgl64.Vec3{1, 0, 1}
	b.ApplyForce(mgl64.Vec3{1, -10, 1})
	b.Integrate(1)
	assert.Equal(t, 0.0, b.LinearVelocity.Y())
	assert.InDelta(t, 1.0, b.LinearVelocity.X(), 1e-12)

	b.ApplyImpulse(mgl64.Vec3{0, 5, 0}, b.Position)
	assert.Equal(t, 0.0, b.LinearVelocity.Y())
}

func TestDamping(t *testing.T) {
	b := NewRigid(shape.NewSphere(1), 1)
	b.LinearDamping = 0.5
	b.LinearVelocity = mgl64.Vec3{4, 0, 0}
	b.Integrate(1)
	assert.InDelta(t, 2.0, b.LinearVelocity.X(), 1e-12)
}

func TestImpulseAtPointSpins(t *testing.T) {
	b := NewRigid(shape.NewSphere(1), 1)
	b.ApplyImpulse(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 1.0, b.LinearVelocity.Z(), 1e-12)
	// r x J = (1,0,0) x (0,0,1) = (0,-1,0); I = 0.4.
	assert.InDelta(t, -2.5, b.AngularVelocity.Y(), 1e-12)
}

func TestAABBFollowsTransform(t *testing.T) {
	b := NewRigid(shape.NewBox(mgl64.Vec3{1, 2, 3}), 1)
	b.SetTransform(mgl64.Vec3{10, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))
	box := b.AABB()
	assert.InDelta(t, 7.0, box.Min.X(), 1e-9)
	assert.InDelta(t, 13.0, box.Max.X(), 1e-9)
	assert.InDelta(t, -1.0, box.Min.Z(), 1e-9)
}

func TestGravityOverride(t *testing.T) {
	b := NewRigid(shape.NewSphere(1), 1)
	_, ok := b.Gravity()
	assert.False(t, ok)
	b.SetGravity(mgl64.Vec3{0, 1, 0})
	g, ok := b.Gravity()
	assert.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, g)
	b.ClearGravity()
	_, ok = b.Gravity()
	assert.False(t, ok)
}

func TestSleep(t *testing.T) {
	b := NewRigid(shape.NewSphere(1), 1)
	b.LinearVelocity = mgl64.Vec3{0.01, 0, 0}
	for i := 0; i < 10; i++ {
		b.UpdateSleep(0.1, 0.05, 0.5)
	}
	assert.True(t, b.Sleeping)
	assert.False(t, b.Dynamic())
	assert.Equal(t, 0.0, b.InverseMass())

	b.ApplyForce(mgl64.Vec3{1, 0, 0})
	assert.False(t, b.Sleeping)

	// Zero threshold disables sleeping.
	c := NewRigid(shape.NewSphere(1), 1)
	for i := 0; i < 100; i++ {
		c.UpdateSleep(0.1, 0, 0.5)
	}
	assert.False(t, c.Sleeping)
}

func TestGhostSensedDiff(t *testing.T) {
	g := NewGhost(shape.NewSphere(1))
	assert.True(t, g.IsStatic())
	a := NewRigid(shape.NewSphere(1), 1)
	a.ID = 2
	c := NewRigid(shape.NewSphere(1), 1)
	c.ID = 3

	var starts, ends, conts []uint32
	g.OnContactStart(func(o *Body) { starts = append(starts, o.ID) })
	g.OnContactContinue(func(o *Body) { conts = append(conts, o.ID) })
	g.OnContactEnd(func(o *Body) { ends = append(ends, o.ID) })

	g.Sense(Contact{Other: c, Depth: 0.1})
	g.Sense(Contact{Other: a, Depth: 0.1})
	started, _, _ := g.DiffSensed()
	assert.Len(t, started, 2)
	assert.Equal(t, []uint32{2, 3}, starts)

	g.Sense(Contact{Other: a, Depth: 0.2})
	g.Sense(Contact{Other: a, Depth: 0.05})
	_, continued, ended := g.DiffSensed()
	require.Len(t, continued, 1)
	assert.Same(t, a, continued[0].Other)
	assert.Equal(t, 0.2, continued[0].Depth, "deepest overlap is kept")
	require.Len(t, ended, 1)
	assert.Same(t, c, ended[0].Other)
	assert.Equal(t, 0.1, ended[0].Depth)
	assert.Equal(t, []uint32{2}, conts)
	assert.Equal(t, []uint32{3}, ends)

	_, _, ended = g.DiffSensed()
	require.Len(t, ended, 1)
	assert.Same(t, a, ended[0].Other)
	assert.Equal(t, 0.2, ended[0].Depth)
}

func TestContactListeners(t *testing.T) {
	a := NewRigid(shape.NewSphere(1), 1)
	other := NewRigid(shape.NewSphere(1), 1)
	var got []Contact
	var ended []*Body
	a.OnContact(func(c Contact) { got = append(got, c) })
	a.OnEndAllContact(func(o *Body) { ended = append(ended, o) })
	a.NotifyContact(Contact{Other: other, Depth: 0.1})
	a.NotifyEndAllContact(other)
	require.Len(t, got, 1)
	assert.Same(t, other, got[0].Other)
	assert.Equal(t, []*Body{other}, ended)
}
