package rigid

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/constraint"
	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/shape"
)

const dt = 1.0 / 60

func newTestWorld(t *testing.T, mutate func(*Config)) *World {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := NewWorld(cfg)
	require.NoError(t, err)
	return w
}

func addGround(t *testing.T, w *World) *body.Body {
	t.Helper()
	ground := body.NewRigid(shape.NewPlane(20, 20), body.InfiniteMass)
	ground.Restitution = 1
	require.NoError(t, w.AddBody(ground))
	return ground
}

func addBody(t *testing.T, w *World, s shape.Shape, mass float64, pos mgl64.Vec3) *body.Body {
	t.Helper()
	b := body.NewRigid(s, mass)
	b.SetTransform(pos, mgl64.QuatIdent())
	require.NoError(t, w.AddBody(b))
	return b
}

func TestRestingBoxSettles(t *testing.T) {
	for _, kind := range []BroadphaseKind{BroadphaseSAP, BroadphaseNaive, BroadphaseGrid} {
		t.Run(string(kind), func(t *testing.T) {
			w := newTestWorld(t, func(c *Config) { c.Broadphase = kind })
			addGround(t, w)
			box := addBody(t, w, shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), 1, mgl64.Vec3{0, 0.6, 0})

			for i := 0; i < 300; i++ {
				w.Step(dt)
				require.True(t, core.IsFinite(box.Position), "step %d", i)
			}
			assert.Less(t, box.LinearVelocity.Len(), 0.05)
			assert.Less(t, box.AngularVelocity.Len(), 0.05)
			assert.InDelta(t, 0.5, box.Position.Y(), 0.02)
		})
	}
}

// bounceHeight drops a sphere from height h onto the ground and returns the
// peak height of its bottom after the first bounce.
func bounceHeight(t *testing.T, e, h float64) float64 {
	w := newTestWorld(t, nil)
	addGround(t, w)
	ball := body.NewRigid(shape.NewSphere(0.5), 1)
	ball.Restitution = e
	ball.Friction = 0
	ball.SetTransform(mgl64.Vec3{0, h + 0.5, 0}, mgl64.QuatIdent())
	require.NoError(t, w.AddBody(ball))

	step := 1.0 / 240
	bounced := false
	peak := 0.0
	for i := 0; i < 240*4; i++ {
		w.Step(step)
		vy := ball.LinearVelocity.Y()
		if !bounced {
			bounced = vy >= 0 && ball.Position.Y() < 0.6
			continue
		}
		peak = math.Max(peak, ball.Position.Y()-0.5)
		if vy < 0 {
			break
		}
	}
	require.True(t, bounced)
	return peak
}

func TestRestitutionRebound(t *testing.T) {
	h := 2.0
	for _, e := range []float64{0.5, 0.8} {
		assert.InDelta(t, e*e*h, bounceHeight(t, e, h), 0.15*h*e*e+0.02, "e=%g", e)
	}
	assert.Less(t, bounceHeight(t, 0, h), 0.02)
}

func TestPointJointUnderForce(t *testing.T) {
	w := newTestWorld(t, func(c *Config) {
		c.Gravity = [3]float64{}
		c.Substeps = 2
	})
	a := addBody(t, w, shape.NewSphere(0.25), 2, mgl64.Vec3{})
	b := addBody(t, w, shape.NewSphere(0.25), 2, mgl64.Vec3{1, 0, 0})
	j := constraint.NewPoint(a, b, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{-0.5, 0, 0})
	require.NoError(t, w.AddConstraint(j))
	w.AddForceGenerator(NewConstantForce(b, mgl64.Vec3{0, 8, 0}))
	w.AddForceGenerator(NewConstantForce(a, mgl64.Vec3{0, 0, -4}))

	for i := 0; i < 240; i++ {
		w.Step(dt)
		require.Less(t, j.Separation(), 0.03, "step %d", i)
	}
	assert.InDelta(t, 1.0, b.Position.Sub(a.Position).Len(), 0.05)
	assert.Greater(t, b.Position.Y(), 1.0)
}

func TestRayIntersectSorted(t *testing.T) {
	w := newTestWorld(t, nil)
	box := addBody(t, w, shape.NewBox(mgl64.Vec3{1, 1, 1}), body.InfiniteMass, mgl64.Vec3{0, 0, 10})
	ball := addBody(t, w, shape.NewSphere(1), body.InfiniteMass, mgl64.Vec3{0, 0, 5})

	hits := w.RayIntersect(mgl64.Vec3{}, mgl64.Vec3{0, 0, 20})
	require.Len(t, hits, 2)
	assert.Same(t, ball, hits[0].Body)
	assert.InDelta(t, 4, hits[0].Distance, 1e-9)
	assert.InDelta(t, 0.2, hits[0].Fraction, 1e-9)
	assert.InDelta(t, -1, hits[0].Normal.Z(), 1e-9)
	assert.Same(t, box, hits[1].Body)
	assert.InDelta(t, 9, hits[1].Distance, 1e-9)

	assert.Empty(t, w.RayIntersect(mgl64.Vec3{5, 5, 0}, mgl64.Vec3{5, 5, 20}))
}

func TestShapeIntersect(t *testing.T) {
	w := newTestWorld(t, nil)
	box := addBody(t, w, shape.NewBox(mgl64.Vec3{1, 1, 1}), body.InfiniteMass, mgl64.Vec3{0, 0, 5})
	addBody(t, w, shape.NewBox(mgl64.Vec3{1, 1, 1}), body.InfiniteMass, mgl64.Vec3{10, 0, 5})

	hits := w.ShapeIntersect(shape.NewSphere(0.5), mgl64.Vec3{}, mgl64.Vec3{0, 0, 10})
	require.Len(t, hits, 1)
	assert.Same(t, box, hits[0].Body)
	assert.InDelta(t, 0.35, hits[0].Fraction, 1e-3)
	assert.InDelta(t, -1, hits[0].Normal.Z(), 1e-3)

	assert.Empty(t, w.ShapeIntersect(shape.NewSphere(0.5), mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, 5, 10}))
	assert.Nil(t, w.ShapeIntersect(shape.NewCompound(), mgl64.Vec3{}, mgl64.Vec3{0, 0, 10}))
}

func eventsOf(w *World, kind EventKind, sensor bool) []CollisionEvent {
	var out []CollisionEvent
	for _, e := range w.Events() {
		if e.Kind == kind && e.Sensor == sensor {
			out = append(out, e)
		}
	}
	return out
}

func TestCollisionEvents(t *testing.T) {
	w := newTestWorld(t, nil)
	ground := addGround(t, w)
	box := addBody(t, w, shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), 1, mgl64.Vec3{0, 0.49, 0})

	var touched, ended int
	box.OnContact(func(c body.Contact) {
		touched++
		assert.Same(t, ground, c.Other)
	})
	box.OnEndAllContact(func(other *body.Body) { ended++ })

	w.Step(dt)
	starts := eventsOf(w, EventStart, false)
	require.Len(t, starts, 1)
	assert.Equal(t, ground.ID, starts[0].BodyA)
	assert.Equal(t, box.ID, starts[0].BodyB)
	assert.InDelta(t, 1, starts[0].Normal.Y(), 1e-9)
	assert.Greater(t, starts[0].Depth, 0.0)
	assert.Positive(t, touched)

	w.Step(dt)
	assert.Empty(t, eventsOf(w, EventStart, false))
	assert.Len(t, eventsOf(w, EventContinue, false), 1)

	box.SetTransform(mgl64.Vec3{0, 5, 0}, mgl64.QuatIdent())
	w.Step(dt)
	assert.Len(t, eventsOf(w, EventEnd, false), 1)
	assert.Equal(t, 1, ended)
	assert.Empty(t, w.Manifolds())
}

func TestGhostSensing(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.Gravity = [3]float64{} })
	ghost := body.NewGhost(shape.NewBox(mgl64.Vec3{1, 1, 1}))
	require.NoError(t, w.AddBody(ghost))
	ball := addBody(t, w, shape.NewSphere(0.5), 1, mgl64.Vec3{0.5, 0, 0})

	var started, ended []*body.Body
	ghost.OnContactStart(func(o *body.Body) { started = append(started, o) })
	ghost.OnContactEnd(func(o *body.Body) { ended = append(ended, o) })

	w.Step(dt)
	assert.Equal(t, []*body.Body{ball}, started)
	sensed := eventsOf(w, EventStart, true)
	require.Len(t, sensed, 1)
	assert.Equal(t, ghost.ID, sensed[0].BodyA)

	w.Step(dt)
	assert.Len(t, eventsOf(w, EventContinue, true), 1)
	assert.Equal(t, mgl64.Vec3{0.5, 0, 0}, ball.Position)
	assert.Empty(t, w.Manifolds())

	ball.SetTransform(mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent())
	w.Step(dt)
	assert.Equal(t, []*body.Body{ball}, ended)
	assert.Len(t, eventsOf(w, EventEnd, true), 1)
}

func TestSensorEventsCarryContact(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.Gravity = [3]float64{} })
	ghost := body.NewGhost(shape.NewBox(mgl64.Vec3{1, 1, 1}))
	require.NoError(t, w.AddBody(ghost))
	ball := addBody(t, w, shape.NewSphere(0.5), 1, mgl64.Vec3{1.2, 0, 0})

	w.Step(dt)
	started := eventsOf(w, EventStart, true)
	require.Len(t, started, 1)
	e := started[0]
	assert.Equal(t, ghost.ID, e.BodyA)
	assert.Equal(t, ball.ID, e.BodyB)
	assert.InDelta(t, 1, e.Normal.X(), 1e-3)
	assert.InDelta(t, 0.3, e.Depth, 0.05)
	assert.InDelta(t, 1, e.Point.X(), 0.2)

	ball.SetTransform(mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent())
	w.Step(dt)
	ended := eventsOf(w, EventEnd, true)
	require.Len(t, ended, 1)
	assert.Equal(t, e.Normal, ended[0].Normal)
	assert.Equal(t, e.Depth, ended[0].Depth)
}

func TestBodiesFallAsleepAndWake(t *testing.T) {
	w := newTestWorld(t, func(c *Config) {
		c.SleepThreshold = 0.05
		c.SleepTime = 0.5
	})
	addGround(t, w)
	box := addBody(t, w, shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), 1, mgl64.Vec3{0, 0.5, 0})

	for i := 0; i < 180 && !box.Sleeping; i++ {
		w.Step(dt)
	}
	require.True(t, box.Sleeping)
	y := box.Position.Y()
	w.Step(dt)
	assert.Equal(t, y, box.Position.Y())

	box.ApplyImpulse(mgl64.Vec3{0, 3, 0}, box.Position)
	assert.False(t, box.Sleeping)
	w.Step(dt)
	assert.Greater(t, box.Position.Y(), y)
}

func TestInvalidMassBodyStaysPut(t *testing.T) {
	w := newTestWorld(t, nil)
	logger := &recordingLogger{}
	w.SetLogger(logger)
	b := addBody(t, w, shape.NewSphere(1), 0, mgl64.Vec3{0, 3, 0})
	assert.NotEmpty(t, logger.warns)

	w.Step(dt)
	assert.Equal(t, mgl64.Vec3{0, 3, 0}, b.Position)
}

func TestRegistrationErrors(t *testing.T) {
	w := newTestWorld(t, nil)
	b := addBody(t, w, shape.NewSphere(1), 1, mgl64.Vec3{})
	assert.ErrorIs(t, w.AddBody(b), ErrBodyExists)
	assert.ErrorIs(t, w.AddBody(nil), ErrNilBody)

	stray := body.NewRigid(shape.NewSphere(1), 1)
	assert.ErrorIs(t, w.RemoveBody(stray), ErrUnknownBody)
	assert.ErrorIs(t, w.AddConstraint(constraint.NewPoint(b, stray, mgl64.Vec3{}, mgl64.Vec3{})), ErrUnknownBody)

	j := constraint.NewPoint(b, nil, mgl64.Vec3{}, mgl64.Vec3{})
	require.NoError(t, w.AddConstraint(j))
	assert.ErrorIs(t, w.AddConstraint(j), ErrConstraintExists)
	require.NoError(t, w.RemoveConstraint(j))
	assert.ErrorIs(t, w.RemoveConstraint(j), ErrUnknownConstraint)
}

func TestRemoveBodyCleansUp(t *testing.T) {
	w := newTestWorld(t, nil)
	ground := addGround(t, w)
	box := addBody(t, w, shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), 1, mgl64.Vec3{0, 0.49, 0})
	other := addBody(t, w, shape.NewSphere(0.25), 1, mgl64.Vec3{5, 5, 5})
	require.NoError(t, w.AddConstraint(constraint.NewPoint(box, other, mgl64.Vec3{}, mgl64.Vec3{})))
	w.Step(dt)
	require.NotEmpty(t, w.Manifolds())

	id := box.ID
	require.NoError(t, w.RemoveBody(box))
	assert.Zero(t, box.ID)
	assert.Empty(t, w.Manifolds())
	assert.Empty(t, w.Constraints())
	_, ok := w.Body(id)
	assert.False(t, ok)

	w.Step(dt)
	ends := eventsOf(w, EventEnd, false)
	require.Len(t, ends, 1)
	assert.Equal(t, ground.ID, ends[0].BodyA)
	assert.Equal(t, id, ends[0].BodyB)
}

func TestSnapshot(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.Gravity = [3]float64{} })
	b := addBody(t, w, shape.NewSphere(1), 1, mgl64.Vec3{1, 2, 3})
	b.SetVelocity(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{})
	w.Step(0.5)

	snap := w.Snapshot()
	require.Len(t, snap, 1)
	s := snap[0]
	assert.Equal(t, b.ID, s.ID)
	assert.InDelta(t, 1.5, s.Position.X(), 1e-12)
	assert.InDelta(t, 1.5, float64(s.Matrix.At(0, 3)), 1e-6)
	assert.InDelta(t, 2, float64(s.Matrix.At(1, 3)), 1e-6)
	assert.Equal(t, uint64(1), w.Tick())
}

func TestSubstepsMatchSmallerSteps(t *testing.T) {
	run := func(substeps int, step float64, n int) mgl64.Vec3 {
		w := newTestWorld(t, func(c *Config) { c.Substeps = substeps })
		b := addBody(t, w, shape.NewSphere(1), 1, mgl64.Vec3{0, 10, 0})
		for i := 0; i < n; i++ {
			w.Step(step)
		}
		return b.Position
	}
	assert.InDelta(t, run(1, dt/4, 40).Y(), run(4, dt, 10).Y(), 1e-12)
}

func TestGravityOverrideAndGenerators(t *testing.T) {
	w := newTestWorld(t, nil)
	floating := addBody(t, w, shape.NewSphere(1), 1, mgl64.Vec3{})
	floating.SetGravity(mgl64.Vec3{})
	pushed := addBody(t, w, shape.NewSphere(1), 1, mgl64.Vec3{10, 0, 0})
	pushed.SetGravity(mgl64.Vec3{})
	gen := NewConstantForce(pushed, mgl64.Vec3{6, 0, 0})
	w.AddForceGenerator(gen)

	w.Step(dt)
	assert.Equal(t, mgl64.Vec3{}, floating.Position)
	assert.InDelta(t, 6*dt, pushed.LinearVelocity.X(), 1e-12)

	w.RemoveForceGenerator(gen)
	w.Step(dt)
	assert.InDelta(t, 6*dt, pushed.LinearVelocity.X(), 1e-12)
}

func TestRemovedBodyLosesGenerators(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.Gravity = [3]float64{} })
	pushed := addBody(t, w, shape.NewSphere(1), 1, mgl64.Vec3{})
	gen := NewConstantForce(pushed, mgl64.Vec3{6, 0, 0})
	w.AddForceGenerator(gen)
	require.NoError(t, w.RemoveBody(pushed))
	assert.Empty(t, w.generators)

	// A generator the world no longer runs still must not touch a detached body.
	gen.Apply(dt)
	assert.Equal(t, mgl64.Vec3{}, pushed.Force)

	for i := 0; i < 10; i++ {
		w.Step(dt)
	}
	require.NoError(t, w.AddBody(pushed))
	w.Step(dt)
	assert.Equal(t, mgl64.Vec3{}, pushed.LinearVelocity)
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Broadphase = "octree"
	_, err := NewWorld(cfg)
	assert.Error(t, err)
}
