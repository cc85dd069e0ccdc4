// Package rigid is a real-time 3D rigid-body physics engine. A World owns
// bodies and joints and advances them with fixed steps through broadphase,
// narrowphase, persistent contact manifolds and an iterative solver.
package rigid

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/broadphase"
	"github.com/gekko3d/rigid/constraint"
	"github.com/gekko3d/rigid/contact"
	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/narrowphase"
	"github.com/gekko3d/rigid/solver"
)

// World is not safe for concurrent use; see Bridge for running one on its
// own goroutine.
type World struct {
	cfg     Config
	gravity mgl64.Vec3
	logger  Logger

	bodyIDs       core.IDAllocator
	constraintIDs core.IDAllocator

	bodies      []*body.Body
	byID        map[uint32]*body.Body
	ghosts      []*body.Body
	constraints []constraint.Constraint
	generators  []ForceGenerator

	broadphase broadphase.Broadphase
	detector   *narrowphase.Detector
	manifolds  *contact.List
	solver     *solver.Solver

	events  []CollisionEvent
	pending []CollisionEvent
	tick    uint64
}

func NewWorld(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:       cfg,
		gravity:   cfg.GravityVec(),
		logger:    NewNopLogger(),
		byID:      make(map[uint32]*body.Body),
		detector:  narrowphase.NewDetector(),
		manifolds: contact.NewList(),
		solver:    solver.New(cfg.Solver),
	}
	w.broadphase = newBroadphase(cfg)
	return w, nil
}

func newBroadphase(cfg Config) broadphase.Broadphase {
	switch cfg.Broadphase {
	case BroadphaseNaive:
		return broadphase.NewNaive()
	case BroadphaseGrid:
		return broadphase.NewGrid(cfg.CellSize)
	default:
		return broadphase.NewSAP()
	}
}

func (w *World) SetLogger(l Logger) {
	w.logger = orNop(l)
}

func (w *World) Logger() Logger {
	return w.logger
}

func (w *World) Config() Config {
	return w.cfg
}

func (w *World) Gravity() mgl64.Vec3 {
	return w.gravity
}

func (w *World) SetGravity(g mgl64.Vec3) {
	w.gravity = g
	for _, b := range w.bodies {
		b.Wake()
	}
}

// SetSolverConfig retunes the solver between steps.
func (w *World) SetSolverConfig(cfg solver.Config) {
	w.cfg.Solver = cfg
	w.solver.SetConfig(cfg)
}

// Tick counts completed steps.
func (w *World) Tick() uint64 {
	return w.tick
}

// Bodies returns the registered bodies in ID order.
func (w *World) Bodies() []*body.Body {
	return slices.Clone(w.bodies)
}

func (w *World) Body(id uint32) (*body.Body, bool) {
	b, ok := w.byID[id]
	return b, ok
}

func (w *World) Constraints() []constraint.Constraint {
	return slices.Clone(w.constraints)
}

// Manifolds returns the live contact manifolds ordered by body IDs.
func (w *World) Manifolds() []*contact.Manifold {
	return w.manifolds.Manifolds()
}

// Events returns the collision events of the last Step.
func (w *World) Events() []CollisionEvent {
	return w.events
}

// AddBody registers b, assigning its ID.
func (w *World) AddBody(b *body.Body) error {
	if b == nil {
		return ErrNilBody
	}
	if b.ID != 0 {
		return fmt.Errorf("%w: id %d", ErrBodyExists, b.ID)
	}
	b.ID = w.bodyIDs.Next()
	b.UpdateDerived()
	w.bodies = append(w.bodies, b)
	w.byID[b.ID] = b
	if b.IsGhost() {
		w.ghosts = append(w.ghosts, b)
	}
	w.broadphase.AddBody(b)

	if !b.MassValid() {
		w.logger.Warnf("body %d has invalid mass data (mass %g); it will not move", b.ID, b.Mass())
	}
	if w.logger.DebugEnabled() {
		w.logger.Debugf("added %s body %d (%s)", b.Kind(), b.ID, b.Shape().Kind())
	}
	return nil
}

// RemoveBody deregisters b, destroys its manifolds and drops the joints and
// force generators that use it.
func (w *World) RemoveBody(b *body.Body) error {
	if b == nil {
		return ErrNilBody
	}
	if registered, ok := w.byID[b.ID]; !ok || registered != b {
		return fmt.Errorf("%w: id %d", ErrUnknownBody, b.ID)
	}

	w.broadphase.RemoveBody(b)
	for _, m := range w.manifolds.RemoveBody(b) {
		w.pending = append(w.pending, pairEvent(EventEnd, m.A, m.B))
	}
	for _, g := range w.ghosts {
		g.Forget(b)
	}

	w.constraints = slices.DeleteFunc(w.constraints, func(c constraint.Constraint) bool {
		ca, cb := c.Bodies()
		if ca != b && cb != b {
			return false
		}
		c.Common().ID = 0
		return true
	})
	w.generators = slices.DeleteFunc(w.generators, func(g ForceGenerator) bool {
		bound, ok := g.(bodyBound)
		return ok && bound.Targets(b)
	})
	w.bodies = slices.DeleteFunc(w.bodies, func(x *body.Body) bool { return x == b })
	w.ghosts = slices.DeleteFunc(w.ghosts, func(x *body.Body) bool { return x == b })
	delete(w.byID, b.ID)

	w.logger.Debugf("removed body %d", b.ID)
	b.ID = 0
	return nil
}

// AddConstraint registers a joint. Both bodies must already be in the world
// unless the joint is anchored to the world.
func (w *World) AddConstraint(c constraint.Constraint) error {
	if c == nil {
		return ErrNilConstraint
	}
	base := c.Common()
	if base.ID != 0 {
		return fmt.Errorf("%w: id %d", ErrConstraintExists, base.ID)
	}
	a, b := c.Bodies()
	if !w.registered(a) {
		return fmt.Errorf("%w: constraint body A", ErrUnknownBody)
	}
	if !base.Anchored() && !w.registered(b) {
		return fmt.Errorf("%w: constraint body B", ErrUnknownBody)
	}

	base.ID = w.constraintIDs.Next()
	w.constraints = append(w.constraints, c)
	a.Wake()
	b.Wake()
	w.logger.Debugf("added %s constraint %d", c.Kind(), base.ID)
	return nil
}

func (w *World) RemoveConstraint(c constraint.Constraint) error {
	if c == nil {
		return ErrNilConstraint
	}
	i := slices.Index(w.constraints, c)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrUnknownConstraint, c.Common().ID)
	}
	w.constraints = slices.Delete(w.constraints, i, i+1)
	a, b := c.Bodies()
	a.Wake()
	b.Wake()
	w.logger.Debugf("removed constraint %d", c.Common().ID)
	c.Common().ID = 0
	return nil
}

func (w *World) registered(b *body.Body) bool {
	if b == nil {
		return false
	}
	registered, ok := w.byID[b.ID]
	return ok && registered == b
}

func (w *World) AddForceGenerator(g ForceGenerator) {
	w.generators = append(w.generators, g)
}

func (w *World) RemoveForceGenerator(g ForceGenerator) {
	w.generators = slices.DeleteFunc(w.generators, func(x ForceGenerator) bool { return x == g })
}
