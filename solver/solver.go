// Package solver resolves contacts and joints with projected Gauss-Seidel
// over constraint rows, using split impulses for penetration.
package solver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/constraint"
	"github.com/gekko3d/rigid/contact"
	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/pool"
)

type Config struct {
	Iterations        int `yaml:"iterations"`
	ContactIterations int `yaml:"contact_iterations"`
	// Relaxation scales every Gauss-Seidel update (successive over-relaxation).
	Relaxation float64 `yaml:"relaxation"`
	// WarmStart scales last step's multipliers before the first sweep.
	WarmStart float64 `yaml:"warm_start"`
	// PenetrationRelaxation is the fraction of penetration removed per step by
	// the split-impulse pass.
	PenetrationRelaxation float64 `yaml:"penetration_relaxation"`
	// Slop is the penetration left uncorrected to keep resting contacts alive.
	Slop                 float64 `yaml:"slop"`
	Baumgarte            float64 `yaml:"baumgarte"`
	Threshold            float64 `yaml:"threshold"`
	RestitutionThreshold float64 `yaml:"restitution_threshold"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:            10,
		ContactIterations:     5,
		Relaxation:            1,
		WarmStart:             0.9,
		PenetrationRelaxation: 0.9,
		Slop:                  0.005,
		Baumgarte:             0.2,
		Threshold:             1e-6,
		RestitutionThreshold:  0.2,
	}
}

func (c Config) params() constraint.Params {
	return constraint.Params{Baumgarte: c.Baumgarte, RestitutionThreshold: c.RestitutionThreshold}
}

// Solver owns the contact and friction constraints built from manifolds.
// Joint constraints are owned by the caller and passed to each Solve.
type Solver struct {
	cfg       Config
	byHandle  map[pool.Handle]*constraint.Contact
	contacts  []*constraint.Contact
	frictions []*constraint.Friction
	joints    []constraint.Constraint

	// Retired contact and friction constraints, reused for new points.
	contactPool  *pool.FreeList[constraint.Contact]
	frictionPool *pool.FreeList[constraint.Friction]
}

func New(cfg Config) *Solver {
	return &Solver{
		cfg:          cfg,
		byHandle:     make(map[pool.Handle]*constraint.Contact),
		contactPool:  pool.NewFreeList[constraint.Contact](),
		frictionPool: pool.NewFreeList[constraint.Friction](),
	}
}

func (s *Solver) Config() Config {
	return s.cfg
}

func (s *Solver) SetConfig(cfg Config) {
	s.cfg = cfg
}

// Contacts returns the live contact constraints in creation order.
func (s *Solver) Contacts() []*constraint.Contact {
	return s.contacts
}

// Frictions returns the friction constraints, paired index for index with
// Contacts.
func (s *Solver) Frictions() []*constraint.Friction {
	return s.frictions
}

// Solve runs the whole pipeline for one step and returns the joints that
// broke.
func (s *Solver) Solve(dt float64, list *contact.List, joints []constraint.Constraint, bodies []*body.Body) []constraint.Constraint {
	if dt <= 0 {
		return nil
	}
	for _, b := range bodies {
		b.ResetSolver()
	}
	s.ProcessContactManifolds(list)
	s.PrepareConstraints(dt, joints)
	s.ResolveContacts(dt, bodies)
	s.SolveConstraints()
	return s.ApplyConstraints(dt, bodies)
}

// ProcessContactManifolds creates a contact and friction constraint for every
// new manifold point and drops the ones whose point is gone.
func (s *Solver) ProcessContactManifolds(list *contact.List) {
	kept := s.contacts[:0]
	keptFriction := s.frictions[:0]
	for i, c := range s.contacts {
		if !c.Alive() {
			delete(s.byHandle, c.Handle)
			s.contactPool.Put(c)
			s.frictionPool.Put(s.frictions[i])
			continue
		}
		kept = append(kept, c)
		keptFriction = append(keptFriction, s.frictions[i])
	}
	clear(s.contacts[len(kept):])
	clear(s.frictions[len(keptFriction):])
	s.contacts, s.frictions = kept, keptFriction

	for _, m := range list.Manifolds() {
		for _, h := range m.Points {
			if _, ok := s.byHandle[h]; ok {
				continue
			}
			c := s.contactPool.Get()
			c.Init(list, h, m.A, m.B)
			f := s.frictionPool.Get()
			f.Init(c)
			s.byHandle[h] = c
			s.contacts = append(s.contacts, c)
			s.frictions = append(s.frictions, f)
		}
	}
}

// PrepareConstraints rebuilds every row and computes its effective mass and
// velocity target.
func (s *Solver) PrepareConstraints(dt float64, joints []constraint.Constraint) {
	p := s.cfg.params()
	s.joints = s.joints[:0]
	for _, j := range joints {
		if j.Active() {
			s.joints = append(s.joints, j)
		}
	}
	for _, c := range s.contacts {
		prepare(c, dt, p)
	}
	for _, f := range s.frictions {
		prepare(f, dt, p)
	}
	for _, j := range s.joints {
		prepare(j, dt, p)
	}
}

func prepare(c constraint.Constraint, dt float64, p constraint.Params) {
	c.Build(dt, p)
	a, b := c.Bodies()
	rows := c.Rows()
	for i := range rows {
		if !rows[i].Skip {
			rows[i].Prepare(a, b)
		}
	}
}

// ResolveContacts removes penetration through the push/turn velocity channel
// and moves the bodies by it directly, leaving real velocities untouched.
func (s *Solver) ResolveContacts(dt float64, bodies []*body.Body) {
	for iter := 0; iter < s.cfg.ContactIterations; iter++ {
		for _, c := range s.contacts {
			r := &c.Rows()[0]
			if r.Skip {
				continue
			}
			a, b := c.Bodies()
			target := s.cfg.PenetrationRelaxation * math.Max(c.Depth-s.cfg.Slop, 0) / dt
			delta := (target - r.Push(a, b)) / r.D
			next := math.Max(c.PushMultiplier+delta, 0)
			delta = next - c.PushMultiplier
			c.PushMultiplier = next
			r.ApplyPush(a, b, delta)
		}
	}

	for _, b := range bodies {
		if b.PushVelocity == (mgl64.Vec3{}) && b.TurnVelocity == (mgl64.Vec3{}) {
			continue
		}
		b.Position = b.Position.Add(b.PushVelocity.Mul(dt))
		b.Rotation = core.IntegrateRotation(b.Rotation, b.TurnVelocity, dt)
		b.UpdateDerived()
		b.PushVelocity = mgl64.Vec3{}
		b.TurnVelocity = mgl64.Vec3{}
	}
}

// SolveConstraints sweeps friction, joint and contact rows until the largest
// update falls under the threshold or the iteration budget runs out.
func (s *Solver) SolveConstraints() {
	s.WarmStart()
	for iter := 0; iter < s.cfg.Iterations; iter++ {
		var largest float64
		for _, f := range s.frictions {
			f.UpdateBounds()
			largest = math.Max(largest, s.sweep(f))
		}
		for _, j := range s.joints {
			largest = math.Max(largest, s.sweep(j))
		}
		for _, c := range s.contacts {
			largest = math.Max(largest, s.sweep(c))
		}
		if largest < s.cfg.Threshold {
			break
		}
	}
}

// WarmStart applies last step's scaled multipliers. Contacts go first so the
// friction cone is sized from their warm-started normal impulse.
func (s *Solver) WarmStart() {
	for _, c := range s.contacts {
		warmStart(c, s.cfg.WarmStart)
	}
	for _, f := range s.frictions {
		f.UpdateBounds()
		warmStart(f, s.cfg.WarmStart)
	}
	for _, j := range s.joints {
		warmStart(j, s.cfg.WarmStart)
	}
}

func warmStart(c constraint.Constraint, factor float64) {
	a, b := c.Bodies()
	rows := c.Rows()
	for i := range rows {
		r := &rows[i]
		if r.Skip {
			r.Multiplier = 0
			continue
		}
		r.Multiplier = r.Clamp(r.Cached * factor)
		r.Apply(a, b, r.Multiplier)
	}
}

func (s *Solver) sweep(c constraint.Constraint) float64 {
	a, b := c.Bodies()
	rows := c.Rows()
	var largest float64
	for i := range rows {
		r := &rows[i]
		if r.Skip {
			continue
		}
		delta := (r.Eta - r.Accumulated(a, b)) / r.D * s.cfg.Relaxation
		next := r.Clamp(r.Multiplier + delta)
		delta = next - r.Multiplier
		r.Multiplier = next
		r.Apply(a, b, delta)
		largest = math.Max(largest, math.Abs(delta))
	}
	return largest
}

// ApplyConstraints turns the accumulated impulses into velocity changes,
// caches multipliers for the next warm start and breaks overloaded joints.
func (s *Solver) ApplyConstraints(dt float64, bodies []*body.Body) []constraint.Constraint {
	for _, b := range bodies {
		imp := &b.SolverImpulse
		b.LinearVelocity = b.LinearVelocity.Add(mgl64.Vec3{imp[0], imp[1], imp[2]})
		b.AngularVelocity = b.AngularVelocity.Add(mgl64.Vec3{imp[3], imp[4], imp[5]})
		b.ResetSolver()
	}

	for _, f := range s.frictions {
		cache(f)
	}
	for _, c := range s.contacts {
		cache(c)
	}

	var broken []constraint.Constraint
	for _, j := range s.joints {
		cache(j)
		if constraint.CheckBreak(j, dt) {
			broken = append(broken, j)
		}
	}
	return broken
}

func cache(c constraint.Constraint) {
	rows := c.Rows()
	for i := range rows {
		rows[i].Cached = rows[i].Multiplier
	}
}
