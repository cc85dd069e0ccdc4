package rigid

import (
	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/narrowphase"
)

// Step advances the world by dt, split into the configured substeps. A
// non-positive dt does nothing.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.events = append(w.events[:0], w.pending...)
	w.pending = w.pending[:0]

	n := max(w.cfg.Substeps, 1)
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		w.substep(h, i == n-1)
	}
	w.tick++
}

func (w *World) substep(dt float64, last bool) {
	tick := w.manifolds.Tick()

	w.applyForces(dt)
	for _, b := range w.bodies {
		moving := b.Dynamic()
		b.Integrate(dt)
		if moving {
			b.UpdateDerived()
		}
	}

	w.broadphase.Update()
	// Manifolds are refreshed before new contacts merge into them.
	for _, m := range w.manifolds.Update() {
		w.events = append(w.events, pairEvent(EventEnd, m.A, m.B))
	}
	w.detect()

	for _, c := range w.solver.Solve(dt, w.manifolds, w.constraints, w.bodies) {
		w.logger.Infof("%s constraint %d broke", c.Kind(), c.Common().ID)
	}

	for _, b := range w.bodies {
		b.UpdateSleep(dt, w.cfg.SleepThreshold, w.cfg.SleepTime)
	}

	for _, m := range w.manifolds.Manifolds() {
		switch {
		case m.Born() == tick:
			w.events = append(w.events, manifoldEvent(EventStart, m))
		case last:
			w.events = append(w.events, manifoldEvent(EventContinue, m))
		}
	}
	w.diffGhosts(last)
}

func (w *World) applyForces(dt float64) {
	for _, b := range w.bodies {
		if !b.Dynamic() {
			continue
		}
		g := w.gravity
		if override, ok := b.Gravity(); ok {
			g = override
		}
		// Accumulated directly so that gravity never wakes a body.
		b.Force = b.Force.Add(g.Mul(b.Mass()))
	}
	for _, g := range w.generators {
		g.Apply(dt)
	}
}

func proxyOf(b *body.Body) narrowphase.Proxy {
	return narrowphase.NewProxy(b.Shape(), b.Transform())
}

// detect runs the narrowphase over the broadphase pairs. Rigid pairs feed
// the manifold list; pairs involving a ghost only record the overlap.
func (w *World) detect() {
	for _, p := range w.broadphase.CollisionPairs() {
		a, b := p.A, p.B
		if a.IsGhost() || b.IsGhost() {
			c, ok := w.detector.Overlap(proxyOf(a), proxyOf(b))
			if !ok {
				continue
			}
			if a.IsGhost() {
				a.Sense(sensedContact(b, c))
			}
			if b.IsGhost() {
				b.Sense(sensedContact(a, c.Swapped()))
			}
			continue
		}
		if !a.Dynamic() && !b.Dynamic() {
			continue
		}

		contacts := w.detector.Detect(proxyOf(a), proxyOf(b))
		for _, c := range contacts {
			w.manifolds.AddContact(a, b, c)
		}
		if len(contacts) > 0 {
			wakeTouching(a, b)
		}
	}
}

// sensedContact turns c, with the ghost as A, into the ghost's view of other.
func sensedContact(other *body.Body, c narrowphase.Contact) body.Contact {
	return body.Contact{Other: other, Point: c.Point, Normal: c.Normal, Depth: c.Depth}
}

// wakeTouching wakes a sleeping body touched by an awake dynamic one.
func wakeTouching(a, b *body.Body) {
	if a.Sleeping && b.Dynamic() {
		a.Wake()
	}
	if b.Sleeping && a.Dynamic() {
		b.Wake()
	}
}

func (w *World) diffGhosts(last bool) {
	for _, g := range w.ghosts {
		started, continued, ended := g.DiffSensed()
		for _, c := range started {
			w.events = append(w.events, ghostEvent(EventStart, g, c))
		}
		if last {
			for _, c := range continued {
				w.events = append(w.events, ghostEvent(EventContinue, g, c))
			}
		}
		for _, c := range ended {
			w.events = append(w.events, ghostEvent(EventEnd, g, c))
		}
	}
}
