package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/contact"
	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/pool"
)

// Contact keeps one manifold point from penetrating. It lives as long as the
// point does and carries its multiplier across steps for warm starting.
type Contact struct {
	Base
	Handle pool.Handle
	// Depth is the point's penetration at the last Build.
	Depth float64
	// PushMultiplier accumulates the split-impulse solve.
	PushMultiplier float64

	list *contact.List
}

func NewContact(list *contact.List, h pool.Handle, a, b *body.Body) *Contact {
	c := &Contact{}
	c.Init(list, h, a, b)
	return c
}

// Init (re)binds c to a manifold point, keeping its row storage.
func (c *Contact) Init(list *contact.List, h pool.Handle, a, b *body.Body) {
	*c = Contact{
		Base:   Base{a: a, b: b, rows: reuseRows(c.rows, 1)},
		Handle: h,
		list:   list,
	}
}

func (c *Contact) Kind() Kind { return KindContact }

// Alive reports whether the backing contact point still exists.
func (c *Contact) Alive() bool {
	_, ok := c.list.Details(c.Handle)
	return ok
}

func (c *Contact) Build(dt float64, p Params) {
	r := &c.rows[0]
	d, ok := c.list.Details(c.Handle)
	if !ok {
		r.Disable()
		return
	}
	r.Skip = false
	r.Linear(d.Normal, d.Point.Sub(c.a.Position), d.Point.Sub(c.b.Position))
	r.Bounds(0, math.Inf(1))

	c.Depth = d.Depth
	c.PushMultiplier = 0

	// A separated point only stops the bodies from closing more than the gap.
	r.Bias = 0
	if c.Depth < 0 {
		r.Bias = c.Depth / dt
	} else if closing := r.Velocity(c.a, c.b); closing < -p.RestitutionThreshold {
		r.Bias = -d.Restitution * closing
	}
}

// Friction opposes sliding at a contact point along two tangents. Its bounds
// follow the paired contact's current normal impulse.
type Friction struct {
	Base
	Contact *Contact
	// Coefficient is the combined friction of the point.
	Coefficient float64
}

func NewFriction(c *Contact) *Friction {
	f := &Friction{}
	f.Init(c)
	return f
}

// Init (re)binds f to contact c, keeping its row storage.
func (f *Friction) Init(c *Contact) {
	*f = Friction{Base: Base{a: c.a, b: c.b, rows: reuseRows(f.rows, 2)}, Contact: c}
}

func (f *Friction) Kind() Kind { return KindFriction }

func (f *Friction) Build(dt float64, p Params) {
	d, ok := f.Contact.list.Details(f.Contact.Handle)
	if !ok {
		f.rows[0].Disable()
		f.rows[1].Disable()
		return
	}
	f.Coefficient = d.Friction
	rA := d.Point.Sub(f.a.Position)
	rB := d.Point.Sub(f.b.Position)
	t1, t2 := core.Basis(d.Normal)
	for i, t := range [2]mgl64.Vec3{t1, t2} {
		r := &f.rows[i]
		r.Skip = f.Coefficient <= 0
		r.Linear(t, rA, rB)
		r.Bias = 0
		r.Bounds(0, 0)
	}
}

// UpdateBounds sets the friction cone from the contact's normal impulse.
func (f *Friction) UpdateBounds() {
	limit := f.Coefficient * f.Contact.rows[0].Multiplier
	for i := range f.rows {
		f.rows[i].Bounds(-limit, limit)
	}
}
