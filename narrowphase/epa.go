package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

const (
	epaMaxIterations = 20
	epaTolerance     = 1e-4
	epaEpsilon       = 1e-9
)

// face is a triangle of the EPA polytope. Vertices wind counter-clockwise
// seen from outside; edge i runs from v[i] to v[(i+1)%3] and adj[i] is the
// face across it, which sees the same edge as its own edge adjEdge[i].
type face struct {
	v       [3]int
	adj     [3]int
	adjEdge [3]int
	normal  mgl64.Vec3
	closest mgl64.Vec3
	weights [3]float64
	dist    float64
	valid   bool
	active  bool
}

type edgeRef struct {
	face, edge int
}

// polytope keeps vertices and faces in index arenas. Faces are never
// removed, only deactivated.
type polytope struct {
	verts []supportPoint
	faces []face
}

func (p *polytope) addFace(a, b, c int) int {
	f := face{v: [3]int{a, b, c}, adj: [3]int{-1, -1, -1}, active: true}
	wa, wb, wc := p.verts[a].w, p.verts[b].w, p.verts[c].w
	n, ok := core.SafeNormalize(wb.Sub(wa).Cross(wc.Sub(wa)))
	if ok {
		f.normal = n
		f.closest, f.weights = core.ClosestPointTriangle(mgl64.Vec3{}, wa, wb, wc)
		f.dist = f.closest.Len()
		f.valid = !math.IsNaN(f.dist)
	}
	p.faces = append(p.faces, f)
	return len(p.faces) - 1
}

func (p *polytope) link(f, e, g, ge int) {
	p.faces[f].adj[e], p.faces[f].adjEdge[e] = g, ge
	p.faces[g].adj[ge], p.faces[g].adjEdge[ge] = f, e
}

// linkByVertices connects every unlinked edge of the given faces to the
// edge running the opposite way.
func (p *polytope) linkByVertices(faces []int) {
	open := make(map[[2]int]edgeRef)
	for _, fi := range faces {
		for e := 0; e < 3; e++ {
			if p.faces[fi].adj[e] >= 0 {
				continue
			}
			from, to := p.faces[fi].v[e], p.faces[fi].v[(e+1)%3]
			if other, ok := open[[2]int{to, from}]; ok {
				p.link(fi, e, other.face, other.edge)
				delete(open, [2]int{to, from})
				continue
			}
			open[[2]int{from, to}] = edgeRef{fi, e}
		}
	}
}

func newPolytope(s *simplex) *polytope {
	p := &polytope{verts: make([]supportPoint, 0, 32), faces: make([]face, 0, 64)}
	for i := 0; i < 4; i++ {
		p.verts = append(p.verts, s.points[i])
	}
	// Orient so that face (0,1,2) looks away from vertex 3.
	w := func(i int) mgl64.Vec3 { return p.verts[i].w }
	if w(1).Sub(w(0)).Cross(w(2).Sub(w(0))).Dot(w(3).Sub(w(0))) > 0 {
		p.verts[1], p.verts[2] = p.verts[2], p.verts[1]
	}
	faces := []int{
		p.addFace(0, 1, 2),
		p.addFace(0, 3, 1),
		p.addFace(0, 2, 3),
		p.addFace(1, 3, 2),
	}
	p.linkByVertices(faces)
	return p
}

func (p *polytope) closestFace() int {
	best := -1
	for i := range p.faces {
		f := &p.faces[i]
		if !f.active || !f.valid {
			continue
		}
		if best < 0 || f.dist < p.faces[best].dist {
			best = i
		}
	}
	return best
}

func (p *polytope) visible(f int, w mgl64.Vec3) bool {
	fc := &p.faces[f]
	return fc.normal.Dot(w.Sub(p.verts[fc.v[0]].w)) > epaEpsilon
}

// expand adds vertex vi, seen from face start. Visible faces are flood-filled
// from start with an explicit stack and deactivated; the boundary of that
// region is re-closed with a fan of new faces around the vertex.
func (p *polytope) expand(start, vi int) bool {
	w := p.verts[vi].w
	p.faces[start].active = false

	var horizon []edgeRef
	stack := make([]edgeRef, 0, 16)
	for e := 2; e >= 0; e-- {
		stack = append(stack, edgeRef{p.faces[start].adj[e], p.faces[start].adjEdge[e]})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.face < 0 {
			return false
		}
		f := &p.faces[top.face]
		if !f.active {
			continue
		}
		if !p.visible(top.face, w) {
			horizon = append(horizon, top)
			continue
		}
		f.active = false
		next1 := (top.edge + 1) % 3
		next2 := (top.edge + 2) % 3
		stack = append(stack,
			edgeRef{f.adj[next2], f.adjEdge[next2]},
			edgeRef{f.adj[next1], f.adjEdge[next1]},
		)
	}
	if len(horizon) < 3 {
		return false
	}

	created := make([]int, 0, len(horizon))
	for _, h := range horizon {
		hf := p.faces[h.face]
		a := hf.v[h.edge]
		b := hf.v[(h.edge+1)%3]
		nf := p.addFace(b, a, vi)
		p.link(nf, 0, h.face, h.edge)
		created = append(created, nf)
	}
	p.linkByVertices(created)
	for _, nf := range created {
		for e := 0; e < 3; e++ {
			if p.faces[nf].adj[e] < 0 {
				return false
			}
		}
	}
	return true
}

// epa expands the terminal GJK tetrahedron to find the face of the Minkowski
// difference closest to the origin and turns it into a contact.
func epa(a, b Proxy, s *simplex) (Contact, bool) {
	p := newPolytope(s)

	best := p.closestFace()
	for i := 0; i < epaMaxIterations; i++ {
		if best < 0 {
			return Contact{}, false
		}
		f := p.faces[best]

		dir := f.normal
		if f.dist > epaEpsilon {
			dir = f.closest.Mul(1 / f.dist)
		}
		sp := minkowskiSupport(a, b, dir)
		if sp.w.Dot(dir)-f.dist < epaTolerance {
			break
		}

		p.verts = append(p.verts, sp)
		if !p.expand(best, len(p.verts)-1) {
			// Broken topology: report the last good face.
			break
		}
		next := p.closestFace()
		if next < 0 {
			break
		}
		best = next
	}
	if best < 0 {
		return Contact{}, false
	}
	return p.contact(a, b, best)
}

func (p *polytope) contact(a, b Proxy, fi int) (Contact, bool) {
	f := p.faces[fi]
	var pa, pb mgl64.Vec3
	for i := 0; i < 3; i++ {
		wgt := f.weights[i]
		if math.IsNaN(wgt) {
			return Contact{}, false
		}
		pa = pa.Add(p.verts[f.v[i]].a.Mul(wgt))
		pb = pb.Add(p.verts[f.v[i]].b.Mul(wgt))
	}

	normal := f.normal
	if f.dist > epaEpsilon {
		normal = f.closest.Mul(1 / f.dist)
	}
	if !core.IsFinite(normal) || normal.LenSqr() < 0.5 {
		fallback, ok := core.SafeNormalize(b.Transform.Position.Sub(a.Transform.Position))
		if !ok {
			return Contact{}, false
		}
		normal = fallback
	}
	if !core.IsFinite(pa) || !core.IsFinite(pb) {
		return Contact{}, false
	}
	return newContact(a, b, pa, pb, normal, f.dist+Margin, Margin), true
}
