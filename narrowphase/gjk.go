package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

const (
	gjkMaxIterations = 20
	gjkTolerance     = 1e-10
	// relative progress below which the closest point is considered found
	gjkProgress = 1e-6
)

// supportPoint is a vertex of the Minkowski difference A-B with the world
// support points on each shape that produced it.
type supportPoint struct {
	w, a, b mgl64.Vec3
}

func minkowskiSupport(a, b Proxy, dir mgl64.Vec3) supportPoint {
	pa := a.Support(dir)
	pb := b.Support(dir.Mul(-1))
	return supportPoint{w: pa.Sub(pb), a: pa, b: pb}
}

type simplex struct {
	points [4]supportPoint
	count  int
}

func (s *simplex) push(p supportPoint) {
	s.points[s.count] = p
	s.count++
}

func (s *simplex) vertices() []mgl64.Vec3 {
	var out [4]mgl64.Vec3
	for i := 0; i < s.count; i++ {
		out[i] = s.points[i].w
	}
	return out[:s.count]
}

// closest reduces the simplex to the feature nearest the origin and returns
// that point with the weights of the surviving points.
func (s *simplex) closest() (mgl64.Vec3, [4]float64) {
	if s.count == 4 {
		if face, ok := s.outsideFace(); ok {
			s.points[0], s.points[1], s.points[2] = face[0], face[1], face[2]
			s.count = 3
		} else {
			return mgl64.Vec3{}, [4]float64{}
		}
	}

	v, weights := core.ClosestPointSimplex(s.vertices())
	kept := 0
	var reduced [4]float64
	for i := 0; i < s.count; i++ {
		if weights[i] > 0 {
			s.points[kept] = s.points[i]
			reduced[kept] = weights[i]
			kept++
		}
	}
	if kept == 0 {
		kept = 1
		reduced[0] = 1
	}
	s.count = kept
	return v, reduced
}

// outsideFace picks, among the tetrahedron faces whose outer side holds the
// origin, the one whose outward normal points most directly at the origin.
// ok is false when the origin is inside.
func (s *simplex) outsideFace() ([3]supportPoint, bool) {
	faces := [4][4]int{{0, 1, 2, 3}, {0, 1, 3, 2}, {0, 2, 3, 1}, {1, 2, 3, 0}}
	best := -1
	bestDist := 0.0
	for i, f := range faces {
		a, b, c, opposite := s.points[f[0]].w, s.points[f[1]].w, s.points[f[2]].w, s.points[f[3]].w
		n, ok := core.SafeNormalize(b.Sub(a).Cross(c.Sub(a)))
		if !ok {
			continue
		}
		if n.Dot(opposite.Sub(a)) > 0 {
			n = n.Mul(-1)
		}
		if dist := -a.Dot(n); dist > bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return [3]supportPoint{}, false
	}
	f := faces[best]
	return [3]supportPoint{s.points[f[0]], s.points[f[1]], s.points[f[2]]}, true
}

func (s *simplex) witness(weights [4]float64) (mgl64.Vec3, mgl64.Vec3) {
	var pa, pb mgl64.Vec3
	for i := 0; i < s.count; i++ {
		pa = pa.Add(s.points[i].a.Mul(weights[i]))
		pb = pb.Add(s.points[i].b.Mul(weights[i]))
	}
	return pa, pb
}

type gjkStatus int

const (
	gjkSeparated gjkStatus = iota
	gjkShallow
	gjkOverlap
)

// gjk walks the simplex toward the origin of the Minkowski difference. It
// reports a shallow contact when the shapes are apart by less than Margin,
// and leaves the simplex ready for EPA when they overlap.
func gjk(a, b Proxy, s *simplex) (gjkStatus, Contact) {
	dir := b.Transform.Position.Sub(a.Transform.Position)
	if dir.LenSqr() < gjkTolerance {
		dir = mgl64.Vec3{1, 0, 0}
	}

	// v is the current closest point of the simplex to the origin.
	s.count = 0
	s.push(minkowskiSupport(a, b, dir))
	v := s.points[0].w
	weights := [4]float64{1}

	for i := 0; i < gjkMaxIterations; i++ {
		vv := v.Dot(v)
		if vv < gjkTolerance {
			return gjkOverlap, Contact{}
		}

		search := v.Mul(-1)
		p := minkowskiSupport(a, b, search)
		// Separating axis with a gap wider than the margin.
		gap := -p.w.Dot(search) / math.Sqrt(vv)
		if gap > Margin {
			return gjkSeparated, Contact{}
		}
		// No further progress toward the origin: v is the closest point of
		// the Minkowski difference and the shapes are apart by |v|.
		if vv-v.Dot(p.w) <= gjkProgress*vv {
			return shallowContact(a, b, s, v, weights)
		}

		s.push(p)
		v, weights = s.closest()
		if s.count == 4 {
			return gjkOverlap, Contact{}
		}
	}
	return gjkSeparated, Contact{}
}

func shallowContact(a, b Proxy, s *simplex, v mgl64.Vec3, weights [4]float64) (gjkStatus, Contact) {
	dist := v.Len()
	if dist > Margin {
		return gjkSeparated, Contact{}
	}
	normal := v.Mul(-1 / dist)
	pa, pb := s.witness(weights)
	if !core.IsFinite(pa) || !core.IsFinite(pb) {
		return gjkSeparated, Contact{}
	}
	return gjkShallow, newContact(a, b, pa, pb, normal, Margin-dist, Margin)
}

// completeSimplex grows a touching simplex into a tetrahedron so EPA has a
// volume to expand. ok is false if the Minkowski difference is flat.
func completeSimplex(a, b Proxy, s *simplex) bool {
	axes := [6]mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

	if s.count == 1 {
		for _, axis := range axes {
			p := minkowskiSupport(a, b, axis)
			if p.w.Sub(s.points[0].w).LenSqr() > gjkTolerance {
				s.push(p)
				break
			}
		}
		if s.count < 2 {
			return false
		}
	}

	if s.count == 2 {
		edge := s.points[1].w.Sub(s.points[0].w)
		n, ok := core.SafeNormalize(edge)
		if !ok {
			return false
		}
		t1, t2 := core.Basis(n)
		for _, dir := range []mgl64.Vec3{t1, t1.Mul(-1), t2, t2.Mul(-1)} {
			p := minkowskiSupport(a, b, dir)
			if p.w.Sub(s.points[0].w).Cross(edge).LenSqr() > gjkTolerance {
				s.push(p)
				break
			}
		}
		if s.count < 3 {
			return false
		}
	}

	if s.count == 3 {
		o := s.points[0].w
		n, ok := core.SafeNormalize(s.points[1].w.Sub(o).Cross(s.points[2].w.Sub(o)))
		if !ok {
			return false
		}
		up := minkowskiSupport(a, b, n)
		down := minkowskiSupport(a, b, n.Mul(-1))
		du, dd := up.w.Sub(o).Dot(n), -down.w.Sub(o).Dot(n)
		best, dist := up, du
		if dd > du {
			best, dist = down, dd
		}
		if dist < 1e-9 {
			return false
		}
		s.push(best)
	}
	return s.count == 4
}
