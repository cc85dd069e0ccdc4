package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

const triEpsilon = 1e-9

// triTriSegment intersects two triangles with the interval method: each
// triangle is cut by the other's plane, both cuts are projected onto the
// line shared by the two planes, and the overlap of the two intervals is the
// intersection segment. Coplanar triangles report no intersection.
func triTriSegment(a, b [3]mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, bool) {
	na := a[1].Sub(a[0]).Cross(a[2].Sub(a[0]))
	nb := b[1].Sub(b[0]).Cross(b[2].Sub(b[0]))
	if na.LenSqr() < triEpsilon || nb.LenSqr() < triEpsilon {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	na = na.Normalize()
	nb = nb.Normalize()

	var da, db [3]float64
	for i := 0; i < 3; i++ {
		da[i] = nb.Dot(a[i].Sub(b[0]))
		db[i] = na.Dot(b[i].Sub(a[0]))
	}
	if sameSide(da) || sameSide(db) {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}

	line := na.Cross(nb)
	if line.LenSqr() < triEpsilon {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}

	a0, a1, ok := planeCut(a, da)
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	b0, b1, ok := planeCut(b, db)
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}

	ta0, ta1 := line.Dot(a0), line.Dot(a1)
	if ta0 > ta1 {
		a0, a1, ta0, ta1 = a1, a0, ta1, ta0
	}
	tb0, tb1 := line.Dot(b0), line.Dot(b1)
	if tb0 > tb1 {
		b0, b1, tb0, tb1 = b1, b0, tb1, tb0
	}
	if ta1 < tb0 || tb1 < ta0 {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}

	lo, hi := a0, a1
	if tb0 > ta0 {
		lo = b0
	}
	if tb1 < ta1 {
		hi = b1
	}
	return lo, hi, true
}

// sameSide is true when all signed distances are strictly on one side, or
// all are zero (coplanar).
func sameSide(d [3]float64) bool {
	pos, neg := 0, 0
	for _, v := range d {
		switch {
		case v > triEpsilon:
			pos++
		case v < -triEpsilon:
			neg++
		}
	}
	return pos == 3 || neg == 3 || (pos == 0 && neg == 0)
}

// planeCut returns the segment where a triangle crosses a plane, given the
// signed distance of each vertex to that plane.
func planeCut(t [3]mgl64.Vec3, d [3]float64) (mgl64.Vec3, mgl64.Vec3, bool) {
	var pts [4]mgl64.Vec3
	n := 0
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if math.Abs(d[i]) <= triEpsilon {
			pts[n] = t[i]
			n++
			continue
		}
		if math.Abs(d[j]) > triEpsilon && (d[i] > 0) != (d[j] > 0) {
			s := d[i] / (d[i] - d[j])
			pts[n] = t[i].Add(t[j].Sub(t[i]).Mul(s))
			n++
		}
	}
	switch n {
	case 0:
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	case 1:
		return pts[0], pts[0], true
	}
	return pts[0], pts[n-1], true
}

// triTriContact turns an intersecting triangle pair into a contact. Triangles
// are given in world space; the normal is A's face normal turned toward B and
// the depth is how far B's deepest vertex sits behind A's plane.
func triTriContact(a, b Proxy, ta, tb [3]mgl64.Vec3) (Contact, bool) {
	p0, p1, ok := triTriSegment(ta, tb)
	if !ok {
		return Contact{}, false
	}
	normal, ok := core.SafeNormalize(ta[1].Sub(ta[0]).Cross(ta[2].Sub(ta[0])))
	if !ok {
		return Contact{}, false
	}
	centroidB := tb[0].Add(tb[1]).Add(tb[2]).Mul(1.0 / 3)
	if normal.Dot(centroidB.Sub(ta[0])) < 0 {
		normal = normal.Mul(-1)
	}
	depth := 0.0
	for _, v := range tb {
		depth = math.Max(depth, -normal.Dot(v.Sub(ta[0])))
	}
	point := p0.Add(p1).Mul(0.5)
	return newContact(a, b, point, point.Sub(normal.Mul(depth)), normal, depth, 0), true
}
