package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ClosestPointSegment returns the point of segment ab closest to p and the
// barycentric weights (u for a, v for b).
func ClosestPointSegment(p, a, b mgl64.Vec3) (mgl64.Vec3, float64, float64) {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom < Epsilon {
		return a, 1, 0
	}
	t := Clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	return a.Add(ab.Mul(t)), 1 - t, t
}

// ClosestPointTriangle returns the point of triangle abc closest to p with its
// barycentric weights, walking the Voronoi regions of the triangle.
func ClosestPointTriangle(p, a, b, c mgl64.Vec3) (mgl64.Vec3, [3]float64) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, [3]float64{1, 0, 0}
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, [3]float64{0, 1, 0}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)), [3]float64{1 - v, v, 0}
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, [3]float64{0, 0, 1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)), [3]float64{1 - w, 0, w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), [3]float64{0, 1 - w, w}
	}

	sum := va + vb + vc
	if math.Abs(sum) < Epsilon {
		// Degenerate (zero-area) triangle: fall back to the best edge.
		best, bu, bv := ClosestPointSegment(p, a, b)
		weights := [3]float64{bu, bv, 0}
		if q, u, w := ClosestPointSegment(p, a, c); q.Sub(p).LenSqr() < best.Sub(p).LenSqr() {
			best, weights = q, [3]float64{u, 0, w}
		}
		if q, v, w := ClosestPointSegment(p, b, c); q.Sub(p).LenSqr() < best.Sub(p).LenSqr() {
			best, weights = q, [3]float64{0, v, w}
		}
		return best, weights
	}
	denom := 1 / sum
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), [3]float64{1 - v - w, v, w}
}

// pointOutsideOfPlane reports whether p and d lie on opposite sides of plane abc.
// A degenerate reference (d on the plane) counts as outside so every face gets tested.
func pointOutsideOfPlane(p, a, b, c, d mgl64.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	signP := p.Sub(a).Dot(n)
	signD := d.Sub(a).Dot(n)
	if math.Abs(signD) < Epsilon {
		return true
	}
	return signP*signD < 0
}

// ClosestPointTetrahedron returns the point of tetrahedron abcd closest to p with
// barycentric weights. A p inside the tetrahedron is its own closest point.
func ClosestPointTetrahedron(p, a, b, c, d mgl64.Vec3) (mgl64.Vec3, [4]float64) {
	best := p
	bestDist := math.Inf(1)
	var weights [4]float64
	inside := true

	faces := [4][4]int{
		{0, 1, 2, 3},
		{0, 2, 3, 1},
		{0, 3, 1, 2},
		{1, 3, 2, 0},
	}
	verts := [4]mgl64.Vec3{a, b, c, d}
	for _, f := range faces {
		if !pointOutsideOfPlane(p, verts[f[0]], verts[f[1]], verts[f[2]], verts[f[3]]) {
			continue
		}
		inside = false
		q, bary := ClosestPointTriangle(p, verts[f[0]], verts[f[1]], verts[f[2]])
		if dist := q.Sub(p).LenSqr(); dist < bestDist {
			bestDist = dist
			best = q
			weights = [4]float64{}
			weights[f[0]] = bary[0]
			weights[f[1]] = bary[1]
			weights[f[2]] = bary[2]
		}
	}
	if inside {
		return p, tetraWeights(p, a, b, c, d)
	}
	return best, weights
}

func tetraWeights(p, a, b, c, d mgl64.Vec3) [4]float64 {
	vol := func(p0, p1, p2, p3 mgl64.Vec3) float64 {
		return p1.Sub(p0).Dot(p2.Sub(p0).Cross(p3.Sub(p0)))
	}
	total := vol(a, b, c, d)
	if math.Abs(total) < Epsilon {
		return [4]float64{0.25, 0.25, 0.25, 0.25}
	}
	return [4]float64{
		vol(p, b, c, d) / total,
		vol(a, p, c, d) / total,
		vol(a, b, p, d) / total,
		vol(a, b, c, p) / total,
	}
}

// ClosestPointSimplex returns the point of the simplex (1 to 4 points) closest to
// the origin, with one barycentric weight per input point.
func ClosestPointSimplex(points []mgl64.Vec3) (mgl64.Vec3, [4]float64) {
	var origin mgl64.Vec3
	switch len(points) {
	case 1:
		return points[0], [4]float64{1}
	case 2:
		q, u, v := ClosestPointSegment(origin, points[0], points[1])
		return q, [4]float64{u, v}
	case 3:
		q, w := ClosestPointTriangle(origin, points[0], points[1], points[2])
		return q, [4]float64{w[0], w[1], w[2]}
	case 4:
		return ClosestPointTetrahedron(origin, points[0], points[1], points[2], points[3])
	}
	return origin, [4]float64{}
}

// Barycentric computes the weights of p relative to triangle abc, assuming p lies
// in its plane. ok is false for zero-area triangles or non-finite results.
func Barycentric(p, a, b, c mgl64.Vec3) ([3]float64, bool) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < Epsilon {
		return [3]float64{}, false
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1 - v - w
	if math.IsNaN(u) || math.IsNaN(v) || math.IsNaN(w) {
		return [3]float64{}, false
	}
	return [3]float64{u, v, w}, true
}
