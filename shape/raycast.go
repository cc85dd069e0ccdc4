package shape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

const (
	rayCastMaxIterations = 32
	rayCastTolerance     = 1e-8
)

// Supporter is anything with a support mapping.
type Supporter interface {
	Support(dir mgl64.Vec3) mgl64.Vec3
}

// CastRay runs a GJK ray cast against an arbitrary convex support mapping.
func CastRay(s Supporter, from, to mgl64.Vec3) (RayHit, bool) {
	return convexRayCast(s, from, to)
}

// convexRayCast is the GJK ray cast: the segment start is advanced along the
// ray whenever the current support plane separates it from the shape, and
// the simplex of shape points closes in on the hit.
func convexRayCast(s Supporter, from, to mgl64.Vec3) (RayHit, bool) {
	r := to.Sub(from)
	lambda := 0.0
	x := from
	var normal mgl64.Vec3

	var simplex [4]mgl64.Vec3
	count := 0
	v := x.Sub(s.Support(r))

	for i := 0; i < rayCastMaxIterations; i++ {
		if v.Dot(v) < rayCastTolerance {
			break
		}
		p := s.Support(v)
		w := x.Sub(p)
		vw := v.Dot(w)
		if vw > 0 {
			vr := v.Dot(r)
			if vr >= 0 {
				return RayHit{}, false
			}
			lambda -= vw / vr
			if lambda > 1 {
				return RayHit{}, false
			}
			x = from.Add(r.Mul(lambda))
			normal = v
		}

		if count < 4 {
			simplex[count] = p
			count++
		}
		var diff [4]mgl64.Vec3
		for j := 0; j < count; j++ {
			diff[j] = x.Sub(simplex[j])
		}
		closest, weights := core.ClosestPointSimplex(diff[:count])
		v = closest

		kept := 0
		for j := 0; j < count; j++ {
			if weights[j] > core.Epsilon {
				simplex[kept] = simplex[j]
				kept++
			}
		}
		if kept == 0 {
			simplex[0] = p
			kept = 1
		}
		count = kept
		if count == 4 {
			break
		}
	}

	n, ok := core.SafeNormalize(normal)
	if !ok {
		n, _ = core.SafeNormalize(r.Mul(-1))
	}
	return RayHit{Point: x, Normal: n, Fraction: lambda, Feature: -1}, true
}
