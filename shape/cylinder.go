package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

// Cylinder is centred on the origin with its axis along local Y.
type Cylinder struct {
	Radius     float64
	HalfHeight float64
}

func NewCylinder(radius, halfHeight float64) *Cylinder {
	return &Cylinder{Radius: radius, HalfHeight: halfHeight}
}

func (c *Cylinder) Kind() Kind { return KindCylinder }

func (c *Cylinder) LocalAABB() core.AABB {
	e := mgl64.Vec3{c.Radius, c.HalfHeight, c.Radius}
	return core.AABB{Min: e.Mul(-1), Max: e}
}

func (c *Cylinder) Support(dir mgl64.Vec3) mgl64.Vec3 {
	p := radialSupport(dir, c.Radius)
	if dir.Y() >= 0 {
		p[1] = c.HalfHeight
	} else {
		p[1] = -c.HalfHeight
	}
	return p
}

func (c *Cylinder) Inertia(mass float64) mgl64.Mat3 {
	r2 := c.Radius * c.Radius
	h := 2 * c.HalfHeight
	side := mass * (3*r2 + h*h) / 12
	return mgl64.Diag3(mgl64.Vec3{side, 0.5 * mass * r2, side})
}

func (c *Cylinder) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	dir := to.Sub(from)

	capEnter, capExit := math.Inf(-1), math.Inf(1)
	if math.Abs(dir.Y()) < core.Epsilon {
		if math.Abs(from.Y()) > c.HalfHeight {
			return RayHit{}, false
		}
	} else {
		t1 := (-c.HalfHeight - from.Y()) / dir.Y()
		t2 := (c.HalfHeight - from.Y()) / dir.Y()
		capEnter, capExit = math.Min(t1, t2), math.Max(t1, t2)
	}

	sideEnter, sideExit := math.Inf(-1), math.Inf(1)
	a := dir.X()*dir.X() + dir.Z()*dir.Z()
	b := from.X()*dir.X() + from.Z()*dir.Z()
	k := from.X()*from.X() + from.Z()*from.Z() - c.Radius*c.Radius
	if a < core.Epsilon {
		if k > 0 {
			return RayHit{}, false
		}
	} else {
		disc := b*b - a*k
		if disc < 0 {
			return RayHit{}, false
		}
		root := math.Sqrt(disc)
		sideEnter, sideExit = (-b-root)/a, (-b+root)/a
	}

	tEnter := math.Max(capEnter, sideEnter)
	tExit := math.Min(capExit, sideExit)
	if tEnter > tExit || tExit < 0 || tEnter > 1 {
		return RayHit{}, false
	}
	if tEnter <= 0 {
		normal, _ := core.SafeNormalize(dir.Mul(-1))
		return RayHit{Point: from, Normal: normal, Fraction: 0, Feature: -1}, true
	}

	p := from.Add(dir.Mul(tEnter))
	var normal mgl64.Vec3
	if sideEnter > capEnter {
		normal, _ = core.SafeNormalize(mgl64.Vec3{p.X(), 0, p.Z()})
	} else if dir.Y() > 0 {
		normal = mgl64.Vec3{0, -1, 0}
	} else {
		normal = mgl64.Vec3{0, 1, 0}
	}
	return RayHit{Point: p, Normal: normal, Fraction: tEnter, Feature: -1}, true
}

// radialSupport is the support of a disc of the given radius in the XZ plane.
func radialSupport(dir mgl64.Vec3, radius float64) mgl64.Vec3 {
	l := math.Hypot(dir.X(), dir.Z())
	if l < core.Epsilon {
		return mgl64.Vec3{}
	}
	s := radius / l
	return mgl64.Vec3{dir.X() * s, 0, dir.Z() * s}
}
