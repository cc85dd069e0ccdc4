package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

// Cone points along local +Y. The apex sits at Height/2 and the base disc at
// -Height/2, so the shape is centred on its bounding box rather than its
// centroid.
type Cone struct {
	Radius float64
	Height float64
	sinTop float64
}

func NewCone(radius, height float64) *Cone {
	return &Cone{
		Radius: radius,
		Height: height,
		sinTop: radius / math.Hypot(radius, height),
	}
}

func (c *Cone) Kind() Kind { return KindCone }

func (c *Cone) LocalAABB() core.AABB {
	e := mgl64.Vec3{c.Radius, c.Height / 2, c.Radius}
	return core.AABB{Min: e.Mul(-1), Max: e}
}

func (c *Cone) Support(dir mgl64.Vec3) mgl64.Vec3 {
	if dir.Y() > dir.Len()*c.sinTop {
		return mgl64.Vec3{0, c.Height / 2, 0}
	}
	p := radialSupport(dir, c.Radius)
	p[1] = -c.Height / 2
	return p
}

func (c *Cone) Inertia(mass float64) mgl64.Mat3 {
	r2 := c.Radius * c.Radius
	h2 := c.Height * c.Height
	side := mass * (3*r2/20 + 3*h2/80)
	return mgl64.Diag3(mgl64.Vec3{side, 0.3 * mass * r2, side})
}

func (c *Cone) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	return convexRayCast(c, from, to)
}
