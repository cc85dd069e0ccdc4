package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

type Box struct {
	HalfExtents mgl64.Vec3
	corners     [8]mgl64.Vec3
}

func NewBox(halfExtents mgl64.Vec3) *Box {
	b := &Box{HalfExtents: halfExtents}
	for i := range b.corners {
		c := halfExtents
		if i&1 != 0 {
			c[0] = -c[0]
		}
		if i&2 != 0 {
			c[1] = -c[1]
		}
		if i&4 != 0 {
			c[2] = -c[2]
		}
		b.corners[i] = c
	}
	return b
}

func (b *Box) Kind() Kind { return KindBox }

func (b *Box) LocalAABB() core.AABB {
	return core.AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
}

func (b *Box) Support(dir mgl64.Vec3) mgl64.Vec3 {
	p := b.HalfExtents
	for i := 0; i < 3; i++ {
		if dir[i] < 0 {
			p[i] = -p[i]
		}
	}
	return p
}

func (b *Box) Vertices() []mgl64.Vec3 {
	return b.corners[:]
}

func (b *Box) Inertia(mass float64) mgl64.Mat3 {
	return boxInertia(mass, b.HalfExtents)
}

func (b *Box) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	return slabRay(b.LocalAABB(), from, to)
}

// slabRay intersects a segment with an axis-aligned box, reporting the face
// normal of the entry slab. A segment starting inside hits at fraction 0.
func slabRay(box core.AABB, from, to mgl64.Vec3) (RayHit, bool) {
	dir := to.Sub(from)
	tEnter, tExit := 0.0, 1.0
	enterAxis, enterSign := -1, 0.0
	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < core.Epsilon {
			if from[axis] < box.Min[axis] || from[axis] > box.Max[axis] {
				return RayHit{}, false
			}
			continue
		}
		inv := 1 / dir[axis]
		t1 := (box.Min[axis] - from[axis]) * inv
		t2 := (box.Max[axis] - from[axis]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tEnter {
			tEnter, enterAxis, enterSign = t1, axis, sign
		}
		tExit = math.Min(tExit, t2)
		if tEnter > tExit {
			return RayHit{}, false
		}
	}

	var normal mgl64.Vec3
	if enterAxis >= 0 {
		normal[enterAxis] = enterSign
	} else if n, ok := core.SafeNormalize(dir); ok {
		normal = n.Mul(-1)
	}
	return RayHit{
		Point:    from.Add(dir.Mul(tEnter)),
		Normal:   normal,
		Fraction: tEnter,
		Feature:  -1,
	}, true
}
