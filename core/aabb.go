package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Union or ExpandPoint will overwrite.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

func AABBFromPoints(points ...mgl64.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.ExpandPoint(p)
	}
	return box
}

func (a AABB) Valid() bool {
	return a.Min.X() <= a.Max.X() && a.Min.Y() <= a.Max.Y() && a.Min.Z() <= a.Max.Z()
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) HalfExtents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

func (a AABB) SurfaceArea() float64 {
	if !a.Valid() {
		return 0
	}
	e := a.Max.Sub(a.Min)
	return 2 * (e.X()*e.Y() + e.Y()*e.Z() + e.Z()*e.X())
}

func (a AABB) Volume() float64 {
	if !a.Valid() {
		return 0
	}
	e := a.Max.Sub(a.Min)
	return e.X() * e.Y() * e.Z()
}

func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: MinVec(a.Min, b.Min),
		Max: MaxVec(a.Max, b.Max),
	}
}

func (a AABB) ExpandPoint(p mgl64.Vec3) AABB {
	return AABB{
		Min: MinVec(a.Min, p),
		Max: MaxVec(a.Max, p),
	}
}

func (a AABB) Inflate(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Overlaps treats both boxes as closed intervals, so touching boxes overlap.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

func (a AABB) Contains(p mgl64.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

// Transform returns a conservative world-space bound of a box given in t's object space.
// The half extents are pushed through the absolute rotation matrix.
func (a AABB) Transform(t Transform) AABB {
	center := t.Apply(a.Center())
	half := a.HalfExtents()
	r := RotationMat3(t.Rotation)

	var extent mgl64.Vec3
	for row := 0; row < 3; row++ {
		extent[row] = math.Abs(r.At(row, 0))*half[0] +
			math.Abs(r.At(row, 1))*half[1] +
			math.Abs(r.At(row, 2))*half[2]
	}
	return AABB{Min: center.Sub(extent), Max: center.Add(extent)}
}

// RayIntersect clips the segment from->to against the box (slab test).
// It returns the entry fraction along the segment in [0, 1].
func (a AABB) RayIntersect(from, to mgl64.Vec3) (float64, bool) {
	dir := to.Sub(from)
	tmin, tmax := 0.0, 1.0
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if from[i] < a.Min[i] || from[i] > a.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / dir[i]
		t1 := (a.Min[i] - from[i]) * inv
		t2 := (a.Max[i] - from[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
