package rigid

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/body"
	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/narrowphase"
	"github.com/gekko3d/rigid/shape"
)

type RayResult struct {
	Body   *body.Body
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	// Fraction along the segment; Distance is the same in world units.
	Fraction float64
	Distance float64
	// Feature is the child index for compounds and the triangle index for
	// meshes, -1 otherwise.
	Feature int
}

// RayIntersect returns every body the segment from→to hits, nearest first.
func (w *World) RayIntersect(from, to mgl64.Vec3) []RayResult {
	length := to.Sub(from).Len()
	var out []RayResult
	for _, b := range w.broadphase.RayIntersect(from, to) {
		hit, ok := narrowphase.RayCast(proxyOf(b), from, to)
		if !ok {
			continue
		}
		out = append(out, RayResult{
			Body:     b,
			Point:    hit.Point,
			Normal:   hit.Normal,
			Fraction: hit.Fraction,
			Distance: hit.Fraction * length,
			Feature:  hit.Feature,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Fraction != out[j].Fraction {
			return out[i].Fraction < out[j].Fraction
		}
		return out[i].Body.ID < out[j].Body.ID
	})
	return out
}

type ShapeResult struct {
	Body *body.Body
	// Fraction of the sweep at first touch.
	Fraction float64
	Point    mgl64.Vec3
	// Normal points from the hit body toward the swept shape.
	Normal mgl64.Vec3
}

// ShapeIntersect sweeps a convex shape from→to without rotation and returns
// every body it would touch, earliest first.
func (w *World) ShapeIntersect(s shape.Shape, from, to mgl64.Vec3) []ShapeResult {
	return w.ShapeIntersectRotated(s, mgl64.QuatIdent(), from, to)
}

// ShapeIntersectRotated is ShapeIntersect with a fixed orientation for the
// swept shape.
func (w *World) ShapeIntersectRotated(s shape.Shape, rotation mgl64.Quat, from, to mgl64.Vec3) []ShapeResult {
	if s == nil || !shape.IsConvex(s) {
		return nil
	}
	moving := narrowphase.NewProxy(s, core.TransformFrom(from, rotation))
	motion := to.Sub(from)

	var out []ShapeResult
	for _, b := range w.broadphase.QueryAABB(narrowphase.SweptBounds(moving, motion)) {
		hit, ok := narrowphase.ShapeCast(moving, motion, proxyOf(b))
		if !ok {
			continue
		}
		out = append(out, ShapeResult{Body: b, Fraction: hit.Fraction, Point: hit.Point, Normal: hit.Normal})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Fraction != out[j].Fraction {
			return out[i].Fraction < out[j].Fraction
		}
		return out[i].Body.ID < out[j].Body.ID
	})
	return out
}
