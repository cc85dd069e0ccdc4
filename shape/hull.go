package shape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
)

// ConvexHull is the convex hull of a point cloud. The points are used as-is;
// interior points are harmless but cost support queries.
type ConvexHull struct {
	points []mgl64.Vec3
	bounds core.AABB
}

func NewConvexHull(points []mgl64.Vec3) *ConvexHull {
	pts := append([]mgl64.Vec3(nil), points...)
	return &ConvexHull{points: pts, bounds: core.AABBFromPoints(pts...)}
}

func (h *ConvexHull) Kind() Kind { return KindConvexHull }

func (h *ConvexHull) LocalAABB() core.AABB { return h.bounds }

func (h *ConvexHull) Support(dir mgl64.Vec3) mgl64.Vec3 {
	return maxDot(h.points, dir)
}

func (h *ConvexHull) Vertices() []mgl64.Vec3 {
	return h.points
}

// Inertia approximates the hull by its bounding box about the local origin.
func (h *ConvexHull) Inertia(mass float64) mgl64.Mat3 {
	half := core.MaxVec(core.AbsVec(h.bounds.Min), core.AbsVec(h.bounds.Max))
	return boxInertia(mass, half)
}

func (h *ConvexHull) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	if _, ok := h.bounds.RayIntersect(from, to); !ok {
		return RayHit{}, false
	}
	return convexRayCast(h, from, to)
}
