package shape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/bvh"
	"github.com/gekko3d/rigid/core"
)

// Mesh is an indexed triangle soup with a BVH over its triangles. Each triple
// of Indices is one triangle.
type Mesh struct {
	vertices []mgl64.Vec3
	indices  []uint32
	tree     *bvh.Tree
	bounds   core.AABB
}

func NewMesh(vertices []mgl64.Vec3, indices []uint32) *Mesh {
	m := &Mesh{
		vertices: append([]mgl64.Vec3(nil), vertices...),
		indices:  append([]uint32(nil), indices[:len(indices)/3*3]...),
	}
	boxes := make([]core.AABB, m.TriangleCount())
	for i := range boxes {
		a, b, c := m.TriangleVertices(i)
		boxes[i] = core.AABBFromPoints(a, b, c)
	}
	m.tree = (&bvh.Builder{}).Build(boxes)
	m.bounds = m.tree.Bounds()
	return m
}

func (m *Mesh) Kind() Kind { return KindMesh }

func (m *Mesh) LocalAABB() core.AABB { return m.bounds }

func (m *Mesh) Tree() *bvh.Tree { return m.tree }

func (m *Mesh) Vertices() []mgl64.Vec3 { return m.vertices }

func (m *Mesh) TriangleCount() int {
	return len(m.indices) / 3
}

func (m *Mesh) TriangleVertices(i int) (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3) {
	return m.vertices[m.indices[3*i]], m.vertices[m.indices[3*i+1]], m.vertices[m.indices[3*i+2]]
}

func (m *Mesh) Triangle(i int) *Triangle {
	a, b, c := m.TriangleVertices(i)
	return NewTriangle(a, b, c)
}

// Support is the support of the mesh's convex hull.
func (m *Mesh) Support(dir mgl64.Vec3) mgl64.Vec3 {
	return maxDot(m.vertices, dir)
}

func (m *Mesh) Inertia(mass float64) mgl64.Mat3 {
	half := core.MaxVec(core.AbsVec(m.bounds.Min), core.AbsVec(m.bounds.Max))
	return boxInertia(mass, half)
}

func (m *Mesh) RayIntersect(from, to mgl64.Vec3) (RayHit, bool) {
	var best RayHit
	found := false
	m.tree.RayQuery(from, to, func(item int) bool {
		a, b, c := m.TriangleVertices(item)
		hit, ok := rayTriangle(from, to, a, b, c)
		if ok && (!found || hit.Fraction < best.Fraction) {
			hit.Feature = item
			best = hit
			found = true
		}
		return true
	})
	return best, found
}
