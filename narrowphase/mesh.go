package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/shape"
)

// meshConvex walks A's BVH with B's bounds expressed in mesh space and runs
// the convex test against each candidate triangle.
func (d *Detector) meshConvex(a, b Proxy) []Contact {
	mesh := a.Shape.(*shape.Mesh)
	toMesh := a.Transform.Inverse().Mul(b.Transform)
	bounds := b.Shape.LocalAABB().Transform(toMesh).Inflate(Margin)

	var out []Contact
	mesh.Tree().Query(bounds, func(item int) bool {
		tri := mesh.Triangle(item)
		if c, ok := d.convex(Proxy{Shape: tri, Transform: a.Transform}, b); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}

type nodePair struct {
	a, b int32
}

// meshMesh descends both BVHs together. B's nodes are brought into A's
// frame for the overlap tests; leaf pairs run the exact triangle test.
func (d *Detector) meshMesh(a, b Proxy) []Contact {
	ma := a.Shape.(*shape.Mesh)
	mb := b.Shape.(*shape.Mesh)
	ta, tb := ma.Tree(), mb.Tree()
	if ta.Empty() || tb.Empty() {
		return nil
	}
	bToA := a.Transform.Inverse().Mul(b.Transform)

	var out []Contact
	stack := []nodePair{{ta.Root, tb.Root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		na, nb := &ta.Nodes[top.a], &tb.Nodes[top.b]
		if !na.Bounds().Overlaps(nb.Bounds().Transform(bToA)) {
			continue
		}

		switch {
		case na.IsLeaf() && nb.IsLeaf():
			triA := worldTriangle(ma, int(na.LeafFirst), a.Transform)
			triB := worldTriangle(mb, int(nb.LeafFirst), b.Transform)
			if c, ok := triTriContact(a, b, triA, triB); ok {
				out = append(out, c)
			}
		case nb.IsLeaf() || (!na.IsLeaf() && na.Bounds().SurfaceArea() >= nb.Bounds().SurfaceArea()):
			stack = append(stack, nodePair{na.Left, top.b}, nodePair{na.Right, top.b})
		default:
			stack = append(stack, nodePair{top.a, nb.Left}, nodePair{top.a, nb.Right})
		}
	}
	return out
}

func worldTriangle(m *shape.Mesh, i int, t core.Transform) [3]mgl64.Vec3 {
	a, b, c := m.TriangleVertices(i)
	return [3]mgl64.Vec3{t.Apply(a), t.Apply(b), t.Apply(c)}
}
