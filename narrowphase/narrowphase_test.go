package narrowphase

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/rigid/core"
	"github.com/gekko3d/rigid/shape"
)

func at(s shape.Shape, x, y, z float64) Proxy {
	return NewProxy(s, core.TransformFrom(mgl64.Vec3{x, y, z}, mgl64.QuatIdent()))
}

func assertVec(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

// Every contact must satisfy the depth identity the manifold relies on.
func assertConsistent(t *testing.T, c Contact) {
	t.Helper()
	assert.InDelta(t, 1.0, c.Normal.Len(), 1e-9)
	assert.InDelta(t, c.Depth, c.PointA.Sub(c.PointB).Dot(c.Normal)+c.Offset, 1e-9)
}

func TestSphereSphereProperty(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	d := NewDetector()
	for i := 0; i < 200; i++ {
		r1, r2 := 0.2+r.Float64(), 0.2+r.Float64()
		c1 := mgl64.Vec3{r.Float64()*4 - 2, r.Float64()*4 - 2, r.Float64()*4 - 2}
		c2 := mgl64.Vec3{r.Float64()*4 - 2, r.Float64()*4 - 2, r.Float64()*4 - 2}
		contacts := d.Detect(at(shape.NewSphere(r1), c1[0], c1[1], c1[2]), at(shape.NewSphere(r2), c2[0], c2[1], c2[2]))

		dist := c2.Sub(c1).Len()
		if dist > r1+r2 {
			assert.Empty(t, contacts)
			continue
		}
		require.Len(t, contacts, 1)
		c := contacts[0]
		assert.InDelta(t, r1+r2-dist, c.Depth, 1e-9)
		assertVec(t, c2.Sub(c1).Normalize(), c.Normal, 1e-9)
		assertConsistent(t, c)
	}
}

func TestBoxSphere(t *testing.T) {
	d := NewDetector()
	box := shape.NewBox(mgl64.Vec3{1, 1, 1})

	contacts := d.Detect(at(box, 0, 0, 0), at(shape.NewSphere(0.5), 0, 1.4, 0))
	require.Len(t, contacts, 1)
	assert.InDelta(t, 0.1, contacts[0].Depth, 1e-9)
	assertVec(t, mgl64.Vec3{0, 1, 0}, contacts[0].Normal, 1e-9)
	assertConsistent(t, contacts[0])

	// Centre inside the box exits through the nearest face.
	contacts = d.Detect(at(box, 0, 0, 0), at(shape.NewSphere(0.5), 0.8, 0.1, 0))
	require.Len(t, contacts, 1)
	assertVec(t, mgl64.Vec3{1, 0, 0}, contacts[0].Normal, 1e-9)
	assert.InDelta(t, 0.7, contacts[0].Depth, 1e-9)

	// Swapped order flips the normal.
	contacts = d.Detect(at(shape.NewSphere(0.5), 0, 1.4, 0), at(box, 0, 0, 0))
	require.Len(t, contacts, 1)
	assertVec(t, mgl64.Vec3{0, -1, 0}, contacts[0].Normal, 1e-9)
	assertConsistent(t, contacts[0])

	assert.Empty(t, d.Detect(at(box, 0, 0, 0), at(shape.NewSphere(0.5), 0, 1.6, 0)))
}

func TestGJKEPABoxBox(t *testing.T) {
	d := NewDetector()
	box := shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5})

	contacts := d.Detect(at(box, 0, 0, 0), at(box, 0.9, 0.1, 0.05))
	require.Len(t, contacts, 1)
	c := contacts[0]
	assert.InDelta(t, 0.1, c.Depth-c.Offset, 1e-6)
	assertVec(t, mgl64.Vec3{1, 0, 0}, c.Normal, 1e-4)
	assertConsistent(t, c)

	assert.Empty(t, d.Detect(at(box, 0, 0, 0), at(box, 2, 0, 0)))
}

func TestGJKShallowMargin(t *testing.T) {
	d := NewDetector()
	box := shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5})

	contacts := d.Detect(at(box, 0, 0, 0), at(box, 1.01, 0.2, 0))
	require.Len(t, contacts, 1)
	c := contacts[0]
	assert.InDelta(t, Margin-0.01, c.Depth, 1e-6)
	assertVec(t, mgl64.Vec3{1, 0, 0}, c.Normal, 1e-4)
	assertConsistent(t, c)

	assert.Empty(t, d.Detect(at(box, 0, 0, 0), at(box, 1+Margin*2, 0, 0)))
}

func TestGJKEPACurvedShapes(t *testing.T) {
	d := NewDetector()
	cyl := shape.NewCylinder(0.5, 0.5)
	box := shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5})

	contacts := d.Detect(at(cyl, 0, 0, 0), at(box, 0.9, 0, 0))
	require.Len(t, contacts, 1)
	c := contacts[0]
	assert.InDelta(t, 0.1, c.Depth-c.Offset, 1e-2)
	assert.Greater(t, c.Normal.X(), 0.99)
	assertConsistent(t, c)

	cone := shape.NewCone(0.5, 1)
	contacts = d.Detect(at(box, 0, 0, 0), at(cone, 0, 0.9, 0))
	require.Len(t, contacts, 1)
	assert.Greater(t, contacts[0].Normal.Y(), 0.99)
	assert.InDelta(t, 0.1, contacts[0].Depth-contacts[0].Offset, 1e-2)
}

func TestPlaneContacts(t *testing.T) {
	d := NewDetector()
	ground := at(shape.NewPlane(10, 10), 0, 0, 0)

	contacts := d.Detect(ground, at(shape.NewSphere(1), 1, 0.8, 2))
	require.Len(t, contacts, 1)
	assert.InDelta(t, 0.2, contacts[0].Depth, 1e-9)
	assertVec(t, mgl64.Vec3{0, 1, 0}, contacts[0].Normal, 1e-9)

	// A resting box yields one contact per bottom corner.
	contacts = d.Detect(ground, at(shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), 0, 0.49, 0))
	require.Len(t, contacts, 4)
	for _, c := range contacts {
		assert.InDelta(t, 0.01, c.Depth, 1e-9)
		assertConsistent(t, c)
	}

	// Box first flips the normal.
	contacts = d.Detect(at(shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), 0, 0.49, 0), ground)
	require.Len(t, contacts, 4)
	assertVec(t, mgl64.Vec3{0, -1, 0}, contacts[0].Normal, 1e-9)

	assert.Empty(t, d.Detect(ground, at(shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), 0, 0.6, 0)))
}

func TestCompoundRemapsAnchors(t *testing.T) {
	d := NewDetector()
	comp := shape.NewCompound().
		AddChild(shape.NewSphere(0.5), core.TransformFrom(mgl64.Vec3{2, 0, 0}, mgl64.QuatIdent())).
		AddChild(shape.NewSphere(0.5), core.TransformFrom(mgl64.Vec3{-2, 0, 0}, mgl64.QuatIdent()))

	contacts := d.Detect(at(comp, 0, 0, 0), at(shape.NewSphere(0.5), 2.8, 0, 0))
	require.Len(t, contacts, 1)
	assertVec(t, mgl64.Vec3{2.5, 0, 0}, contacts[0].LocalA, 1e-9)
	assert.InDelta(t, 0.2, contacts[0].Depth, 1e-9)

	contacts = d.Detect(at(shape.NewSphere(0.5), -2.8, 0, 0), at(comp, 0, 0, 0))
	require.Len(t, contacts, 1)
	assertVec(t, mgl64.Vec3{-2.5, 0, 0}, contacts[0].LocalB, 1e-9)
	assertVec(t, mgl64.Vec3{1, 0, 0}, contacts[0].Normal, 1e-9)
}

func groundMesh() *shape.Mesh {
	return shape.NewMesh(
		[]mgl64.Vec3{{-5, 0, -5}, {5, 0, -5}, {5, 0, 5}, {-5, 0, 5}},
		[]uint32{0, 2, 1, 0, 3, 2},
	)
}

func TestMeshConvex(t *testing.T) {
	d := NewDetector()
	contacts := d.Detect(at(groundMesh(), 0, 0, 0), at(shape.NewSphere(1), 2, 0.9, -2))
	require.NotEmpty(t, contacts)
	for _, c := range contacts {
		assert.Greater(t, c.Normal.Y(), 0.99)
		assert.InDelta(t, 0.1, c.Depth-c.Offset, 1e-2)
		assertConsistent(t, c)
	}

	assert.Empty(t, d.Detect(at(groundMesh(), 0, 0, 0), at(shape.NewSphere(1), 0, 3, 0)))
}

func TestMeshMesh(t *testing.T) {
	d := NewDetector()
	flat := shape.NewMesh([]mgl64.Vec3{{-1, 0, -1}, {1, 0, -1}, {0, 0, 1}}, []uint32{0, 1, 2})
	upright := shape.NewMesh([]mgl64.Vec3{{0, -0.5, 0}, {0.5, 1, 0}, {-0.5, 1, 0}}, []uint32{0, 1, 2})

	contacts := d.Detect(at(flat, 0, 0, 0), at(upright, 0, 0, 0))
	require.Len(t, contacts, 1)
	c := contacts[0]
	assertVec(t, mgl64.Vec3{0, 1, 0}, c.Normal, 1e-9)
	assert.InDelta(t, 0.5, c.Depth, 1e-9)
	// Witness on the flat triangle sits in its plane; the contact point is
	// halfway between the two witnesses.
	assert.InDelta(t, 0.0, c.PointA.Y(), 1e-9)
	assert.InDelta(t, -c.Depth/2, c.Point.Y(), 1e-9)
	assertConsistent(t, c)

	assert.Empty(t, d.Detect(at(flat, 0, 0, 0), at(upright, 0, 2, 0)))
}

func TestTriTriCoplanar(t *testing.T) {
	a := [3]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}}
	b := [3]mgl64.Vec3{{0.2, 0, 0.2}, {1, 0, 0.2}, {0.2, 0, 1}}
	_, _, ok := triTriSegment(a, b)
	assert.False(t, ok)
}

func TestRayCastProxy(t *testing.T) {
	p := NewProxy(shape.NewBox(mgl64.Vec3{2, 0.5, 0.5}), core.TransformFrom(mgl64.Vec3{0, 0, 5}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})))
	hit, ok := RayCast(p, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 10})
	require.True(t, ok)
	assert.InDelta(t, 0.3, hit.Fraction, 1e-9)
	assertVec(t, mgl64.Vec3{0, 0, 3}, hit.Point, 1e-9)
	assertVec(t, mgl64.Vec3{0, 0, -1}, hit.Normal, 1e-9)
}

func TestShapeCast(t *testing.T) {
	moving := at(shape.NewSphere(1), -5, 0, 0)
	target := at(shape.NewBox(mgl64.Vec3{1, 1, 1}), 0, 0, 0)

	hit, ok := ShapeCast(moving, mgl64.Vec3{10, 0, 0}, target)
	require.True(t, ok)
	assert.InDelta(t, 0.3, hit.Fraction, 1e-3)
	assert.Less(t, hit.Normal.X(), -0.99)
	assert.InDelta(t, -1.0, hit.Point.X(), 1e-3)

	_, ok = ShapeCast(moving, mgl64.Vec3{0, 10, 0}, target)
	assert.False(t, ok)

	hit, ok = ShapeCast(at(shape.NewSphere(0.5), 0, 5, 0), mgl64.Vec3{0, -10, 0}, at(groundMesh(), 0, 0, 0))
	require.True(t, ok)
	assert.InDelta(t, 0.45, hit.Fraction, 1e-3)

	bounds := SweptBounds(moving, mgl64.Vec3{10, 0, 0})
	assert.InDelta(t, -6.0, bounds.Min.X(), 1e-9)
	assert.InDelta(t, 6.0, bounds.Max.X(), 1e-9)
}

func TestOverlapIgnoresMarginSkin(t *testing.T) {
	d := NewDetector()
	box := shape.NewBox(mgl64.Vec3{1, 1, 1})

	assert.False(t, d.Intersects(at(box, 0, 0, 0), at(box, 2.01, 0, 0)))
	assert.False(t, d.Intersects(at(box, 0, 0, 0), at(box, 5, 0, 0)))

	c, ok := d.Overlap(at(box, 0, 0, 0), at(box, 1.8, 0, 0))
	require.True(t, ok)
	assert.InDelta(t, 0.2, c.Depth-c.Offset, 1e-4)
	assertVec(t, mgl64.Vec3{1, 0, 0}, c.Normal, 1e-4)

	// Several plane contacts collapse to the deepest one.
	tilted := NewProxy(box, core.TransformFrom(mgl64.Vec3{0, 0.9, 0}, mgl64.QuatRotate(0.1, mgl64.Vec3{0, 0, 1})))
	all := d.Detect(at(shape.NewPlane(5, 5), 0, 0, 0), tilted)
	require.Greater(t, len(all), 1)
	c, ok = d.Overlap(at(shape.NewPlane(5, 5), 0, 0, 0), tilted)
	require.True(t, ok)
	for _, other := range all {
		assert.GreaterOrEqual(t, c.Depth, other.Depth)
	}
}
