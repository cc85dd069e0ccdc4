package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomUnitQuat(rng *rand.Rand) mgl64.Quat {
	axis := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
	if axis.Len() < 1e-3 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return mgl64.QuatRotate(rng.Float64()*2*math.Pi, axis.Normalize())
}

func TestRotationMat3MatchesQuaternionRotate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		q := randomUnitQuat(rng)
		v := mgl64.Vec3{rng.Float64()*10 - 5, rng.Float64()*10 - 5, rng.Float64()*10 - 5}

		viaMatrix := RotationMat3(q).Mul3x1(v)
		viaQuat := q.Rotate(v)
		assert.True(t, viaMatrix.ApproxEqualThreshold(viaQuat, 1e-9), "q=%v v=%v: %v != %v", q, v, viaMatrix, viaQuat)
	}
}

func TestTransformInverseRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		tr := TransformFrom(mgl64.Vec3{rng.Float64(), rng.Float64() * 3, -rng.Float64()}, randomUnitQuat(rng))
		p := mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}

		world := tr.Apply(p)
		assert.True(t, tr.ApplyInverse(world).ApproxEqualThreshold(p, 1e-9))
		assert.True(t, tr.Inverse().Apply(world).ApproxEqualThreshold(p, 1e-9))

		m := tr.ObjectToWorld().Mul4(tr.WorldToObject())
		ident := mgl64.Ident4()
		for j := range m {
			assert.InDelta(t, ident[j], m[j], 1e-12, "matrix and inverse should cancel: %v", m)
		}
	}
}

func TestTransformMulComposes(t *testing.T) {
	parent := TransformFrom(mgl64.Vec3{1, 2, 3}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))
	child := TransformFrom(mgl64.Vec3{1, 0, 0}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0}))
	p := mgl64.Vec3{0.5, -0.25, 2}

	composed := parent.Mul(child).Apply(p)
	nested := parent.Apply(child.Apply(p))
	assert.True(t, composed.ApproxEqualThreshold(nested, 1e-9))
}

func TestAABBTransformIsConservative(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	box := AABB{Min: mgl64.Vec3{-1, -2, -0.5}, Max: mgl64.Vec3{1, 2, 0.5}}
	for i := 0; i < 100; i++ {
		tr := TransformFrom(mgl64.Vec3{rng.Float64() * 4, 0, 1}, randomUnitQuat(rng))
		world := box.Transform(tr).Inflate(1e-9)
		for c := 0; c < 8; c++ {
			corner := mgl64.Vec3{box.Min.X(), box.Min.Y(), box.Min.Z()}
			if c&1 != 0 {
				corner[0] = box.Max.X()
			}
			if c&2 != 0 {
				corner[1] = box.Max.Y()
			}
			if c&4 != 0 {
				corner[2] = box.Max.Z()
			}
			require.True(t, world.Contains(tr.Apply(corner)), "corner %v escaped %v", corner, world)
		}
	}
}

func TestAABBOverlapsAndRay(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	touching := AABB{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}
	apart := AABB{Min: mgl64.Vec3{1.1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}

	assert.True(t, a.Overlaps(touching))
	assert.True(t, touching.Overlaps(a))
	assert.False(t, a.Overlaps(apart))

	frac, ok := a.RayIntersect(mgl64.Vec3{-1, 0.5, 0.5}, mgl64.Vec3{3, 0.5, 0.5})
	require.True(t, ok)
	assert.InDelta(t, 0.25, frac, 1e-12)

	_, ok = a.RayIntersect(mgl64.Vec3{-1, 2, 0.5}, mgl64.Vec3{3, 2, 0.5})
	assert.False(t, ok)
}

func TestInvertMat3(t *testing.T) {
	inv, ok := InvertMat3(mgl64.Diag3(mgl64.Vec3{2, 4, 8}))
	require.True(t, ok)
	assert.InDelta(t, 0.5, inv.At(0, 0), 1e-12)
	assert.InDelta(t, 0.125, inv.At(2, 2), 1e-12)

	_, ok = InvertMat3(mgl64.Diag3(mgl64.Vec3{1, 0, 1}))
	assert.False(t, ok)
}

func TestClosestPointTriangleRegions(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{1, 0, 0}
	c := mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name string
		p    mgl64.Vec3
		want mgl64.Vec3
	}{
		{"vertex a", mgl64.Vec3{-1, -1, 0}, a},
		{"vertex b", mgl64.Vec3{2, -0.5, 0}, b},
		{"edge ab", mgl64.Vec3{0.5, -1, 0}, mgl64.Vec3{0.5, 0, 0}},
		{"edge bc", mgl64.Vec3{1, 1, 0}, mgl64.Vec3{0.5, 0.5, 0}},
		{"face", mgl64.Vec3{0.25, 0.25, 3}, mgl64.Vec3{0.25, 0.25, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, w := ClosestPointTriangle(tt.p, a, b, c)
			assert.True(t, got.ApproxEqualThreshold(tt.want, 1e-12), "got %v", got)
			recon := a.Mul(w[0]).Add(b.Mul(w[1])).Add(c.Mul(w[2]))
			assert.True(t, recon.ApproxEqualThreshold(got, 1e-12))
		})
	}
}

func TestClosestPointTetrahedronInsideAndOutside(t *testing.T) {
	a := mgl64.Vec3{-1, -1, -1}
	b := mgl64.Vec3{3, -1, -1}
	c := mgl64.Vec3{-1, 3, -1}
	d := mgl64.Vec3{-1, -1, 3}

	got, w := ClosestPointTetrahedron(mgl64.Vec3{}, a, b, c, d)
	assert.True(t, got.ApproxEqualThreshold(mgl64.Vec3{}, 1e-12))
	assert.InDelta(t, 1.0, w[0]+w[1]+w[2]+w[3], 1e-9)

	outside, _ := ClosestPointTetrahedron(mgl64.Vec3{0, 0, -5}, a, b, c, d)
	assert.InDelta(t, -1.0, outside.Z(), 1e-12)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(5, 0, 3))
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
	assert.Equal(t, -1.0, Clamp(-4.0, -1.0, 1.0))
}

func TestBasisIsOrthonormal(t *testing.T) {
	for _, n := range []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, mgl64.Vec3{1, 1, 1}.Normalize()} {
		t1, t2 := Basis(n)
		assert.InDelta(t, 1, t1.Len(), 1e-12)
		assert.InDelta(t, 1, t2.Len(), 1e-12)
		assert.InDelta(t, 0, t1.Dot(n), 1e-12)
		assert.InDelta(t, 0, t2.Dot(n), 1e-12)
		assert.InDelta(t, 0, t1.Dot(t2), 1e-12)
	}
}
