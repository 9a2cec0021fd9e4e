package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindSphere, KindCapsule, KindBox} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("cone")
	assert.ErrorIs(t, err, ErrUnknownKind)

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("OBB")))
	assert.Equal(t, KindBox, k)
}

func TestShapeFromPose(t *testing.T) {
	pose := NewPose(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{}, mgl64.Vec3{1, 4, 2})

	t.Run("sphere uses the largest scale", func(t *testing.T) {
		s := ShapeFromPose(KindSphere, pose).AsSphere()
		assert.Equal(t, mgl64.Vec3{1, 2, 3}, s.Center)
		assert.InDelta(t, 2.0, s.Radius, 1e-9)
	})

	t.Run("capsule lies along up", func(t *testing.T) {
		c := ShapeFromPose(KindCapsule, pose).AsCapsule()
		assert.InDelta(t, 1.0, c.Radius, 1e-9)
		assert.True(t, ApproxVec(mgl64.Vec3{1, 3, 3}, c.PointA), c.PointA)
		assert.True(t, ApproxVec(mgl64.Vec3{1, 1, 3}, c.PointB), c.PointB)
		assert.InDelta(t, 4.0, c.Height(), 1e-9)
	})

	t.Run("short capsule collapses to a sphere", func(t *testing.T) {
		c := ShapeFromPose(KindCapsule, NewPose(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{2, 1, 2})).AsCapsule()
		assert.True(t, ApproxVec(c.PointA, c.PointB))
		assert.Equal(t, WorldUp, c.Direction())
	})

	t.Run("box takes rotated axes", func(t *testing.T) {
		rotated := NewPose(mgl64.Vec3{}, mgl64.Vec3{0, 0, 90}, mgl64.Vec3{2, 4, 6})
		b := ShapeFromPose(KindBox, rotated).AsBox()
		assert.True(t, ApproxVec(mgl64.Vec3{0, 1, 0}, b.Axes[0]), b.Axes[0])
		assert.True(t, ApproxVec(mgl64.Vec3{-1, 0, 0}, b.Axes[1]), b.Axes[1])
		assert.Equal(t, mgl64.Vec3{1, 2, 3}, b.HalfExtents)
	})
}

func TestShapeEqualAndCopy(t *testing.T) {
	a := SphereShape(NewSphere(mgl64.Vec3{0, 0, 0}, 1))
	b := SphereShape(NewSphere(mgl64.Vec3{0, 0, 5e-5}, 1+5e-5))
	c := CapsuleShape(NewCapsule(mgl64.Vec3{}, mgl64.Vec3{}, 1))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "different kinds are never equal")
	assert.False(t, a.Equal(SphereShape(NewSphere(mgl64.Vec3{0, 0, 1e-3}, 1))))

	dst := NewShape(KindSphere)
	assert.True(t, dst.CopyFrom(b))
	assert.True(t, dst.Equal(b))
	assert.False(t, dst.CopyFrom(c))
	assert.Equal(t, KindSphere, dst.Kind())

	clone := a.Clone()
	clone.UpdateFromPose(NewPose(mgl64.Vec3{9, 9, 9}, mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}))
	assert.Equal(t, mgl64.Vec3{}, a.Center(), "clone must not alias the original")
}

func TestOrientedBox(t *testing.T) {
	b := BoxFromEuler(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{2, 2, 2})

	verts := b.Vertices()
	assert.Equal(t, mgl64.Vec3{2, 1, 1}, verts[0])
	assert.Equal(t, mgl64.Vec3{0, -1, -1}, verts[7])
	for _, v := range verts {
		assert.True(t, b.ContainsPoint(v))
	}

	assert.InDelta(t, 1.0, b.Volume(), 1e-9)
	assert.Equal(t, mgl64.Vec3{2, 1, 0}, b.ClosestPoint(mgl64.Vec3{5, 1, 0}))
	assert.InDelta(t, math.Sqrt2, b.ExtentAlong(mgl64.Vec3{1, 1, 0}.Normalize()), 1e-9)
}

func TestOrthonormalizeFallsBack(t *testing.T) {
	axes := Orthonormalize([3]mgl64.Vec3{WorldUp, WorldUp.Mul(3)})
	for i := range axes {
		assert.InDelta(t, 1.0, axes[i].Len(), 1e-9)
		for j := i + 1; j < 3; j++ {
			assert.InDelta(t, 0.0, axes[i].Dot(axes[j]), 1e-9)
		}
	}
	assert.Equal(t, WorldUp, axes[0])

	zero := Orthonormalize([3]mgl64.Vec3{})
	assert.Equal(t, WorldRight, zero[0])
}

func TestClosestPointsBetweenSegments(t *testing.T) {
	p, q := ClosestPointsBetweenSegments(
		mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0},
		mgl64.Vec3{0, -1, 2}, mgl64.Vec3{0, 1, 2},
	)
	assert.True(t, ApproxVec(mgl64.Vec3{0, 0, 0}, p), p)
	assert.True(t, ApproxVec(mgl64.Vec3{0, 0, 2}, q), q)

	p, q = ClosestPointsBetweenSegments(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{3, 0, 0}, mgl64.Vec3{3, 0, 0})
	assert.Equal(t, mgl64.Vec3{}, p)
	assert.Equal(t, mgl64.Vec3{3, 0, 0}, q)
}
