package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrientedBox keeps its three axes orthonormal and its half extents
// non-negative.
type OrientedBox struct {
	Center      mgl64.Vec3
	Axes        [3]mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// NewOrientedBox orthonormalizes the given axes.
func NewOrientedBox(center mgl64.Vec3, axes [3]mgl64.Vec3, halfExtents mgl64.Vec3) OrientedBox {
	return OrientedBox{
		Center:      center,
		Axes:        Orthonormalize(axes),
		HalfExtents: maxVec(halfExtents, mgl64.Vec3{}),
	}
}

// BoxFromEuler builds a box from a full size and XYZ euler angles in degrees.
func BoxFromEuler(center, eulerDeg, size mgl64.Vec3) OrientedBox {
	q := EulerRotation(eulerDeg)
	return OrientedBox{
		Center:      center,
		Axes:        [3]mgl64.Vec3{q.Rotate(WorldRight), q.Rotate(WorldUp), q.Rotate(WorldForward)},
		HalfExtents: maxVec(size.Mul(0.5), mgl64.Vec3{}),
	}
}

func identityAxes() [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{WorldRight, WorldUp, WorldForward}
}

// Vertices returns the eight corners, sign pattern (+,+,+), (+,+,-), ... (-,-,-)
// over axes 0, 1, 2.
func (b OrientedBox) Vertices() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	ex := b.Axes[0].Mul(b.HalfExtents[0])
	ey := b.Axes[1].Mul(b.HalfExtents[1])
	ez := b.Axes[2].Mul(b.HalfExtents[2])
	i := 0
	for _, sx := range [2]float64{1, -1} {
		for _, sy := range [2]float64{1, -1} {
			for _, sz := range [2]float64{1, -1} {
				out[i] = b.Center.Add(ex.Mul(sx)).Add(ey.Mul(sy)).Add(ez.Mul(sz))
				i++
			}
		}
	}
	return out
}

// Volume is the half-extent product, the measure used to rank candidates.
func (b OrientedBox) Volume() float64 {
	return b.HalfExtents[0] * b.HalfExtents[1] * b.HalfExtents[2]
}

// ClosestPoint clamps p into the box.
func (b OrientedBox) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	d := p.Sub(b.Center)
	q := b.Center
	for i := range b.Axes {
		dist := clamp(d.Dot(b.Axes[i]), -b.HalfExtents[i], b.HalfExtents[i])
		q = q.Add(b.Axes[i].Mul(dist))
	}
	return q
}

// ContainsPoint reports whether p is inside the box, with Epsilon slack.
func (b OrientedBox) ContainsPoint(p mgl64.Vec3) bool {
	d := p.Sub(b.Center)
	for i := range b.Axes {
		if math.Abs(d.Dot(b.Axes[i])) > b.HalfExtents[i]+Epsilon {
			return false
		}
	}
	return true
}

// ExtentAlong is the half width of the box projected on a unit axis.
func (b OrientedBox) ExtentAlong(axis mgl64.Vec3) float64 {
	var e float64
	for i := range b.Axes {
		e += b.HalfExtents[i] * math.Abs(axis.Dot(b.Axes[i]))
	}
	return e
}

func (b *OrientedBox) updateFromPose(p Pose) {
	b.Center = p.Position
	b.Axes = [3]mgl64.Vec3{
		NormalizeOr(p.Right(), WorldRight),
		NormalizeOr(p.Up(), WorldUp),
		NormalizeOr(p.Forward(), WorldForward),
	}
	b.HalfExtents = maxVec(p.Scale.Mul(0.5), mgl64.Vec3{})
}

func (b OrientedBox) approxEqual(o OrientedBox) bool {
	return ApproxVec(b.Center, o.Center) &&
		ApproxAxes(b.Axes, o.Axes) &&
		ApproxVec(b.HalfExtents, o.HalfExtents)
}
