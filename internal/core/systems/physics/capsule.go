package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is the set of points within Radius of the segment PointA-PointB.
// The endpoints may coincide, in which case it behaves as a sphere.
type Capsule struct {
	PointA mgl64.Vec3
	PointB mgl64.Vec3
	Radius float64
}

func NewCapsule(a, b mgl64.Vec3, radius float64) Capsule {
	return Capsule{PointA: a, PointB: b, Radius: math.Max(0, radius)}
}

func (c Capsule) Center() mgl64.Vec3 {
	return c.PointA.Add(c.PointB).Mul(0.5)
}

// Height is the tip-to-tip length including both caps.
func (c Capsule) Height() float64 {
	return c.PointB.Sub(c.PointA).Len() + c.Radius*2
}

// Direction is the unit segment direction; world up for a degenerate segment.
func (c Capsule) Direction() mgl64.Vec3 {
	return NormalizeOr(c.PointB.Sub(c.PointA), WorldUp)
}

// ClosestSegmentPoint returns the point of the core segment nearest to p.
func (c Capsule) ClosestSegmentPoint(p mgl64.Vec3) mgl64.Vec3 {
	return ClosestPointOnSegment(c.PointA, c.PointB, p)
}

// ClosestPoint returns the point of the solid capsule nearest to p.
func (c Capsule) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	return Sphere{Center: c.ClosestSegmentPoint(p), Radius: c.Radius}.ClosestPoint(p)
}

// updateFromPose lays the segment along the pose up axis. Height comes from
// scale.y, radius from the wider of scale.x and scale.z.
func (c *Capsule) updateFromPose(p Pose) {
	up := p.Up()
	height := p.Scale[1]
	radius := math.Max(p.Scale[0], p.Scale[2]) * 0.5
	halfSegment := math.Max(0, height*0.5-radius)

	c.PointA = p.Position.Add(up.Mul(halfSegment))
	c.PointB = p.Position.Sub(up.Mul(halfSegment))
	c.Radius = radius
}

func (c Capsule) approxEqual(o Capsule) bool {
	return ApproxVec(c.PointA, o.PointA) &&
		ApproxVec(c.PointB, o.PointB) &&
		Approx(c.Radius, o.Radius)
}

// ClosestPointOnSegment projects p onto segment a-b.
func ClosestPointOnSegment(a, b, p mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	lenSq := ab.LenSqr()
	if lenSq < Epsilon*Epsilon {
		return a
	}
	t := clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Mul(t))
}

// ClosestPointsBetweenSegments returns the closest pair of points between
// segments p1-q1 and p2-q2. Degenerate segments are treated as points.
func ClosestPointsBetweenSegments(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	const eps = Epsilon * Epsilon
	var s, t float64
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = clamp(-c/a, 0, 1)
			break
		}
		b := d1.Dot(d2)
		denom := a*e - b*b
		if denom > eps {
			s = clamp((b*f-c*e)/denom, 0, 1)
		}
		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = clamp(-c/a, 0, 1)
		} else if t > 1 {
			t = 1
			s = clamp((b-c)/a, 0, 1)
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}
