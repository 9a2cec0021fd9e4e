package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

func NewSphere(center mgl64.Vec3, radius float64) Sphere {
	return Sphere{Center: center, Radius: math.Max(0, radius)}
}

func (s Sphere) ContainsPoint(p mgl64.Vec3) bool {
	return p.Sub(s.Center).LenSqr() <= s.Radius*s.Radius
}

// ClosestPoint returns the point of the solid sphere nearest to p.
func (s Sphere) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	d := p.Sub(s.Center)
	if d.LenSqr() <= s.Radius*s.Radius {
		return p
	}
	return s.Center.Add(d.Normalize().Mul(s.Radius))
}

// updateFromPose uses the largest scale component as the diameter.
func (s *Sphere) updateFromPose(p Pose) {
	s.Center = p.Position
	s.Radius = math.Max(math.Max(p.Scale[0], p.Scale[1]), p.Scale[2]) * 0.5
}

func (s Sphere) approxEqual(o Sphere) bool {
	return ApproxVec(s.Center, o.Center) && Approx(s.Radius, o.Radius)
}
