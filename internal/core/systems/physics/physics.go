// Package physics holds the geometric primitives used for hit detection and
// the swept-volume calculator that keeps fast attacks from tunneling through
// targets between ticks.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Epsilon is the scalar tolerance used by approximate equality. Vectors
	// compare on squared distance against Epsilon*Epsilon.
	Epsilon = 1e-4

	// degenerateLenSq is the squared length under which a cross product or
	// projection is treated as zero and replaced by a reference axis.
	degenerateLenSq = 1e-6
)

var (
	WorldRight   = mgl64.Vec3{1, 0, 0}
	WorldUp      = mgl64.Vec3{0, 1, 0}
	WorldForward = mgl64.Vec3{0, 0, 1}
)

// Approx reports whether two scalars are within Epsilon.
func Approx(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// ApproxVec reports whether two points are within Epsilon of each other.
func ApproxVec(a, b mgl64.Vec3) bool {
	return a.Sub(b).LenSqr() < Epsilon*Epsilon
}

// ApproxAxes compares three axis vectors pairwise.
func ApproxAxes(a, b [3]mgl64.Vec3) bool {
	for i := range a {
		if !ApproxVec(a[i], b[i]) {
			return false
		}
	}
	return true
}

// NormalizeOr returns v scaled to unit length, or fallback when v is too short
// to normalize safely.
func NormalizeOr(v, fallback mgl64.Vec3) mgl64.Vec3 {
	lenSq := v.LenSqr()
	if lenSq < degenerateLenSq {
		return fallback
	}
	return v.Mul(1 / math.Sqrt(lenSq))
}

// Orthonormalize turns a candidate axis triple into an orthonormal basis with
// Gram-Schmidt. Only the first two axes steer the result; the third is their
// cross product. Near-parallel inputs fall back to world up, then world right.
func Orthonormalize(axes [3]mgl64.Vec3) [3]mgl64.Vec3 {
	u0 := NormalizeOr(axes[0], WorldRight)
	u1 := axes[1].Sub(u0.Mul(axes[1].Dot(u0)))
	if u1.LenSqr() < degenerateLenSq {
		u1 = u0.Cross(WorldUp)
		if u1.LenSqr() < degenerateLenSq {
			u1 = u0.Cross(WorldRight)
		}
	}
	u1 = u1.Normalize()
	u2 := u0.Cross(u1).Normalize()
	return [3]mgl64.Vec3{u0, u1, u2}
}

// alignedAverage averages two directions after flipping b onto a's
// hemisphere, so opposite-facing axes do not cancel out.
func alignedAverage(a, b mgl64.Vec3) mgl64.Vec3 {
	if a.Dot(b) < 0 {
		b = b.Mul(-1)
	}
	return NormalizeOr(a.Add(b), a)
}

func maxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
