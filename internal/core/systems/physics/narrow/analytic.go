package narrow

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/ccd/internal/core/systems/physics"
)

// roundedSegments tests two segments inflated by their radii. A sphere is a
// segment with coincident ends. The contact sits in the middle of the
// overlapping depth along the line between the closest points.
func roundedSegments(a0, a1 mgl64.Vec3, ra float64, b0, b1 mgl64.Vec3, rb float64) Info {
	p, q := physics.ClosestPointsBetweenSegments(a0, a1, b0, b1)
	delta := q.Sub(p)
	dist := delta.Len()
	if dist > ra+rb {
		return Info{}
	}
	if dist < physics.Epsilon {
		return Info{HasCollision: true, ContactPoint: p.Add(q).Mul(0.5)}
	}
	depth := ra + rb - dist
	n := delta.Mul(1 / dist)
	return Info{HasCollision: true, ContactPoint: p.Add(n.Mul(ra - depth*0.5))}
}

func sphereBox(s physics.Sphere, b physics.OrientedBox) Info {
	q := b.ClosestPoint(s.Center)
	if q.Sub(s.Center).LenSqr() > s.Radius*s.Radius {
		return Info{}
	}
	return Info{HasCollision: true, ContactPoint: q}
}

const projectionIterations = 32

// closestBetween alternates projections between two convex sets, starting
// from seed. For intersecting sets both points converge into the
// intersection; otherwise they approach the closest pair.
func closestBetween(projectA, projectB func(mgl64.Vec3) mgl64.Vec3, seed mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	p := projectA(seed)
	q := projectB(p)
	for range projectionIterations {
		next := projectA(q)
		if physics.ApproxVec(next, p) {
			break
		}
		p = next
		q = projectB(p)
	}
	return p, q
}

func segmentBoxClosest(c physics.Capsule, b physics.OrientedBox) (mgl64.Vec3, mgl64.Vec3) {
	return closestBetween(c.ClosestSegmentPoint, b.ClosestPoint, b.Center)
}

func (d *Detector) capsuleBox(c physics.Capsule, b physics.OrientedBox) Info {
	hit, converged := d.gjk(capsuleSupport(c), boxSupport(b), b.Center.Sub(c.Center()))
	p, q := segmentBoxClosest(c, b)
	if !converged {
		d.fallbacks.Add(1)
		hit = q.Sub(p).Len() <= c.Radius+physics.Epsilon
		d.logger.Debug("gjk did not converge, using distance")
	}
	if !hit {
		return Info{}
	}
	return Info{HasCollision: true, ContactPoint: q}
}

func boxBox(a, b physics.OrientedBox) Info {
	if !separatingAxisOverlap(a, b) {
		return Info{}
	}
	p, q := closestBetween(a.ClosestPoint, b.ClosestPoint, b.Center)
	return Info{HasCollision: true, ContactPoint: p.Add(q).Mul(0.5)}
}

func capsuleSupport(c physics.Capsule) support {
	return func(dir mgl64.Vec3) mgl64.Vec3 {
		end := c.PointA
		if c.PointB.Dot(dir) > c.PointA.Dot(dir) {
			end = c.PointB
		}
		return end.Add(physics.NormalizeOr(dir, mgl64.Vec3{}).Mul(c.Radius))
	}
}

func boxSupport(b physics.OrientedBox) support {
	return func(dir mgl64.Vec3) mgl64.Vec3 {
		p := b.Center
		for i, axis := range b.Axes {
			p = p.Add(axis.Mul(math.Copysign(b.HalfExtents[i], dir.Dot(axis))))
		}
		return p
	}
}
