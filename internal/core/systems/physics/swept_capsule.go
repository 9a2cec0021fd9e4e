package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type capsuleRegime uint8

const (
	regimeStationary capsuleRegime = iota
	regimeNearStatic
	regimeTranslation
	regimeRotation
	regimeMixed
)

func (r capsuleRegime) String() string {
	switch r {
	case regimeStationary:
		return "stationary"
	case regimeNearStatic:
		return "near_static"
	case regimeTranslation:
		return "translation"
	case regimeRotation:
		return "rotation"
	default:
		return "mixed"
	}
}

// capsuleMotion is everything the regime classifier and the box builders
// need to know about one capsule step.
type capsuleMotion struct {
	prev, cur Capsule
	dirPrev   mgl64.Vec3
	dirCur    mgl64.Vec3 // flipped onto dirPrev's hemisphere
	avgDir    mgl64.Vec3
	move      mgl64.Vec3
	moveLen   float64
	angleDeg  float64
	avgRadius float64
	maxRadius float64
	endpoints []mgl64.Vec3
	cfg       *SweptConfig
}

func newCapsuleMotion(cfg *SweptConfig, prev, cur Capsule) capsuleMotion {
	m := capsuleMotion{
		prev:      prev,
		cur:       cur,
		dirPrev:   prev.Direction(),
		dirCur:    cur.Direction(),
		move:      cur.Center().Sub(prev.Center()),
		avgRadius: (prev.Radius + cur.Radius) * 0.5,
		maxRadius: math.Max(prev.Radius, cur.Radius),
		endpoints: []mgl64.Vec3{prev.PointA, prev.PointB, cur.PointA, cur.PointB},
		cfg:       cfg,
	}
	if m.dirPrev.Dot(m.dirCur) < 0 {
		m.dirCur = m.dirCur.Mul(-1)
	}
	m.avgDir = alignedAverage(m.dirPrev, m.dirCur)
	m.moveLen = m.move.Len()
	m.angleDeg = axisAngleDeg(m.dirPrev, m.dirCur)
	return m
}

// stationary compares endpoints in both pairings so a capsule that merely
// swapped its ends still counts as unmoved.
func (m capsuleMotion) stationary() bool {
	if math.Abs(m.prev.Radius-m.cur.Radius) >= m.cfg.MinMovement {
		return false
	}
	straight := math.Max(m.prev.PointA.Sub(m.cur.PointA).Len(), m.prev.PointB.Sub(m.cur.PointB).Len())
	swapped := math.Max(m.prev.PointA.Sub(m.cur.PointB).Len(), m.prev.PointB.Sub(m.cur.PointA).Len())
	return math.Min(straight, swapped) < m.cfg.MinMovement
}

func (m capsuleMotion) classify() capsuleRegime {
	if m.stationary() {
		return regimeStationary
	}

	smallMotion := m.moveLen < m.avgRadius
	similarRadius := math.Abs(m.prev.Radius-m.cur.Radius) <= m.cfg.CapsuleRadiusTolerance*m.avgRadius

	switch {
	case m.angleDeg < m.cfg.CapsuleStaticAngleDeg && smallMotion && similarRadius:
		return regimeNearStatic
	case m.angleDeg < m.cfg.CapsuleTranslationAngleDeg && !smallMotion:
		return regimeTranslation
	case m.angleDeg >= m.cfg.CapsuleRotationAngleDeg && smallMotion:
		return regimeRotation
	default:
		return regimeMixed
	}
}

// rotationNormal is the axis the capsule turned around, or the motion
// direction when both poses are parallel.
func (m capsuleMotion) rotationNormal() mgl64.Vec3 {
	n := m.dirPrev.Cross(m.dirCur)
	if n.LenSqr() < degenerateLenSq {
		return m.move
	}
	return n.Normalize()
}

func sweepCapsule(cfg *SweptConfig, prev Capsule, current Shape) Shape {
	m := newCapsuleMotion(cfg, prev, current.AsCapsule())

	var box OrientedBox
	switch m.classify() {
	case regimeStationary:
		return current
	case regimeNearStatic:
		box = boxFromPoints(m.endpoints, [3]mgl64.Vec3{m.avgDir, m.move}, m.maxRadius)
	case regimeTranslation:
		box = m.translationBox()
	case regimeRotation:
		box = m.rotationBox()
	default:
		box = m.mixedBox()
	}
	return BoxShape(box)
}

func (m capsuleMotion) translationBox() OrientedBox {
	moveDir := NormalizeOr(m.move, m.avgDir)
	if math.Abs(moveDir.Dot(m.avgDir)) > m.cfg.TranslationParallelDot {
		return boxFromPoints(m.endpoints, [3]mgl64.Vec3{m.avgDir, moveDir}, m.maxRadius)
	}
	return boxFromPoints(m.endpoints, [3]mgl64.Vec3{moveDir, m.avgDir}, m.maxRadius)
}

// rotationBox adds the arc midpoints of both endpoints around an estimated
// rotation center and aligns the box with the direction of largest spread.
func (m capsuleMotion) rotationBox() OrientedBox {
	points := append([]mgl64.Vec3(nil), m.endpoints...)

	curA, curB := m.cur.PointA, m.cur.PointB
	if m.prev.Direction().Dot(m.cur.Direction()) < 0 {
		curA, curB = curB, curA
	}
	c1, c2 := ClosestPointsBetweenSegments(m.prev.PointA, m.prev.PointB, curA, curB)
	pivot := c1.Add(c2).Mul(0.5)

	for _, pair := range [2][2]mgl64.Vec3{{m.prev.PointA, curA}, {m.prev.PointB, curB}} {
		r0, r1 := pair[0].Sub(pivot), pair[1].Sub(pivot)
		mid := r0.Add(r1)
		if mid.LenSqr() < degenerateLenSq {
			continue
		}
		reach := math.Max(r0.Len(), r1.Len())
		points = append(points, pivot.Add(mid.Normalize().Mul(reach)))
	}

	primary := principalDirection(points, []mgl64.Vec3{m.dirPrev, m.dirCur, m.avgDir})
	normal := m.rotationNormal()
	return boxFromPoints(points, [3]mgl64.Vec3{primary, primary.Cross(normal), normal}, m.maxRadius)
}

func (m capsuleMotion) mixedBox() OrientedBox {
	normal := m.rotationNormal()
	candidates := [][3]mgl64.Vec3{
		{m.dirPrev, normal},
		{m.dirCur, normal},
		{m.avgDir, normal},
	}
	if m.moveLen > 1e-3 {
		candidates = append(candidates, [3]mgl64.Vec3{m.move.Normalize(), m.avgDir})
	}
	return smallestBox(m.endpoints, candidates, m.maxRadius)
}

// principalDirection picks, among the seed directions and the centroid
// offsets of the points, the unit direction along which the points spread the
// most.
func principalDirection(points []mgl64.Vec3, seeds []mgl64.Vec3) mgl64.Vec3 {
	var centroid mgl64.Vec3
	for _, p := range points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float64(len(points)))

	candidates := append([]mgl64.Vec3(nil), seeds...)
	for _, p := range points {
		candidates = append(candidates, p.Sub(centroid))
	}

	best, bestVariance := seeds[0], -1.0
	for _, dir := range candidates {
		if dir.LenSqr() < degenerateLenSq {
			continue
		}
		dir = dir.Normalize()
		var variance float64
		for _, p := range points {
			d := p.Sub(centroid).Dot(dir)
			variance += d * d
		}
		if variance > bestVariance {
			best, bestVariance = dir, variance
		}
	}
	return best
}
