package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func sweepBox(cfg *SweptConfig, prev OrientedBox, current Shape) Shape {
	cur := current.AsBox()
	if boxStationary(cfg, prev, cur) {
		return current
	}

	move := cur.Center.Sub(prev.Center)
	if box, ok := boxFastPath(cfg, prev, cur, move); ok {
		return BoxShape(box)
	}

	prevVerts, curVerts := prev.Vertices(), cur.Vertices()
	points := append(prevVerts[:], curVerts[:]...)

	candidates := [][3]mgl64.Vec3{prev.Axes, cur.Axes}
	if move.Len() > 1e-3 {
		moveDir := move.Normalize()
		candidates = append(candidates,
			substituteAxis(prev.Axes, moveDir),
			substituteAxis(cur.Axes, moveDir),
		)
	}
	var averaged [3]mgl64.Vec3
	for i := range averaged {
		averaged[i] = alignedAverage(prev.Axes[i], cur.Axes[i])
	}
	candidates = append(candidates, averaged)

	return BoxShape(smallestBox(points, candidates, 0))
}

func boxStationary(cfg *SweptConfig, prev, cur OrientedBox) bool {
	if maxComponent(absVec(cur.HalfExtents.Sub(prev.HalfExtents))) >= cfg.MinMovement {
		return false
	}
	prevVerts, curVerts := prev.Vertices(), cur.Vertices()
	for i := range prevVerts {
		if prevVerts[i].Sub(curVerts[i]).Len() >= cfg.MinMovement {
			return false
		}
	}
	return true
}

// boxFastPath keeps the previous axes when the box barely turned and moved,
// widening each half extent to cover the current box and half the motion
// on either side of the midpoint.
func boxFastPath(cfg *SweptConfig, prev, cur OrientedBox, move mgl64.Vec3) (OrientedBox, bool) {
	if move.Len() >= cfg.BoxFastPathDistance {
		return OrientedBox{}, false
	}
	minCos := math.Cos(mgl64.DegToRad(cfg.BoxFastPathAngleDeg))
	for i := range prev.Axes {
		if math.Abs(prev.Axes[i].Dot(cur.Axes[i])) < minCos {
			return OrientedBox{}, false
		}
	}

	box := OrientedBox{
		Center: prev.Center.Add(cur.Center).Mul(0.5),
		Axes:   prev.Axes,
	}
	for i, axis := range prev.Axes {
		box.HalfExtents[i] = math.Max(prev.HalfExtents[i], cur.ExtentAlong(axis)) + math.Abs(move.Dot(axis))*0.5
	}
	return box, true
}

// substituteAxis puts dir first, followed by the two axes least aligned with
// it in their original order.
func substituteAxis(axes [3]mgl64.Vec3, dir mgl64.Vec3) [3]mgl64.Vec3 {
	replaced := 0
	for i := 1; i < 3; i++ {
		if math.Abs(axes[i].Dot(dir)) > math.Abs(axes[replaced].Dot(dir)) {
			replaced = i
		}
	}
	out := [3]mgl64.Vec3{dir}
	n := 1
	for i, axis := range axes {
		if i != replaced {
			out[n] = axis
			n++
		}
	}
	return out
}

func absVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])}
}

func maxComponent(v mgl64.Vec3) float64 {
	return math.Max(math.Max(v[0], v[1]), v[2])
}
