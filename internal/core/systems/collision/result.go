package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/ccd/pkg/sequence"
)

// CollisionHit is one attacker overlapping one target in one tick.
type CollisionHit struct {
	AttackerID    uuid.UUID
	TargetID      uuid.UUID
	Target        *HitBox
	ContactPoint  mgl64.Vec3
	SweepProgress float64

	// attacker and hittable registry slots at match time
	slots [2]int
}

// CollisionResult holds every hit of one attacker in one tick, in hittable
// registration order.
type CollisionResult struct {
	Tick     uint64
	Attacker *AttackBox
	Hits     []CollisionHit
}

// Ordered returns the hits sorted by SweepProgress, earliest along the
// attacker's motion first. Equal progress keeps registration order.
func (r CollisionResult) Ordered() []CollisionHit {
	return sequence.From(r.Hits).
		Sort(func(a, b CollisionHit) bool { return a.SweepProgress < b.SweepProgress }).
		Collect()
}

// SweepProgress places contact along the motion from previous to current.
// Without meaningful motion it falls back to the distance from previous.
func SweepProgress(previous, current, contact mgl64.Vec3) float64 {
	motion := current.Sub(previous)
	offset := contact.Sub(previous)
	if motion.LenSqr() < 1e-8 {
		return offset.Len()
	}
	return offset.Dot(motion.Normalize())
}
