package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/ccd/internal/core/observability/log"
	"github.com/zeusync/ccd/internal/core/systems/collision"
	"github.com/zeusync/ccd/internal/core/systems/physics"
	"github.com/zeusync/ccd/internal/injector"
)

const (
	swingPeriod      = 90
	projectileSpeed  = 1.5
	projectileRange  = 12.0
	projectileRadius = 0.2
)

// scenario scripts a sword swinging around the origin and a fast projectile
// crossing a thin wall, with dummies standing in the sword's path.
type scenario struct {
	step int

	sword      *collision.AttackBox
	projectile *collision.AttackBox
	dummies    []*collision.HitBox
	wall       *collision.HitBox
}

func newScenario(sim *injector.Simulation, logger log.Log) *scenario {
	s := &scenario{
		sword:      collision.NewAttackBox(physics.KindCapsule, sim.Swept),
		projectile: collision.NewAttackBox(physics.KindSphere, sim.Swept),
		wall:       collision.NewHitBox(physics.KindBox, sim.Swept),
	}

	for i := range 4 {
		angle := float64(i) * math.Pi / 2
		pos := mgl64.Vec3{2.5 * math.Cos(angle), 0, 2.5 * math.Sin(angle)}
		dummy := collision.NewHitBox(physics.KindBox, sim.Swept)
		dummy.Reset(physics.NewPose(pos, mgl64.Vec3{}, mgl64.Vec3{0.6, 1.8, 0.6}))
		dummy.SetActive(true)
		s.dummies = append(s.dummies, dummy)
		sim.Scheduler.Register(dummy)
	}
	s.wall.Reset(physics.NewPose(mgl64.Vec3{0, 0, -3.75}, mgl64.Vec3{}, mgl64.Vec3{4, 3, 0.05}))
	s.wall.SetActive(true)
	sim.Scheduler.Register(s.wall)

	hitLogger := logger.Named("hits")
	onHit := func(result collision.CollisionResult) {
		for _, hit := range result.Ordered() {
			hitLogger.Info("hit",
				log.Uint64("tick", result.Tick),
				log.Stringer("attacker", hit.AttackerID),
				log.Stringer("target", hit.TargetID),
				log.Vec3("contact", hit.ContactPoint),
				log.Float64("progress", hit.SweepProgress),
			)
		}
	}
	s.sword.SetHandler(onHit)
	s.projectile.SetHandler(onHit)
	s.projectile.AddIgnore(s.sword)

	sim.Tracker.Bind(s.sword, collision.PoseFunc(s.swordPose))
	sim.Tracker.Bind(s.projectile, collision.PoseFunc(s.projectilePose))
	sim.Scheduler.Register(s.sword)
	sim.Scheduler.Register(s.projectile)
	s.sword.SetActive(true)
	s.projectile.SetActive(true)
	return s
}

// advance moves the script one step forward. Every swing and every
// projectile flight is a fresh activation, so each may hit its targets again.
func (s *scenario) advance() {
	s.step++
	if s.step%swingPeriod == 1 {
		s.sword.SetActive(false)
		s.sword.SetActive(true)
	}
	if s.projectileDistance() < projectileSpeed {
		s.projectile.SetActive(false)
		s.projectile.Reset(s.projectilePose())
		s.projectile.SetActive(true)
	}
}

func (s *scenario) swordPose() physics.Pose {
	angle := 360 * float64(s.step%swingPeriod) / swingPeriod
	rot := physics.EulerRotation(mgl64.Vec3{0, angle, 90})
	return physics.Pose{
		Position: rot.Rotate(mgl64.Vec3{0, 1.5, 0}),
		Rotation: rot,
		Scale:    mgl64.Vec3{0.3, 3, 0.3},
	}
}

func (s *scenario) projectileDistance() float64 {
	return math.Mod(float64(s.step)*projectileSpeed, projectileRange)
}

func (s *scenario) projectilePose() physics.Pose {
	z := projectileRange/2 - s.projectileDistance()
	d := 2 * projectileRadius
	return physics.NewPose(mgl64.Vec3{0, 0, z}, mgl64.Vec3{}, mgl64.Vec3{d, d, d})
}
