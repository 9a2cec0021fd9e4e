// Package narrow decides whether two shapes overlap and picks one
// representative contact point when they do.
package narrow

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/ccd/internal/core/observability/log"
	"github.com/zeusync/ccd/internal/core/systems/physics"
	"github.com/zeusync/ccd/pkg/generic"
)

// Info is the outcome of one narrow-phase query. ContactPoint is only
// meaningful when HasCollision is set.
type Info struct {
	HasCollision bool
	ContactPoint mgl64.Vec3
}

type Tester interface {
	CheckCollisionInfo(a, b physics.Shape) Info
}

var _ Tester = (*Detector)(nil)

// Detector handles every pairing of sphere, capsule and box. Round shapes are
// solved analytically, box pairs with separating axes and capsule against box
// with GJK.
type Detector struct {
	logger    log.Log
	simplexes *generic.Pool[*simplex]
	fallbacks atomic.Uint64
}

type Option func(*Detector)

func WithLogger(logger log.Log) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		logger: log.NewNop(),
		simplexes: generic.NewHotPool(func() *simplex { return &simplex{} }, 4).
			WithReset(func(s *simplex) { s.count = 0 }),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("narrow")
	return d
}

// CheckCollisionInfo is symmetric in its arguments apart from which side the
// contact point is taken from.
func (d *Detector) CheckCollisionInfo(a, b physics.Shape) Info {
	switch a.Kind() {
	case physics.KindSphere:
		s := a.AsSphere()
		switch b.Kind() {
		case physics.KindSphere:
			o := b.AsSphere()
			return roundedSegments(s.Center, s.Center, s.Radius, o.Center, o.Center, o.Radius)
		case physics.KindCapsule:
			o := b.AsCapsule()
			return roundedSegments(s.Center, s.Center, s.Radius, o.PointA, o.PointB, o.Radius)
		case physics.KindBox:
			return sphereBox(s, b.AsBox())
		}
	case physics.KindCapsule:
		c := a.AsCapsule()
		switch b.Kind() {
		case physics.KindSphere:
			o := b.AsSphere()
			return roundedSegments(c.PointA, c.PointB, c.Radius, o.Center, o.Center, o.Radius)
		case physics.KindCapsule:
			o := b.AsCapsule()
			return roundedSegments(c.PointA, c.PointB, c.Radius, o.PointA, o.PointB, o.Radius)
		case physics.KindBox:
			return d.capsuleBox(c, b.AsBox())
		}
	case physics.KindBox:
		box := a.AsBox()
		switch b.Kind() {
		case physics.KindSphere:
			return sphereBox(b.AsSphere(), box)
		case physics.KindCapsule:
			return d.capsuleBox(b.AsCapsule(), box)
		case physics.KindBox:
			return boxBox(box, b.AsBox())
		}
	}
	return Info{}
}

// Fallbacks counts GJK queries that did not converge and were settled by
// distance instead.
func (d *Detector) Fallbacks() uint64 {
	return d.fallbacks.Load()
}
