package physics

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/ccd/internal/core/observability/log"
)

// SweptCalculator derives a conservative volume covering a shape at its
// previous and current pose. It keeps no per-object state; the config may be
// swapped at any time and takes effect on the next call.
type SweptCalculator struct {
	config atomic.Pointer[SweptConfig]
	logger log.Log
}

type SweptOption func(*SweptCalculator)

func WithLogger(logger log.Log) SweptOption {
	return func(c *SweptCalculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithSweptConfig(cfg SweptConfig) SweptOption {
	return func(c *SweptCalculator) {
		c.config.Store(&cfg)
	}
}

func NewSweptCalculator(opts ...SweptOption) *SweptCalculator {
	c := &SweptCalculator{logger: log.NewNop()}
	cfg := DefaultSweptConfig()
	c.config.Store(&cfg)
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("swept")
	return c
}

func (c *SweptCalculator) Config() SweptConfig {
	return *c.config.Load()
}

// SetConfig validates and installs cfg. The previous config stays active on
// error.
func (c *SweptCalculator) SetConfig(cfg SweptConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.config.Store(&cfg)
	c.logger.Info("swept volume config updated",
		log.Bool("enabled", cfg.Enabled),
		log.Float64("min_movement", cfg.MinMovement),
	)
	return nil
}

// ComputeSweptVolume returns a shape enclosing previous, current and the path
// between them. Spheres sweep into capsules, capsules into oriented boxes and
// boxes into larger boxes. Stationary or degenerate input and mismatched kinds
// yield current unchanged.
func (c *SweptCalculator) ComputeSweptVolume(previous, current Shape) Shape {
	cfg := c.config.Load()
	if !cfg.Enabled {
		return current
	}
	if !previous.SameKind(current) {
		c.logger.Warn("swept volume shape kind mismatch",
			log.Stringer("previous", previous.Kind()),
			log.Stringer("current", current.Kind()),
		)
		return current
	}

	switch current.Kind() {
	case KindSphere:
		return sweepSphere(cfg, previous.AsSphere(), current)
	case KindCapsule:
		return sweepCapsule(cfg, previous.AsCapsule(), current)
	case KindBox:
		return sweepBox(cfg, previous.AsBox(), current)
	}
	return current
}

func sweepSphere(cfg *SweptConfig, prev Sphere, current Shape) Shape {
	cur := current.AsSphere()
	radius := math.Max(prev.Radius, cur.Radius)
	if prev.Center.Sub(cur.Center).Len() < cfg.MinMovement {
		if math.Abs(prev.Radius-cur.Radius) < cfg.MinMovement {
			return current
		}
		return SphereShape(Sphere{Center: cur.Center, Radius: radius})
	}
	return CapsuleShape(Capsule{PointA: prev.Center, PointB: cur.Center, Radius: radius})
}

// boxFromPoints orthonormalizes axes, fits the tightest box along them around
// points and grows every half extent by radius.
func boxFromPoints(points []mgl64.Vec3, axes [3]mgl64.Vec3, radius float64) OrientedBox {
	basis := Orthonormalize(axes)
	var center, half mgl64.Vec3
	for i, axis := range basis {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range points {
			d := p.Dot(axis)
			lo = math.Min(lo, d)
			hi = math.Max(hi, d)
		}
		center = center.Add(axis.Mul((lo + hi) * 0.5))
		half[i] = (hi-lo)*0.5 + radius
	}
	return OrientedBox{Center: center, Axes: basis, HalfExtents: half}
}

// smallestBox fits a box for every candidate basis and keeps the one with the
// least volume; earlier candidates win ties.
func smallestBox(points []mgl64.Vec3, candidates [][3]mgl64.Vec3, radius float64) OrientedBox {
	var best OrientedBox
	bestVolume := math.Inf(1)
	for _, axes := range candidates {
		box := boxFromPoints(points, axes, radius)
		if v := box.Volume(); v < bestVolume {
			best, bestVolume = box, v
		}
	}
	return best
}

func axisAngleDeg(a, b mgl64.Vec3) float64 {
	return mgl64.RadToDeg(math.Acos(clamp(math.Abs(a.Dot(b)), 0, 1)))
}
