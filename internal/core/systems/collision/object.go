// Package collision matches attack volumes against hittable volumes once per
// tick and reports each target at most once per attack activation.
package collision

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/ccd/internal/core/systems/physics"
)

// Role is the side an object plays in matching.
type Role uint8

const (
	RoleAttacker Role = iota + 1
	RoleHittable
)

func (r Role) String() string {
	switch r {
	case RoleAttacker:
		return "attacker"
	case RoleHittable:
		return "hittable"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Object is anything the scheduler can register.
type Object interface {
	ID() uuid.UUID
	Role() Role
}

// Sweeper derives the swept shape from the previous and current shape.
type Sweeper interface {
	ComputeSweptVolume(previous, current physics.Shape) physics.Shape
}

// PhysicsObject is the per-entity shape state shared by attack and hit
// boxes. Identity is fixed at construction and is the only thing equality
// depends on; the shape kind never changes either.
type PhysicsObject struct {
	id      uuid.UUID
	kind    physics.Kind
	sweeper Sweeper

	current  physics.Shape
	previous physics.Shape
	swept    physics.Shape
	seeded   bool

	active  bool
	enabled bool
}

func newPhysicsObject(kind physics.Kind, sweeper Sweeper) PhysicsObject {
	return PhysicsObject{
		id:       uuid.New(),
		kind:     kind,
		sweeper:  sweeper,
		current:  physics.NewShape(kind),
		previous: physics.NewShape(kind),
		swept:    physics.NewShape(kind),
		enabled:  true,
	}
}

func (o *PhysicsObject) ID() uuid.UUID           { return o.id }
func (o *PhysicsObject) Kind() physics.Kind      { return o.kind }
func (o *PhysicsObject) Current() physics.Shape  { return o.current }
func (o *PhysicsObject) Previous() physics.Shape { return o.previous }
func (o *PhysicsObject) Swept() physics.Shape    { return o.swept }
func (o *PhysicsObject) IsActive() bool          { return o.active }
func (o *PhysicsObject) Enabled() bool           { return o.enabled }
func (o *PhysicsObject) Seeded() bool            { return o.seeded }

// SetEnabled is the host-level switch, independent from the active flag.
func (o *PhysicsObject) SetEnabled(enabled bool) {
	o.enabled = enabled
}

// Eligible reports whether the object takes part in matching: it must be
// active, enabled by the host and have received at least one pose.
func (o *PhysicsObject) Eligible() bool {
	return o.active && o.enabled && o.seeded
}

// OnTick refreshes the shape from this step's pose. The old current shape
// becomes previous and the swept shape is rebuilt from both. The very first
// pose seeds previous and current alike.
func (o *PhysicsObject) OnTick(pose physics.Pose) {
	if !o.seeded {
		o.Reset(pose)
		return
	}
	o.previous = o.current
	o.current.UpdateFromPose(pose)
	o.sweep()
}

// UpdateShape is OnTick for hosts that build shapes themselves.
func (o *PhysicsObject) UpdateShape(shape physics.Shape) error {
	if shape.Kind() != o.kind {
		return fmt.Errorf("%w: object is %s, got %s", ErrKindMismatch, o.kind, shape.Kind())
	}
	if !o.seeded {
		o.previous, o.current, o.swept = shape, shape, shape
		o.seeded = true
		return nil
	}
	o.previous = o.current
	o.current = shape
	o.sweep()
	return nil
}

// Reset places the object at pose with no motion history, so a teleport does
// not leave a swept streak behind.
func (o *PhysicsObject) Reset(pose physics.Pose) {
	o.current = physics.ShapeFromPose(o.kind, pose)
	o.previous = o.current
	o.swept = o.current
	o.seeded = true
}

// Inspect returns the shapes used for visualization.
func (o *PhysicsObject) Inspect() (current, swept physics.Shape) {
	return o.current, o.swept
}

func (o *PhysicsObject) sweep() {
	if o.sweeper == nil {
		o.swept = o.current
		return
	}
	o.swept = o.sweeper.ComputeSweptVolume(o.previous, o.current)
}
