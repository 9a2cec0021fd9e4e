package collision

import (
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/ccd/internal/core/systems"
	"github.com/zeusync/ccd/internal/core/systems/physics"
)

var _ systems.System = (*Tracker)(nil)

// PoseSource supplies an object's pose for the current step.
type PoseSource interface {
	Pose() physics.Pose
}

// PoseFunc adapts a function to PoseSource.
type PoseFunc func() physics.Pose

func (f PoseFunc) Pose() physics.Pose { return f() }

// Trackable is refreshed once per step from its pose source.
type Trackable interface {
	ID() uuid.UUID
	OnTick(pose physics.Pose)
}

type binding struct {
	obj Trackable
	src PoseSource
}

// Tracker pulls poses for bound objects in the update phase, so every shape
// is current before the scheduler runs in late update.
type Tracker struct {
	*systems.Base
	bindings []binding
}

func NewTracker() *Tracker {
	return &Tracker{Base: systems.NewBase("collision.tracker", systems.PhaseUpdate, systems.PriorityNormal)}
}

// Bind attaches src to obj, replacing an earlier source for the same object.
func (t *Tracker) Bind(obj Trackable, src PoseSource) {
	if i := t.index(obj.ID()); i >= 0 {
		t.bindings[i].src = src
		return
	}
	t.bindings = append(t.bindings, binding{obj: obj, src: src})
}

func (t *Tracker) Unbind(id uuid.UUID) {
	t.bindings = slices.DeleteFunc(t.bindings, func(b binding) bool { return b.obj.ID() == id })
}

func (t *Tracker) Len() int {
	return len(t.bindings)
}

// Update refreshes bound objects in bind order.
func (t *Tracker) Update(float64) error {
	for _, b := range t.bindings {
		b.obj.OnTick(b.src.Pose())
	}
	return nil
}

func (t *Tracker) index(id uuid.UUID) int {
	return slices.IndexFunc(t.bindings, func(b binding) bool { return b.obj.ID() == id })
}
