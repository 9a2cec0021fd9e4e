package collision

import (
	"github.com/google/uuid"

	"github.com/zeusync/ccd/internal/core/systems/physics"
)

// AttackHandler receives the hits of one attacker for one tick; it is never
// called with an empty result.
type AttackHandler func(result CollisionResult)

// AttackBox is an attacking volume. Targets in its ignore set are never hit;
// targets in its checked set were already hit since the last activation.
type AttackBox struct {
	PhysicsObject
	ignore  map[uuid.UUID]struct{}
	checked map[uuid.UUID]struct{}
	handler AttackHandler
}

func NewAttackBox(kind physics.Kind, sweeper Sweeper) *AttackBox {
	return &AttackBox{
		PhysicsObject: newPhysicsObject(kind, sweeper),
		ignore:        make(map[uuid.UUID]struct{}),
		checked:       make(map[uuid.UUID]struct{}),
	}
}

func (a *AttackBox) Role() Role { return RoleAttacker }

func (a *AttackBox) SetHandler(handler AttackHandler) {
	a.handler = handler
}

// SetActive re-arms the attack on the inactive to active transition by
// forgetting every target hit so far. Other calls only store the flag.
func (a *AttackBox) SetActive(active bool) {
	if active && !a.active {
		clear(a.checked)
	}
	a.active = active
}

// AddIgnore excludes target from this attacker's hits for its whole lifetime.
func (a *AttackBox) AddIgnore(target Object) {
	a.AddIgnoreID(target.ID())
}

func (a *AttackBox) AddIgnoreID(id uuid.UUID) {
	a.ignore[id] = struct{}{}
}

func (a *AttackBox) RemoveIgnore(id uuid.UUID) {
	delete(a.ignore, id)
}

func (a *AttackBox) IsIgnored(id uuid.UUID) bool {
	_, ok := a.ignore[id]
	return ok
}

func (a *AttackBox) IsChecked(id uuid.UUID) bool {
	_, ok := a.checked[id]
	return ok
}

func (a *AttackBox) CheckedCount() int {
	return len(a.checked)
}

// skips reports whether target must not be tested this tick.
func (a *AttackBox) skips(id uuid.UUID) bool {
	return id == a.id || a.IsIgnored(id) || a.IsChecked(id)
}

// OnCollisionEvent hands result to the handler and then marks every target in
// it as checked.
func (a *AttackBox) OnCollisionEvent(result CollisionResult) {
	if len(result.Hits) == 0 {
		return
	}
	if a.handler != nil {
		a.handler(result)
	}
	for _, hit := range result.Hits {
		a.checked[hit.TargetID] = struct{}{}
	}
}
