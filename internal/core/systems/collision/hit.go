package collision

import "github.com/zeusync/ccd/internal/core/systems/physics"

// HitHandler receives every hit taken by a hittable, one call per attacker.
type HitHandler func(hit CollisionHit)

// HitBox is a volume that can be hit. It keeps no dedup state; each attacker
// decides on its own whether it already hit this box.
type HitBox struct {
	PhysicsObject
	handler HitHandler
}

func NewHitBox(kind physics.Kind, sweeper Sweeper) *HitBox {
	return &HitBox{PhysicsObject: newPhysicsObject(kind, sweeper)}
}

func (h *HitBox) Role() Role { return RoleHittable }

func (h *HitBox) SetHandler(handler HitHandler) {
	h.handler = handler
}

func (h *HitBox) SetActive(active bool) {
	h.active = active
}

func (h *HitBox) OnHitEvent(hit CollisionHit) {
	if h.handler != nil {
		h.handler(hit)
	}
}
