package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/ccd/internal/core/events/bus"
	"github.com/zeusync/ccd/pkg/sequence"
)

// EventTypeHit is the bus event type of published hits.
const EventTypeHit = "collision.hit"

const eventSource = "collision.scheduler"

// HitEvent is the bus payload for one delivered hit.
type HitEvent struct {
	Tick          uint64
	AttackerID    uuid.UUID
	TargetID      uuid.UUID
	ContactPoint  mgl64.Vec3
	SweepProgress float64
}

func hitEvents(result CollisionResult) []bus.Event {
	return sequence.ToArray(sequence.From(result.Hits), func(hit CollisionHit) bus.Event {
		return bus.NewEvent(EventTypeHit, eventSource, HitEvent{
			Tick:          result.Tick,
			AttackerID:    hit.AttackerID,
			TargetID:      hit.TargetID,
			ContactPoint:  hit.ContactPoint,
			SweepProgress: hit.SweepProgress,
		}, 0, nil)
	})
}
