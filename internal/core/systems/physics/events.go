package physics

import (
	"github.com/zeusync/zengine/internal/core/events/bus"
	"github.com/zeusync/zengine/internal/core/models"
)

// CollisionBegan is sent to each entity of a pair when they start touching.
type CollisionBegan struct {
	Entity models.EntityID
	Other  models.EntityID
}

func (c CollisionBegan) Target() models.EntityID { return c.Entity }

// CollisionEnded is sent to each entity of a pair when they stop touching.
type CollisionEnded struct {
	Entity models.EntityID
	Other  models.EntityID
}

func (c CollisionEnded) Target() models.EntityID { return c.Entity }

var _ ContactListener = (*EventBridge)(nil)

// EventBridge forwards contact changes to an event manager, once per
// participant so that mask gated listeners on either side hear them.
type EventBridge struct {
	events *bus.Manager
}

func NewEventBridge(events *bus.Manager) *EventBridge {
	return &EventBridge{events: events}
}

func (b *EventBridge) ContactBegan(pair models.Pair, _ Manifold) {
	bus.Send(b.events, CollisionBegan{Entity: pair.A, Other: pair.B})
	bus.Send(b.events, CollisionBegan{Entity: pair.B, Other: pair.A})
}

func (b *EventBridge) ContactEnded(pair models.Pair) {
	bus.Send(b.events, CollisionEnded{Entity: pair.A, Other: pair.B})
	bus.Send(b.events, CollisionEnded{Entity: pair.B, Other: pair.A})
}
