package bus

import "github.com/zeusync/zengine/internal/core/models"

// Event is a message aimed at one entity. Listeners registered with a
// required mask only hear events whose target currently owns every
// component in that mask.
type Event interface {
	Target() models.EntityID
}

// MaskSource resolves the current component mask of an entity.
// *ecs.World implements it.
type MaskSource interface {
	Mask(e models.EntityID) (*models.Bitmask, bool)
}

// Metrics counts deliveries since the manager was created.
type Metrics struct {
	Sent      uint64 // Send calls for types that had listeners
	Delivered uint64 // listener invocations
	Filtered  uint64 // listeners skipped by their required mask
}
