package systems

import (
	"time"

	"github.com/zeusync/zengine/internal/core/ecs"
	"github.com/zeusync/zengine/internal/core/models"
)

// System represents a game logic processor run once per simulation step.
type System interface {
	Name() string
	Update(dt float64)
}

// EntityUpdater is implemented by systems built on Base. UpdateEntity is
// called once per entity matching the system's required components.
type EntityUpdater interface {
	UpdateEntity(dt float64, e models.EntityID)
}

// Base declares the component kinds a system needs and walks the matching
// entities on Update.
//
// A system must not create entities of its own required shape while it
// iterates. Removing entities is fine since removal is deferred.
type Base struct {
	name     string
	world    *ecs.World
	required *models.Bitmask
	updater  EntityUpdater
	visited  uint64
}

// NewBase creates a Base that calls updater for every matching entity.
// Embedders usually pass themselves:
//
//	s := &gravity{}
//	s.Base = systems.NewBase("gravity", w, s)
//	systems.Require[Velocity](&s.Base)
func NewBase(name string, w *ecs.World, updater EntityUpdater) Base {
	return Base{name: name, world: w, required: &models.Bitmask{}, updater: updater}
}

// Require adds the kind of T to the components b needs.
func Require[T any](b *Base) {
	b.required.SetBit(uint(ecs.KindOf[T](b.world)), true)
}

func (b *Base) Name() string { return b.name }

// World returns the World the system runs against.
func (b *Base) World() *ecs.World { return b.world }

// Required returns the mask of required component kinds.
func (b *Base) Required() *models.Bitmask { return b.required }

// Update calls UpdateEntity for every matching entity in ascending id order.
func (b *Base) Update(dt float64) {
	it := b.world.Query(b.required)
	for it.Next() {
		b.updater.UpdateEntity(dt, it.Entity())
		b.visited++
	}
}

// Processed returns how many entities Update has visited so far.
func (b *Base) Processed() uint64 { return b.visited }

// Priority defines execution order. Higher priorities run first.
type Priority uint16

const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	LastExecutionTime    time.Time
	EntitiesProcessed    uint64
}
