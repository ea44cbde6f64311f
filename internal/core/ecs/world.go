package ecs

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/zeusync/zengine/internal/core/models"
	"github.com/zeusync/zengine/internal/core/observability/log"
)

type entity struct {
	id      models.EntityID
	name    string
	mask    models.Bitmask
	parent  models.EntityID
	pending bool
}

// World is the entity and component registry.
//
// Entities are removed in two phases: RemoveEntity only marks them and
// CleanupEntities, called once per frame after every system ran, erases
// them. Systems iterating a query therefore never see a half destroyed
// entity and may remove entities freely while iterating.
//
// World is not safe for concurrent use.
type World struct {
	id  uuid.UUID
	log *log.Logger

	nextID   models.EntityID
	entities map[models.EntityID]*entity
	order    []models.EntityID
	pending  []models.EntityID

	kinds  map[reflect.Type]models.ComponentID
	stores []componentStore

	onDestroy []func(models.EntityID)
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger the World reports to.
func WithLogger(l *log.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithID overrides the generated instance id.
func WithID(id uuid.UUID) Option {
	return func(w *World) { w.id = id }
}

// NewWorld creates an empty World.
func NewWorld(opts ...Option) *World {
	w := &World{
		id:       uuid.New(),
		log:      log.Nop(),
		entities: make(map[models.EntityID]*entity),
		kinds:    make(map[reflect.Type]models.ComponentID),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.Named("world")
	w.log.Debug("world created", log.String("world", w.id.String()))
	return w
}

// ID returns the instance id of the World.
func (w *World) ID() uuid.UUID { return w.id }

// NewEntity allocates the next sequential id and registers an entity with
// an empty component mask under it.
func (w *World) NewEntity(name string) models.EntityID {
	return w.newEntity(name, models.NoEntity)
}

func (w *World) newEntity(name string, parent models.EntityID) models.EntityID {
	w.nextID++
	id := w.nextID
	w.entities[id] = &entity{id: id, name: name, parent: parent}
	w.order = append(w.order, id)
	return id
}

// RemoveEntity marks e for deletion. Components stay attached until the
// next CleanupEntities. Removing an unknown or already marked entity does
// nothing.
func (w *World) RemoveEntity(e models.EntityID) {
	ent, ok := w.entities[e]
	if !ok || ent.pending {
		return
	}
	ent.pending = true
	w.pending = append(w.pending, e)
}

// OnEntityDestroyed registers fn to run for every entity erased by
// CleanupEntities. Hooks run before the components are dropped so they can
// still read them.
func (w *World) OnEntityDestroyed(fn func(models.EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// CleanupEntities erases every entity marked by RemoveEntity from all
// component stores and from the registry. It returns how many entities
// were erased.
func (w *World) CleanupEntities() int {
	if len(w.pending) == 0 {
		return 0
	}
	pending := w.pending
	w.pending = nil

	for _, e := range pending {
		for _, fn := range w.onDestroy {
			fn(e)
		}
	}

	gone := make(map[models.EntityID]struct{}, len(pending))
	for _, e := range pending {
		for _, s := range w.stores {
			s.remove(e)
		}
		delete(w.entities, e)
		gone[e] = struct{}{}
	}

	kept := w.order[:0]
	for _, e := range w.order {
		if _, ok := gone[e]; !ok {
			kept = append(kept, e)
		}
	}
	clear(w.order[len(kept):])
	w.order = kept

	w.log.Debug("entities cleaned up", log.Int("count", len(pending)), log.Int("alive", len(w.order)))
	return len(pending)
}

// Exists reports whether e is registered, including entities that are
// marked for deletion but not yet cleaned up.
func (w *World) Exists(e models.EntityID) bool {
	_, ok := w.entities[e]
	return ok
}

// IsPending reports whether e is marked for deletion.
func (w *World) IsPending(e models.EntityID) bool {
	ent, ok := w.entities[e]
	return ok && ent.pending
}

// Name returns the name e was created with.
func (w *World) Name(e models.EntityID) (string, bool) {
	ent, ok := w.entities[e]
	if !ok {
		return "", false
	}
	return ent.name, true
}

// Parent returns the entity e was constructed under, NoEntity if none.
func (w *World) Parent(e models.EntityID) models.EntityID {
	if ent, ok := w.entities[e]; ok {
		return ent.parent
	}
	return models.NoEntity
}

// Mask returns the component mask of e. The returned mask is owned by the
// World and must not be modified.
func (w *World) Mask(e models.EntityID) (*models.Bitmask, bool) {
	ent, ok := w.entities[e]
	if !ok {
		return nil, false
	}
	return &ent.mask, true
}

// Len returns the number of registered entities.
func (w *World) Len() int { return len(w.order) }

// Kinds returns the number of component kinds registered so far.
func (w *World) Kinds() int { return len(w.stores) }

// Query returns a cursor over every entity whose mask satisfies mask, in
// ascending id order. A nil mask matches every entity.
func (w *World) Query(mask *models.Bitmask) *Iterator {
	return &Iterator{world: w, mask: mask}
}

func (w *World) mustEntity(e models.EntityID, what reflect.Type) *entity {
	ent, ok := w.entities[e]
	if !ok {
		panic(fmt.Sprintf("ecs: add %s to unknown entity %d", what, e))
	}
	return ent
}
