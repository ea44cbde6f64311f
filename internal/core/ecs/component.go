package ecs

import (
	"reflect"

	"github.com/zeusync/zengine/internal/core/models"
	"github.com/zeusync/zengine/internal/core/observability/log"
	"github.com/zeusync/zengine/pkg/generic"
)

type componentStore interface {
	remove(e models.EntityID) bool
	has(e models.EntityID) bool
	len() int
}

// store keeps every component of one kind in a paged arena and maps the
// owning entity to its slot.
type store[T any] struct {
	arena generic.Arena[T]
	index map[models.EntityID]uint32
}

func newStore[T any]() *store[T] {
	return &store[T]{index: make(map[models.EntityID]uint32)}
}

func (s *store[T]) get(e models.EntityID) (*T, bool) {
	idx, ok := s.index[e]
	if !ok {
		return nil, false
	}
	return s.arena.At(idx), true
}

func (s *store[T]) insert(e models.EntityID) *T {
	var zero T
	idx, ptr := s.arena.Alloc(zero)
	s.index[e] = idx
	return ptr
}

func (s *store[T]) remove(e models.EntityID) bool {
	idx, ok := s.index[e]
	if !ok {
		return false
	}
	delete(s.index, e)
	return s.arena.Release(idx)
}

func (s *store[T]) has(e models.EntityID) bool {
	_, ok := s.index[e]
	return ok
}

func (s *store[T]) len() int { return len(s.index) }

// KindOf returns the kind id of T in w, registering T on first use.
func KindOf[T any](w *World) models.ComponentID {
	typ := reflect.TypeFor[T]()
	if id, ok := w.kinds[typ]; ok {
		return id
	}
	id := models.ComponentID(len(w.stores))
	w.kinds[typ] = id
	w.stores = append(w.stores, newStore[T]())
	w.log.Debug("component kind registered", log.String("type", typ.String()), log.Uint32("kind", uint32(id)))
	return id
}

func storeOf[T any](w *World) (*store[T], models.ComponentID) {
	id := KindOf[T](w)
	return w.stores[id].(*store[T]), id
}

// Add attaches a zero T to e and returns it. If e already owns a T that
// instance is returned unchanged. Adding to an entity that does not exist
// is a programming error and panics.
func Add[T any](w *World, e models.EntityID) *T {
	s, id := storeOf[T](w)
	ent := w.mustEntity(e, reflect.TypeFor[T]())
	if c, ok := s.get(e); ok {
		return c
	}
	c := s.insert(e)
	ent.mask.SetBit(uint(id), true)
	return c
}

// Get returns the T attached to e.
func Get[T any](w *World, e models.EntityID) (*T, bool) {
	s, _ := storeOf[T](w)
	return s.get(e)
}

// GetOrAdd returns the T attached to e, attaching a zero one first when e
// has none.
func GetOrAdd[T any](w *World, e models.EntityID) *T {
	if c, ok := Get[T](w, e); ok {
		return c
	}
	return Add[T](w, e)
}

// Has reports whether e owns a T.
func Has[T any](w *World, e models.EntityID) bool {
	s, _ := storeOf[T](w)
	return s.has(e)
}

// Remove detaches the T owned by e immediately. It reports whether there
// was one.
func Remove[T any](w *World, e models.EntityID) bool {
	s, id := storeOf[T](w)
	if !s.remove(e) {
		return false
	}
	if ent, ok := w.entities[e]; ok {
		ent.mask.SetBit(uint(id), false)
	}
	return true
}

// Count returns how many entities own a T.
func Count[T any](w *World) int {
	s, _ := storeOf[T](w)
	return s.len()
}

// MaskOf builds a mask from kind ids, typically obtained with KindOf.
func MaskOf(kinds ...models.ComponentID) *models.Bitmask {
	m := &models.Bitmask{}
	for _, k := range kinds {
		m.SetBit(uint(k), true)
	}
	return m
}
