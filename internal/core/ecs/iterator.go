package ecs

import (
	"iter"

	"github.com/zeusync/zengine/internal/core/models"
)

var _ models.EntityIterator = (*Iterator)(nil)

// Iterator is a forward cursor over the entities matching a mask, in
// ascending id order. It can be rewound with Reset.
//
// Entities marked for deletion are still visited until they are cleaned
// up. Cleaning up while a cursor is in use, or creating entities of the
// iterated shape, leaves the traversal order undefined.
type Iterator struct {
	world *World
	mask  *models.Bitmask
	pos   int
	cur   models.EntityID
}

// Next advances to the next matching entity.
func (it *Iterator) Next() bool {
	order := it.world.order
	for it.pos < len(order) {
		id := order[it.pos]
		it.pos++
		if ent, ok := it.world.entities[id]; ok && ent.mask.HasComponents(it.mask) {
			it.cur = id
			return true
		}
	}
	it.cur = models.NoEntity
	return false
}

// Item returns the entity the cursor is on.
func (it *Iterator) Item() models.EntityID { return it.cur }

// Entity is an alias of Item.
func (it *Iterator) Entity() models.EntityID { return it.cur }

// Reset rewinds the cursor to the first entity.
func (it *Iterator) Reset() {
	it.pos = 0
	it.cur = models.NoEntity
}

// ToSlice drains the remaining matches.
func (it *Iterator) ToSlice() []models.EntityID {
	var out []models.EntityID
	for it.Next() {
		out = append(out, it.cur)
	}
	return out
}

// Count returns the number of matches of a full traversal without moving
// the cursor.
func (it *Iterator) Count() int {
	n := 0
	for _, id := range it.world.order {
		if ent, ok := it.world.entities[id]; ok && ent.mask.HasComponents(it.mask) {
			n++
		}
	}
	return n
}

// All returns a fresh traversal as a range-over-func sequence. It does not
// move the cursor.
func (it *Iterator) All() iter.Seq[models.EntityID] {
	return func(yield func(models.EntityID) bool) {
		c := Iterator{world: it.world, mask: it.mask}
		for c.Next() {
			if !yield(c.cur) {
				return
			}
		}
	}
}
