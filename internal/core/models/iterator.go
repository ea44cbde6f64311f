package models

import "iter"

// Iterator is an interface for walking a collection of items.
// Next advances the cursor and reports whether an item is available,
// Item returns the current item and Reset rewinds the cursor so the same
// sequence can be traversed again.
// The ToSlice method drains the remaining items into a slice.
// The Count method returns the number of items a full traversal yields.
type Iterator[T any] interface {
	Next() bool
	Item() T
	Reset()
	ToSlice() []T
	Count() int
}

// EntityIterator walks entity ids that match a query.
type EntityIterator interface {
	Iterator[EntityID]
	All() iter.Seq[EntityID]
}
