package models

// EntityID identifies an entity inside one World. Ids are allocated
// sequentially starting at 1 and are never reused by the same World.
type EntityID uint64

// NoEntity is the zero id. It never names a live entity.
const NoEntity EntityID = 0

// ComponentID is the dense kind id a World assigns to a component type the
// first time that type is referenced against it.
type ComponentID uint32

// Valid reports whether the id can name an entity.
func (id EntityID) Valid() bool { return id != NoEntity }

// Pair is an unordered entity pair stored in canonical (min, max) order.
type Pair struct {
	A, B EntityID
}

// MakePair orders a and b so that Pair{a, b} == MakePair(b, a).
func MakePair(a, b EntityID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Other returns the member of the pair that is not e.
func (p Pair) Other(e EntityID) EntityID {
	if p.A == e {
		return p.B
	}
	return p.A
}
