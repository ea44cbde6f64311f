package generic

import "fmt"

// Handle is an opaque reference to a value owned by a HandlePool. Handles
// are small comparable values: copies compare equal and all copies become
// invalid together when the value is freed. The zero Handle is never valid.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle[T]) IsZero() bool { return h.generation == 0 }

func (h Handle[T]) String() string {
	return fmt.Sprintf("handle(%d@%d)", h.index, h.generation)
}

type handleSlot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// HandlePool exclusively owns values of T and hands out Handles to them.
// A slot that is freed and reused gets a new generation, so stale copies
// of the old handle resolve to nothing instead of the new occupant.
//
// HandlePool is not safe for concurrent use.
type HandlePool[T any] struct {
	slots []*handleSlot[T]
	free  []uint32
	live  int
}

// NewHandlePool creates an empty pool.
func NewHandlePool[T any]() *HandlePool[T] {
	return &HandlePool[T]{}
}

// NewHandle stores value and returns a handle to it.
func (p *HandlePool[T]) NewHandle(value T) Handle[T] {
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, &handleSlot[T]{})
	}
	s := p.slots[idx]
	s.generation++
	if s.generation == 0 {
		// wrapped around; zero is reserved for the invalid handle
		s.generation = 1
	}
	s.value = value
	s.live = true
	p.live++
	return Handle[T]{index: idx, generation: s.generation}
}

func (p *HandlePool[T]) slot(h Handle[T]) *handleSlot[T] {
	if h.IsZero() || int(h.index) >= len(p.slots) {
		return nil
	}
	s := p.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil
	}
	return s
}

// Get returns the value h refers to. The pointer is only valid until the
// handle is freed and must not be kept across frames.
func (p *HandlePool[T]) Get(h Handle[T]) (*T, bool) {
	s := p.slot(h)
	if s == nil {
		return nil, false
	}
	return &s.value, true
}

// Valid reports whether h still refers to a live value.
func (p *HandlePool[T]) Valid(h Handle[T]) bool {
	return p.slot(h) != nil
}

// Set replaces the value h refers to.
func (p *HandlePool[T]) Set(h Handle[T], value T) bool {
	s := p.slot(h)
	if s == nil {
		return false
	}
	s.value = value
	return true
}

// Free drops the value h refers to and invalidates every copy of h.
// Freeing a stale or zero handle is a no-op that reports false.
func (p *HandlePool[T]) Free(h Handle[T]) bool {
	s := p.slot(h)
	if s == nil {
		return false
	}
	var zero T
	s.value = zero
	s.live = false
	p.free = append(p.free, h.index)
	p.live--
	return true
}

// Len returns the number of live values.
func (p *HandlePool[T]) Len() int { return p.live }

// Each visits every live value with its handle until fn returns false.
func (p *HandlePool[T]) Each(fn func(Handle[T], *T) bool) {
	for i, s := range p.slots {
		if !s.live {
			continue
		}
		if !fn(Handle[T]{index: uint32(i), generation: s.generation}, &s.value) {
			return
		}
	}
}
