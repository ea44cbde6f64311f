package generic

const (
	pageShift = 8
	pageSize  = 1 << pageShift
	pageMask  = pageSize - 1
)

// Arena stores values of T in fixed-size pages. Pages are never moved or
// reallocated, so a pointer returned by Alloc or At stays valid until the
// slot is released. Released slots are reused in LIFO order.
//
// Arena is not safe for concurrent use.
type Arena[T any] struct {
	pages [][]T
	live  []bool
	free  []uint32
	next  uint32
	count int
}

// Alloc reserves a slot, stores value in it and returns the slot index
// together with a stable pointer to the stored value.
func (a *Arena[T]) Alloc(value T) (uint32, *T) {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = a.next
		a.next++
		if int(idx>>pageShift) >= len(a.pages) {
			a.pages = append(a.pages, make([]T, pageSize))
		}
		a.live = append(a.live, false)
	}
	ptr := &a.pages[idx>>pageShift][idx&pageMask]
	*ptr = value
	a.live[idx] = true
	a.count++
	return idx, ptr
}

// At returns the value stored in slot idx, or nil if the slot is not live.
func (a *Arena[T]) At(idx uint32) *T {
	if idx >= a.next || !a.live[idx] {
		return nil
	}
	return &a.pages[idx>>pageShift][idx&pageMask]
}

// Release zeroes slot idx and makes it available for reuse. Releasing a
// slot that is not live does nothing and reports false.
func (a *Arena[T]) Release(idx uint32) bool {
	if idx >= a.next || !a.live[idx] {
		return false
	}
	var zero T
	a.pages[idx>>pageShift][idx&pageMask] = zero
	a.live[idx] = false
	a.free = append(a.free, idx)
	a.count--
	return true
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int { return a.count }

// Each calls fn for every live slot in ascending slot order until fn
// returns false.
func (a *Arena[T]) Each(fn func(idx uint32, value *T) bool) {
	for idx := uint32(0); idx < a.next; idx++ {
		if !a.live[idx] {
			continue
		}
		if !fn(idx, &a.pages[idx>>pageShift][idx&pageMask]) {
			return
		}
	}
}
