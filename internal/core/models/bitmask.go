package models

import (
	"github.com/willf/bitset"
)

// Bitmask is a growable set of component kind bits. Storage is a sequence
// of 64-bit words; a word past the end of storage reads as all zero.
//
// The zero value is an empty mask ready to use. A nil *Bitmask reads as
// empty as well, so optional masks can be passed around without checks.
type Bitmask struct {
	bits bitset.BitSet
}

// NewBitmask returns a mask with the given bits set.
func NewBitmask(bits ...uint) *Bitmask {
	m := &Bitmask{}
	for _, b := range bits {
		m.bits.Set(b)
	}
	return m
}

// SetBit sets or clears bit i, growing storage when needed.
func (m *Bitmask) SetBit(i uint, on bool) {
	if on {
		m.bits.Set(i)
		return
	}
	if i < m.bits.Len() {
		m.bits.Clear(i)
	}
}

// IsBitSet reports whether bit i is set. Bits beyond storage are unset.
func (m *Bitmask) IsBitSet(i uint) bool {
	if m == nil {
		return false
	}
	return m.bits.Test(i)
}

// HasComponents reports whether every bit set in other is also set in m.
// Bits of other that lie past the end of m can never be satisfied.
func (m *Bitmask) HasComponents(other *Bitmask) bool {
	if other == nil {
		return true
	}
	if m == nil {
		return other.bits.None()
	}
	return m.bits.IsSuperSet(&other.bits)
}

// Or sets every bit of other in m.
func (m *Bitmask) Or(other *Bitmask) {
	if other == nil {
		return
	}
	m.bits.InPlaceUnion(&other.bits)
}

// Clone returns an independent copy of m.
func (m *Bitmask) Clone() *Bitmask {
	c := &Bitmask{}
	if m != nil {
		c.bits.InPlaceUnion(&m.bits)
	}
	return c
}

// Equal reports whether both masks have exactly the same bits set,
// regardless of how much storage either has grown.
func (m *Bitmask) Equal(other *Bitmask) bool {
	return m.HasComponents(other) && other.HasComponents(m)
}

// Count returns the number of set bits.
func (m *Bitmask) Count() int {
	if m == nil {
		return 0
	}
	return int(m.bits.Count())
}

// Empty reports whether no bit is set.
func (m *Bitmask) Empty() bool {
	return m.Count() == 0
}

// Bits returns the set bits in ascending order.
func (m *Bitmask) Bits() []uint {
	if m == nil {
		return nil
	}
	out := make([]uint, 0, m.bits.Count())
	for i, ok := m.bits.NextSet(0); ok; i, ok = m.bits.NextSet(i + 1) {
		out = append(out, i)
	}
	return out
}

func (m *Bitmask) String() string {
	if m == nil {
		return "{}"
	}
	return m.bits.String()
}
