package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type texture struct {
	path  string
	width int
}

func TestHandlePool(t *testing.T) {
	t.Run("new handle is retrievable", func(t *testing.T) {
		p := NewHandlePool[texture]()
		h := p.NewHandle(texture{path: "grass.png", width: 64})

		v, ok := p.Get(h)
		require.True(t, ok)
		require.Equal(t, "grass.png", v.path)
		require.Equal(t, 1, p.Len())
	})

	t.Run("free invalidates every copy", func(t *testing.T) {
		p := NewHandlePool[texture]()
		h := p.NewHandle(texture{path: "a"})
		copied := h

		require.True(t, p.Free(h))
		_, ok := p.Get(copied)
		require.False(t, ok)
		_, ok = p.Get(h)
		require.False(t, ok)
		require.False(t, p.Free(copied), "double free is a no-op")
		require.Equal(t, 0, p.Len())
	})

	t.Run("reused slot does not alias stale handles", func(t *testing.T) {
		p := NewHandlePool[texture]()
		old := p.NewHandle(texture{path: "old"})
		require.True(t, p.Free(old))

		fresh := p.NewHandle(texture{path: "new"})
		require.NotEqual(t, old, fresh)

		_, ok := p.Get(old)
		require.False(t, ok)
		require.False(t, p.Set(old, texture{path: "hijack"}))

		v, ok := p.Get(fresh)
		require.True(t, ok)
		require.Equal(t, "new", v.path)
	})

	t.Run("distinct handles resolve to distinct values", func(t *testing.T) {
		p := NewHandlePool[texture]()
		a := p.NewHandle(texture{path: "a"})
		b := p.NewHandle(texture{path: "b"})
		require.NotEqual(t, a, b)

		va, _ := p.Get(a)
		vb, _ := p.Get(b)
		require.NotSame(t, va, vb)
	})

	t.Run("zero handle is never valid", func(t *testing.T) {
		p := NewHandlePool[texture]()
		p.NewHandle(texture{})
		var zero Handle[texture]
		require.True(t, zero.IsZero())
		require.False(t, p.Valid(zero))
		_, ok := p.Get(zero)
		require.False(t, ok)
	})

	t.Run("set updates through handle", func(t *testing.T) {
		p := NewHandlePool[texture]()
		h := p.NewHandle(texture{path: "a", width: 1})
		require.True(t, p.Set(h, texture{path: "a", width: 2}))
		v, _ := p.Get(h)
		assert.Equal(t, 2, v.width)
	})

	t.Run("pointers survive growth", func(t *testing.T) {
		p := NewHandlePool[int]()
		h := p.NewHandle(7)
		first, _ := p.Get(h)
		for i := 0; i < 1000; i++ {
			p.NewHandle(i)
		}
		again, _ := p.Get(h)
		require.Same(t, first, again)
	})

	t.Run("each visits live values", func(t *testing.T) {
		p := NewHandlePool[int]()
		h1 := p.NewHandle(1)
		h2 := p.NewHandle(2)
		p.NewHandle(3)
		p.Free(h2)

		sum := 0
		seen := map[Handle[int]]bool{}
		p.Each(func(h Handle[int], v *int) bool {
			sum += *v
			seen[h] = true
			return true
		})
		require.Equal(t, 4, sum)
		require.True(t, seen[h1])
		require.False(t, seen[h2])
	})
}
