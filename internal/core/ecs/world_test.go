package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zengine/internal/core/models"
)

type position struct{ X, Y float64 }
type velocity struct{ DX, DY float64 }
type health struct{ HP int }

func TestWorldEntities(t *testing.T) {
	t.Run("sequential ids", func(t *testing.T) {
		w := NewWorld()
		a := w.NewEntity("a")
		b := w.NewEntity("b")
		require.Equal(t, models.EntityID(1), a)
		require.Equal(t, models.EntityID(2), b)

		name, ok := w.Name(b)
		require.True(t, ok)
		require.Equal(t, "b", name)

		m, ok := w.Mask(a)
		require.True(t, ok)
		require.True(t, m.Empty())
	})

	t.Run("remove only marks", func(t *testing.T) {
		w := NewWorld()
		e := w.NewEntity("e")
		p := Add[position](w, e)
		p.X = 3

		w.RemoveEntity(e)
		require.True(t, w.Exists(e))
		require.True(t, w.IsPending(e))
		got, ok := Get[position](w, e)
		require.True(t, ok)
		require.Equal(t, 3.0, got.X)

		require.Equal(t, 1, w.CleanupEntities())
		require.False(t, w.Exists(e))
		_, ok = Get[position](w, e)
		require.False(t, ok)
		require.Equal(t, 0, Count[position](w))
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		w := NewWorld()
		e := w.NewEntity("e")
		w.RemoveEntity(e)
		w.RemoveEntity(e)
		w.RemoveEntity(models.EntityID(999))
		require.Equal(t, 1, w.CleanupEntities())
		require.Equal(t, 0, w.CleanupEntities())
		w.RemoveEntity(e)
		require.Equal(t, 0, w.CleanupEntities())
	})

	t.Run("destroy hooks see components", func(t *testing.T) {
		w := NewWorld()
		e := w.NewEntity("e")
		Add[health](w, e).HP = 9

		var seen []int
		w.OnEntityDestroyed(func(id models.EntityID) {
			h, ok := Get[health](w, id)
			require.True(t, ok)
			seen = append(seen, h.HP)
		})
		w.RemoveEntity(e)
		w.CleanupEntities()
		require.Equal(t, []int{9}, seen)
	})

	t.Run("ids are not reused", func(t *testing.T) {
		w := NewWorld()
		a := w.NewEntity("a")
		w.RemoveEntity(a)
		w.CleanupEntities()
		b := w.NewEntity("b")
		require.NotEqual(t, a, b)
	})
}

func TestWorldComponents(t *testing.T) {
	t.Run("add then get returns same instance", func(t *testing.T) {
		w := NewWorld()
		e := w.NewEntity("e")
		p := Add[position](w, e)
		got, ok := Get[position](w, e)
		require.True(t, ok)
		require.Same(t, p, got)
		require.Same(t, p, Add[position](w, e), "second add returns existing")
	})

	t.Run("mask tracks kinds", func(t *testing.T) {
		w := NewWorld()
		e := w.NewEntity("e")
		Add[position](w, e)
		Add[velocity](w, e)

		m, _ := w.Mask(e)
		require.True(t, m.IsBitSet(uint(KindOf[position](w))))
		require.True(t, m.IsBitSet(uint(KindOf[velocity](w))))
		require.False(t, m.IsBitSet(uint(KindOf[health](w))))

		require.True(t, Remove[velocity](w, e))
		require.False(t, Remove[velocity](w, e))
		require.False(t, m.IsBitSet(uint(KindOf[velocity](w))))
		require.False(t, Has[velocity](w, e))
	})

	t.Run("kind ids are dense and per world", func(t *testing.T) {
		w1 := NewWorld()
		w2 := NewWorld()
		require.Equal(t, models.ComponentID(0), KindOf[position](w1))
		require.Equal(t, models.ComponentID(1), KindOf[velocity](w1))
		require.Equal(t, models.ComponentID(0), KindOf[velocity](w2))
		require.Equal(t, models.ComponentID(0), KindOf[position](w1), "stable")
		require.Equal(t, 2, w1.Kinds())
		require.NotEqual(t, w1.ID(), w2.ID())
	})

	t.Run("get or add", func(t *testing.T) {
		w := NewWorld()
		e := w.NewEntity("e")
		_, ok := Get[health](w, e)
		require.False(t, ok)
		h := GetOrAdd[health](w, e)
		h.HP = 4
		require.Equal(t, 4, GetOrAdd[health](w, e).HP)
	})

	t.Run("adding to unknown entity panics", func(t *testing.T) {
		w := NewWorld()
		require.Panics(t, func() { Add[position](w, 42) })
	})

	t.Run("pointers stay valid while others are added", func(t *testing.T) {
		w := NewWorld()
		first := w.NewEntity("first")
		p := Add[position](w, first)
		for i := 0; i < 2000; i++ {
			Add[position](w, w.NewEntity("filler"))
		}
		p.X = 11
		got, _ := Get[position](w, first)
		assert.Equal(t, 11.0, got.X)
	})
}

func TestIterator(t *testing.T) {
	w := NewWorld()
	var moving []models.EntityID
	for i := 0; i < 10; i++ {
		e := w.NewEntity("e")
		Add[position](w, e)
		if i%3 == 0 {
			Add[velocity](w, e)
			moving = append(moving, e)
		}
	}
	mask := MaskOf(KindOf[position](w), KindOf[velocity](w))

	t.Run("yields matches in ascending order", func(t *testing.T) {
		it := w.Query(mask)
		require.Equal(t, moving, it.ToSlice())
		require.False(t, it.Next())
		require.Equal(t, models.NoEntity, it.Item())
	})

	t.Run("reset repeats the sequence", func(t *testing.T) {
		it := w.Query(mask)
		first := it.ToSlice()
		it.Reset()
		require.Equal(t, first, it.ToSlice())
		require.Equal(t, len(first), it.Count())
	})

	t.Run("all does not move the cursor", func(t *testing.T) {
		it := w.Query(mask)
		require.True(t, it.Next())
		cur := it.Entity()
		var got []models.EntityID
		for e := range it.All() {
			got = append(got, e)
		}
		require.Equal(t, moving, got)
		require.Equal(t, cur, it.Entity())
	})

	t.Run("nil mask matches everything", func(t *testing.T) {
		require.Equal(t, w.Len(), w.Query(nil).Count())
	})

	t.Run("removal during iteration is deferred", func(t *testing.T) {
		it := w.Query(mask)
		var visited []models.EntityID
		for it.Next() {
			visited = append(visited, it.Entity())
			w.RemoveEntity(it.Entity())
		}
		require.Equal(t, moving, visited)
		w.CleanupEntities()
		require.Equal(t, 0, w.Query(mask).Count())
		require.Equal(t, 10-len(moving), w.Query(nil).Count())
	})
}
