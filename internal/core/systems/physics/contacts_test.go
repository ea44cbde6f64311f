package physics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/zengine/internal/core/ecs"
	"github.com/zeusync/zengine/internal/core/events/bus"
	"github.com/zeusync/zengine/internal/core/models"
)

type fakeManifold struct {
	a, b   any
	points int
}

func (m *fakeManifold) NumContacts() int { return m.points }
func (m *fakeManifold) Bodies() (any, any) { return m.a, m.b }

type step []Manifold

func (s step) Manifolds() []Manifold { return s }

type recorder struct {
	cache  *ContactCache
	events []string
}

func (r *recorder) ContactBegan(p models.Pair, _ Manifold) {
	r.events = append(r.events, fmt.Sprintf("began %d-%d @%d", p.A, p.B, r.cache.Frame()))
}

func (r *recorder) ContactEnded(p models.Pair) {
	r.events = append(r.events, fmt.Sprintf("ended %d-%d @%d", p.A, p.B, r.cache.Frame()))
}

func newRecorded(evictAfter int) (*ContactCache, *recorder) {
	c := NewContactCache(evictAfter, nil)
	r := &recorder{cache: c}
	c.AddListener(r)
	return c, r
}

func touching(a, b models.EntityID) *fakeManifold {
	return &fakeManifold{a: &BodyTag{Entity: a}, b: &BodyTag{Entity: b}, points: 1}
}

func TestContactLifetime(t *testing.T) {
	c, r := newRecorded(0)
	m := touching(1, 2)

	for frame := 1; frame <= 8; frame++ {
		if frame <= 5 {
			c.Update(step{m})
		} else {
			c.Update(step{})
		}
		got, ok := c.Contact(1, 2)
		if frame <= 5 {
			require.True(t, ok, "frame %d", frame)
			require.Same(t, m, got)
		} else {
			require.False(t, ok, "frame %d", frame)
			require.Nil(t, got)
		}
	}
	require.Equal(t, []string{"began 1-2 @1", "ended 1-2 @6"}, r.events)
}

func TestContactGapIsNotDebounced(t *testing.T) {
	c, r := newRecorded(0)
	c.Update(step{touching(1, 2)})
	c.Update(step{})
	c.Update(step{touching(2, 1)})
	require.Equal(t, []string{"began 1-2 @1", "ended 1-2 @2", "began 1-2 @3"}, r.events)
}

func TestContactKeyIsCanonical(t *testing.T) {
	c, r := newRecorded(0)
	c.Update(step{touching(7, 3)})
	c.Update(step{touching(3, 7)})
	require.Equal(t, []string{"began 3-7 @1"}, r.events)

	_, ok := c.Contact(7, 3)
	require.True(t, ok)
	_, ok = c.Contact(3, 7)
	require.True(t, ok)
}

func TestContactSkipsMalformed(t *testing.T) {
	c, r := newRecorded(0)
	c.Update(step{
		&fakeManifold{a: &BodyTag{Entity: 1}, b: &BodyTag{Entity: 2}, points: 0},
		&fakeManifold{a: nil, b: &BodyTag{Entity: 2}, points: 2},
		&fakeManifold{a: "not a tag", b: &BodyTag{Entity: 2}, points: 2},
		&fakeManifold{a: &BodyTag{}, b: &BodyTag{Entity: 2}, points: 2},
		&fakeManifold{a: (*BodyTag)(nil), b: &BodyTag{Entity: 2}, points: 2},
		touching(4, 4),
		nil,
	})
	require.Empty(t, r.events)
	require.Equal(t, 0, c.Len())
}

func TestContactDuplicateManifolds(t *testing.T) {
	c, r := newRecorded(0)
	first := touching(1, 2)
	second := touching(2, 1)
	c.Update(step{first, second})
	require.Equal(t, []string{"began 1-2 @1"}, r.events)

	got, ok := c.Contact(1, 2)
	require.True(t, ok)
	require.Same(t, second, got, "latest manifold wins")
	require.Equal(t, 1, c.Active())
}

func TestContactEndedOrderIsDeterministic(t *testing.T) {
	c, r := newRecorded(0)
	c.Update(step{touching(9, 8), touching(1, 5), touching(3, 2)})
	r.events = nil
	c.Update(step{})
	require.Equal(t, []string{"ended 1-5 @2", "ended 2-3 @2", "ended 8-9 @2"}, r.events)
}

func TestContactEviction(t *testing.T) {
	c, _ := newRecorded(3)
	c.Update(step{touching(1, 2)})
	c.Update(step{})
	require.Equal(t, 1, c.Len())
	require.Equal(t, 0, c.Active())

	// last seen at frame 1; dropped once more than 3 frames have passed
	c.Update(step{})
	c.Update(step{})
	require.Equal(t, 1, c.Len())
	c.Update(step{})
	require.Equal(t, 0, c.Len())
}

func TestContactReturnsAfterEviction(t *testing.T) {
	c, r := newRecorded(1)
	c.Update(step{touching(1, 2)})
	for i := 0; i < 5; i++ {
		c.Update(step{})
	}
	require.Equal(t, 0, c.Len())
	c.Update(step{touching(1, 2)})
	require.Equal(t, []string{"began 1-2 @1", "ended 1-2 @2", "began 1-2 @7"}, r.events)
}

func TestEntityOf(t *testing.T) {
	e, ok := EntityOf(&BodyTag{Entity: 5})
	require.True(t, ok)
	require.Equal(t, models.EntityID(5), e)

	for _, ud := range []any{nil, BodyTag{Entity: 5}, &BodyTag{}, 5} {
		_, ok := EntityOf(ud)
		require.False(t, ok, "%#v", ud)
	}
}

// Two entities with Transform and Collision overlap on steps 10 to 14 of a
// 20 step run. The pair must begin and end exactly once and be reported
// only while overlapping, and both participants hear gated events.
func TestCollisionEventsScenario(t *testing.T) {
	w := ecs.NewWorld()
	events := bus.New(w, nil)
	cache := NewContactCache(0, nil)
	cache.AddListener(NewEventBridge(events))
	rec := &recorder{cache: cache}
	cache.AddListener(rec)

	spawn := func(name string) models.EntityID {
		e := w.NewEntity(name)
		ecs.Add[Transform](w, e)
		*ecs.Add[Collision](w, e) = Collision{Radius: 1, Mass: 1}
		return e
	}
	a := spawn("a")
	b := spawn("b")
	bystander := w.NewEntity("bystander")

	required := ecs.MaskOf(ecs.KindOf[Transform](w), ecs.KindOf[Collision](w))
	var began []CollisionBegan
	var ended []CollisionEnded
	bus.Register(events, required, func(e CollisionBegan) { began = append(began, e) })
	bus.Register(events, required, func(e CollisionEnded) { ended = append(ended, e) })

	tagA, tagB := &BodyTag{Entity: a}, &BodyTag{Entity: b}
	tagX := &BodyTag{Entity: bystander}
	overlap := &fakeManifold{a: tagA, b: tagB, points: 2}

	var present []int
	for s := 1; s <= 20; s++ {
		manifolds := step{&fakeManifold{a: tagX, b: tagA, points: 1}}
		if s >= 10 && s <= 14 {
			manifolds = append(manifolds, overlap)
		}
		cache.Update(manifolds)
		if _, ok := cache.Contact(a, b); ok {
			present = append(present, s)
		}
	}

	require.Equal(t, []int{10, 11, 12, 13, 14}, present)

	var pairEvents []string
	for _, ev := range rec.events {
		if strings.Contains(ev, " 1-2 ") {
			pairEvents = append(pairEvents, ev)
		}
	}
	require.Equal(t, []string{"began 1-2 @10", "ended 1-2 @15"}, pairEvents)

	// the bystander lacks the required components, so only a hears about
	// the contact between them
	require.Equal(t, []CollisionBegan{
		{Entity: a, Other: bystander},
		{Entity: a, Other: b},
		{Entity: b, Other: a},
	}, began)
	require.Equal(t, []CollisionEnded{{Entity: a, Other: b}, {Entity: b, Other: a}}, ended)
}
