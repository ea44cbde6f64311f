package ecs

import (
	"github.com/zeusync/zengine/internal/core/models"
	"github.com/zeusync/zengine/internal/core/observability/log"
)

// PrefabContext is handed to every constructor of a prefab while it is
// being built.
type PrefabContext struct {
	World    *World
	Entity   models.EntityID
	Parent   models.EntityID
	UserInfo any
}

// Constructor produces one component of a prefab.
type Constructor interface {
	// Kind returns the kind id of the component in w.
	Kind(w *World) models.ComponentID
	build(pc *PrefabContext) staged
}

type staged interface {
	attach()
	finish()
}

// Component is a Constructor for components of type T. New builds the
// value; Finish, when set, runs after every component of the prefab is
// attached and may therefore look up sibling components.
type Component[T any] struct {
	New    func(pc *PrefabContext) T
	Finish func(pc *PrefabContext, c *T)
}

func (c Component[T]) Kind(w *World) models.ComponentID { return KindOf[T](w) }

func (c Component[T]) build(pc *PrefabContext) staged {
	s := &stagedComponent[T]{pc: pc, finisher: c.Finish}
	if c.New != nil {
		s.value = c.New(pc)
	}
	return s
}

type stagedComponent[T any] struct {
	pc       *PrefabContext
	value    T
	ptr      *T
	finisher func(pc *PrefabContext, c *T)
}

func (s *stagedComponent[T]) attach() {
	s.ptr = Add[T](s.pc.World, s.pc.Entity)
	*s.ptr = s.value
}

func (s *stagedComponent[T]) finish() {
	if s.finisher != nil {
		s.finisher(s.pc, s.ptr)
	}
}

// Prefab is an ordered list of constructors that together produce one
// fully wired entity.
type Prefab struct {
	Name         string
	Constructors []Constructor
}

// NewPrefab creates a prefab from constructors.
func NewPrefab(name string, constructors ...Constructor) *Prefab {
	return &Prefab{Name: name, Constructors: constructors}
}

// Mask returns the component mask every entity built from p will have.
func (p *Prefab) Mask(w *World) *models.Bitmask {
	m := &models.Bitmask{}
	for _, c := range p.Constructors {
		m.SetBit(uint(c.Kind(w)), true)
	}
	return m
}

// ConstructPrefab creates one entity from p. Every constructor builds its
// component first, then all components are attached, and only then the
// finish steps run, in constructor order.
func (w *World) ConstructPrefab(p *Prefab, parent models.EntityID, userInfo any) models.EntityID {
	e := w.newEntity(p.Name, parent)
	pc := &PrefabContext{World: w, Entity: e, Parent: parent, UserInfo: userInfo}

	built := make([]staged, 0, len(p.Constructors))
	for _, c := range p.Constructors {
		built = append(built, c.build(pc))
	}
	for _, s := range built {
		s.attach()
	}
	for _, s := range built {
		s.finish()
	}

	w.log.Debug("prefab constructed",
		log.String("prefab", p.Name),
		log.Uint64("entity", uint64(e)),
		log.Uint64("parent", uint64(parent)),
	)
	return e
}
