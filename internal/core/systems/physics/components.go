package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/vova616/chipmunk"
	"github.com/vova616/chipmunk/vect"

	"github.com/zeusync/zengine/internal/core/ecs"
	"github.com/zeusync/zengine/internal/core/models"
	"github.com/zeusync/zengine/internal/core/systems"
)

// Transform is the world position of an entity. Entities that also own a
// Collision get it refreshed from their body every step.
type Transform struct {
	Position mgl32.Vec2
}

// Collision describes the circular rigid body simulated for an entity.
type Collision struct {
	Radius float32
	Mass   float32
	Static bool
}

// NewBody builds a chipmunk body with one circle shape for c, placed at pos.
func NewBody(c Collision, pos mgl32.Vec2) *chipmunk.Body {
	var body *chipmunk.Body
	if c.Static {
		body = chipmunk.NewBodyStatic()
	} else {
		moment := 0.5 * c.Mass * c.Radius * c.Radius
		body = chipmunk.NewBody(vect.Float(c.Mass), vect.Float(moment))
	}
	body.AddShape(chipmunk.NewCircle(vect.Vect{}, c.Radius))
	body.SetPosition(toVect(pos))
	return body
}

// AttachBody creates the body for an entity that owns a Collision and
// adds it to space, taking the start position from its Transform.
func AttachBody(space *Space, w *ecs.World, e models.EntityID) error {
	c, ok := ecs.Get[Collision](w, e)
	if !ok {
		return errors.Errorf("entity %d has no collision component", e)
	}
	var pos mgl32.Vec2
	if t, ok := ecs.Get[Transform](w, e); ok {
		pos = t.Position
	}
	return space.Attach(e, NewBody(*c, pos))
}

// RegisterConstructors makes the "transform" and "collision" component
// types available to prefab catalogues. Bodies for collision components
// are attached in the finish step, once the sibling Transform exists.
func RegisterConstructors(reg *ecs.ConstructorRegistry, space *Space) error {
	err := reg.Register("transform", func(p ecs.Params) (ecs.Constructor, error) {
		x, err := p.Float("x", 0)
		if err != nil {
			return nil, err
		}
		y, err := p.Float("y", 0)
		if err != nil {
			return nil, err
		}
		return ecs.Component[Transform]{
			New: func(pc *ecs.PrefabContext) Transform {
				pos := mgl32.Vec2{float32(x), float32(y)}
				if off, ok := pc.UserInfo.(mgl32.Vec2); ok {
					pos = pos.Add(off)
				}
				return Transform{Position: pos}
			},
		}, nil
	})
	if err != nil {
		return err
	}

	return reg.Register("collision", func(p ecs.Params) (ecs.Constructor, error) {
		radius, err := p.Float("radius", 1)
		if err != nil {
			return nil, err
		}
		if radius <= 0 {
			return nil, errors.Wrapf(ecs.ErrInvalidParam, "radius must be positive, got %v", radius)
		}
		mass, err := p.Float("mass", 1)
		if err != nil {
			return nil, err
		}
		static, err := p.Bool("static", false)
		if err != nil {
			return nil, err
		}
		c := Collision{Radius: float32(radius), Mass: float32(mass), Static: static}
		return ecs.Component[Collision]{
			New: func(*ecs.PrefabContext) Collision { return c },
			Finish: func(pc *ecs.PrefabContext, _ *Collision) {
				if err := AttachBody(space, pc.World, pc.Entity); err != nil {
					// a fresh entity cannot already own a body
					panic(err)
				}
			},
		}, nil
	})
}

// TransformSync copies body positions into Transform components.
type TransformSync struct {
	systems.Base
	space *Space
}

func NewTransformSync(w *ecs.World, space *Space) *TransformSync {
	s := &TransformSync{space: space}
	s.Base = systems.NewBase("transform-sync", w, s)
	systems.Require[Transform](&s.Base)
	systems.Require[Collision](&s.Base)
	return s
}

func (s *TransformSync) UpdateEntity(_ float64, e models.EntityID) {
	body, ok := s.space.Body(e)
	if !ok {
		return
	}
	t, _ := ecs.Get[Transform](s.World(), e)
	t.Position = fromVect(body.Position())
}
