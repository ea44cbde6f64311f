package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/vova616/chipmunk"
	"github.com/vova616/chipmunk/vect"

	"github.com/zeusync/zengine/internal/core/models"
	"github.com/zeusync/zengine/internal/core/observability/log"
)

var (
	ErrBodyAttached = errors.New("entity already has a body")
	ErrNilBody      = errors.New("nil body")
)

var _ ManifoldSource = (*Space)(nil)

// Space wraps a chipmunk space. Every body added through Attach carries a
// BodyTag as user data; Detach releases the tag and removes the body, so
// each tag lives exactly as long as its native body is in the space.
type Space struct {
	log       *log.Logger
	space     *chipmunk.Space
	bodies    map[models.EntityID]*chipmunk.Body
	manifolds []Manifold
}

// NewSpace creates an empty space.
func NewSpace(gravity mgl32.Vec2, iterations int, logger *log.Logger) *Space {
	if logger == nil {
		logger = log.Nop()
	}
	s := chipmunk.NewSpace()
	s.Gravity = toVect(gravity)
	if iterations > 0 {
		s.Iterations = iterations
	}
	return &Space{
		log:    logger.Named("space"),
		space:  s,
		bodies: make(map[models.EntityID]*chipmunk.Body),
	}
}

// Native exposes the wrapped chipmunk space.
func (s *Space) Native() *chipmunk.Space { return s.space }

// Step advances the simulation by dt seconds.
func (s *Space) Step(dt float64) {
	s.space.Step(vect.Float(dt))
}

// Attach tags body with e and adds it to the space.
func (s *Space) Attach(e models.EntityID, body *chipmunk.Body) error {
	if body == nil {
		return errors.Wrapf(ErrNilBody, "entity %d", e)
	}
	if _, ok := s.bodies[e]; ok {
		return errors.Wrapf(ErrBodyAttached, "entity %d", e)
	}
	body.UserData = &BodyTag{Entity: e}
	s.space.AddBody(body)
	s.bodies[e] = body
	s.log.Debug("body attached", log.Uint64("entity", uint64(e)))
	return nil
}

// Detach removes the body of e from the space and releases its tag.
func (s *Space) Detach(e models.EntityID) bool {
	body, ok := s.bodies[e]
	if !ok {
		return false
	}
	if tag, ok := body.UserData.(*BodyTag); ok {
		tag.Entity = models.NoEntity
	}
	body.UserData = nil
	s.space.RemoveBody(body)
	delete(s.bodies, e)
	s.log.Debug("body detached", log.Uint64("entity", uint64(e)))
	return true
}

// Body returns the body attached for e.
func (s *Space) Body(e models.EntityID) (*chipmunk.Body, bool) {
	b, ok := s.bodies[e]
	return b, ok
}

// Len returns the number of attached bodies.
func (s *Space) Len() int { return len(s.bodies) }

// Manifolds lists the arbiters of the last step. The slice is reused by
// the next call.
func (s *Space) Manifolds() []Manifold {
	s.manifolds = s.manifolds[:0]
	for _, arb := range s.space.Arbiters {
		if arb == nil {
			continue
		}
		s.manifolds = append(s.manifolds, arbiterManifold{arb: arb})
	}
	return s.manifolds
}

type arbiterManifold struct {
	arb *chipmunk.Arbiter
}

func (m arbiterManifold) NumContacts() int { return m.arb.NumContacts }

func (m arbiterManifold) Bodies() (a, b any) {
	if m.arb.BodyA != nil {
		a = m.arb.BodyA.UserData
	}
	if m.arb.BodyB != nil {
		b = m.arb.BodyB.UserData
	}
	return a, b
}

// Arbiter returns the native arbiter behind a manifold produced by Space.
func Arbiter(m Manifold) (*chipmunk.Arbiter, bool) {
	am, ok := m.(arbiterManifold)
	if !ok {
		return nil, false
	}
	return am.arb, true
}

func toVect(v mgl32.Vec2) vect.Vect {
	return vect.Vect{X: vect.Float(v.X()), Y: vect.Float(v.Y())}
}

func fromVect(v vect.Vect) mgl32.Vec2 {
	return mgl32.Vec2{float32(v.X), float32(v.Y)}
}
