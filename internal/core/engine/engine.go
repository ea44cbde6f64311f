package engine

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/zengine/internal/core/ecs"
	"github.com/zeusync/zengine/internal/core/events/bus"
	"github.com/zeusync/zengine/internal/core/models"
	"github.com/zeusync/zengine/internal/core/observability/log"
	"github.com/zeusync/zengine/internal/core/systems"
	"github.com/zeusync/zengine/internal/core/systems/physics"
)

var ErrUnknownPrefab = errors.New("unknown prefab")

// Engine owns one World and drives it with a fixed time step. Every step
// runs, in this order: the physics step, contact diffing (which sends the
// collision events), all systems, and finally entity cleanup.
//
// Engine is single threaded. Nothing in it may be called concurrently.
type Engine struct {
	cfg Config
	log *log.Logger

	world    *ecs.World
	events   *bus.Manager
	systems  *systems.Manager
	space    *physics.Space
	contacts *physics.ContactCache
	source   physics.ManifoldSource

	registry *ecs.ConstructorRegistry
	prefabs  map[string]*ecs.Prefab

	steps       uint64
	accumulator time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithManifoldSource replaces the physics space as the source of contact
// manifolds, e.g. with a scripted one.
func WithManifoldSource(src physics.ManifoldSource) Option {
	return func(e *Engine) { e.source = src }
}

// Provide builds an engine with default options.
func Provide(cfg Config, logger *log.Logger) (*Engine, error) {
	return New(cfg, logger)
}

// New builds an engine from cfg.
func New(cfg Config, logger *log.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}

	world := ecs.NewWorld(ecs.WithLogger(logger))
	space := physics.NewSpace(cfg.Gravity(), cfg.Physics.Iterations, logger)
	events := bus.New(world, logger)
	contacts := physics.NewContactCache(cfg.Contacts.EvictAfter, logger)
	contacts.AddListener(physics.NewEventBridge(events))

	e := &Engine{
		cfg:      cfg,
		log:      logger.Named("engine"),
		world:    world,
		events:   events,
		systems:  systems.NewManager(logger),
		space:    space,
		contacts: contacts,
		source:   space,
		registry: ecs.NewConstructorRegistry(),
		prefabs:  make(map[string]*ecs.Prefab),
	}
	for _, opt := range opts {
		opt(e)
	}

	world.OnEntityDestroyed(func(id models.EntityID) { space.Detach(id) })

	if err := physics.RegisterConstructors(e.registry, space); err != nil {
		return nil, err
	}
	if err := e.systems.Register(physics.NewTransformSync(world, space), systems.PriorityHighest); err != nil {
		return nil, err
	}

	if cfg.Prefabs != "" {
		f, err := os.Open(cfg.Prefabs)
		if err != nil {
			return nil, errors.Wrap(err, "open prefab catalogue")
		}
		defer func() { _ = f.Close() }()
		if err := e.LoadPrefabs(f); err != nil {
			return nil, err
		}
	}

	e.log.Info("engine ready",
		log.String("world", world.ID().String()),
		log.Duration("fixed_step", cfg.FixedStep),
		log.Int("prefabs", len(e.prefabs)),
	)
	return e, nil
}

func (e *Engine) World() *ecs.World { return e.world }
func (e *Engine) Events() *bus.Manager { return e.events }
func (e *Engine) Systems() *systems.Manager { return e.systems }
func (e *Engine) Space() *physics.Space { return e.space }
func (e *Engine) Contacts() *physics.ContactCache { return e.contacts }
func (e *Engine) Registry() *ecs.ConstructorRegistry { return e.registry }
func (e *Engine) Config() Config { return e.cfg }
func (e *Engine) Steps() uint64 { return e.steps }

// LoadPrefabs decodes a YAML catalogue and adds its prefabs, replacing
// prefabs of the same name.
func (e *Engine) LoadPrefabs(r io.Reader) error {
	cat, err := ecs.LoadCatalog(r)
	if err != nil {
		return err
	}
	return e.AddCatalog(cat)
}

// AddCatalog builds every prefab of cat against the engine's constructor
// registry. Nothing is added when any prefab fails to build.
func (e *Engine) AddCatalog(cat *ecs.Catalog) error {
	prefabs, err := cat.Build(e.registry)
	if err != nil {
		return err
	}
	for name, p := range prefabs {
		e.prefabs[name] = p
	}
	return nil
}

// AddPrefab registers a prefab built in code.
func (e *Engine) AddPrefab(p *ecs.Prefab) {
	e.prefabs[p.Name] = p
}

// Spawn constructs the named prefab.
func (e *Engine) Spawn(name string, parent models.EntityID, userInfo any) (models.EntityID, error) {
	p, ok := e.prefabs[name]
	if !ok {
		return models.NoEntity, errors.Wrapf(ErrUnknownPrefab, "%q", name)
	}
	return e.world.ConstructPrefab(p, parent, userInfo), nil
}

// Step advances the simulation by one fixed step.
func (e *Engine) Step() {
	dt := e.cfg.FixedStep.Seconds()
	e.steps++

	e.space.Step(dt)
	e.contacts.Update(e.source)
	e.systems.Update(dt)
	if n := e.world.CleanupEntities(); n > 0 {
		e.log.Debug("step cleanup", log.Uint64("step", e.steps), log.Int("removed", n))
	}
}

// Advance accumulates elapsed wall time and runs as many fixed steps as
// fit, at most MaxStepsPerFrame. Time beyond that cap is dropped so a long
// stall does not trigger a burst of catch-up steps. It returns the number
// of steps run.
func (e *Engine) Advance(elapsed time.Duration) int {
	e.accumulator += elapsed
	n := 0
	for e.accumulator >= e.cfg.FixedStep && n < e.cfg.MaxStepsPerFrame {
		e.Step()
		e.accumulator -= e.cfg.FixedStep
		n++
	}
	if n == e.cfg.MaxStepsPerFrame && e.accumulator >= e.cfg.FixedStep {
		e.log.Warn("dropping simulation time",
			log.Duration("dropped", e.accumulator),
			log.Int("max_steps", e.cfg.MaxStepsPerFrame),
		)
		e.accumulator = 0
	}
	return n
}

// Run executes steps fixed steps, stopping early when ctx is done.
func (e *Engine) Run(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.Step()
	}
	return nil
}
