package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"

	"github.com/zeusync/zengine/internal/core/ecs"
	"github.com/zeusync/zengine/internal/core/engine"
	"github.com/zeusync/zengine/internal/core/events/bus"
	"github.com/zeusync/zengine/internal/core/models"
	"github.com/zeusync/zengine/internal/core/observability/log"
	"github.com/zeusync/zengine/internal/core/resource"
	"github.com/zeusync/zengine/internal/core/systems/physics"
	"github.com/zeusync/zengine/internal/injector"
)

const builtinCatalog = `
prefabs:
  ground:
    components:
      - type: transform
        params: {y: -5}
      - type: collision
        params: {radius: 5, static: true}
  ball:
    components:
      - type: transform
        params: {y: 10}
      - type: collision
        params: {radius: 0.5, mass: 1}
`

func main() {
	var (
		configPath = flag.String("config", "", "engine config file (YAML)")
		catalogs   = flag.String("catalogs", "", "comma separated prefab catalogues loaded in addition to the built-in one")
		steps      = flag.Int("steps", 300, "number of fixed steps to simulate")
		balls      = flag.Int("balls", 3, "number of balls to drop")
		cpuProfile = flag.Bool("cpuprofile", false, "write a CPU profile to the working directory")
	)
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	if err := run(*configPath, *catalogs, *steps, *balls); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func run(configPath, catalogs string, steps, balls int) error {
	cfg := engine.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = engine.LoadConfigFile(configPath); err != nil {
			return err
		}
	}

	eng, err := injector.InitializeEngine(cfg)
	if err != nil {
		return err
	}
	logger := log.Provide()
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := eng.LoadPrefabs(strings.NewReader(builtinCatalog)); err != nil {
		return err
	}
	if catalogs != "" {
		if err := loadCatalogs(ctx, eng, strings.Split(catalogs, ","), logger); err != nil {
			return err
		}
	}

	w := eng.World()
	bodies := ecs.MaskOf(ecs.KindOf[physics.Collision](w))
	bus.Register(eng.Events(), bodies, func(ev physics.CollisionBegan) {
		logger.Info("collision began",
			log.String("entity", describe(w, ev.Entity)),
			log.String("other", describe(w, ev.Other)),
			log.Uint64("step", eng.Steps()),
		)
	})
	bus.Register(eng.Events(), bodies, func(ev physics.CollisionEnded) {
		logger.Info("collision ended",
			log.String("entity", describe(w, ev.Entity)),
			log.String("other", describe(w, ev.Other)),
			log.Uint64("step", eng.Steps()),
		)
	})

	if _, err := eng.Spawn("ground", models.NoEntity, nil); err != nil {
		return err
	}
	for i := 0; i < balls; i++ {
		offset := mgl32.Vec2{float32(i) * 1.5, float32(i) * 2}
		if _, err := eng.Spawn("ball", models.NoEntity, offset); err != nil {
			return err
		}
	}

	runErr := eng.Run(ctx, steps)

	it := w.Query(ecs.MaskOf(ecs.KindOf[physics.Transform](w)))
	for e := range it.All() {
		t, _ := ecs.Get[physics.Transform](w, e)
		logger.Info("final position",
			log.String("entity", describe(w, e)),
			log.Float32("x", t.Position.X()),
			log.Float32("y", t.Position.Y()),
		)
	}
	for _, name := range eng.Systems().Order() {
		if m, ok := eng.Systems().Metrics(name); ok {
			logger.Info("system metrics",
				log.String("system", name),
				log.Uint64("executions", m.ExecutionCount),
				log.Duration("avg", m.AverageExecutionTime),
			)
		}
	}
	return runErr
}

// loadCatalogs reads extra catalogue files in parallel through a resource
// library and adds their prefabs.
func loadCatalogs(ctx context.Context, eng *engine.Engine, paths []string, logger *log.Logger) error {
	lib := resource.NewLibrary("catalogue", resource.FileSource(""), func(_ string, data []byte) (*ecs.Catalog, error) {
		return ecs.LoadCatalog(bytes.NewReader(data))
	}, logger)

	if err := lib.Preload(ctx, paths...); err != nil {
		return err
	}
	for _, path := range paths {
		h, _ := lib.Lookup(path)
		cat, _ := lib.Get(h)
		if err := eng.AddCatalog(*cat); err != nil {
			return err
		}
	}
	return nil
}

func describe(w *ecs.World, e models.EntityID) string {
	name, ok := w.Name(e)
	if !ok {
		return fmt.Sprintf("#%d", e)
	}
	return fmt.Sprintf("%s#%d", name, e)
}
