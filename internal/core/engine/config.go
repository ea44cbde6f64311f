package engine

import (
	"io"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/zengine/internal/core/observability/log"
	"github.com/zeusync/zengine/internal/core/systems/physics"
)

var ErrInvalidConfig = errors.New("invalid engine config")

// Config holds engine configuration
type Config struct {
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Simulation timing
	FixedStep        time.Duration `json:"fixed_step" yaml:"fixed_step"`
	MaxStepsPerFrame int           `json:"max_steps_per_frame" yaml:"max_steps_per_frame"`

	Physics  PhysicsConfig  `json:"physics" yaml:"physics"`
	Contacts ContactsConfig `json:"contacts" yaml:"contacts"`

	// Prefabs is an optional path to a prefab catalogue.
	Prefabs string `json:"prefabs,omitempty" yaml:"prefabs,omitempty"`
}

type PhysicsConfig struct {
	Gravity    [2]float32 `json:"gravity" yaml:"gravity"`
	Iterations int        `json:"iterations" yaml:"iterations"`
}

type ContactsConfig struct {
	EvictAfter int `json:"evict_after" yaml:"evict_after"`
}

// DefaultConfig returns a 60Hz configuration with earth-like gravity.
func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		FixedStep:        time.Second / 60,
		MaxStepsPerFrame: 5,
		Physics: PhysicsConfig{
			Gravity:    [2]float32{0, -9.8},
			Iterations: 10,
		},
		Contacts: ContactsConfig{
			EvictAfter: physics.DefaultEvictAfter,
		},
	}
}

// LoadConfig decodes YAML over DefaultConfig and validates the result.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode engine config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads the config at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open engine config")
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return errors.Wrapf(ErrInvalidConfig, "log_level %q", c.LogLevel)
	}
	if c.FixedStep <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "fixed_step must be positive, got %s", c.FixedStep)
	}
	if c.MaxStepsPerFrame <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "max_steps_per_frame must be positive, got %d", c.MaxStepsPerFrame)
	}
	if c.Physics.Iterations < 0 {
		return errors.Wrapf(ErrInvalidConfig, "physics.iterations must not be negative, got %d", c.Physics.Iterations)
	}
	if c.Contacts.EvictAfter < 0 {
		return errors.Wrapf(ErrInvalidConfig, "contacts.evict_after must not be negative, got %d", c.Contacts.EvictAfter)
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() log.Level {
	lvl, _ := log.ParseLevel(c.LogLevel)
	return lvl
}

// Gravity returns the configured gravity vector.
func (c Config) Gravity() mgl32.Vec2 {
	return mgl32.Vec2{c.Physics.Gravity[0], c.Physics.Gravity[1]}
}
