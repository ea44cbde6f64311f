package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zengine/internal/core/observability/log"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second/60, cfg.FixedStep)
	assert.Equal(t, mgl32.Vec2{0, -9.8}, cfg.Gravity())
	assert.Equal(t, log.LevelInfo, cfg.Level())
}

func TestLoadConfig(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader(`
log_level: debug
fixed_step: 10ms
physics:
  gravity: [0, -20]
contacts:
  evict_after: 3
`))
		require.NoError(t, err)
		assert.Equal(t, 10*time.Millisecond, cfg.FixedStep)
		assert.Equal(t, log.LevelDebug, cfg.Level())
		assert.Equal(t, mgl32.Vec2{0, -20}, cfg.Gravity())
		assert.Equal(t, 3, cfg.Contacts.EvictAfter)
		assert.Equal(t, 10, cfg.Physics.Iterations)
		assert.Equal(t, 5, cfg.MaxStepsPerFrame)
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadConfig(strings.NewReader("fixed_stpe: 10ms\n"))
		require.Error(t, err)
	})

	cases := []struct {
		name string
		doc  string
	}{
		{"zero step", "fixed_step: 0s\n"},
		{"negative steps per frame", "max_steps_per_frame: -1\n"},
		{"bad level", "log_level: loud\n"},
		{"negative eviction", "contacts:\n  evict_after: -2\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(tc.doc))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
