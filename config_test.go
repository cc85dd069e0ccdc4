package rigid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "physics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
gravity: [0, -3.7, 0]
substeps: 4
broadphase: grid
cell_size: 2.5
solver:
  iterations: 20
  penetration_relaxation: 0.7
sleep_threshold: 0.1
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0, -3.7, 0}, cfg.Gravity)
	assert.Equal(t, 4, cfg.Substeps)
	assert.Equal(t, BroadphaseGrid, cfg.Broadphase)
	assert.Equal(t, 2.5, cfg.CellSize)
	assert.Equal(t, 20, cfg.Solver.Iterations)
	assert.Equal(t, 0.7, cfg.Solver.PenetrationRelaxation)
	assert.Equal(t, 0.1, cfg.SleepThreshold)

	// Untouched fields keep their defaults.
	def := DefaultConfig()
	assert.Equal(t, def.Solver.ContactIterations, cfg.Solver.ContactIterations)
	assert.Equal(t, def.TickRate, cfg.TickRate)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", "gravity: [0, -9.81"},
		{"unknown broadphase", "broadphase: octree"},
		{"zero substeps", "substeps: 0"},
		{"relaxation above one", "solver:\n  penetration_relaxation: 1.5"},
		{"grid without cells", "broadphase: grid\ncell_size: 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
			assert.Equal(t, DefaultConfig(), cfg)
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}
