package rigid

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/gekko3d/rigid/solver"
)

type BroadphaseKind string

const (
	BroadphaseSAP   BroadphaseKind = "sap"
	BroadphaseNaive BroadphaseKind = "naive"
	BroadphaseGrid  BroadphaseKind = "grid"
)

// Config holds the world tuning. Files loaded with LoadConfig only need the
// fields they change.
type Config struct {
	Gravity    [3]float64     `yaml:"gravity"`
	Substeps   int            `yaml:"substeps"`
	Broadphase BroadphaseKind `yaml:"broadphase"`
	CellSize   float64        `yaml:"cell_size"`
	Solver     solver.Config  `yaml:"solver"`
	// SleepThreshold is the speed under which bodies start to doze. Zero
	// disables sleeping.
	SleepThreshold float64 `yaml:"sleep_threshold"`
	SleepTime      float64 `yaml:"sleep_time"`
	// TickRate is the bridge's stepping frequency in Hz.
	TickRate float64 `yaml:"tick_rate"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:        [3]float64{0, -9.81, 0},
		Substeps:       1,
		Broadphase:     BroadphaseSAP,
		CellSize:       4,
		Solver:         solver.DefaultConfig(),
		SleepThreshold: 0,
		SleepTime:      1,
		TickRate:       60,
	}
}

func (c Config) GravityVec() mgl64.Vec3 {
	return mgl64.Vec3(c.Gravity)
}

// LoadConfig reads a YAML config on top of the defaults. A missing file is
// not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the world cannot run with.
func (c Config) Validate() error {
	if c.Substeps < 1 {
		return fmt.Errorf("substeps must be at least 1, got %d", c.Substeps)
	}
	switch c.Broadphase {
	case BroadphaseSAP, BroadphaseNaive:
	case BroadphaseGrid:
		if c.CellSize <= 0 {
			return fmt.Errorf("grid broadphase needs a positive cell_size, got %g", c.CellSize)
		}
	default:
		return fmt.Errorf("unknown broadphase %q", c.Broadphase)
	}
	if c.Solver.Iterations < 1 {
		return fmt.Errorf("solver.iterations must be at least 1, got %d", c.Solver.Iterations)
	}
	if c.Solver.PenetrationRelaxation < 0 || c.Solver.PenetrationRelaxation > 1 {
		return fmt.Errorf("solver.penetration_relaxation must be in [0, 1], got %g", c.Solver.PenetrationRelaxation)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %g", c.TickRate)
	}
	return nil
}
