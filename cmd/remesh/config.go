package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/soypat/remesh"
	"github.com/soypat/remesh/internal/logger"
	"gopkg.in/yaml.v3"
)

// Run modes.
const (
	modeTriangles  = "triangles"
	modeVertices   = "vertices"
	modeEdgeLength = "edge_length"
	modeMaxError   = "max_error"
	modePlanar     = "planar"
	modeFast       = "fast"
)

// Config is the YAML run file of the remesh command.
type Config struct {
	Simplify    remesh.Config    `yaml:"simplify"`
	Run         RunConfig        `yaml:"run"`
	Constraints ConstraintConfig `yaml:"constraints"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// RunConfig selects the simplification pass and its stopping criterion.
type RunConfig struct {
	Mode string `yaml:"mode"`
	// Count is the triangle or vertex target. Zero derives it from Ratio.
	Count int     `yaml:"count"`
	Ratio float64 `yaml:"ratio"`
	// Value is the edge length, maximum error, minimum edge length of the
	// fast pass, or the planar angle tolerance in degrees.
	Value  float64 `yaml:"value"`
	Rounds int     `yaml:"rounds"`
	// NormalAware enables the normal preserving quadric.
	NormalAware bool `yaml:"normal_aware"`
	// WeldTolerance merges STL vertices closer than it. Zero infers it.
	WeldTolerance float64 `yaml:"weld_tolerance"`
}

// ConstraintConfig decides how the input mesh is protected.
type ConstraintConfig struct {
	Boundaries bool `yaml:"boundaries"`
	// ProjectToInput projects the result back onto the input surface.
	ProjectToInput bool `yaml:"project_to_input"`
}

type LoggingConfig struct {
	Level string            `yaml:"level"`
	File  logger.FileConfig `yaml:"file"`
}

// Default returns the default run configuration.
func Default() *Config {
	return &Config{
		Simplify: remesh.DefaultConfig(),
		Run: RunConfig{
			Mode:   modeTriangles,
			Ratio:  0.5,
			Value:  1,
			Rounds: 10,
		},
		Constraints: ConstraintConfig{Boundaries: true},
		Logging:     LoggingConfig{Level: "info"},
	}
}

// Validate checks the run configuration.
func (c *Config) Validate() error {
	if err := c.Simplify.Validate(); err != nil {
		return err
	}
	switch c.Run.Mode {
	case modeTriangles, modeVertices:
		if c.Run.Count <= 0 && (c.Run.Ratio <= 0 || c.Run.Ratio > 1) {
			return fmt.Errorf("run: need a positive count or a ratio in (0, 1], got %d and %g", c.Run.Count, c.Run.Ratio)
		}
	case modeEdgeLength, modeMaxError, modePlanar, modeFast:
		if c.Run.Value < 0 {
			return fmt.Errorf("run: negative value %g", c.Run.Value)
		}
	default:
		return fmt.Errorf("run: unknown mode %q", c.Run.Mode)
	}
	if c.Run.Mode == modeFast && c.Run.Rounds <= 0 {
		return fmt.Errorf("run: fast pass needs positive rounds")
	}
	return nil
}

// Load loads configuration with priority: defaults < file < flags.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	applyFlags(cfg)
	return cfg, cfg.Validate()
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
