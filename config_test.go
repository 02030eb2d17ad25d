package remesh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CollapseMode = AverageVertexPosition
	cfg.ProjectionMode = Inline
	cfg.GeometricErrorCriteria = GeometricErrorPredictedPointToProjectionTarget
	cfg.GeometricTolerance = 0.01
	cfg.Workers = 3
	b, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(b), "collapse_mode: average")
	assert.Contains(t, string(b), "projection_mode: inline")

	var got Config
	require.NoError(t, yaml.Unmarshal(b, &got))
	assert.Equal(t, cfg, got)
}

func TestConfigYAMLPartial(t *testing.T) {
	cfg := DefaultConfig()
	src := "collapse_mode: Existing_Vertex\nretain_quadric_memory: true\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &cfg))
	assert.Equal(t, MinimalExistingVertexError, cfg.CollapseMode)
	assert.True(t, cfg.RetainQuadricMemory)
	assert.True(t, cfg.PreserveBoundaryShape, "unset fields keep their defaults")

	err := yaml.Unmarshal([]byte("projection_mode: sideways\n"), &cfg)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown projection mode"), err.Error())
	assert.Equal(t, AfterRefinement, cfg.ProjectionMode)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, (&Config{AttributeWeight: 1}).Validate())
	def := DefaultConfig()
	require.NoError(t, def.Validate())
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"collapse mode", func(c *Config) { c.CollapseMode = numCollapseModes }},
		{"projection mode", func(c *Config) { c.ProjectionMode = 9 }},
		{"criteria", func(c *Config) { c.GeometricErrorCriteria = numGeometricErrorCriteria }},
		{"seam weight", func(c *Config) { c.SeamEdgeWeight = -1 }},
		{"tolerance", func(c *Config) { c.GeometricTolerance = -1 }},
		{"attribute weight", func(c *Config) { c.AttributeWeight = 0 }},
		{"flip tolerance", func(c *Config) { c.NormalFlipTolerance = 1 }},
		{"debug level", func(c *Config) { c.DebugCheckLevel = 3 }},
		{"workers", func(c *Config) { c.Workers = -2 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "quadric", MinimalQuadricPositionError.String())
	assert.Equal(t, "after_refinement", AfterRefinement.String())
	assert.Equal(t, "projection_target", GeometricErrorPredictedPointToProjectionTarget.String())
	assert.Equal(t, "CollapseMode(7)", CollapseMode(7).String())
	assert.Equal(t, "ignored: creates flip", IgnoredCreatesFlip.String())
	assert.Equal(t, "Outcome(200)", Outcome(200).String())
}
