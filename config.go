package remesh

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("remesh: invalid config")

// CollapseMode selects where a collapsed edge's surviving vertex is placed.
type CollapseMode uint8

const (
	// MinimalQuadricPositionError places the vertex at the quadric optimum,
	// falling back to the best of the endpoints and midpoint.
	MinimalQuadricPositionError CollapseMode = iota
	// MinimalExistingVertexError keeps the endpoint with lower quadric error.
	MinimalExistingVertexError
	// AverageVertexPosition places the vertex at the edge midpoint.
	AverageVertexPosition
	numCollapseModes
)

// ProjectionMode selects when vertices are projected onto Simplifier.Target.
type ProjectionMode uint8

const (
	NoProjection ProjectionMode = iota
	// AfterRefinement projects all movable vertices once the pass is done.
	AfterRefinement
	// Inline projects each collapse point as it is computed.
	Inline
	numProjectionModes
)

// GeometricErrorCriteria selects an additional per-collapse geometric test.
type GeometricErrorCriteria uint8

const (
	GeometricErrorNone GeometricErrorCriteria = iota
	// GeometricErrorPredictedPointToProjectionTarget rejects collapses whose
	// new point is farther than Config.GeometricTolerance from Target.
	GeometricErrorPredictedPointToProjectionTarget
	numGeometricErrorCriteria
)

// Config holds all tunables of a simplification run. It is read at the start
// of each run and must not be changed while one is in progress.
type Config struct {
	CollapseMode CollapseMode `yaml:"collapse_mode"`
	// PreserveBoundaryShape keeps boundary vertices in place when collapsing
	// edges with exactly one boundary endpoint and collapses boundary edges
	// to their midpoint.
	PreserveBoundaryShape bool           `yaml:"preserve_boundary_shape"`
	ProjectionMode        ProjectionMode `yaml:"projection_mode"`
	// AllowSeamCollapse lets constrained seam edges lose neighbours, guarded
	// by seam quadrics weighted with SeamEdgeWeight.
	AllowSeamCollapse bool    `yaml:"allow_seam_collapse"`
	SeamEdgeWeight    float64 `yaml:"seam_edge_weight"`
	// RetainQuadricMemory sums the two original vertex quadrics on collapse
	// instead of recomputing the quadrics of the modified neighbourhood.
	RetainQuadricMemory    bool                   `yaml:"retain_quadric_memory"`
	GeometricErrorCriteria GeometricErrorCriteria `yaml:"geometric_error_criteria"`
	GeometricTolerance     float64                `yaml:"geometric_tolerance"`
	// NormalFlipTolerance is the minimum allowed dot product between a
	// triangle normal before and after a collapse.
	NormalFlipTolerance float64 `yaml:"normal_flip_tolerance"`
	AttributeWeight     float64 `yaml:"attribute_weight"`
	// AllowFixedSetCollapse permits collapsing an edge between two fixed
	// vertices of the same fixed set, placing the result at the midpoint.
	AllowFixedSetCollapse bool `yaml:"allow_fixed_set_collapse"`
	// DebugCheckLevel 1 validates mesh and constraints after every pass,
	// 2 after every collapse. Failures panic.
	DebugCheckLevel int `yaml:"debug_check_level"`
	// Workers bounds setup parallelism. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() Config {
	return Config{
		CollapseMode:          MinimalQuadricPositionError,
		PreserveBoundaryShape: true,
		ProjectionMode:        AfterRefinement,
		AllowSeamCollapse:     true,
		SeamEdgeWeight:        1,
		AttributeWeight:       16,
		AllowFixedSetCollapse: true,
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	switch {
	case c.CollapseMode >= numCollapseModes:
		return fmt.Errorf("%w: collapse mode %d", ErrInvalidConfig, c.CollapseMode)
	case c.ProjectionMode >= numProjectionModes:
		return fmt.Errorf("%w: projection mode %d", ErrInvalidConfig, c.ProjectionMode)
	case c.GeometricErrorCriteria >= numGeometricErrorCriteria:
		return fmt.Errorf("%w: geometric error criteria %d", ErrInvalidConfig, c.GeometricErrorCriteria)
	case c.SeamEdgeWeight < 0:
		return fmt.Errorf("%w: negative seam edge weight", ErrInvalidConfig)
	case c.GeometricTolerance < 0:
		return fmt.Errorf("%w: negative geometric tolerance", ErrInvalidConfig)
	case c.AttributeWeight <= 0:
		return fmt.Errorf("%w: attribute weight must be positive", ErrInvalidConfig)
	case c.NormalFlipTolerance < -1 || c.NormalFlipTolerance >= 1:
		return fmt.Errorf("%w: normal flip tolerance %g outside [-1, 1)", ErrInvalidConfig, c.NormalFlipTolerance)
	case c.DebugCheckLevel < 0 || c.DebugCheckLevel > 2:
		return fmt.Errorf("%w: debug check level %d", ErrInvalidConfig, c.DebugCheckLevel)
	case c.Workers < 0:
		return fmt.Errorf("%w: negative workers", ErrInvalidConfig)
	}
	return nil
}

var (
	collapseModeNames   = [...]string{"quadric", "existing_vertex", "average"}
	projectionModeNames = [...]string{"none", "after_refinement", "inline"}
	geometricErrorNames = [...]string{"none", "projection_target"}
)

func (m CollapseMode) String() string {
	return enumString(collapseModeNames[:], int(m), "CollapseMode")
}
func (m ProjectionMode) String() string {
	return enumString(projectionModeNames[:], int(m), "ProjectionMode")
}
func (g GeometricErrorCriteria) String() string {
	return enumString(geometricErrorNames[:], int(g), "GeometricErrorCriteria")
}

func (m CollapseMode) MarshalYAML() (any, error)           { return m.String(), nil }
func (m ProjectionMode) MarshalYAML() (any, error)         { return m.String(), nil }
func (g GeometricErrorCriteria) MarshalYAML() (any, error) { return g.String(), nil }

func (m *CollapseMode) UnmarshalYAML(value *yaml.Node) error {
	i, err := enumParse(collapseModeNames[:], value, "collapse mode")
	if err != nil {
		return err
	}
	*m = CollapseMode(i)
	return nil
}

func (m *ProjectionMode) UnmarshalYAML(value *yaml.Node) error {
	i, err := enumParse(projectionModeNames[:], value, "projection mode")
	if err != nil {
		return err
	}
	*m = ProjectionMode(i)
	return nil
}

func (g *GeometricErrorCriteria) UnmarshalYAML(value *yaml.Node) error {
	i, err := enumParse(geometricErrorNames[:], value, "geometric error criteria")
	if err != nil {
		return err
	}
	*g = GeometricErrorCriteria(i)
	return nil
}

func enumString(names []string, i int, typ string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("%s(%d)", typ, i)
	}
	return names[i]
}

func enumParse(names []string, value *yaml.Node, what string) (int, error) {
	var s string
	if err := value.Decode(&s); err != nil {
		return 0, err
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if s == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("line %d: unknown %s %q, want one of %s", value.Line, what, s, strings.Join(names, ", "))
}
