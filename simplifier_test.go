package remesh

import (
	"context"
	"math"
	"testing"

	"github.com/soypat/remesh/constraint"
	"github.com/soypat/remesh/dmesh"
	"github.com/soypat/remesh/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type planeZ struct{ z float64 }

func (p *planeZ) Project(v r3.Vec, _ int) r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: p.z} }

func debugConfig() Config {
	cfg := DefaultConfig()
	cfg.DebugCheckLevel = 2
	return cfg
}

func TestIcosahedronToEight(t *testing.T) {
	for _, retain := range []bool{false, true} {
		m := dmesh.Icosahedron(1)
		cfg := debugConfig()
		cfg.RetainQuadricMemory = retain
		st, err := New(m, cfg).SimplifyToTriangleCount(context.Background(), 8)
		require.NoError(t, err)
		require.NoError(t, m.CheckValidity())
		assert.True(t, m.IsClosed(), "no boundary edges may be introduced")
		assert.Equal(t, 8, m.TriangleCount(), "retain=%v", retain)
		assert.Equal(t, 6, st.Collapses)
		assert.Zero(t, st.IsolatedRemoved)
	}
}

func TestAlreadySimplified(t *testing.T) {
	m := dmesh.Icosahedron(1)
	before := m.Triangles()
	st, err := New(m, DefaultConfig()).SimplifyToTriangleCount(context.Background(), 20)
	require.NoError(t, err)
	assert.Zero(t, st.Collapses)
	assert.Zero(t, st.Iterations)
	assert.Equal(t, before, m.Triangles())
}

func TestGridBoundaryPreserved(t *testing.T) {
	m := dmesh.Grid(10, 10, 1)
	cs := constraint.ConstrainBoundaries(m, constraint.DefaultPolicy())
	type edge struct {
		v      [2]int
		p0, p1 r3.Vec
	}
	boundary := make(map[int]edge)
	for eid := 0; eid < m.MaxEdgeID(); eid++ {
		if m.IsEdge(eid) && m.IsBoundaryEdge(eid) {
			e := m.Edge(eid)
			boundary[eid] = edge{v: e.V, p0: m.Vertex(e.V[0]), p1: m.Vertex(e.V[1])}
		}
	}
	require.Len(t, boundary, 36)
	startTris := m.TriangleCount()

	s := New(m, debugConfig())
	s.Constraints = cs
	st, err := s.SimplifyToEdgeLength(context.Background(), 100)
	require.NoError(t, err)
	require.NoError(t, m.CheckValidity())
	assert.Less(t, m.TriangleCount(), startTris)
	assert.Positive(t, st.Outcomes[IgnoredEdgeIsFullyConstrained])
	for eid, want := range boundary {
		require.True(t, m.IsEdge(eid), "boundary edge %d removed", eid)
		e := m.Edge(eid)
		assert.Equal(t, want.v, e.V)
		assert.Equal(t, want.p0, m.Vertex(e.V[0]))
		assert.Equal(t, want.p1, m.Vertex(e.V[1]))
		assert.True(t, cs.HasEdge(eid))
	}
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if m.IsVertex(vid) {
			assert.Zero(t, m.Vertex(vid).Z)
		}
	}
}

func TestFixedVerticesWithDifferentTargets(t *testing.T) {
	m := dmesh.Grid(3, 3, 1)
	eid := m.FindEdge(3, 4)
	require.NotEqual(t, dmesh.InvalidID, eid)
	cs := constraint.NewSet(m.MaxVertexID(), m.MaxEdgeID())
	cs.SetVertex(3, constraint.Sliding(&planeZ{}))
	cs.SetVertex(4, constraint.Sliding(&planeZ{}))
	before := m.Triangles()

	s := New(m, DefaultConfig())
	s.Constraints = cs
	_, out := s.CollapseEdge(eid, m.EdgeMidpoint(eid), dmesh.InvalidID)
	assert.Equal(t, IgnoredConstrained, out)
	assert.Equal(t, before, m.Triangles())

	cs.SetEdge(eid, constraint.FullyConstrainedEdge())
	_, out = s.CollapseEdge(eid, m.EdgeMidpoint(eid), dmesh.InvalidID)
	assert.Equal(t, IgnoredEdgeIsFullyConstrained, out)
	assert.Equal(t, before, m.Triangles())
}

func TestResolveKeep(t *testing.T) {
	t1, t2 := &planeZ{z: 0}, &planeZ{z: 1}
	m := dmesh.Grid(3, 3, 1)
	eid := m.FindEdge(3, 4)
	const a, b = 3, 4
	none := constraint.Unconstrained()
	tests := []struct {
		name        string
		ca, cb      constraint.VertexConstraint
		edgeTarget  constraint.Target
		noFixedSets bool
		keep        int
		midpoint    bool
		ok          bool
	}{
		{name: "unconstrained", ca: none, cb: none, keep: dmesh.InvalidID, ok: true},
		{name: "a pinned", ca: constraint.Pinned(), cb: none, keep: a, ok: true},
		{name: "b pinned", ca: none, cb: constraint.Pinned(), keep: b, ok: true},
		{name: "pinned other targeted", ca: constraint.Pinned(), cb: constraint.Projected(t1), keep: dmesh.InvalidID},
		{name: "sliding same target", ca: constraint.Sliding(t1), cb: constraint.Projected(t1), keep: a, ok: true},
		{name: "sliding other target", ca: constraint.Projected(t2), cb: constraint.Sliding(t1), keep: dmesh.InvalidID},
		{name: "both pinned", ca: constraint.Pinned(), cb: constraint.Pinned(), keep: dmesh.InvalidID},
		{name: "same fixed set", ca: constraint.PinnedToSet(2), cb: constraint.PinnedToSet(2), keep: dmesh.InvalidID, midpoint: true, ok: true},
		{name: "same fixed set disallowed", ca: constraint.PinnedToSet(2), cb: constraint.PinnedToSet(2), noFixedSets: true, keep: dmesh.InvalidID},
		{name: "different fixed sets", ca: constraint.PinnedToSet(1), cb: constraint.PinnedToSet(2), keep: dmesh.InvalidID},
		{name: "a targeted", ca: constraint.Projected(t1), cb: none, keep: a, ok: true},
		{name: "b targeted", ca: none, cb: constraint.Projected(t1), keep: b, ok: true},
		{name: "shared target on edge", ca: constraint.Projected(t1), cb: constraint.Projected(t1), edgeTarget: t1, keep: dmesh.InvalidID, ok: true},
		{name: "shared target off edge", ca: constraint.Projected(t1), cb: constraint.Projected(t1), keep: dmesh.InvalidID},
		{name: "different targets", ca: constraint.Projected(t1), cb: constraint.Projected(t2), keep: dmesh.InvalidID},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cs := constraint.NewSet(m.MaxVertexID(), m.MaxEdgeID())
			cs.SetVertex(a, test.ca)
			cs.SetVertex(b, test.cb)
			if test.edgeTarget != nil {
				cs.SetEdge(eid, constraint.EdgeConstraint{Target: test.edgeTarget})
			}
			cfg := DefaultConfig()
			cfg.AllowFixedSetCollapse = !test.noFixedSets
			s := New(m, cfg)
			s.Constraints = cs
			keep, midpoint, ok := s.resolveKeep(eid, a, b)
			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.keep, keep)
			assert.Equal(t, test.midpoint, midpoint)
		})
	}
}

type funcTarget func(r3.Vec, int) r3.Vec

func (f funcTarget) Project(p r3.Vec, id int) r3.Vec { return f(p, id) }

func TestResolveKeepFuncTargets(t *testing.T) {
	m := dmesh.Grid(3, 3, 1)
	f := funcTarget(func(p r3.Vec, _ int) r3.Vec { return p })
	cs := constraint.NewSet(m.MaxVertexID(), m.MaxEdgeID())
	cs.SetVertex(3, constraint.Projected(f))
	cs.SetVertex(4, constraint.Projected(f))
	s := New(m, DefaultConfig())
	s.Constraints = cs
	var ok bool
	require.NotPanics(t, func() { _, _, ok = s.resolveKeep(m.FindEdge(3, 4), 3, 4) })
	assert.False(t, ok)
}

func TestRequiredKeepInFixedSet(t *testing.T) {
	m := dmesh.Grid(3, 3, 1)
	cs := constraint.NewSet(m.MaxVertexID(), m.MaxEdgeID())
	cs.SetVertex(4, constraint.PinnedToSet(1))
	cs.SetVertex(5, constraint.PinnedToSet(1))
	cfg := DefaultConfig()
	cfg.PreserveBoundaryShape = false
	s := New(m, cfg)
	s.Constraints = cs
	p4 := m.Vertex(4)
	info, out := s.CollapseEdge(m.FindEdge(4, 5), m.EdgeMidpoint(m.FindEdge(4, 5)), 4)
	require.Equal(t, Collapsed, out)
	assert.Equal(t, 4, info.KeptVertex)
	assert.Equal(t, p4, m.Vertex(4), "required vertex must not move to the midpoint")
	require.NoError(t, m.CheckValidity())
}

func TestCollapseRejectsFlip(t *testing.T) {
	m := dmesh.Grid(3, 3, 1)
	eid := m.FindEdge(4, 5)
	before := m.Triangles()
	cfg := DefaultConfig()
	cfg.PreserveBoundaryShape = false
	s := New(m, cfg)
	_, out := s.CollapseEdge(eid, r3.Vec{X: -5, Y: 1}, dmesh.InvalidID)
	assert.Equal(t, IgnoredCreatesFlip, out)
	assert.Equal(t, before, m.Triangles())

	info, out := s.CollapseEdge(eid, m.EdgeMidpoint(eid), dmesh.InvalidID)
	require.Equal(t, Collapsed, out)
	assert.Equal(t, r3.Vec{X: 1.5, Y: 1}, m.Vertex(info.KeptVertex))
	require.NoError(t, m.CheckValidity())
}

func TestFastPassWithoutShortEdges(t *testing.T) {
	m := dmesh.Icosahedron(1)
	st, err := New(m, DefaultConfig()).FastCollapsePass(context.Background(), 0.1, 10, true)
	require.NoError(t, err)
	assert.Zero(t, st.Collapses)
	assert.Equal(t, 1, st.Rounds)
	assert.Equal(t, 20, m.TriangleCount())
}

func TestFastPassKeepsBoundary(t *testing.T) {
	m := dmesh.Grid(6, 6, 1)
	var boundary []int
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if m.IsBoundaryVertex(vid) {
			boundary = append(boundary, vid)
		}
	}
	before := m.Clone()
	st, err := New(m, debugConfig()).FastCollapsePass(context.Background(), 1.2, 10, false)
	require.NoError(t, err)
	assert.Positive(t, st.Collapses)
	assert.LessOrEqual(t, st.Rounds, 10)
	assert.Less(t, m.TriangleCount(), before.TriangleCount())
	for _, vid := range boundary {
		require.True(t, m.IsVertex(vid))
		assert.Equal(t, before.Vertex(vid), m.Vertex(vid))
	}
}

func TestCancellation(t *testing.T) {
	const stopAfter = 5
	m := dmesh.Sphere(1, 2)
	start := m.TriangleCount()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New(m, DefaultConfig())
	n := 0
	s.Observer = func(dmesh.CollapseInfo) {
		n++
		if n == stopAfter {
			cancel()
		}
	}
	st, err := s.SimplifyToTriangleCount(ctx, 20)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, stopAfter, st.Collapses)
	assert.Equal(t, start-2*stopAfter, m.TriangleCount())
	require.NoError(t, m.CheckValidity())
}

func TestCanceledBeforeStart(t *testing.T) {
	m := dmesh.Sphere(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st, err := New(m, DefaultConfig()).SimplifyToTriangleCount(ctx, 20)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, st.Collapses)
	assert.Equal(t, 80, m.TriangleCount())
}

func TestInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DebugCheckLevel = 7
	_, err := New(dmesh.Icosahedron(1), cfg).SimplifyToTriangleCount(context.Background(), 8)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func enableRadialNormals(m *dmesh.Mesh) *dmesh.Overlay {
	ov := m.EnableNormals()
	elems := make([]int, m.MaxVertexID())
	for vid := range elems {
		if m.IsVertex(vid) {
			n := r3.Unit(m.Vertex(vid))
			elems[vid] = ov.AppendElement(vid, n.X, n.Y, n.Z)
		}
	}
	for tid := 0; tid < m.MaxTriangleID(); tid++ {
		if !m.IsTriangle(tid) {
			continue
		}
		tri := m.Triangle(tid)
		if err := ov.SetTriangle(tid, [3]int{elems[tri[0]], elems[tri[1]], elems[tri[2]]}); err != nil {
			panic(err)
		}
	}
	return ov
}

func TestMemoryModes(t *testing.T) {
	for _, retain := range []bool{false, true} {
		for _, attr := range []bool{false, true} {
			name := map[bool]string{false: "recompute", true: "retain"}[retain] +
				map[bool]string{false: "/plane", true: "/normal"}[attr]
			t.Run(name, func(t *testing.T) {
				m := dmesh.Sphere(1, 2)
				cfg := debugConfig()
				cfg.RetainQuadricMemory = retain
				var (
					st  Stats
					err error
				)
				if attr {
					ov := enableRadialNormals(m)
					st, err = NewAttribute(m, cfg).SimplifyToTriangleCount(context.Background(), 100)
					for tid := 0; tid < m.MaxTriangleID(); tid++ {
						if !m.IsTriangle(tid) {
							continue
						}
						for _, elem := range ov.TriangleElements(tid) {
							n := ov.Vec3(elem)
							assert.InDelta(t, 1, r3.Norm(n), 1e-9)
							assert.Greater(t, r3.Dot(n, r3.Unit(m.Vertex(ov.ElementParent(elem)))), 0.5)
						}
					}
				} else {
					st, err = New(m, cfg).SimplifyToTriangleCount(context.Background(), 100)
				}
				require.NoError(t, err)
				require.NoError(t, m.CheckValidity())
				assert.True(t, m.IsClosed())
				assert.Equal(t, 100, m.TriangleCount())
				assert.Equal(t, 110, st.Collapses)
				for vid := 0; vid < m.MaxVertexID(); vid++ {
					if m.IsVertex(vid) {
						assert.InDelta(t, 1, r3.Norm(m.Vertex(vid)), 0.25)
					}
				}
			})
		}
	}
}

func TestVertexCount(t *testing.T) {
	m := dmesh.Sphere(1, 2)
	require.Equal(t, 162, m.VertexCount())
	st, err := New(m, debugConfig()).SimplifyToVertexCount(context.Background(), 60)
	require.NoError(t, err)
	assert.Equal(t, 60, m.VertexCount())
	assert.Equal(t, 102, st.Collapses)
	assert.True(t, m.IsClosed())
}

func TestFixedVerticesStayOnTarget(t *testing.T) {
	m := dmesh.Sphere(1, 2)
	target, err := project.NewMesh(m.Clone())
	require.NoError(t, err)
	cs := constraint.NewSet(m.MaxVertexID(), m.MaxEdgeID())
	var sliding []int
	for vid := 0; vid < m.MaxVertexID(); vid += 17 {
		cs.SetVertex(vid, constraint.Sliding(target))
		sliding = append(sliding, vid)
	}
	s := New(m, debugConfig())
	s.Constraints = cs
	start := m.TriangleCount()
	var counts []int
	s.Observer = func(dmesh.CollapseInfo) { counts = append(counts, m.TriangleCount()) }
	require.NotPanics(t, func() {
		_, err = s.SimplifyToTriangleCount(context.Background(), 60)
	})
	require.NoError(t, err)
	require.NoError(t, s.CheckConstraints())
	prev := start
	for _, n := range counts {
		assert.Less(t, n, prev)
		prev = n
	}
	for _, vid := range sliding {
		require.True(t, m.IsVertex(vid), "fixed vertex %d removed", vid)
		p := m.Vertex(vid)
		assert.InDelta(t, 0, r3.Norm(r3.Sub(p, target.Project(p, vid))), 1e-9)
	}
}

func TestConstrainedEdgesSurvive(t *testing.T) {
	m := dmesh.Sphere(1, 2)
	cs := constraint.NewSet(m.MaxVertexID(), m.MaxEdgeID())
	kept := make(map[int][2]int)
	for eid := 0; eid < m.MaxEdgeID(); eid += 23 {
		e := m.Edge(eid)
		cs.SetEdge(eid, constraint.FullyConstrainedEdge())
		cs.SetVertex(e.V[0], constraint.Pinned())
		cs.SetVertex(e.V[1], constraint.Pinned())
		kept[eid] = e.V
	}
	cfg := debugConfig()
	cfg.AllowSeamCollapse = false
	s := New(m, cfg)
	s.Constraints = cs
	_, err := s.SimplifyToTriangleCount(context.Background(), 40)
	require.NoError(t, err)
	for eid, v := range kept {
		require.True(t, m.IsEdge(eid), "constrained edge %d removed", eid)
		assert.Equal(t, v, m.Edge(eid).V)
		assert.True(t, cs.HasEdge(eid))
	}
}

func TestGeometricErrorCriteria(t *testing.T) {
	const tol = 1e-3
	m := dmesh.Sphere(1, 2)
	target, err := project.NewMesh(dmesh.Sphere(1, 4))
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.ProjectionMode = NoProjection
	cfg.GeometricErrorCriteria = GeometricErrorPredictedPointToProjectionTarget
	cfg.GeometricTolerance = tol
	cfg.CollapseMode = AverageVertexPosition
	s := New(m, cfg)
	s.Target = target
	st, err := s.SimplifyToTriangleCount(context.Background(), 100)
	require.NoError(t, err)
	require.NoError(t, m.CheckValidity())
	assert.Positive(t, st.Outcomes[IgnoredGeometricError])
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if m.IsVertex(vid) {
			p := m.Vertex(vid)
			assert.LessOrEqual(t, r3.Norm(r3.Sub(p, target.Project(p, vid))), tol)
		}
	}
}

func TestInlineProjection(t *testing.T) {
	m := dmesh.Sphere(1, 2)
	start := m.TriangleCount()
	target, err := project.NewMesh(dmesh.Sphere(1, 4))
	require.NoError(t, err)
	cfg := debugConfig()
	cfg.ProjectionMode = Inline
	s := New(m, cfg)
	s.Target = target
	st, err := s.SimplifyToTriangleCount(context.Background(), 100)
	require.NoError(t, err)
	assert.Positive(t, st.Collapses)
	assert.Less(t, m.TriangleCount(), start)
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if m.IsVertex(vid) {
			p := m.Vertex(vid)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(p, target.Project(p, vid))), 1e-9)
		}
	}
}

func TestExistingVertexMode(t *testing.T) {
	m := dmesh.Sphere(1, 2)
	original := make(map[r3.Vec]bool)
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		original[m.Vertex(vid)] = true
	}
	cfg := debugConfig()
	cfg.CollapseMode = MinimalExistingVertexError
	st, err := New(m, cfg).SimplifyToTriangleCount(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 100, m.TriangleCount())
	assert.Equal(t, 110, st.Collapses)
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if m.IsVertex(vid) {
			assert.True(t, original[m.Vertex(vid)], "vertex %d moved to %v", vid, m.Vertex(vid))
		}
	}
}

func TestBoundaryShapeUnconstrained(t *testing.T) {
	onPerimeter := func(p r3.Vec) bool {
		const eps = 1e-9
		return math.Abs(p.X) < eps || math.Abs(p.X-9) < eps ||
			math.Abs(p.Y) < eps || math.Abs(p.Y-9) < eps
	}
	for _, mode := range []CollapseMode{MinimalQuadricPositionError, AverageVertexPosition, MinimalExistingVertexError} {
		t.Run(mode.String(), func(t *testing.T) {
			m := dmesh.Grid(10, 10, 1)
			bounds := m.Bounds()
			cfg := debugConfig()
			cfg.CollapseMode = mode
			st, err := New(m, cfg).SimplifyToTriangleCount(context.Background(), 60)
			require.NoError(t, err)
			require.NoError(t, m.CheckValidity())
			assert.Positive(t, st.Collapses)
			assert.Equal(t, bounds, m.Bounds())
			for vid := 0; vid < m.MaxVertexID(); vid++ {
				if m.IsVertex(vid) && m.IsBoundaryVertex(vid) {
					assert.True(t, onPerimeter(m.Vertex(vid)), "boundary vertex %d at %v", vid, m.Vertex(vid))
				}
			}
		})
	}
}

func TestQueueMatchesEdgeState(t *testing.T) {
	for _, retain := range []bool{false, true} {
		m := dmesh.Grid(8, 8, 1)
		cfg := DefaultConfig()
		cfg.RetainQuadricMemory = retain
		s := New(m, cfg)
		var stale int
		s.Observer = func(dmesh.CollapseInfo) {
			for eid := 0; eid < m.MaxEdgeID(); eid++ {
				got, ok := s.queue.Priority(eid)
				if !ok {
					continue
				}
				_, p, want := s.computeEdge(eid)
				if got != want || p != s.edgeQ[eid].p {
					stale++
				}
			}
		}
		st, err := s.SimplifyToTriangleCount(context.Background(), 40)
		require.NoError(t, err)
		require.Positive(t, st.Collapses)
		assert.Zero(t, stale, "retain=%v", retain)
	}
}

func TestAfterRefinementProjection(t *testing.T) {
	m := dmesh.Sphere(1, 2)
	target, err := project.NewMesh(m.Clone())
	require.NoError(t, err)
	s := New(m, DefaultConfig())
	s.Target = target
	_, err = s.SimplifyToTriangleCount(context.Background(), 80)
	require.NoError(t, err)
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if m.IsVertex(vid) {
			p := m.Vertex(vid)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(p, target.Project(p, vid))), 1e-9)
		}
	}
}

func TestIsolatedTriangleRemoved(t *testing.T) {
	m := dmesh.Icosahedron(1)
	a := m.AppendVertex(r3.Vec{X: 10})
	b := m.AppendVertex(r3.Vec{X: 10.01})
	c := m.AppendVertex(r3.Vec{X: 10, Y: 0.01})
	_, err := m.AppendTriangle(a, b, c)
	require.NoError(t, err)

	st, err := New(m, debugConfig()).SimplifyToTriangleCount(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 1, st.IsolatedRemoved)
	assert.Positive(t, st.Outcomes[FailedIsolatedTriangle])
	assert.False(t, m.IsVertex(a) || m.IsVertex(b) || m.IsVertex(c))
	assert.True(t, m.IsClosed())
	require.NoError(t, m.CheckValidity())
}

func TestMaxErrorOnPlane(t *testing.T) {
	m := dmesh.Grid(8, 8, 0.5)
	start := m.TriangleCount()
	st, err := New(m, debugConfig()).SimplifyToMaxError(context.Background(), 1e-9)
	require.NoError(t, err)
	assert.Positive(t, st.Collapses)
	assert.Less(t, m.TriangleCount(), start)
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if m.IsVertex(vid) {
			assert.Zero(t, m.Vertex(vid).Z)
		}
	}
	require.NoError(t, m.CheckValidity())
}

func TestMinimalPlanarGrid(t *testing.T) {
	m := dmesh.Grid(6, 6, 1)
	bb := m.Bounds()
	st, err := New(m, debugConfig()).SimplifyToMinimalPlanar(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Positive(t, st.Collapses)
	assert.Less(t, m.TriangleCount(), 50)
	assert.Equal(t, bb, m.Bounds())
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if m.IsVertex(vid) {
			assert.Zero(t, m.Vertex(vid).Z)
		}
	}
	require.NoError(t, m.CheckValidity())
}

func TestMinimalPlanarFold(t *testing.T) {
	m := dmesh.Grid(7, 3, 1)
	fold := func(x float64) float64 { return math.Max(0, x-3) }
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		p := m.Vertex(vid)
		m.SetVertex(vid, r3.Vec{X: p.X, Y: p.Y, Z: fold(p.X)})
	}
	start := m.TriangleCount()
	st, err := New(m, debugConfig()).SimplifyToMinimalPlanar(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Positive(t, st.Collapses)
	assert.Less(t, m.TriangleCount(), start)
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if m.IsVertex(vid) {
			p := m.Vertex(vid)
			assert.InDelta(t, fold(p.X), p.Z, 1e-12)
		}
	}
	require.NoError(t, m.CheckValidity())
}

func TestMinimalPlanarFilter(t *testing.T) {
	m := dmesh.Grid(6, 6, 1)
	st, err := New(m, DefaultConfig()).SimplifyToMinimalPlanar(context.Background(), 1, func(int) bool { return false })
	require.NoError(t, err)
	assert.Zero(t, st.Collapses)
	assert.Equal(t, 1, st.Rounds)
	assert.Equal(t, 50, m.TriangleCount())
}

func TestPriorityFinite(t *testing.T) {
	assert.Equal(t, float32(0), priority(-1e-9))
	assert.Equal(t, float32(2.5), priority(2.5))
	assert.Equal(t, float32(math.MaxFloat32), priority(math.NaN()))
	assert.Equal(t, float32(math.MaxFloat32), priority(1e300))
}
