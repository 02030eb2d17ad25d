package constraint

import (
	"testing"

	"github.com/soypat/remesh/dmesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type planeZ struct{ z float64 }

func (p *planeZ) Project(v r3.Vec, _ int) r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: p.z} }

func TestSetDefaults(t *testing.T) {
	var s Set
	assert.True(t, s.Vertex(10).IsUnconstrained())
	assert.Equal(t, InvalidSetID, s.Vertex(10).FixedSetID)
	assert.True(t, s.Edge(3).IsUnconstrained())
	assert.True(t, s.Edge(3).CanCollapse())

	s.SetVertex(4, Pinned())
	s.SetEdge(7, FullyConstrainedEdge())
	require.True(t, s.HasVertex(4))
	require.True(t, s.HasEdge(7))
	assert.False(t, s.Vertex(4).CanMove())
	assert.True(t, s.Edge(7).NoModifications())
	assert.False(t, s.Edge(7).CanFlip())
	assert.Equal(t, 1, s.VertexCount())
	assert.Equal(t, 1, s.EdgeCount())

	s.ClearVertex(4)
	s.ClearEdge(7)
	s.ClearEdge(7)
	assert.Equal(t, 0, s.VertexCount())
	assert.Equal(t, 0, s.EdgeCount())
}

func TestVertexConstraintKinds(t *testing.T) {
	target := &planeZ{}
	sl := Sliding(target)
	assert.True(t, sl.Fixed)
	assert.True(t, sl.CanMove())
	pr := Projected(target)
	assert.False(t, pr.Fixed)
	assert.False(t, pr.IsUnconstrained())
	assert.Equal(t, 3, PinnedToSet(3).FixedSetID)
}

func TestEnumeration(t *testing.T) {
	s := NewSet(4, 4)
	s.SetVertex(1, Pinned())
	s.SetVertex(3, Pinned())
	var got []int
	s.VertexConstraints(func(vid int, c VertexConstraint) bool {
		got = append(got, vid)
		return true
	})
	assert.Equal(t, []int{1, 3}, got)
	n := 0
	s.VertexConstraints(func(int, VertexConstraint) bool { n++; return false })
	assert.Equal(t, 1, n)
}

func TestConstrainGridBoundary(t *testing.T) {
	const n = 6
	m := dmesh.Grid(n, n, 1)
	s := ConstrainBoundaries(m, DefaultPolicy())
	assert.Equal(t, 4*(n-1), s.EdgeCount())
	assert.Equal(t, 4*(n-1), s.VertexCount())
	for eid := 0; eid < m.MaxEdgeID(); eid++ {
		assert.Equal(t, m.IsBoundaryEdge(eid), s.HasEdge(eid), "edge %d", eid)
	}
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		assert.Equal(t, m.IsBoundaryVertex(vid), s.Vertex(vid).Fixed, "vertex %d", vid)
	}
}

func TestReconstrainGroups(t *testing.T) {
	m := dmesh.Grid(3, 3, 1)
	m.EnableGroups()
	// Left column of quads in group 1.
	for tid := 0; tid < m.MaxTriangleID(); tid++ {
		if m.TriangleCentroid(tid).X < 1 {
			m.SetTriangleGroup(tid, 1)
		}
	}
	s := ConstrainBoundaries(m, Policy{GroupBoundaries: true})
	split := m.FindEdge(1, 4)
	require.NotEqual(t, dmesh.InvalidID, split)
	assert.True(t, s.HasEdge(split))
	assert.False(t, s.Vertex(1).Fixed, "vertices are not pinned by this policy")

	// Merge groups, the edge no longer separates anything.
	for tid := 0; tid < m.MaxTriangleID(); tid++ {
		m.SetTriangleGroup(tid, 0)
	}
	s.Reconstrain(m, split)
	assert.False(t, s.HasEdge(split))

	// User constraints with a different value survive.
	s.SetEdge(split, EdgeConstraint{Restrict: NoFlip})
	s.Reconstrain(m, split)
	assert.True(t, s.HasEdge(split))
}

type funcTarget func(r3.Vec, int) r3.Vec

func (f funcTarget) Project(p r3.Vec, id int) r3.Vec { return f(p, id) }

func TestSameTarget(t *testing.T) {
	t1, t2 := &planeZ{z: 0}, &planeZ{z: 0}
	assert.True(t, SameTarget(nil, nil))
	assert.True(t, SameTarget(t1, t1))
	assert.False(t, SameTarget(t1, t2))
	assert.False(t, SameTarget(t1, nil))
	f := funcTarget(func(p r3.Vec, _ int) r3.Vec { return p })
	assert.NotPanics(t, func() {
		assert.False(t, SameTarget(f, f))
		assert.False(t, SameTarget(f, t1))
	})
}
