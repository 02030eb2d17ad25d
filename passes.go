package remesh

import (
	"context"
	"math"

	"github.com/soypat/remesh/dmesh"
	"github.com/soypat/remesh/internal/d3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// maxPlanarRounds bounds SimplifyToMinimalPlanar.
const maxPlanarRounds = 50

// FastCollapsePass collapses every edge shorter than minEdgeLength to its
// midpoint, ignoring quadrics, for up to rounds rounds or until a round
// collapses nothing. Unless closedHint is set, boundary edges and edges
// touching the boundary are left alone.
func (s *Simplifier[Q]) FastCollapsePass(ctx context.Context, minEdgeLength float64, rounds int, closedHint bool) (Stats, error) {
	var st Stats
	if err := s.Config.Validate(); err != nil {
		return st, err
	}
	if err := s.initBoundary(ctx); err != nil {
		return st, err
	}
	m := s.Mesh
	min2 := minEdgeLength * minEdgeLength
	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.Rounds++
		collapses := st.Collapses
		for eid := 0; eid < m.MaxEdgeID(); eid++ {
			if !m.IsEdge(eid) || m.EdgeLength2(eid) >= min2 {
				continue
			}
			if !closedHint {
				e := m.Edge(eid)
				if e.IsBoundary() || s.boundaryVertex(e.V[0]) || s.boundaryVertex(e.V[1]) {
					continue
				}
			}
			info, out := s.CollapseEdge(eid, m.EdgeMidpoint(eid), dmesh.InvalidID)
			st.record(out)
			if out == Collapsed {
				s.afterCollapse(info)
			}
		}
		if st.Collapses == collapses {
			break
		}
	}
	s.debugCheck(1)
	s.log().Debug("fast collapse pass done", zap.Int("rounds", st.Rounds), zap.Int("collapses", st.Collapses))
	return st, nil
}

type vertexShape uint8

const (
	curvedVertex vertexShape = iota
	planarVertex
	foldVertex
)

// SimplifyToMinimalPlanar removes vertices whose neighbourhood is flat, or
// folded along a single straight crease, within angleDeg degrees, without
// changing the shape of the surface. Only edges accepted by filter are
// collapsed; a nil filter accepts every edge.
func (s *Simplifier[Q]) SimplifyToMinimalPlanar(ctx context.Context, angleDeg float64, filter func(eid int) bool) (Stats, error) {
	var st Stats
	if err := s.Config.Validate(); err != nil {
		return st, err
	}
	if err := s.initBoundary(ctx); err != nil {
		return st, err
	}
	m := s.Mesh
	cosTol := math.Cos(angleDeg * math.Pi / 180)
	for round := 0; round < maxPlanarRounds; round++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.Rounds++
		shapes := make([]vertexShape, m.MaxVertexID())
		err := s.parallel(ctx, m.MaxVertexID(), func(lo, hi int) {
			tris := make([]int, 0, 16)
			for vid := lo; vid < hi; vid++ {
				if m.IsVertex(vid) {
					shapes[vid], tris = classifyVertex(m, vid, cosTol, tris)
				}
			}
		})
		if err != nil {
			return st, err
		}
		collapses := st.Collapses
		for eid := 0; eid < m.MaxEdgeID(); eid++ {
			if !m.IsEdge(eid) || filter != nil && !filter(eid) {
				continue
			}
			e := m.Edge(eid)
			for _, pair := range [2][2]int{{e.V[0], e.V[1]}, {e.V[1], e.V[0]}} {
				remove, keep := pair[0], pair[1]
				if shapes[remove] == curvedVertex || !s.canRemoveFlat(remove, keep, eid, cosTol) {
					continue
				}
				info, out := s.CollapseEdge(eid, m.Vertex(keep), keep)
				st.record(out)
				if out == Collapsed {
					s.afterCollapse(info)
					break
				}
			}
		}
		if st.Collapses == collapses {
			break
		}
	}
	s.debugCheck(1)
	s.log().Debug("minimal planar pass done", zap.Int("rounds", st.Rounds), zap.Int("collapses", st.Collapses))
	return st, nil
}

// classifyVertex groups the normals around vid into at most two clusters.
func classifyVertex(m *dmesh.Mesh, vid int, cosTol float64, tris []int) (vertexShape, []int) {
	tris = m.VertexTriangles(vid, tris[:0])
	var n1, n2 r3.Vec
	for _, tid := range tris {
		n := m.TriangleNormal(tid)
		switch {
		case n == (r3.Vec{}):
			return curvedVertex, tris
		case n1 == (r3.Vec{}):
			n1 = n
		case r3.Dot(n, n1) >= cosTol:
		case n2 == (r3.Vec{}):
			n2 = n
		case r3.Dot(n, n2) >= cosTol:
		default:
			return curvedVertex, tris
		}
	}
	if n2 == (r3.Vec{}) {
		return planarVertex, tris
	}
	return foldVertex, tris
}

// canRemoveFlat reports whether collapsing remove onto keep along eid keeps
// the surface shape: boundaries and creases through remove must continue
// straight through it and every moved triangle must keep its normal.
func (s *Simplifier[Q]) canRemoveFlat(remove, keep, eid int, cosTol float64) bool {
	m := s.Mesh
	if !m.IsVertex(remove) {
		return false
	}
	var shape vertexShape
	shape, s.tris = classifyVertex(m, remove, cosTol, s.tris)
	if shape == curvedVertex {
		return false
	}
	pr, pk := m.Vertex(remove), m.Vertex(keep)
	dir := d3.SafeUnit(r3.Sub(pr, pk))
	straight := func(other int) bool {
		return r3.Dot(dir, d3.SafeUnit(r3.Sub(m.Vertex(m.Edge(other).Other(remove)), pr))) >= cosTol
	}
	if s.boundaryVertex(remove) {
		if shape != planarVertex || !m.IsBoundaryEdge(eid) {
			return false
		}
		other := dmesh.InvalidID
		for _, ve := range m.VertexEdges(remove) {
			if ve == eid || !m.IsBoundaryEdge(ve) {
				continue
			}
			if other != dmesh.InvalidID {
				return false
			}
			other = ve
		}
		if other == dmesh.InvalidID || !straight(other) {
			return false
		}
	} else if shape == foldVertex {
		var folds [2]int
		n := 0
		for _, ve := range m.VertexEdges(remove) {
			t := m.Edge(ve).T
			if r3.Dot(m.TriangleNormal(t[0]), m.TriangleNormal(t[1])) >= cosTol {
				continue
			}
			if n == 2 {
				return false
			}
			folds[n] = ve
			n++
		}
		if n != 2 || folds[0] != eid && folds[1] != eid {
			return false
		}
		other := folds[0]
		if other == eid {
			other = folds[1]
		}
		if !straight(other) {
			return false
		}
	}

	e := m.Edge(eid)
	s.tris = m.VertexTriangles(remove, s.tris[:0])
	for _, tid := range s.tris {
		if tid == e.T[0] || tid == e.T[1] {
			continue
		}
		a, b, c := m.TrianglePositions(tid)
		old := d3.Normal(a, b, c)
		p := [3]r3.Vec{a, b, c}
		for i, v := range m.Triangle(tid) {
			if v == remove {
				p[i] = pk
			}
		}
		moved := d3.Normal(p[0], p[1], p[2])
		if moved == (r3.Vec{}) || r3.Dot(old, moved) < cosTol {
			return false
		}
	}
	return true
}
