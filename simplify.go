package remesh

import (
	"context"
	"time"

	"github.com/soypat/remesh/dmesh"
	"go.uber.org/zap"
)

type simplifyMode uint8

const (
	triangleCountMode simplifyMode = iota
	vertexCountMode
	edgeLengthMode
	maxErrorMode
)

func (m simplifyMode) String() string {
	return [...]string{"triangle_count", "vertex_count", "edge_length", "max_error"}[m]
}

// SimplifyToTriangleCount collapses edges until the mesh has at most n
// triangles or no collapsible edge is left.
func (s *Simplifier[Q]) SimplifyToTriangleCount(ctx context.Context, n int) (Stats, error) {
	return s.run(ctx, triangleCountMode, n, 0)
}

// SimplifyToVertexCount collapses edges until the mesh has at most n
// vertices or no collapsible edge is left.
func (s *Simplifier[Q]) SimplifyToVertexCount(ctx context.Context, n int) (Stats, error) {
	return s.run(ctx, vertexCountMode, n, 0)
}

// SimplifyToEdgeLength collapses, in quadric error order, every edge not
// longer than length until none is left.
func (s *Simplifier[Q]) SimplifyToEdgeLength(ctx context.Context, length float64) (Stats, error) {
	s.maxEdgeLen2 = length * length
	defer func() { s.maxEdgeLen2 = 0 }()
	return s.run(ctx, edgeLengthMode, 1, 0)
}

// SimplifyToMaxError collapses edges while the cheapest collapse costs no
// more than maxErr.
func (s *Simplifier[Q]) SimplifyToMaxError(ctx context.Context, maxErr float64) (Stats, error) {
	return s.run(ctx, maxErrorMode, 1, maxErr)
}

func (s *Simplifier[Q]) run(ctx context.Context, mode simplifyMode, count int, maxErr float64) (Stats, error) {
	var st Stats
	if err := s.Config.Validate(); err != nil {
		return st, err
	}
	if mode != maxErrorMode && s.reached(mode, count, maxErr) {
		return st, nil
	}
	s.warnMisconfiguration()
	log := s.log()
	start := time.Now()
	startTris := s.Mesh.TriangleCount()
	if err := s.initialize(ctx); err != nil {
		return st, err
	}
	m := s.Mesh
	for s.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if s.reached(mode, count, maxErr) {
			break
		}
		eid := s.queue.Dequeue()
		if !m.IsEdge(eid) {
			continue
		}
		info, out := s.CollapseEdge(eid, s.edgeQ[eid].p, dmesh.InvalidID)
		st.record(out)
		switch out {
		case Collapsed:
			s.updateNeighborhood(info)
			s.afterCollapse(info)
		case FailedIsolatedTriangle:
			if m.TriangleCount() > 2 && s.removeIsolated(eid) {
				st.IsolatedRemoved++
			}
		}
	}
	s.reproject()
	s.debugCheck(1)
	log.Debug("simplification done",
		zap.Stringer("mode", mode),
		zap.Int("triangles_before", startTris),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("iterations", st.Iterations),
		zap.Int("collapses", st.Collapses),
		zap.Duration("elapsed", time.Since(start)),
	)
	return st, nil
}

// reached is the loop termination test. The queue must not be empty in
// max error mode.
func (s *Simplifier[Q]) reached(mode simplifyMode, count int, maxErr float64) bool {
	m := s.Mesh
	switch mode {
	case vertexCountMode:
		return m.VertexCount() <= count
	case maxErrorMode:
		return s.queue.Len() > 0 && s.queue.FirstPriority() > float32(maxErr)
	}
	return m.TriangleCount() <= count
}

// reproject moves every movable vertex onto its constraint target, or the
// global target, after a pass in AfterRefinement mode.
func (s *Simplifier[Q]) reproject() {
	if s.Config.ProjectionMode != AfterRefinement {
		return
	}
	m := s.Mesh
	for vid := 0; vid < m.MaxVertexID(); vid++ {
		if !m.IsVertex(vid) {
			continue
		}
		c := s.vertexConstraint(vid)
		if !c.CanMove() {
			continue
		}
		target := s.Target
		if c.Target != nil {
			target = c.Target
		}
		if target != nil {
			m.SetVertex(vid, target.Project(m.Vertex(vid), vid))
		}
	}
}
