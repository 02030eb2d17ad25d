package remesh

import (
	"github.com/chewxy/math32"
	"github.com/soypat/remesh/dmesh"
	"github.com/soypat/remesh/internal/d3"
	"github.com/soypat/remesh/quadric"
	"gonum.org/v1/gonum/spatial/r3"
)

// computeEdge returns the collapse quadric of eid, its optimal point and
// queue priority. It only reads simplifier state.
func (s *Simplifier[Q]) computeEdge(eid int) (Q, r3.Vec, float32) {
	m := s.Mesh
	e := m.Edge(eid)
	a, b := e.V[0], e.V[1]
	q := s.vertQ[a].Add(1, s.vertQ[b])
	if !s.Config.RetainQuadricMemory {
		// Triangles on the edge appear in both vertex quadrics.
		for _, tid := range e.T {
			if tid != dmesh.InvalidID {
				q = q.Add(-s.triArea[tid], s.triQ[tid])
			}
		}
	}
	if s.hasSeam != nil {
		for _, v := range e.V {
			for _, ne := range m.VertexEdges(v) {
				if ne == eid && v == b {
					continue
				}
				if s.hasSeam[ne] {
					q = q.AddError(1, s.seamQ[ne])
				}
			}
		}
	}
	p := s.optimalPoint(eid, q, a, b)
	return q, p, priority(q.Evaluate(p))
}

// priority converts a quadric error to a finite queue key.
func priority(err float64) float32 {
	pr := float32(err)
	switch {
	case math32.IsNaN(pr), math32.IsInf(pr, 1):
		return math32.MaxFloat32
	case pr < 0:
		return 0
	}
	return pr
}

func (s *Simplifier[Q]) optimalPoint(eid int, q Q, a, b int) r3.Vec {
	m := s.Mesh
	pa, pb := m.Vertex(a), m.Vertex(b)
	if s.Config.PreserveBoundaryShape && s.haveBoundary {
		if m.IsBoundaryEdge(eid) {
			return d3.Midpoint(pa, pb)
		}
		ba, bb := s.boundaryVertex(a), s.boundaryVertex(b)
		if ba && !bb {
			return pa
		} else if bb && !ba {
			return pb
		}
	}
	switch s.Config.CollapseMode {
	case AverageVertexPosition:
		return s.project(d3.Midpoint(pa, pb), dmesh.InvalidID)
	case MinimalExistingVertexError:
		if q.Evaluate(pa) <= q.Evaluate(pb) {
			return pa
		}
		return pb
	}
	if p, ok := q.OptimalPoint(); ok {
		return s.project(p, dmesh.InvalidID)
	}
	best, bestErr := pa, q.Evaluate(pa)
	for _, p := range [2]r3.Vec{pb, d3.Midpoint(pa, pb)} {
		if err := q.Evaluate(p); err < bestErr {
			best, bestErr = p, err
		}
	}
	return best
}

// updateNeighborhood refreshes seam quadrics, vertex quadrics and queue
// entries around the kept vertex of a completed collapse.
func (s *Simplifier[Q]) updateNeighborhood(info dmesh.CollapseInfo) {
	m := s.Mesh
	keep, remove := info.KeptVertex, info.RemovedVertex
	for _, eid := range [3]int{info.CollapsedEdge, info.RemovedEdges[0], info.RemovedEdges[1]} {
		if eid != dmesh.InvalidID {
			s.queue.Remove(eid)
		}
	}
	if s.hasSeam != nil {
		s.updateSeams(info)
	}

	if s.Config.RetainQuadricMemory {
		s.vertQ[keep] = s.vertQ[keep].Add(1, s.vertQ[remove])
	} else {
		s.recomputeQuadrics(info)
	}
	var zero Q
	s.vertQ[remove] = zero
	for _, tid := range info.RemovedTriangles {
		if tid != dmesh.InvalidID {
			s.triQ[tid], s.triArea[tid] = zero, 0
		}
	}
	s.metric.OnCollapse(m, info, s.vertQ[keep])

	// Edge priorities fold in the seam quadrics of both endpoints, so a seam
	// change at keep reaches the edges of its neighbours.
	s.collectEdges(keep, !s.Config.RetainQuadricMemory || s.hasSeam != nil)
	for _, eid := range s.edges {
		s.refreshEdge(eid)
	}
}

func (s *Simplifier[Q]) updateSeams(info dmesh.CollapseInfo) {
	m := s.Mesh
	for i, re := range info.RemovedEdges {
		if re == dmesh.InvalidID {
			continue
		}
		if s.Constraints == nil && s.hasSeam[re] {
			s.hasSeam[info.KeptEdges[i]] = true
		}
		s.hasSeam[re], s.seamQ[re] = false, quadric.Error{}
	}
	s.hasSeam[info.CollapsedEdge], s.seamQ[info.CollapsedEdge] = false, quadric.Error{}
	// Seam quadrics depend on the normals of the triangles around the kept
	// vertex, so every edge of those triangles is rebuilt.
	s.tris = m.VertexTriangles(info.KeptVertex, s.tris[:0])
	for _, tid := range s.tris {
		for _, eid := range m.TriangleEdges(tid) {
			if s.Constraints != nil {
				s.hasSeam[eid] = s.Constraints.HasEdge(eid)
			}
			if s.hasSeam[eid] {
				s.seamQ[eid] = s.seamQuadric(eid)
			} else {
				s.seamQ[eid] = quadric.Error{}
			}
		}
	}
}

// recomputeQuadrics rebuilds the quadrics of the triangles around the kept
// vertex and carries the difference into their other vertices.
func (s *Simplifier[Q]) recomputeQuadrics(info dmesh.CollapseInfo) {
	m := s.Mesh
	keep := info.KeptVertex
	for i, tid := range info.RemovedTriangles {
		if tid == dmesh.InvalidID {
			continue
		}
		o := info.Opposing[i]
		s.vertQ[o] = s.vertQ[o].Add(-s.triArea[tid], s.triQ[tid])
	}
	var sum Q
	s.tris = m.VertexTriangles(keep, s.tris[:0])
	for _, tid := range s.tris {
		oldQ, oldArea := s.triQ[tid], s.triArea[tid]
		newQ, newArea := s.metric.FaceQuadric(m, tid)
		s.triQ[tid], s.triArea[tid] = newQ, newArea
		for _, v := range m.Triangle(tid) {
			if v != keep {
				s.vertQ[v] = s.vertQ[v].Add(-oldArea, oldQ).Add(newArea, newQ)
			}
		}
		sum = sum.Add(newArea, newQ)
	}
	s.vertQ[keep] = sum
}

// collectEdges fills s.edges with the edges of vid, and with twoRing the
// edges of its neighbours, each listed once in discovery order.
func (s *Simplifier[Q]) collectEdges(vid int, twoRing bool) {
	m := s.Mesh
	if n := m.MaxEdgeID(); len(s.mark) < n {
		s.mark = append(s.mark, make([]uint32, n-len(s.mark))...)
	}
	s.stamp++
	if s.stamp == 0 {
		clear(s.mark)
		s.stamp = 1
	}
	s.edges = s.edges[:0]
	add := func(eid int) {
		if s.mark[eid] != s.stamp {
			s.mark[eid] = s.stamp
			s.edges = append(s.edges, eid)
		}
	}
	for _, eid := range m.VertexEdges(vid) {
		add(eid)
	}
	if !twoRing {
		return
	}
	for _, eid := range m.VertexEdges(vid) {
		for _, ne := range m.VertexEdges(m.Edge(eid).Other(vid)) {
			add(ne)
		}
	}
}

func (s *Simplifier[Q]) refreshEdge(eid int) {
	q, p, prio := s.computeEdge(eid)
	s.edgeQ[eid] = edgeQuadric[Q]{q: q, p: p}
	if s.queue.Contains(eid) {
		s.queue.Update(eid, prio)
	} else {
		s.queue.Insert(eid, prio)
	}
}

// removeIsolated deletes the isolated triangle of eid and the elements it
// leaves unreferenced, keeping quadrics, constraints and the queue in sync.
func (s *Simplifier[Q]) removeIsolated(eid int) bool {
	m := s.Mesh
	tid := m.Edge(eid).T[0]
	tri, edges := m.Triangle(tid), m.TriangleEdges(tid)
	area, tq := s.triArea[tid], s.triQ[tid]
	if err := m.RemoveTriangle(tid, true); err != nil {
		return false
	}
	var zero Q
	s.triQ[tid], s.triArea[tid] = zero, 0
	for _, e := range edges {
		if m.IsEdge(e) {
			continue
		}
		s.queue.Remove(e)
		if s.Constraints != nil {
			s.Constraints.ClearEdge(e)
		}
		if s.hasSeam != nil {
			s.hasSeam[e], s.seamQ[e] = false, quadric.Error{}
		}
	}
	for _, v := range tri {
		if !m.IsVertex(v) {
			if s.Constraints != nil {
				s.Constraints.ClearVertex(v)
			}
			s.vertQ[v] = zero
			s.isBoundaryV[v] = false
			continue
		}
		if !s.Config.RetainQuadricMemory {
			s.vertQ[v] = s.vertQ[v].Add(-area, tq)
		}
		s.isBoundaryV[v] = true
		s.haveBoundary = true
	}
	for _, v := range tri {
		if !m.IsVertex(v) {
			continue
		}
		for _, e := range m.VertexEdges(v) {
			s.refreshEdge(e)
		}
	}
	return true
}
