package remesh

import (
	"errors"

	"github.com/soypat/remesh/constraint"
	"github.com/soypat/remesh/dmesh"
	"github.com/soypat/remesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// CollapseEdge tries to collapse eid with the surviving vertex placed at
// proposed. requireKeep, unless InvalidID, names the endpoint that must
// survive; it also suppresses the midpoint placement of fixed set collapses. Quadrics and the queue are not updated; the simplification
// passes do that themselves.
func (s *Simplifier[Q]) CollapseEdge(eid int, proposed r3.Vec, requireKeep int) (dmesh.CollapseInfo, Outcome) {
	var info dmesh.CollapseInfo
	m := s.Mesh
	if s.Constraints != nil && s.Constraints.HasEdge(eid) {
		if ec := s.Constraints.Edge(eid); ec.NoModifications() || !ec.CanCollapse() {
			return info, IgnoredEdgeIsFullyConstrained
		}
	}
	if eid < 0 || !m.IsEdge(eid) {
		return info, FailedNotAnEdge
	}
	e := m.Edge(eid)
	a, b := e.V[0], e.V[1]
	if s.maxEdgeLen2 > 0 && m.EdgeLength2(eid) > s.maxEdgeLen2 {
		return info, IgnoredEdgeTooLong
	}

	keep, midpoint, ok := s.resolveKeep(eid, a, b)
	if !ok {
		return info, IgnoredConstrained
	}
	if s.Config.PreserveBoundaryShape {
		ba, bb := s.boundaryVertex(a), s.boundaryVertex(b)
		if ba != bb {
			bkeep := a
			if bb {
				bkeep = b
			}
			if keep != dmesh.InvalidID && keep != bkeep {
				return info, IgnoredConstrained
			}
			keep, midpoint = bkeep, false
		}
	}
	if requireKeep != dmesh.InvalidID {
		if keep != dmesh.InvalidID && keep != requireKeep {
			return info, IgnoredConstrained
		}
		keep, midpoint = requireKeep, false
	}
	if keep == dmesh.InvalidID {
		keep = a
	}
	remove := e.Other(keep)
	if !s.Config.AllowSeamCollapse && !s.canCollapseEdge(eid, remove) {
		return info, IgnoredConstrained
	}

	pKeep, pRemove := m.Vertex(keep), m.Vertex(remove)
	kc := s.vertexConstraint(keep)
	var newPos r3.Vec
	switch {
	case midpoint:
		newPos = d3.Midpoint(pKeep, pRemove)
		if kc.Target != nil {
			newPos = kc.Target.Project(newPos, keep)
		}
	case !kc.CanMove():
		newPos = pKeep
	case kc.Target != nil:
		newPos = kc.Target.Project(proposed, keep)
	default:
		newPos = s.project(proposed, keep)
	}

	if s.Config.GeometricErrorCriteria == GeometricErrorPredictedPointToProjectionTarget && s.Target != nil {
		tol := s.Config.GeometricTolerance
		if d3.Dist2(newPos, s.Target.Project(newPos, keep)) > tol*tol {
			return info, IgnoredGeometricError
		}
	}

	t := d3.Clamp(d3.SegmentParam(newPos, pKeep, pRemove), 0, 1)
	if s.createsFlip(keep, remove, eid, newPos) || s.createsFlip(remove, keep, eid, newPos) {
		return info, IgnoredCreatesFlip
	}

	info, err := m.CollapseEdge(keep, remove, t)
	if err != nil {
		if errors.Is(err, dmesh.ErrIsolatedTriangle) {
			return info, FailedIsolatedTriangle
		}
		return info, FailedOpNotSuccessful
	}
	m.SetVertex(keep, newPos)
	s.updateConstraints(info)
	if keep < len(s.isBoundaryV) && remove < len(s.isBoundaryV) {
		s.isBoundaryV[keep] = s.isBoundaryV[keep] || s.isBoundaryV[remove]
		s.isBoundaryV[remove] = false
	}
	return info, Collapsed
}

// resolveKeep applies the vertex constraints of edge (a, b). keep is the
// endpoint that must survive, InvalidID if either may. midpoint reports a
// collapse between vertices of one fixed set.
func (s *Simplifier[Q]) resolveKeep(eid, a, b int) (keep int, midpoint, ok bool) {
	ca, cb := s.vertexConstraint(a), s.vertexConstraint(b)
	switch {
	case ca.IsUnconstrained() && cb.IsUnconstrained():
		return dmesh.InvalidID, false, true

	case ca.Fixed && cb.Fixed:
		if s.Config.AllowFixedSetCollapse && ca.FixedSetID >= 0 && ca.FixedSetID == cb.FixedSetID {
			return dmesh.InvalidID, true, true
		}
		return dmesh.InvalidID, false, false

	case ca.Fixed:
		if cb.Target != nil && !constraint.SameTarget(cb.Target, ca.Target) {
			return dmesh.InvalidID, false, false
		}
		return a, false, true

	case cb.Fixed:
		if ca.Target != nil && !constraint.SameTarget(ca.Target, cb.Target) {
			return dmesh.InvalidID, false, false
		}
		return b, false, true

	case ca.Target != nil && cb.Target == nil:
		return a, false, true

	case cb.Target != nil && ca.Target == nil:
		return b, false, true

	case constraint.SameTarget(ca.Target, cb.Target) && constraint.SameTarget(s.edgeConstraint(eid).Target, ca.Target):
		return dmesh.InvalidID, false, true
	}
	return dmesh.InvalidID, false, false
}

// canCollapseEdge rejects collapses that would destroy a constrained edge
// merged away with the removed vertex.
func (s *Simplifier[Q]) canCollapseEdge(eid, removed int) bool {
	if s.Constraints == nil {
		return true
	}
	m := s.Mesh
	c, d := m.EdgeOpposingVertices(eid)
	for _, o := range [2]int{c, d} {
		if o == dmesh.InvalidID {
			continue
		}
		if s.Constraints.HasEdge(m.FindEdge(removed, o)) {
			return false
		}
	}
	return true
}

// createsFlip reports whether moving vid to newPos, in the collapse of eid
// towards other, inverts or degenerates a surviving triangle or pinches the
// one-ring.
func (s *Simplifier[Q]) createsFlip(vid, other, eid int, newPos r3.Vec) bool {
	m := s.Mesh
	e := m.Edge(eid)
	s.tris = m.VertexTriangles(vid, s.tris[:0])
	for _, tid := range s.tris {
		if tid == e.T[0] || tid == e.T[1] {
			continue
		}
		tri := m.Triangle(tid)
		var (
			p [3]r3.Vec
			j int
		)
		for i, v := range tri {
			if v == other {
				return true
			}
			if v == vid {
				j = i
			}
			p[i] = m.Vertex(v)
		}
		old := d3.Normal(p[0], p[1], p[2])
		if old == (r3.Vec{}) {
			continue
		}
		p[j] = newPos
		if r3.Dot(old, d3.Normal(p[0], p[1], p[2])) <= s.Config.NormalFlipTolerance {
			return true
		}
	}
	return false
}

// updateConstraints carries constraints across a completed collapse.
func (s *Simplifier[Q]) updateConstraints(info dmesh.CollapseInfo) {
	cs := s.Constraints
	if cs == nil {
		return
	}
	cs.ClearEdge(info.CollapsedEdge)
	for i, re := range info.RemovedEdges {
		if re == dmesh.InvalidID || !cs.HasEdge(re) {
			continue
		}
		if ke := info.KeptEdges[i]; !cs.HasEdge(ke) {
			cs.SetEdge(ke, cs.Edge(re))
		}
		cs.ClearEdge(re)
	}
	cs.ClearVertex(info.RemovedVertex)
	if cs.Policy() != nil {
		for _, eid := range s.Mesh.VertexEdges(info.KeptVertex) {
			cs.Reconstrain(s.Mesh, eid)
		}
	}
}
