package constraint

import "github.com/soypat/remesh/dmesh"

// Policy decides which mesh edges are constrained by ConstrainBoundaries and
// Reconstrain.
type Policy struct {
	Boundaries         bool
	UVSeams            bool
	NormalSeams        bool
	GroupBoundaries    bool
	MaterialBoundaries bool
	// Restrict is applied to matched edges. Zero means FullyConstrained.
	Restrict Restriction
	// PinVertices pins the vertices of matched edges.
	PinVertices bool
}

// DefaultPolicy constrains every boundary and seam kind and pins their vertices.
func DefaultPolicy() Policy {
	return Policy{
		Boundaries:         true,
		UVSeams:            true,
		NormalSeams:        true,
		GroupBoundaries:    true,
		MaterialBoundaries: true,
		Restrict:           FullyConstrained,
		PinVertices:        true,
	}
}

// Matches reports whether eid is one of the edge kinds selected by p.
func (p *Policy) Matches(m *dmesh.Mesh, eid int) bool {
	return p.Boundaries && m.IsBoundaryEdge(eid) ||
		p.UVSeams && m.IsUVSeamEdge(eid) ||
		p.NormalSeams && m.IsNormalSeamEdge(eid) ||
		p.GroupBoundaries && m.IsGroupBoundaryEdge(eid) ||
		p.MaterialBoundaries && m.IsMaterialBoundaryEdge(eid)
}

func (p *Policy) edgeConstraint() EdgeConstraint {
	r := p.Restrict
	if r == 0 {
		r = FullyConstrained
	}
	return EdgeConstraint{Restrict: r}
}

// ConstrainBoundaries returns a set constraining every edge of m matched by
// policy. The set keeps the policy so Reconstrain can update it after
// topology changes.
func ConstrainBoundaries(m *dmesh.Mesh, policy Policy) *Set {
	s := NewSet(m.MaxVertexID(), m.MaxEdgeID())
	s.policy = &policy
	for eid := 0; eid < m.MaxEdgeID(); eid++ {
		if m.IsEdge(eid) {
			s.apply(m, eid)
		}
	}
	return s
}

// Reconstrain re-derives the constraint of eid from the set's policy. Edges
// that no longer match lose a policy derived constraint; user constraints
// set with a different value are left alone. It is a no-op without a policy.
func (s *Set) Reconstrain(m *dmesh.Mesh, eid int) {
	if s.policy == nil || !m.IsEdge(eid) {
		return
	}
	if s.apply(m, eid) {
		return
	}
	if s.HasEdge(eid) && s.Edge(eid) == s.policy.edgeConstraint() {
		s.ClearEdge(eid)
	}
}

func (s *Set) apply(m *dmesh.Mesh, eid int) bool {
	p := s.policy
	if !p.Matches(m, eid) {
		return false
	}
	s.SetEdge(eid, p.edgeConstraint())
	if p.PinVertices {
		e := m.Edge(eid)
		for _, vid := range e.V {
			if !s.Vertex(vid).Fixed {
				s.SetVertex(vid, Pinned())
			}
		}
	}
	return true
}
