// Package constraint holds per-vertex and per-edge restrictions consulted by
// mesh editing operations, and utilities to derive them from mesh boundaries
// and attribute seams.
package constraint

import (
	"reflect"

	"gonum.org/v1/gonum/spatial/r3"
)

// InvalidSetID is the fixed set id of vertices that belong to no set.
const InvalidSetID = -1

// Target is a surface vertices can be projected onto. Implementations are
// compared by identity with SameTarget, so they should be pointer types.
type Target interface {
	Project(p r3.Vec, id int) r3.Vec
}

// SameTarget reports whether a and b are the same target. Targets of an
// uncomparable dynamic type, such as funcs, are never the same as any other.
func SameTarget(a, b Target) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// VertexConstraint restricts what edits may do to a vertex.
type VertexConstraint struct {
	// Fixed vertices may not be removed.
	Fixed bool
	// Movable allows a fixed vertex to change position, typically sliding
	// along Target.
	Movable bool
	// FixedSetID groups fixed vertices. InvalidSetID for none.
	FixedSetID int
	// Target, when set, is the surface the vertex must stay on.
	Target Target
}

// Unconstrained returns a constraint that allows any edit.
func Unconstrained() VertexConstraint {
	return VertexConstraint{FixedSetID: InvalidSetID}
}

// Pinned returns a constraint for a vertex that can neither move nor be removed.
func Pinned() VertexConstraint {
	return VertexConstraint{Fixed: true, FixedSetID: InvalidSetID}
}

// PinnedToSet is Pinned with a fixed set id.
func PinnedToSet(setID int) VertexConstraint {
	return VertexConstraint{Fixed: true, FixedSetID: setID}
}

// Sliding returns a constraint for a vertex that may not be removed but may
// move along target.
func Sliding(target Target) VertexConstraint {
	return VertexConstraint{Fixed: true, Movable: true, FixedSetID: InvalidSetID, Target: target}
}

// Projected returns a constraint for a removable vertex that must stay on target.
func Projected(target Target) VertexConstraint {
	return VertexConstraint{Movable: true, FixedSetID: InvalidSetID, Target: target}
}

// IsUnconstrained reports whether the constraint imposes nothing.
func (c VertexConstraint) IsUnconstrained() bool {
	return !c.Fixed && c.Target == nil
}

// CanMove reports whether the vertex position may change.
func (c VertexConstraint) CanMove() bool {
	return !c.Fixed || c.Movable
}

// Restriction is a bit set of forbidden edge operations.
type Restriction uint8

const (
	NoCollapse Restriction = 1 << iota
	NoFlip
	NoSplit

	// FullyConstrained forbids every edge modification.
	FullyConstrained = NoCollapse | NoFlip | NoSplit
)

// EdgeConstraint restricts what edits may do to an edge.
type EdgeConstraint struct {
	Restrict Restriction
	Target   Target
}

// FullyConstrainedEdge returns a constraint forbidding all edge edits.
func FullyConstrainedEdge() EdgeConstraint { return EdgeConstraint{Restrict: FullyConstrained} }

func (c EdgeConstraint) CanCollapse() bool { return c.Restrict&NoCollapse == 0 }
func (c EdgeConstraint) CanFlip() bool     { return c.Restrict&NoFlip == 0 }
func (c EdgeConstraint) CanSplit() bool    { return c.Restrict&NoSplit == 0 }

// NoModifications reports whether every operation is forbidden.
func (c EdgeConstraint) NoModifications() bool { return c.Restrict == FullyConstrained }

func (c EdgeConstraint) IsUnconstrained() bool { return c.Restrict == 0 && c.Target == nil }

// Set stores constraints in dense arrays indexed by mesh element id.
// The zero value is an empty set ready to use.
type Set struct {
	vertices  []VertexConstraint
	hasVertex []bool
	edges     []EdgeConstraint
	hasEdge   []bool
	nv, ne    int
	policy    *Policy
}

// NewSet returns an empty set sized for the given id ranges.
func NewSet(maxVertexID, maxEdgeID int) *Set {
	return &Set{
		vertices:  make([]VertexConstraint, maxVertexID),
		hasVertex: make([]bool, maxVertexID),
		edges:     make([]EdgeConstraint, maxEdgeID),
		hasEdge:   make([]bool, maxEdgeID),
	}
}

// Vertex returns the constraint of vid, Unconstrained if none is set.
func (s *Set) Vertex(vid int) VertexConstraint {
	if vid < 0 || vid >= len(s.hasVertex) || !s.hasVertex[vid] {
		return Unconstrained()
	}
	return s.vertices[vid]
}

func (s *Set) HasVertex(vid int) bool {
	return vid >= 0 && vid < len(s.hasVertex) && s.hasVertex[vid]
}

func (s *Set) SetVertex(vid int, c VertexConstraint) {
	for len(s.vertices) <= vid {
		s.vertices = append(s.vertices, Unconstrained())
		s.hasVertex = append(s.hasVertex, false)
	}
	if !s.hasVertex[vid] {
		s.nv++
	}
	s.vertices[vid] = c
	s.hasVertex[vid] = true
}

func (s *Set) ClearVertex(vid int) {
	if s.HasVertex(vid) {
		s.hasVertex[vid] = false
		s.vertices[vid] = Unconstrained()
		s.nv--
	}
}

// Edge returns the constraint of eid, unconstrained if none is set.
func (s *Set) Edge(eid int) EdgeConstraint {
	if eid < 0 || eid >= len(s.hasEdge) || !s.hasEdge[eid] {
		return EdgeConstraint{}
	}
	return s.edges[eid]
}

func (s *Set) HasEdge(eid int) bool {
	return eid >= 0 && eid < len(s.hasEdge) && s.hasEdge[eid]
}

func (s *Set) SetEdge(eid int, c EdgeConstraint) {
	for len(s.edges) <= eid {
		s.edges = append(s.edges, EdgeConstraint{})
		s.hasEdge = append(s.hasEdge, false)
	}
	if !s.hasEdge[eid] {
		s.ne++
	}
	s.edges[eid] = c
	s.hasEdge[eid] = true
}

func (s *Set) ClearEdge(eid int) {
	if s.HasEdge(eid) {
		s.hasEdge[eid] = false
		s.edges[eid] = EdgeConstraint{}
		s.ne--
	}
}

// VertexCount returns the number of constrained vertices.
func (s *Set) VertexCount() int { return s.nv }

// EdgeCount returns the number of constrained edges.
func (s *Set) EdgeCount() int { return s.ne }

// VertexConstraints calls fn for every constrained vertex until fn returns false.
func (s *Set) VertexConstraints(fn func(vid int, c VertexConstraint) bool) {
	for vid, ok := range s.hasVertex {
		if ok && !fn(vid, s.vertices[vid]) {
			return
		}
	}
}

// EdgeConstraints calls fn for every constrained edge until fn returns false.
func (s *Set) EdgeConstraints(fn func(eid int, c EdgeConstraint) bool) {
	for eid, ok := range s.hasEdge {
		if ok && !fn(eid, s.edges[eid]) {
			return
		}
	}
}

// Policy returns the policy the set was derived with, or nil.
func (s *Set) Policy() *Policy { return s.policy }

// SetPolicy sets the policy used by Reconstrain.
func (s *Set) SetPolicy(p *Policy) { s.policy = p }
