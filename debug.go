package remesh

import (
	"fmt"
	"math"

	"github.com/soypat/remesh/constraint"
	"github.com/soypat/remesh/internal/d3"
)

// targetTolerance is the distance a fixed vertex may drift from its target.
const targetTolerance = 1e-6

func (s *Simplifier[Q]) debugCheck(level int) {
	if s.Config.DebugCheckLevel < level {
		return
	}
	if err := s.Mesh.CheckValidity(); err != nil {
		panic("remesh: " + err.Error())
	}
	if err := s.CheckConstraints(); err != nil {
		panic(err.Error())
	}
}

// CheckConstraints verifies that constraints only reference live elements
// and that fixed vertices with a target lie on it.
func (s *Simplifier[Q]) CheckConstraints() (err error) {
	cs := s.Constraints
	if cs == nil {
		return nil
	}
	m := s.Mesh
	cs.VertexConstraints(func(vid int, c constraint.VertexConstraint) bool {
		if !m.IsVertex(vid) {
			err = fmt.Errorf("remesh: constraint on deleted vertex %d", vid)
			return false
		}
		if c.Fixed && c.Target != nil {
			p := m.Vertex(vid)
			if d2 := d3.Dist2(p, c.Target.Project(p, vid)); d2 > targetTolerance*targetTolerance {
				err = fmt.Errorf("remesh: fixed vertex %d is %g off its target", vid, math.Sqrt(d2))
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	cs.EdgeConstraints(func(eid int, _ constraint.EdgeConstraint) bool {
		if !m.IsEdge(eid) {
			err = fmt.Errorf("remesh: constraint on deleted edge %d", eid)
			return false
		}
		return true
	})
	return err
}
