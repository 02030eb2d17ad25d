package remesh

import (
	"github.com/soypat/remesh/dmesh"
	"github.com/soypat/remesh/internal/d3"
	"github.com/soypat/remesh/quadric"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quadric is the capability the simplifier needs from an error quadric.
// The zero value of the implementing type must be the additive identity.
type Quadric[Q any] interface {
	// Add returns the receiver plus w times q.
	Add(w float64, q Q) Q
	// AddError folds in a weighted geometric quadric.
	AddError(w float64, e quadric.Error) Q
	Evaluate(p r3.Vec) float64
	OptimalPoint() (r3.Vec, bool)
}

// Metric builds face quadrics and reacts to collapses for a quadric type.
type Metric[Q Quadric[Q]] interface {
	// FaceQuadric returns the unweighted quadric of triangle tid and its area.
	FaceQuadric(m *dmesh.Mesh, tid int) (Q, float64)
	// OnCollapse is called after a collapse with the updated quadric of the
	// kept vertex.
	OnCollapse(m *dmesh.Mesh, info dmesh.CollapseInfo, kept Q)
}

// PlaneMetric is the plain point to plane quadric metric.
type PlaneMetric struct{}

func (PlaneMetric) FaceQuadric(m *dmesh.Mesh, tid int) (quadric.Error, float64) {
	a, b, c := m.TrianglePositions(tid)
	return quadric.FromTriangle(a, b, c)
}

func (PlaneMetric) OnCollapse(*dmesh.Mesh, dmesh.CollapseInfo, quadric.Error) {}

// NormalMetric is the normal aware quadric metric. Vertex normals are read
// from the normal overlay when present, otherwise face normals are used.
// After a collapse the kept vertex's normal element is set to the optimal
// normal of its quadric unless the vertex lies on a normal seam.
type NormalMetric struct {
	Weight float64
}

func (nm NormalMetric) FaceQuadric(m *dmesh.Mesh, tid int) (quadric.Attr, float64) {
	a, b, c := m.TrianglePositions(tid)
	fn := d3.Normal(a, b, c)
	normals := [3]r3.Vec{fn, fn, fn}
	if ov := m.Normals(); ov != nil && ov.IsSetTriangle(tid) {
		for i, elem := range ov.TriangleElements(tid) {
			if n := d3.SafeUnit(ov.Vec3(elem)); n != (r3.Vec{}) {
				normals[i] = n
			}
		}
	}
	return quadric.FromTriangleAttributes([3]r3.Vec{a, b, c}, normals, nm.Weight)
}

func (nm NormalMetric) OnCollapse(m *dmesh.Mesh, info dmesh.CollapseInfo, kept quadric.Attr) {
	ov := m.Normals()
	if ov == nil {
		return
	}
	keep := info.KeptVertex
	n, ok := kept.OptimalAttributes(m.Vertex(keep))
	if !ok {
		return
	}
	n = d3.SafeUnit(n)
	if n == (r3.Vec{}) {
		return
	}
	elem := dmesh.InvalidID
	for _, tid := range m.VertexTriangles(keep, nil) {
		if !ov.IsSetTriangle(tid) {
			continue
		}
		tri, elems := m.Triangle(tid), ov.TriangleElements(tid)
		for i, v := range tri {
			if v != keep {
				continue
			}
			if elem != dmesh.InvalidID && elems[i] != elem {
				return // seam vertex
			}
			elem = elems[i]
		}
	}
	if elem != dmesh.InvalidID {
		ov.SetElement(elem, n.X, n.Y, n.Z)
	}
}
