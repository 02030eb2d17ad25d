// Package dmesh implements a dynamic indexed triangle mesh with an explicit
// edge table. Element ids are small stable integers: deleted ids are
// recycled through free lists, so callers may size dense side tables by
// MaxVertexID, MaxTriangleID and MaxEdgeID.
package dmesh

import (
	"errors"
	"fmt"

	"github.com/soypat/remesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// InvalidID marks an absent vertex, triangle or edge.
const InvalidID = -1

var (
	ErrInvalidVertex        = errors.New("dmesh: invalid vertex")
	ErrNotATriangle         = errors.New("dmesh: not a triangle")
	ErrDegenerateTriangle   = errors.New("dmesh: triangle repeats a vertex")
	ErrDuplicateTriangle    = errors.New("dmesh: duplicate triangle")
	ErrNonManifold          = errors.New("dmesh: edge already has two triangles")
	ErrNotAnEdge            = errors.New("dmesh: not an edge")
	ErrInvalidNeighbourhood = errors.New("dmesh: collapse would create an invalid neighbourhood")
	ErrIsolatedTriangle     = errors.New("dmesh: edge belongs to an isolated triangle")
	ErrCollapseTetrahedron  = errors.New("dmesh: collapse of a tetrahedron")
)

// Edge holds the two vertices of an edge, lower id first, and its incident
// triangles. T[1] is InvalidID for boundary edges.
type Edge struct {
	V [2]int
	T [2]int
}

// Other returns the edge vertex that is not v.
func (e Edge) Other(v int) int {
	if e.V[0] == v {
		return e.V[1]
	}
	return e.V[0]
}

// IsBoundary reports whether the edge has a single triangle.
func (e Edge) IsBoundary() bool { return e.T[1] == InvalidID }

type Mesh struct {
	vertices    []r3.Vec
	vertexLive  []bool
	vertexEdges [][]int
	triangles   [][3]int // [0] is InvalidID for deleted triangles.
	triEdges    [][3]int // triEdges[t][j] joins triangles[t][j] and triangles[t][(j+1)%3].
	edges       []Edge   // V[0] is InvalidID for deleted edges.

	freeVertices  []int
	freeTriangles []int
	freeEdges     []int
	nv, nt, ne    int

	groups    []int
	materials []int
	uvs       *Overlay
	normals   *Overlay
}

// New returns an empty mesh.
func New() *Mesh { return &Mesh{} }

// NewFromIndexed builds a mesh from a vertex list and triangle indices.
func NewFromIndexed(vertices []r3.Vec, triangles [][3]int) (*Mesh, error) {
	m := &Mesh{}
	for _, v := range vertices {
		m.AppendVertex(v)
	}
	for i, tri := range triangles {
		if _, err := m.AppendTriangle(tri[0], tri[1], tri[2]); err != nil {
			return nil, &TriangleError{Index: i, Tri: tri, Err: err}
		}
	}
	return m, nil
}

// TriangleError reports which input triangle could not be appended.
type TriangleError struct {
	Index int
	Tri   [3]int
	Err   error
}

func (e *TriangleError) Error() string {
	return fmt.Sprintf("triangle %d %v: %v", e.Index, e.Tri, e.Err)
}

func (e *TriangleError) Unwrap() error { return e.Err }

func (m *Mesh) VertexCount() int   { return m.nv }
func (m *Mesh) TriangleCount() int { return m.nt }
func (m *Mesh) EdgeCount() int     { return m.ne }

// MaxVertexID is one past the largest vertex id ever allocated.
func (m *Mesh) MaxVertexID() int   { return len(m.vertices) }
func (m *Mesh) MaxTriangleID() int { return len(m.triangles) }
func (m *Mesh) MaxEdgeID() int     { return len(m.edges) }

func (m *Mesh) IsVertex(vid int) bool {
	return vid >= 0 && vid < len(m.vertices) && m.vertexLive[vid]
}

func (m *Mesh) IsTriangle(tid int) bool {
	return tid >= 0 && tid < len(m.triangles) && m.triangles[tid][0] != InvalidID
}

func (m *Mesh) IsEdge(eid int) bool {
	return eid >= 0 && eid < len(m.edges) && m.edges[eid].V[0] != InvalidID
}

// Vertex returns the position of vid.
func (m *Mesh) Vertex(vid int) r3.Vec { return m.vertices[vid] }

// SetVertex sets the position of vid.
func (m *Mesh) SetVertex(vid int, p r3.Vec) {
	if !m.IsVertex(vid) {
		panic("dmesh: SetVertex on invalid vertex")
	}
	m.vertices[vid] = p
}

// Triangle returns the vertex ids of tid.
func (m *Mesh) Triangle(tid int) [3]int { return m.triangles[tid] }

// TriangleEdges returns the edge ids of tid, edge j joining vertex j and j+1.
func (m *Mesh) TriangleEdges(tid int) [3]int { return m.triEdges[tid] }

// Edge returns the vertices and triangles of eid.
func (m *Mesh) Edge(eid int) Edge { return m.edges[eid] }

// TrianglePositions returns the three corner positions of tid.
func (m *Mesh) TrianglePositions(tid int) (a, b, c r3.Vec) {
	t := m.triangles[tid]
	return m.vertices[t[0]], m.vertices[t[1]], m.vertices[t[2]]
}

// TriangleNormal returns the unit normal of tid, zero if degenerate.
func (m *Mesh) TriangleNormal(tid int) r3.Vec {
	a, b, c := m.TrianglePositions(tid)
	return d3.Normal(a, b, c)
}

// TriangleArea returns the area of tid.
func (m *Mesh) TriangleArea(tid int) float64 {
	a, b, c := m.TrianglePositions(tid)
	return d3.Area(a, b, c)
}

// TriangleCentroid returns the centroid of tid.
func (m *Mesh) TriangleCentroid(tid int) r3.Vec {
	a, b, c := m.TrianglePositions(tid)
	return d3.Centroid(a, b, c)
}

// FindEdge returns the edge joining a and b or InvalidID.
func (m *Mesh) FindEdge(a, b int) int {
	if !m.IsVertex(a) || !m.IsVertex(b) {
		return InvalidID
	}
	if len(m.vertexEdges[b]) < len(m.vertexEdges[a]) {
		a, b = b, a
	}
	for _, eid := range m.vertexEdges[a] {
		if m.edges[eid].Other(a) == b {
			return eid
		}
	}
	return InvalidID
}

// FindTriangle returns the triangle with vertices a, b and c in any order,
// or InvalidID.
func (m *Mesh) FindTriangle(a, b, c int) int {
	eid := m.FindEdge(a, b)
	if eid == InvalidID {
		return InvalidID
	}
	for _, tid := range m.edges[eid].T {
		if tid != InvalidID && triangleContains(m.triangles[tid], c) {
			return tid
		}
	}
	return InvalidID
}

// OppositeVertex returns the vertex of tid that is not on edge (a,b).
func (m *Mesh) OppositeVertex(tid, a, b int) int {
	for _, v := range m.triangles[tid] {
		if v != a && v != b {
			return v
		}
	}
	return InvalidID
}

// EdgeOpposingVertices returns the vertices opposite of eid in each of its
// triangles. The second is InvalidID for boundary edges.
func (m *Mesh) EdgeOpposingVertices(eid int) (c, d int) {
	e := m.edges[eid]
	c, d = InvalidID, InvalidID
	if e.T[0] != InvalidID {
		c = m.OppositeVertex(e.T[0], e.V[0], e.V[1])
	}
	if e.T[1] != InvalidID {
		d = m.OppositeVertex(e.T[1], e.V[0], e.V[1])
	}
	return c, d
}

// VertexEdges returns the edges touching vid. The returned slice is owned by
// the mesh and is only valid until the next mutation.
func (m *Mesh) VertexEdges(vid int) []int { return m.vertexEdges[vid] }

// VertexDegree returns the number of edges touching vid.
func (m *Mesh) VertexDegree(vid int) int { return len(m.vertexEdges[vid]) }

// VertexTriangles appends the unique triangles touching vid to dst.
func (m *Mesh) VertexTriangles(vid int, dst []int) []int {
	start := len(dst)
	for _, eid := range m.vertexEdges[vid] {
		for _, tid := range m.edges[eid].T {
			if tid == InvalidID || containsInt(dst[start:], tid) {
				continue
			}
			dst = append(dst, tid)
		}
	}
	return dst
}

// VertexNeighbors appends the vertices sharing an edge with vid to dst.
func (m *Mesh) VertexNeighbors(vid int, dst []int) []int {
	for _, eid := range m.vertexEdges[vid] {
		dst = append(dst, m.edges[eid].Other(vid))
	}
	return dst
}

func (m *Mesh) IsBoundaryEdge(eid int) bool { return m.edges[eid].T[1] == InvalidID }

func (m *Mesh) IsBoundaryVertex(vid int) bool {
	for _, eid := range m.vertexEdges[vid] {
		if m.edges[eid].T[1] == InvalidID {
			return true
		}
	}
	return false
}

// IsClosed reports whether the mesh has no boundary edges.
func (m *Mesh) IsClosed() bool {
	for eid := range m.edges {
		if m.IsEdge(eid) && m.IsBoundaryEdge(eid) {
			return false
		}
	}
	return true
}

// Bounds returns the bounding box of live vertices.
func (m *Mesh) Bounds() d3.Box {
	bb := d3.EmptyBox()
	for vid, p := range m.vertices {
		if m.vertexLive[vid] {
			bb = bb.Include(p)
		}
	}
	return bb
}

// Triangles returns the geometry of every live triangle.
func (m *Mesh) Triangles() []r3.Triangle {
	out := make([]r3.Triangle, 0, m.nt)
	for _, t := range m.triangles {
		if t[0] == InvalidID {
			continue
		}
		out = append(out, r3.Triangle{m.vertices[t[0]], m.vertices[t[1]], m.vertices[t[2]]})
	}
	return out
}

// Indexed returns a compacted vertex list and triangle indices into it.
func (m *Mesh) Indexed() (vertices []r3.Vec, triangles [][3]int) {
	remap := make([]int, len(m.vertices))
	for vid := range m.vertices {
		remap[vid] = InvalidID
		if m.vertexLive[vid] {
			remap[vid] = len(vertices)
			vertices = append(vertices, m.vertices[vid])
		}
	}
	triangles = make([][3]int, 0, m.nt)
	for _, t := range m.triangles {
		if t[0] == InvalidID {
			continue
		}
		triangles = append(triangles, [3]int{remap[t[0]], remap[t[1]], remap[t[2]]})
	}
	return vertices, triangles
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		vertices:      append([]r3.Vec(nil), m.vertices...),
		vertexLive:    append([]bool(nil), m.vertexLive...),
		vertexEdges:   make([][]int, len(m.vertexEdges)),
		triangles:     append([][3]int(nil), m.triangles...),
		triEdges:      append([][3]int(nil), m.triEdges...),
		edges:         append([]Edge(nil), m.edges...),
		freeVertices:  append([]int(nil), m.freeVertices...),
		freeTriangles: append([]int(nil), m.freeTriangles...),
		freeEdges:     append([]int(nil), m.freeEdges...),
		nv:            m.nv,
		nt:            m.nt,
		ne:            m.ne,
	}
	for i, l := range m.vertexEdges {
		c.vertexEdges[i] = append([]int(nil), l...)
	}
	if m.groups != nil {
		c.groups = append([]int(nil), m.groups...)
	}
	if m.materials != nil {
		c.materials = append([]int(nil), m.materials...)
	}
	if m.uvs != nil {
		c.uvs = m.uvs.clone(c)
	}
	if m.normals != nil {
		c.normals = m.normals.clone(c)
	}
	return c
}

func triangleContains(t [3]int, v int) bool {
	return t[0] == v || t[1] == v || t[2] == v
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func removeInt(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			last := len(s) - 1
			s[i] = s[last]
			return s[:last]
		}
	}
	return s
}
