package dmesh

import "gonum.org/v1/gonum/spatial/r3"

// AppendVertex adds a vertex and returns its id. Deleted ids are reused.
func (m *Mesh) AppendVertex(p r3.Vec) int {
	m.nv++
	if n := len(m.freeVertices); n > 0 {
		vid := m.freeVertices[n-1]
		m.freeVertices = m.freeVertices[:n-1]
		m.vertices[vid] = p
		m.vertexLive[vid] = true
		m.vertexEdges[vid] = m.vertexEdges[vid][:0]
		return vid
	}
	m.vertices = append(m.vertices, p)
	m.vertexLive = append(m.vertexLive, true)
	m.vertexEdges = append(m.vertexEdges, make([]int, 0, 6))
	return len(m.vertices) - 1
}

// AppendTriangle adds triangle (a,b,c) and returns its id. Missing edges are
// created. Triangles that would give an edge a third triangle are rejected.
func (m *Mesh) AppendTriangle(a, b, c int) (int, error) {
	if !m.IsVertex(a) || !m.IsVertex(b) || !m.IsVertex(c) {
		return InvalidID, ErrInvalidVertex
	}
	if a == b || b == c || c == a {
		return InvalidID, ErrDegenerateTriangle
	}
	tri := [3]int{a, b, c}
	var existing [3]int
	for j := 0; j < 3; j++ {
		eid := m.FindEdge(tri[j], tri[(j+1)%3])
		existing[j] = eid
		if eid == InvalidID {
			continue
		}
		e := m.edges[eid]
		if e.T[1] != InvalidID {
			return InvalidID, ErrNonManifold
		}
		if triangleContains(m.triangles[e.T[0]], tri[(j+2)%3]) {
			return InvalidID, ErrDuplicateTriangle
		}
	}

	tid := m.allocTriangle(tri)
	for j := 0; j < 3; j++ {
		eid := existing[j]
		if eid == InvalidID {
			eid = m.allocEdge(tri[j], tri[(j+1)%3], tid)
		} else {
			m.edges[eid].T[1] = tid
		}
		m.triEdges[tid][j] = eid
	}
	return tid, nil
}

// RemoveTriangle deletes tid. Edges left without triangles are deleted and,
// when removeIsolatedVertices is set, so are vertices left without edges.
func (m *Mesh) RemoveTriangle(tid int, removeIsolatedVertices bool) error {
	if !m.IsTriangle(tid) {
		return ErrNotATriangle
	}
	tri := m.triangles[tid]
	for _, eid := range m.triEdges[tid] {
		m.detachTriangleFromEdge(eid, tid)
		if m.edges[eid].T[0] == InvalidID {
			m.freeEdge(eid)
		}
	}
	m.freeTriangle(tid)
	if removeIsolatedVertices {
		for _, vid := range tri {
			if len(m.vertexEdges[vid]) == 0 {
				m.freeVertex(vid)
			}
		}
	}
	return nil
}

// RemoveVertex deletes an isolated vertex (one without edges).
func (m *Mesh) RemoveVertex(vid int) error {
	if !m.IsVertex(vid) || len(m.vertexEdges[vid]) != 0 {
		return ErrInvalidVertex
	}
	m.freeVertex(vid)
	return nil
}

func (m *Mesh) allocTriangle(tri [3]int) int {
	m.nt++
	var tid int
	if n := len(m.freeTriangles); n > 0 {
		tid = m.freeTriangles[n-1]
		m.freeTriangles = m.freeTriangles[:n-1]
		m.triangles[tid] = tri
		m.triEdges[tid] = [3]int{InvalidID, InvalidID, InvalidID}
	} else {
		tid = len(m.triangles)
		m.triangles = append(m.triangles, tri)
		m.triEdges = append(m.triEdges, [3]int{InvalidID, InvalidID, InvalidID})
		if m.groups != nil {
			m.groups = append(m.groups, 0)
		}
		if m.materials != nil {
			m.materials = append(m.materials, 0)
		}
	}
	for _, o := range m.overlays() {
		o.growTriangles(tid)
	}
	return tid
}

func (m *Mesh) freeTriangle(tid int) {
	for _, o := range m.overlays() {
		o.clearTriangle(tid)
	}
	m.triangles[tid] = [3]int{InvalidID, InvalidID, InvalidID}
	m.triEdges[tid] = [3]int{InvalidID, InvalidID, InvalidID}
	m.freeTriangles = append(m.freeTriangles, tid)
	m.nt--
}

func (m *Mesh) allocEdge(a, b, tid int) int {
	if a > b {
		a, b = b, a
	}
	e := Edge{V: [2]int{a, b}, T: [2]int{tid, InvalidID}}
	m.ne++
	var eid int
	if n := len(m.freeEdges); n > 0 {
		eid = m.freeEdges[n-1]
		m.freeEdges = m.freeEdges[:n-1]
		m.edges[eid] = e
	} else {
		eid = len(m.edges)
		m.edges = append(m.edges, e)
	}
	m.vertexEdges[a] = append(m.vertexEdges[a], eid)
	m.vertexEdges[b] = append(m.vertexEdges[b], eid)
	return eid
}

// freeEdge deletes eid and unlinks it from both of its vertices.
func (m *Mesh) freeEdge(eid int) {
	e := m.edges[eid]
	m.vertexEdges[e.V[0]] = removeInt(m.vertexEdges[e.V[0]], eid)
	m.vertexEdges[e.V[1]] = removeInt(m.vertexEdges[e.V[1]], eid)
	m.edges[eid] = Edge{V: [2]int{InvalidID, InvalidID}, T: [2]int{InvalidID, InvalidID}}
	m.freeEdges = append(m.freeEdges, eid)
	m.ne--
}

func (m *Mesh) freeVertex(vid int) {
	m.vertexLive[vid] = false
	m.vertexEdges[vid] = m.vertexEdges[vid][:0]
	m.freeVertices = append(m.freeVertices, vid)
	m.nv--
}

// detachTriangleFromEdge removes tid from the triangle slots of eid keeping
// the first slot occupied whenever the edge still has a triangle.
func (m *Mesh) detachTriangleFromEdge(eid, tid int) {
	m.replaceEdgeTriangle(eid, tid, InvalidID)
}

func (m *Mesh) replaceEdgeTriangle(eid, old, tid int) {
	e := &m.edges[eid]
	switch old {
	case e.T[0]:
		e.T[0] = tid
	case e.T[1]:
		e.T[1] = tid
	default:
		panic("bug: triangle not on edge")
	}
	if e.T[0] == InvalidID {
		e.T[0], e.T[1] = e.T[1], InvalidID
	}
}

// EnableGroups allocates per-triangle polygroup storage, all zero.
func (m *Mesh) EnableGroups() {
	if m.groups == nil {
		m.groups = make([]int, len(m.triangles))
	}
}

func (m *Mesh) HasGroups() bool { return m.groups != nil }

// TriangleGroup returns the polygroup of tid, zero when groups are not enabled.
func (m *Mesh) TriangleGroup(tid int) int {
	if m.groups == nil {
		return 0
	}
	return m.groups[tid]
}

func (m *Mesh) SetTriangleGroup(tid, group int) {
	m.EnableGroups()
	m.groups[tid] = group
}

// EnableMaterials allocates per-triangle material id storage, all zero.
func (m *Mesh) EnableMaterials() {
	if m.materials == nil {
		m.materials = make([]int, len(m.triangles))
	}
}

func (m *Mesh) HasMaterials() bool { return m.materials != nil }

func (m *Mesh) TriangleMaterial(tid int) int {
	if m.materials == nil {
		return 0
	}
	return m.materials[tid]
}

func (m *Mesh) SetTriangleMaterial(tid, material int) {
	m.EnableMaterials()
	m.materials[tid] = material
}

// IsGroupBoundaryEdge reports whether eid separates two polygroups.
func (m *Mesh) IsGroupBoundaryEdge(eid int) bool {
	e := m.edges[eid]
	if m.groups == nil || e.T[1] == InvalidID {
		return false
	}
	return m.groups[e.T[0]] != m.groups[e.T[1]]
}

// IsMaterialBoundaryEdge reports whether eid separates two material ids.
func (m *Mesh) IsMaterialBoundaryEdge(eid int) bool {
	e := m.edges[eid]
	if m.materials == nil || e.T[1] == InvalidID {
		return false
	}
	return m.materials[e.T[0]] != m.materials[e.T[1]]
}

// HasAttributes reports whether any per-triangle attribute or overlay is set.
func (m *Mesh) HasAttributes() bool {
	return m.groups != nil || m.materials != nil || m.uvs != nil || m.normals != nil
}
