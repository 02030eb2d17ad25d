package dmesh

import "fmt"

// CheckValidity verifies the internal consistency of the mesh: edge and
// triangle references, one-ring lists and live element counts.
func (m *Mesh) CheckValidity() error {
	nv, nt, ne := 0, 0, 0
	for vid := range m.vertices {
		if !m.vertexLive[vid] {
			continue
		}
		nv++
		for _, eid := range m.vertexEdges[vid] {
			if !m.IsEdge(eid) {
				return fmt.Errorf("vertex %d references deleted edge %d", vid, eid)
			}
			e := m.edges[eid]
			if e.V[0] != vid && e.V[1] != vid {
				return fmt.Errorf("vertex %d lists edge %d %v not touching it", vid, eid, e.V)
			}
		}
	}
	for eid, e := range m.edges {
		if e.V[0] == InvalidID {
			continue
		}
		ne++
		if e.V[0] >= e.V[1] {
			return fmt.Errorf("edge %d vertices not ordered %v", eid, e.V)
		}
		for _, vid := range e.V {
			if !m.IsVertex(vid) {
				return fmt.Errorf("edge %d references deleted vertex %d", eid, vid)
			}
			if !containsInt(m.vertexEdges[vid], eid) {
				return fmt.Errorf("edge %d missing from one-ring of vertex %d", eid, vid)
			}
		}
		if e.T[0] == InvalidID {
			return fmt.Errorf("edge %d has no triangles", eid)
		}
		if e.T[0] == e.T[1] {
			return fmt.Errorf("edge %d references triangle %d twice", eid, e.T[0])
		}
		for _, tid := range e.T {
			if tid == InvalidID {
				continue
			}
			if !m.IsTriangle(tid) {
				return fmt.Errorf("edge %d references deleted triangle %d", eid, tid)
			}
			tri := m.triangles[tid]
			if !triangleContains(tri, e.V[0]) || !triangleContains(tri, e.V[1]) {
				return fmt.Errorf("edge %d %v not on triangle %d %v", eid, e.V, tid, tri)
			}
		}
	}
	for tid, tri := range m.triangles {
		if tri[0] == InvalidID {
			continue
		}
		nt++
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			return fmt.Errorf("triangle %d repeats a vertex %v", tid, tri)
		}
		for j := 0; j < 3; j++ {
			if !m.IsVertex(tri[j]) {
				return fmt.Errorf("triangle %d references deleted vertex %d", tid, tri[j])
			}
			eid := m.triEdges[tid][j]
			if eid != m.FindEdge(tri[j], tri[(j+1)%3]) {
				return fmt.Errorf("triangle %d edge %d does not join %d and %d", tid, eid, tri[j], tri[(j+1)%3])
			}
			e := m.edges[eid]
			if e.T[0] != tid && e.T[1] != tid {
				return fmt.Errorf("triangle %d missing from edge %d", tid, eid)
			}
		}
		for _, o := range m.overlays() {
			elems := o.tris[tid]
			for j, elem := range elems {
				if elem != InvalidID && o.parents[elem] != tri[j] {
					return fmt.Errorf("triangle %d overlay element %d parented to %d, want %d", tid, elem, o.parents[elem], tri[j])
				}
			}
		}
	}
	if nv != m.nv || nt != m.nt || ne != m.ne {
		return fmt.Errorf("live counts mismatch: vertices %d/%d triangles %d/%d edges %d/%d", nv, m.nv, nt, m.nt, ne, m.ne)
	}
	return nil
}
