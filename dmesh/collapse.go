package dmesh

import (
	"github.com/soypat/remesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// CollapseInfo describes a successful edge collapse. Index 1 entries are
// InvalidID when the collapsed edge was a boundary edge.
type CollapseInfo struct {
	KeptVertex    int
	RemovedVertex int
	// Opposing holds the third vertices of the removed triangles.
	Opposing         [2]int
	CollapsedEdge    int
	RemovedTriangles [2]int
	// RemovedEdges[i] joined RemovedVertex and Opposing[i] and was merged
	// into KeptEdges[i], which joins KeptVertex and Opposing[i].
	RemovedEdges [2]int
	KeptEdges    [2]int
	CollapseT    float64
	IsBoundary   bool
}

// CollapseEdge collapses the edge (keep, remove) into keep. The kept vertex
// is moved to keep + t*(remove-keep) and overlay elements are interpolated
// with the same parameter. On error the mesh is left untouched.
func (m *Mesh) CollapseEdge(keep, remove int, t float64) (CollapseInfo, error) {
	info := CollapseInfo{
		KeptVertex:       keep,
		RemovedVertex:    remove,
		Opposing:         [2]int{InvalidID, InvalidID},
		CollapsedEdge:    InvalidID,
		RemovedTriangles: [2]int{InvalidID, InvalidID},
		RemovedEdges:     [2]int{InvalidID, InvalidID},
		KeptEdges:        [2]int{InvalidID, InvalidID},
		CollapseT:        t,
	}
	if keep == remove || !m.IsVertex(keep) || !m.IsVertex(remove) {
		return info, ErrNotAnEdge
	}
	eab := m.FindEdge(keep, remove)
	if eab == InvalidID {
		return info, ErrNotAnEdge
	}
	e := m.edges[eab]
	t0, t1 := e.T[0], e.T[1]
	c := m.OppositeVertex(t0, keep, remove)
	d := InvalidID
	if t1 != InvalidID {
		d = m.OppositeVertex(t1, keep, remove)
	}
	isBoundary := t1 == InvalidID
	erc, ekc := m.FindEdge(remove, c), m.FindEdge(keep, c)
	erd, ekd := InvalidID, InvalidID
	if d != InvalidID {
		erd, ekd = m.FindEdge(remove, d), m.FindEdge(keep, d)
	}

	if isBoundary {
		if m.IsBoundaryEdge(erc) && m.IsBoundaryEdge(ekc) {
			return info, ErrIsolatedTriangle
		}
	} else {
		// Merged edges must keep at least one triangle and the collapse
		// must not pinch two boundary loops into a bowtie vertex.
		if m.IsBoundaryEdge(erc) && m.IsBoundaryEdge(ekc) ||
			m.IsBoundaryEdge(erd) && m.IsBoundaryEdge(ekd) {
			return info, ErrInvalidNeighbourhood
		}
		if m.IsBoundaryVertex(keep) && m.IsBoundaryVertex(remove) {
			return info, ErrInvalidNeighbourhood
		}
	}
	// Link condition: the one-rings of keep and remove may only share c and d.
	for _, eid := range m.vertexEdges[remove] {
		n := m.edges[eid].Other(remove)
		if n == keep || n == c || n == d {
			continue
		}
		if m.FindEdge(keep, n) != InvalidID {
			return info, ErrInvalidNeighbourhood
		}
	}
	if d != InvalidID && m.FindEdge(c, d) != InvalidID &&
		m.FindTriangle(keep, c, d) != InvalidID && m.FindTriangle(remove, c, d) != InvalidID {
		return info, ErrCollapseTetrahedron
	}

	removeTris := m.VertexTriangles(remove, make([]int, 0, 12))
	removedTris := [2]int{t0, t1}
	for _, o := range m.overlays() {
		o.collapse(keep, remove, removedTris, removeTris, t)
	}

	// Detach the removed triangles, merging each remove-side edge into its
	// keep-side twin.
	m.mergeWedge(t0, erc, ekc)
	if t1 != InvalidID {
		m.mergeWedge(t1, erd, ekd)
	}
	m.freeTriangle(t0)
	if t1 != InvalidID {
		m.freeTriangle(t1)
	}
	m.freeEdge(eab)

	// Remaining edges of remove now belong to keep.
	for _, eid := range m.vertexEdges[remove] {
		ed := &m.edges[eid]
		other := ed.Other(remove)
		ed.V = [2]int{keep, other}
		if keep > other {
			ed.V = [2]int{other, keep}
		}
		m.vertexEdges[keep] = append(m.vertexEdges[keep], eid)
	}
	m.vertexEdges[remove] = m.vertexEdges[remove][:0]
	for _, tid := range removeTris {
		if tid == t0 || tid == t1 {
			continue
		}
		tri := &m.triangles[tid]
		for j := range tri {
			if tri[j] == remove {
				tri[j] = keep
			}
		}
	}
	pk, pr := m.vertices[keep], m.vertices[remove]
	m.freeVertex(remove)
	m.vertices[keep] = d3.Lerp(pk, pr, t)

	info.Opposing = [2]int{c, d}
	info.CollapsedEdge = eab
	info.RemovedTriangles = removedTris
	info.RemovedEdges = [2]int{erc, erd}
	info.KeptEdges = [2]int{ekc, ekd}
	info.IsBoundary = isBoundary
	return info, nil
}

// mergeWedge removes tid from the edge pair (er, ek) sharing the opposing
// vertex: the triangle across er takes the place of tid on ek and er is
// deleted.
func (m *Mesh) mergeWedge(tid, er, ek int) {
	other := m.edges[er].T[0]
	if other == tid {
		other = m.edges[er].T[1]
	}
	m.replaceEdgeTriangle(ek, tid, other)
	if other != InvalidID {
		te := &m.triEdges[other]
		for j := range te {
			if te[j] == er {
				te[j] = ek
			}
		}
	}
	m.freeEdge(er)
}

// EdgeLength2 returns the squared length of eid.
func (m *Mesh) EdgeLength2(eid int) float64 {
	e := m.edges[eid]
	return d3.Dist2(m.vertices[e.V[0]], m.vertices[e.V[1]])
}

// EdgeMidpoint returns the midpoint of eid.
func (m *Mesh) EdgeMidpoint(eid int) r3.Vec {
	e := m.edges[eid]
	return d3.Midpoint(m.vertices[e.V[0]], m.vertices[e.V[1]])
}
