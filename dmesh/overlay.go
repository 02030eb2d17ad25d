package dmesh

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

var errOverlayParent = errors.New("dmesh: overlay element parent does not match triangle vertex")

// Overlay stores per-corner attributes (UVs, normals) as shared elements.
// Each element belongs to one parent vertex; triangles reference one element
// per corner. Two triangles meeting at an edge with different elements at an
// endpoint form a seam.
type Overlay struct {
	m       *Mesh
	dim     int
	values  []float64
	parents []int // InvalidID for deleted elements.
	tris    [][3]int
}

func newOverlay(m *Mesh, dim int) *Overlay {
	o := &Overlay{m: m, dim: dim, tris: make([][3]int, len(m.triangles))}
	for i := range o.tris {
		o.tris[i] = [3]int{InvalidID, InvalidID, InvalidID}
	}
	return o
}

// EnableUVs attaches a 2D overlay to the mesh or returns the existing one.
func (m *Mesh) EnableUVs() *Overlay {
	if m.uvs == nil {
		m.uvs = newOverlay(m, 2)
	}
	return m.uvs
}

// EnableNormals attaches a 3D normal overlay or returns the existing one.
func (m *Mesh) EnableNormals() *Overlay {
	if m.normals == nil {
		m.normals = newOverlay(m, 3)
	}
	return m.normals
}

// UVs returns the UV overlay or nil.
func (m *Mesh) UVs() *Overlay { return m.uvs }

// Normals returns the normal overlay or nil.
func (m *Mesh) Normals() *Overlay { return m.normals }

func (m *Mesh) overlays() []*Overlay {
	switch {
	case m.uvs != nil && m.normals != nil:
		return []*Overlay{m.uvs, m.normals}
	case m.uvs != nil:
		return []*Overlay{m.uvs}
	case m.normals != nil:
		return []*Overlay{m.normals}
	}
	return nil
}

// IsSeamEdge reports whether eid is a seam in any overlay.
func (m *Mesh) IsSeamEdge(eid int) bool {
	return m.IsUVSeamEdge(eid) || m.IsNormalSeamEdge(eid)
}

func (m *Mesh) IsUVSeamEdge(eid int) bool {
	return m.uvs != nil && m.uvs.IsSeamEdge(eid)
}

func (m *Mesh) IsNormalSeamEdge(eid int) bool {
	return m.normals != nil && m.normals.IsSeamEdge(eid)
}

// Dim returns the number of components per element.
func (o *Overlay) Dim() int { return o.dim }

// AppendElement adds an element parented to vertex vid.
func (o *Overlay) AppendElement(vid int, value ...float64) int {
	if len(value) != o.dim {
		panic("dmesh: overlay element dimension mismatch")
	}
	o.values = append(o.values, value...)
	o.parents = append(o.parents, vid)
	return len(o.parents) - 1
}

func (o *Overlay) IsElement(elem int) bool {
	return elem >= 0 && elem < len(o.parents) && o.parents[elem] != InvalidID
}

// Element returns the values of elem. The slice aliases overlay storage.
func (o *Overlay) Element(elem int) []float64 {
	return o.values[elem*o.dim : (elem+1)*o.dim]
}

func (o *Overlay) SetElement(elem int, value ...float64) {
	copy(o.Element(elem), value)
}

// ElementParent returns the mesh vertex elem belongs to.
func (o *Overlay) ElementParent(elem int) int { return o.parents[elem] }

// Vec3 returns a 3 component element as a vector.
func (o *Overlay) Vec3(elem int) r3.Vec {
	v := o.Element(elem)
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// SetTriangle assigns corner elements to tid. Each element must be parented
// to the matching triangle vertex.
func (o *Overlay) SetTriangle(tid int, elems [3]int) error {
	if !o.m.IsTriangle(tid) {
		return ErrNotATriangle
	}
	tri := o.m.triangles[tid]
	for j, elem := range elems {
		if !o.IsElement(elem) || o.parents[elem] != tri[j] {
			return errOverlayParent
		}
	}
	o.tris[tid] = elems
	return nil
}

// TriangleElements returns the corner elements of tid, InvalidID if unset.
func (o *Overlay) TriangleElements(tid int) [3]int { return o.tris[tid] }

// IsSetTriangle reports whether every corner of tid has an element.
func (o *Overlay) IsSetTriangle(tid int) bool {
	t := o.tris[tid]
	return t[0] != InvalidID && t[1] != InvalidID && t[2] != InvalidID
}

// elementAt returns the element of tid at vertex vid.
func (o *Overlay) elementAt(tid, vid int) int {
	tri := o.m.triangles[tid]
	for j := range tri {
		if tri[j] == vid {
			return o.tris[tid][j]
		}
	}
	return InvalidID
}

// IsSeamEdge reports whether the two triangles of eid disagree on the
// element of either endpoint. Boundary edges are never overlay seams.
func (o *Overlay) IsSeamEdge(eid int) bool {
	e := o.m.edges[eid]
	if e.T[1] == InvalidID {
		return false
	}
	for _, vid := range e.V {
		a, b := o.elementAt(e.T[0], vid), o.elementAt(e.T[1], vid)
		if a != b {
			return true
		}
	}
	return false
}

func (o *Overlay) growTriangles(tid int) {
	for len(o.tris) <= tid {
		o.tris = append(o.tris, [3]int{InvalidID, InvalidID, InvalidID})
	}
	o.tris[tid] = [3]int{InvalidID, InvalidID, InvalidID}
}

func (o *Overlay) clearTriangle(tid int) {
	o.tris[tid] = [3]int{InvalidID, InvalidID, InvalidID}
}

// collapse merges the elements of remove into those of keep before the mesh
// topology changes. Elements of remove in a collapsed wedge map onto the
// keep element of the removed triangle; the others are reparented.
func (o *Overlay) collapse(keep, remove int, removedTris [2]int, removeTris []int, t float64) {
	var mapping [2][2]int // {from, to}
	n := 0
	for _, tid := range removedTris {
		if tid == InvalidID {
			continue
		}
		ek, er := o.elementAt(tid, keep), o.elementAt(tid, remove)
		if ek == InvalidID || er == InvalidID || ek == er {
			continue
		}
		if n == 1 && mapping[0][0] == er {
			continue
		}
		mapping[n] = [2]int{er, ek}
		n++
		if n == 2 && mapping[0][1] == ek {
			// Both wedges share the keep element: interpolate it once.
			continue
		}
		vk, vr := o.Element(ek), o.Element(er)
		for i := range vk {
			vk[i] += t * (vr[i] - vk[i])
		}
	}
	for _, tid := range removeTris {
		if tid == removedTris[0] || tid == removedTris[1] {
			continue
		}
		tri := o.m.triangles[tid]
		for j := range tri {
			if tri[j] != remove {
				continue
			}
			elem := o.tris[tid][j]
			if elem == InvalidID {
				break
			}
			mapped := false
			for k := 0; k < n; k++ {
				if mapping[k][0] == elem {
					o.tris[tid][j] = mapping[k][1]
					mapped = true
				}
			}
			if !mapped {
				o.parents[elem] = keep
			}
		}
	}
	for k := 0; k < n; k++ {
		o.parents[mapping[k][0]] = InvalidID
	}
}

func (o *Overlay) clone(m *Mesh) *Overlay {
	return &Overlay{
		m:       m,
		dim:     o.dim,
		values:  append([]float64(nil), o.values...),
		parents: append([]int(nil), o.parents...),
		tris:    append([][3]int(nil), o.tris...),
	}
}
