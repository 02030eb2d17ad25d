// Package project implements projection targets: surfaces that vertices
// are snapped back onto after being moved by mesh edits.
package project

import (
	"errors"
	"math"

	"github.com/soypat/remesh/dmesh"
	"github.com/soypat/remesh/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCandidates is the number of nearest triangle centroids queried to
// bound the search radius.
const DefaultCandidates = 8

// Mesh is a static triangle surface that projects points onto the nearest
// point of its triangles. It is safe for concurrent use once built.
type Mesh struct {
	tree  *kdtree.Tree
	tris  []r3.Triangle
	bb    d3.Box
	reach float64
	k     int
}

// NewMesh builds a projection target from a snapshot of m's triangles.
func NewMesh(m *dmesh.Mesh) (*Mesh, error) {
	return NewTriangles(m.Triangles())
}

// NewTriangles builds a projection target from a triangle soup.
func NewTriangles(tris []r3.Triangle) (*Mesh, error) {
	if len(tris) == 0 {
		return nil, errors.New("project: no triangles")
	}
	p := &Mesh{
		tris: append([]r3.Triangle(nil), tris...),
		bb:   d3.EmptyBox(),
		k:    DefaultCandidates,
	}
	cs := make(centroids, len(tris))
	for i, t := range p.tris {
		c := d3.Centroid(t[0], t[1], t[2])
		cs[i] = centroid{C: c, tri: i}
		for _, v := range t {
			p.bb = p.bb.Include(v)
			p.reach = math.Max(p.reach, r3.Norm(r3.Sub(v, c)))
		}
	}
	p.tree = kdtree.New(cs, false)
	return p, nil
}

// Bounds returns the bounding box of the surface.
func (p *Mesh) Bounds() r3.Box { return r3.Box(p.bb) }

// Project returns the nearest point to v on the surface. The id is ignored.
func (p *Mesh) Project(v r3.Vec, id int) r3.Vec {
	q, _, _ := p.Nearest(v)
	return q
}

// Nearest returns the closest surface point to v, the index of the triangle
// it lies on and the squared distance.
func (p *Mesh) Nearest(v r3.Vec) (r3.Vec, int, float64) {
	query := &centroid{C: v}
	keep := kdtree.NewNKeeper(p.k)
	p.tree.NearestSet(keep, query)
	best, bestTri, bestD2 := r3.Vec{}, -1, math.Inf(1)
	try := func(tri int) {
		t := p.tris[tri]
		q := ClosestPoint(v, t[0], t[1], t[2])
		if d2 := d3.Dist2(v, q); d2 < bestD2 {
			best, bestTri, bestD2 = q, tri, d2
		}
	}
	for _, c := range keep.Heap {
		if c.Comparable != nil {
			try(c.Comparable.(*centroid).tri)
		}
	}
	// Any triangle with a point nearer than the best candidate has its
	// centroid within reach of that distance.
	r := math.Sqrt(bestD2) + p.reach
	within := kdtree.NewDistKeeper(r * r)
	p.tree.NearestSet(within, query)
	for _, c := range within.Heap {
		if c.Comparable != nil {
			try(c.Comparable.(*centroid).tri)
		}
	}
	return best, bestTri, bestD2
}

type centroid struct {
	C   r3.Vec
	tri int
}

func (c *centroid) Compare(o kdtree.Comparable, d kdtree.Dim) float64 {
	q := o.(*centroid)
	switch d {
	case 0:
		return c.C.X - q.C.X
	case 1:
		return c.C.Y - q.C.Y
	case 2:
		return c.C.Z - q.C.Z
	}
	panic("project: bad dimension")
}

func (c *centroid) Dims() int { return 3 }

func (c *centroid) Distance(o kdtree.Comparable) float64 {
	return d3.Dist2(c.C, o.(*centroid).C)
}

type centroids []centroid

func (cs centroids) Index(i int) kdtree.Comparable { return &cs[i] }
func (cs centroids) Len() int                      { return len(cs) }
func (cs centroids) Slice(start, end int) kdtree.Interface {
	return cs[start:end]
}

func (cs centroids) Pivot(d kdtree.Dim) int {
	p := plane{dim: d, cs: cs}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

type plane struct {
	dim kdtree.Dim
	cs  centroids
}

func (p plane) Less(i, j int) bool { return p.cs[i].Compare(&p.cs[j], p.dim) < 0 }
func (p plane) Swap(i, j int)      { p.cs[i], p.cs[j] = p.cs[j], p.cs[i] }
func (p plane) Len() int           { return len(p.cs) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.cs = p.cs[start:end]
	return p
}
