package meshio

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/remesh/dmesh"
	"github.com/soypat/remesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Weld builds an indexed mesh from a triangle soup by merging vertices that
// fall in the same cell of a grid with spacing tol. A zero tol is inferred
// from the shortest triangle side. Triangles that become degenerate or would
// make the mesh non-manifold are skipped and counted in dropped.
func Weld(model []r3.Triangle, tol float64) (m *dmesh.Mesh, dropped int, err error) {
	if len(model) == 0 {
		return nil, 0, ErrEmptyModel
	}
	bb := d3.EmptyBox()
	minDist2 := math.MaxFloat64
	maxDist2 := 0.0
	for i := range model {
		for j, vert := range model[i] {
			bb = bb.Include(vert)
			side2 := r3.Norm2(r3.Sub(model[i][(j+1)%3], vert))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	if maxDist2 == 0 {
		return nil, 0, errors.New("meshio: all triangles are degenerate")
	}
	suggested := math.Sqrt(minDist2) / 256
	if tol > math.Sqrt(maxDist2)/2 {
		return nil, 0, fmt.Errorf("meshio: vertex tolerance is too large to generate appropiate mesh, suggested tolerance: %g", suggested)
	}
	if tol <= 0 {
		tol = suggested
	}
	size := bb.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim/tol > math.MaxInt64/2 {
		return nil, 0, errors.New("meshio: tolerance too small, overflowed int64")
	}

	m = dmesh.New()
	// vertex index cache
	cache := make(map[[3]int64]int)
	ri := 1 / tol
	for _, tri := range model {
		var (
			ids   [3]int
			fresh [3]bool
		)
		for j, vert := range tri {
			key := cell(vert, bb.Min, ri)
			vid, ok := cache[key]
			if !ok {
				vid = m.AppendVertex(vert)
				cache[key] = vid
				fresh[j] = true
			}
			ids[j] = vid
		}
		if _, err := m.AppendTriangle(ids[0], ids[1], ids[2]); err != nil {
			dropped++
			for j, isNew := range fresh {
				if isNew {
					m.RemoveVertex(ids[j])
					delete(cache, cell(tri[j], bb.Min, ri))
				}
			}
		}
	}
	if m.TriangleCount() == 0 {
		return nil, dropped, errors.New("meshio: no valid triangles after welding")
	}
	return m, dropped, nil
}

// cell scales vert to be integer in resolution-space.
func cell(vert, origin r3.Vec, ri float64) [3]int64 {
	v := r3.Scale(ri, r3.Sub(vert, origin))
	return [3]int64{int64(math.Round(v.X)), int64(math.Round(v.Y)), int64(math.Round(v.Z))}
}
