package dmesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Icosahedron returns a closed icosahedron inscribed in a sphere of the given
// radius centered at the origin: 12 vertices, 20 triangles, 30 edges.
func Icosahedron(radius float64) *Mesh {
	phi := (1 + math.Sqrt(5)) / 2
	s := radius / math.Sqrt(1+phi*phi)
	a, b := s, s*phi
	verts := []r3.Vec{
		{X: -a, Y: b}, {X: a, Y: b}, {X: -a, Y: -b}, {X: a, Y: -b},
		{Y: -a, Z: b}, {Y: a, Z: b}, {Y: -a, Z: -b}, {Y: a, Z: -b},
		{X: b, Z: -a}, {X: b, Z: a}, {X: -b, Z: -a}, {X: -b, Z: a},
	}
	tris := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	m, err := NewFromIndexed(verts, tris)
	if err != nil {
		panic("bug: icosahedron: " + err.Error())
	}
	return m
}

// Sphere returns an icosphere: an icosahedron subdivided the given number of
// times with vertices pushed onto the sphere.
func Sphere(radius float64, subdivisions int) *Mesh {
	verts, tris := Icosahedron(radius).Indexed()
	for i := 0; i < subdivisions; i++ {
		mid := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			if v, ok := mid[key]; ok {
				return v
			}
			p := r3.Scale(radius, r3.Unit(r3.Add(verts[a], verts[b])))
			verts = append(verts, p)
			mid[key] = len(verts) - 1
			return len(verts) - 1
		}
		next := make([][3]int, 0, 4*len(tris))
		for _, t := range tris {
			ab, bc, ca := midpoint(t[0], t[1]), midpoint(t[1], t[2]), midpoint(t[2], t[0])
			next = append(next,
				[3]int{t[0], ab, ca}, [3]int{t[1], bc, ab},
				[3]int{t[2], ca, bc}, [3]int{ab, bc, ca})
		}
		tris = next
	}
	m, err := NewFromIndexed(verts, tris)
	if err != nil {
		panic("bug: sphere: " + err.Error())
	}
	return m
}

// Grid returns a planar mesh in the XY plane with nx by ny vertices spaced
// by step, each quad split into two triangles facing +Z.
func Grid(nx, ny int, step float64) *Mesh {
	if nx < 2 || ny < 2 {
		panic("dmesh: grid needs at least 2x2 vertices")
	}
	verts := make([]r3.Vec, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			verts = append(verts, r3.Vec{X: float64(i) * step, Y: float64(j) * step})
		}
	}
	tris := make([][3]int, 0, 2*(nx-1)*(ny-1))
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			v00 := j*nx + i
			v10 := v00 + 1
			v01 := v00 + nx
			v11 := v01 + 1
			tris = append(tris, [3]int{v00, v10, v11}, [3]int{v00, v11, v01})
		}
	}
	m, err := NewFromIndexed(verts, tris)
	if err != nil {
		panic("bug: grid: " + err.Error())
	}
	return m
}
