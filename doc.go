// Package remesh simplifies triangle meshes by quadric error edge collapse.
//
// A Simplifier edits a dmesh.Mesh in place. Edges are collapsed cheapest
// first according to a Metric: PlaneMetric for pure geometry, NormalMetric
// when vertex normals should also be preserved. Vertex and edge constraints
// from package constraint protect boundaries and attribute seams, and an
// optional projection target keeps the result on a reference surface.
//
//	s := remesh.New(mesh, remesh.DefaultConfig())
//	s.Constraints = constraint.ConstrainBoundaries(mesh, constraint.DefaultPolicy())
//	stats, err := s.SimplifyToTriangleCount(ctx, 5000)
package remesh
