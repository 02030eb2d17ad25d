package quadric

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func TestPlaneDistance(t *testing.T) {
	q := FromPlane(r3.Vec{Z: 1}, r3.Vec{Z: 2})
	for _, p := range []r3.Vec{{}, {X: 3, Y: -1, Z: 5}, {Z: 2}} {
		want := (p.Z - 2) * (p.Z - 2)
		if got := q.Evaluate(p); math.Abs(got-want) > tol {
			t.Errorf("Evaluate(%v)=%g, want %g", p, got, want)
		}
	}
	if _, ok := q.OptimalPoint(); ok {
		t.Error("single plane quadric is singular")
	}
}

func TestTriangleArea(t *testing.T) {
	q, area := FromTriangle(r3.Vec{}, r3.Vec{X: 2}, r3.Vec{Y: 2})
	if math.Abs(area-2) > tol {
		t.Errorf("area %g, want 2", area)
	}
	if got := q.Evaluate(r3.Vec{X: 1, Y: 1, Z: -3}); math.Abs(got-9) > tol {
		t.Errorf("got %g, want 9", got)
	}
	q, area = FromTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 2})
	if area != 0 || q != Zero() {
		t.Error("degenerate triangle should produce zero quadric")
	}
}

func TestOptimalCorner(t *testing.T) {
	corner := r3.Vec{X: 1, Y: -2, Z: 0.5}
	var q Error
	q = q.Add(1, FromPlane(r3.Vec{X: 1}, corner))
	q = q.Add(2, FromPlane(r3.Vec{Y: 1}, corner))
	q = q.Add(0.5, FromPlane(r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1}), corner))
	p, ok := q.OptimalPoint()
	if !ok {
		t.Fatal("three independent planes should be solvable")
	}
	if r3.Norm(r3.Sub(p, corner)) > 1e-9 {
		t.Errorf("optimal point %v, want %v", p, corner)
	}
	if math.Abs(q.Evaluate(p)) > tol {
		t.Errorf("error at optimum %g", q.Evaluate(p))
	}
}

func TestAddSubtract(t *testing.T) {
	a := FromPlane(r3.Vec{Y: 1}, r3.Vec{Y: 1})
	b := FromPlane(r3.Unit(r3.Vec{X: 1, Z: 1}), r3.Vec{})
	got := a.Add(3, b).Add(-3, b)
	p := r3.Vec{X: 0.3, Y: 7, Z: -2}
	if math.Abs(got.Evaluate(p)-a.Evaluate(p)) > tol {
		t.Error("subtraction did not undo addition")
	}
}

func TestSeamConstrainsToLine(t *testing.T) {
	p0, p1 := r3.Vec{}, r3.Vec{X: 1}
	// Two faces meeting at the edge, one in the XY plane one in XZ.
	s := Seam(p0, p1, r3.Vec{Z: 1}).Add(1, Seam(p0, p1, r3.Vec{Y: -1}))
	if got := s.Evaluate(r3.Vec{X: 5}); math.Abs(got) > tol {
		t.Errorf("point on the edge line costs %g", got)
	}
	if got := s.Evaluate(r3.Vec{Y: 1, Z: 1}); math.Abs(got-2) > tol {
		t.Errorf("got %g, want 2", got)
	}
	if Seam(p0, p1, r3.Vec{X: 1}) != Zero() {
		t.Error("face normal parallel to edge should give zero quadric")
	}
}

func TestAttrReducesToGeometry(t *testing.T) {
	p := [3]r3.Vec{{}, {X: 1}, {Y: 1}}
	up := r3.Vec{Z: 1}
	q, area := FromTriangleAttributes(p, [3]r3.Vec{up, up, up}, DefaultAttributeWeight)
	if math.Abs(area-0.5) > tol {
		t.Errorf("area %g", area)
	}
	geo, _ := FromTriangle(p[0], p[1], p[2])
	x := r3.Vec{X: 0.2, Y: 0.4, Z: 1.5}
	if math.Abs(q.Evaluate(x)-geo.Evaluate(x)) > 1e-9 {
		t.Errorf("reduced %g, geometric %g", q.Evaluate(x), geo.Evaluate(x))
	}
	n, ok := q.OptimalAttributes(x)
	if !ok || r3.Norm(r3.Sub(n, up)) > 1e-9 {
		t.Errorf("optimal attributes %v", n)
	}
}

func TestAttrInterpolatesNormals(t *testing.T) {
	p := [3]r3.Vec{{}, {X: 1}, {Y: 1}}
	n := [3]r3.Vec{{Z: 1}, {X: 1}, {Y: 1}}
	q, _ := FromTriangleAttributes(p, n, 1)
	for i := range p {
		got, _ := q.OptimalAttributes(p[i])
		if r3.Norm(r3.Sub(got, n[i])) > 1e-9 {
			t.Errorf("vertex %d: attributes %v, want %v", i, got, n[i])
		}
	}
	var zero Attr
	if _, ok := zero.OptimalAttributes(r3.Vec{}); ok {
		t.Error("empty quadric has no optimal attributes")
	}
}

func TestAttrOptimalPoint(t *testing.T) {
	// Corner of a cube with constant face normals: the attribute terms vanish
	// and the optimum is the corner.
	corner := r3.Vec{X: 1, Y: 1, Z: 1}
	faces := [][3]r3.Vec{
		{{X: 1}, {X: 1, Y: 1}, {X: 1, Z: 1}},
		{{Y: 1}, {Y: 1, Z: 1}, {X: 1, Y: 1}},
		{{Z: 1}, {X: 1, Z: 1}, {Y: 1, Z: 1}},
	}
	var q Attr
	for _, f := range faces {
		nrm := r3.Unit(r3.Cross(r3.Sub(f[1], f[0]), r3.Sub(f[2], f[0])))
		fq, area := FromTriangleAttributes([3]r3.Vec{r3.Add(f[0], corner), r3.Add(f[1], corner), r3.Add(f[2], corner)}, [3]r3.Vec{nrm, nrm, nrm}, DefaultAttributeWeight)
		q = q.Add(area, fq)
	}
	p, ok := q.OptimalPoint()
	if !ok {
		t.Fatal("expected solvable system")
	}
	want := r3.Add(corner, r3.Vec{X: 1, Y: 1, Z: 1})
	if r3.Norm(r3.Sub(p, want)) > 1e-6 {
		t.Errorf("optimal point %v, want %v", p, want)
	}
}
