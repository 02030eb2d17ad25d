// Package quadric implements quadric error metrics used to score and place
// edge collapses.
//
// A quadric represents the cost function
//
//	Q(x) = xᵀAx + 2bᵀx + c
//
// for a symmetric 3x3 matrix A. The sum of the quadrics of a set of planes
// measures the sum of squared distances from x to those planes.
package quadric

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxCondition is the largest condition number of A for which OptimalPoint
// attempts a solve.
const MaxCondition = 1e10

// Error is a plain geometric quadric. The zero value is the additive identity.
type Error struct {
	Axx, Axy, Axz float64
	Ayy, Ayz      float64
	Azz           float64
	Bx, By, Bz    float64
	C             float64
}

// Zero returns the additive identity.
func Zero() Error { return Error{} }

// FromPlane returns the squared distance quadric to the plane through p with
// unit normal n.
func FromPlane(n, p r3.Vec) Error {
	return outer(n, -r3.Dot(n, p))
}

// outer returns the quadric of (n·x + d)².
func outer(n r3.Vec, d float64) Error {
	return Error{
		Axx: n.X * n.X, Axy: n.X * n.Y, Axz: n.X * n.Z,
		Ayy: n.Y * n.Y, Ayz: n.Y * n.Z,
		Azz: n.Z * n.Z,
		Bx:  d * n.X, By: d * n.Y, Bz: d * n.Z,
		C: d * d,
	}
}

// FromTriangle returns the quadric of the supporting plane of triangle abc and
// the triangle area. A degenerate triangle yields the zero quadric.
func FromTriangle(a, b, c r3.Vec) (Error, float64) {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	l := r3.Norm(n)
	if l == 0 {
		return Error{}, 0
	}
	return FromPlane(r3.Scale(1/l, n), a), l / 2
}

// Seam returns a quadric penalizing movement off the plane that contains edge
// p0-p1 and is perpendicular to faceNormal. Adding the seam quadric built from
// the face on the other side of the edge constrains movement to the edge line.
func Seam(p0, p1, faceNormal r3.Vec) Error {
	n := r3.Cross(r3.Sub(p1, p0), faceNormal)
	l := r3.Norm(n)
	if l == 0 {
		return Error{}
	}
	return FromPlane(r3.Scale(1/l, n), p0)
}

// Add returns q + w*other. Negative w subtracts.
func (q Error) Add(w float64, other Error) Error {
	return Error{
		Axx: q.Axx + w*other.Axx, Axy: q.Axy + w*other.Axy, Axz: q.Axz + w*other.Axz,
		Ayy: q.Ayy + w*other.Ayy, Ayz: q.Ayz + w*other.Ayz,
		Azz: q.Azz + w*other.Azz,
		Bx:  q.Bx + w*other.Bx, By: q.By + w*other.By, Bz: q.Bz + w*other.Bz,
		C: q.C + w*other.C,
	}
}

// AddError is Add. It lets Error and Attr share a generic interface.
func (q Error) AddError(w float64, e Error) Error { return q.Add(w, e) }

// Evaluate returns Q(p). Round-off may produce slightly negative values.
func (q Error) Evaluate(p r3.Vec) float64 {
	ax := q.Axx*p.X + q.Axy*p.Y + q.Axz*p.Z
	ay := q.Axy*p.X + q.Ayy*p.Y + q.Ayz*p.Z
	az := q.Axz*p.X + q.Ayz*p.Y + q.Azz*p.Z
	return p.X*ax + p.Y*ay + p.Z*az + 2*(q.Bx*p.X+q.By*p.Y+q.Bz*p.Z) + q.C
}

// OptimalPoint returns the point minimizing Q by solving Ax = -b. It returns
// false when A is singular or ill-conditioned.
func (q Error) OptimalPoint() (r3.Vec, bool) {
	a := mat.NewDense(3, 3, []float64{
		q.Axx, q.Axy, q.Axz,
		q.Axy, q.Ayy, q.Ayz,
		q.Axz, q.Ayz, q.Azz,
	})
	return solve3(a, r3.Vec{X: -q.Bx, Y: -q.By, Z: -q.Bz})
}

// A returns the quadric matrix.
func (q Error) A() *mat.SymDense {
	return mat.NewSymDense(3, []float64{
		q.Axx, q.Axy, q.Axz,
		q.Axy, q.Ayy, q.Ayz,
		q.Axz, q.Ayz, q.Azz,
	})
}

// B returns the linear term.
func (q Error) B() r3.Vec { return r3.Vec{X: q.Bx, Y: q.By, Z: q.Bz} }

func solve3(a mat.Matrix, rhs r3.Vec) (r3.Vec, bool) {
	var lu mat.LU
	lu.Factorize(a)
	if c := lu.Cond(); math.IsInf(c, 0) || math.IsNaN(c) || c > MaxCondition {
		return r3.Vec{}, false
	}
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, mat.NewVecDense(3, []float64{rhs.X, rhs.Y, rhs.Z})); err != nil {
		return r3.Vec{}, false
	}
	p := r3.Vec{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}
	if math.IsNaN(p.X+p.Y+p.Z) || math.IsInf(p.X+p.Y+p.Z, 0) {
		return r3.Vec{}, false
	}
	return p, true
}
