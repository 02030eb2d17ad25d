package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector helpers shared by the mesh, quadric and simplifier packages.

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Lerp returns a + t*(b-a).
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Midpoint of segment ab.
func Midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// Dist2 returns the squared distance between a and b.
func Dist2(a, b r3.Vec) float64 { return r3.Norm2(r3.Sub(a, b)) }

// SafeUnit returns the unit vector of v or the zero vector if v is too
// short to normalize.
func SafeUnit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < 1e-300 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// IsFinite reports whether no component of v is NaN or Inf.
func IsFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	return math.Min(b, math.Max(x, a))
}

// SegmentParam returns the parameter of the projection of p onto the line
// through a and b, where 0 maps to a and 1 to b. Degenerate segments return 0.
func SegmentParam(p, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return 0
	}
	return r3.Dot(r3.Sub(p, a), ab) / l2
}

type Set []r3.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r3.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r3.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}
