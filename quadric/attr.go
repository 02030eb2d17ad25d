package quadric

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultAttributeWeight scales the attribute part of an Attr quadric
// relative to its geometric part.
const DefaultAttributeWeight = 16.0

// Attr is a quadric over position and three scalar attributes, in practice
// the components of a vertex normal. Each triangle interpolates its attributes
// linearly, and the quadric measures the squared plane distance plus the
// weighted squared deviation from that interpolation.
//
// The attributes are eliminated on evaluation: Evaluate and OptimalPoint act
// on the position quadric obtained with the best attributes for each position.
// The zero value is the additive identity.
type Attr struct {
	// Geo holds the position block, linear position term and constant.
	Geo Error
	// G holds the position-attribute coupling, one column per attribute.
	G [3]r3.Vec
	// D is the linear attribute term.
	D [3]float64
	// W is the diagonal of the attribute block.
	W float64
}

// FromTriangleAttributes returns the attribute quadric of the triangle with
// vertex positions p carrying attribute vectors n, and the triangle area.
func FromTriangleAttributes(p, n [3]r3.Vec, weight float64) (Attr, float64) {
	geo, area := FromTriangle(p[0], p[1], p[2])
	if area == 0 {
		return Attr{}, 0
	}
	fn := r3.Unit(r3.Cross(r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0])))
	e1, e2 := r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0])
	sys := mat.NewDense(3, 3, []float64{
		e1.X, e1.Y, e1.Z,
		e2.X, e2.Y, e2.Z,
		fn.X, fn.Y, fn.Z,
	})
	q := Attr{Geo: geo, W: weight}
	s := [3][3]float64{
		{n[0].X, n[1].X, n[2].X},
		{n[0].Y, n[1].Y, n[2].Y},
		{n[0].Z, n[1].Z, n[2].Z},
	}
	for j, sj := range s {
		// Gradient g of the linear interpolation within the triangle plane.
		g, ok := solve3(sys, r3.Vec{X: sj[1] - sj[0], Y: sj[2] - sj[0]})
		d := sj[0] - r3.Dot(g, p[0])
		if !ok {
			g, d = r3.Vec{}, (sj[0]+sj[1]+sj[2])/3
		}
		q.Geo = q.Geo.Add(weight, outer(g, d))
		q.G[j] = r3.Scale(-weight, g)
		q.D[j] = -weight * d
	}
	return q, area
}

// Add returns q + w*other.
func (q Attr) Add(w float64, other Attr) Attr {
	q.Geo = q.Geo.Add(w, other.Geo)
	for j := range q.G {
		q.G[j] = r3.Add(q.G[j], r3.Scale(w, other.G[j]))
		q.D[j] += w * other.D[j]
	}
	q.W += w * other.W
	return q
}

// AddError adds a weighted geometric quadric, such as a seam quadric.
func (q Attr) AddError(w float64, e Error) Attr {
	q.Geo = q.Geo.Add(w, e)
	return q
}

// Position returns the position quadric with the attributes minimized out
// (Schur complement of the attribute block).
func (q Attr) Position() Error {
	if q.W <= 0 {
		return q.Geo
	}
	r := q.Geo
	inv := 1 / q.W
	for j, g := range q.G {
		d := q.D[j]
		r = r.Add(-inv, outer(g, d))
	}
	return r
}

// Evaluate returns the cost at p with optimal attributes.
func (q Attr) Evaluate(p r3.Vec) float64 { return q.Position().Evaluate(p) }

// OptimalPoint returns the position minimizing the reduced quadric.
func (q Attr) OptimalPoint() (r3.Vec, bool) { return q.Position().OptimalPoint() }

// OptimalAttributes returns the attribute values minimizing the quadric at
// position p. It returns false for an empty quadric.
func (q Attr) OptimalAttributes(p r3.Vec) (r3.Vec, bool) {
	if q.W <= 0 {
		return r3.Vec{}, false
	}
	inv := -1 / q.W
	return r3.Vec{
		X: inv * (r3.Dot(q.G[0], p) + q.D[0]),
		Y: inv * (r3.Dot(q.G[1], p) + q.D[1]),
		Z: inv * (r3.Dot(q.G[2], p) + q.D[2]),
	}, true
}
