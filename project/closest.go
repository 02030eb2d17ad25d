package project

import "gonum.org/v1/gonum/spatial/r3"

// ClosestPoint returns the point of the solid triangle abc nearest to p.
// Based on Geometric Tools' point–triangle distance algorithm, licensed under
// the Boost Software License.
func ClosestPoint(p, a, b, c r3.Vec) r3.Vec {
	diff := r3.Sub(p, a)
	edge0 := r3.Sub(b, a)
	edge1 := r3.Sub(c, a)

	a00 := r3.Dot(edge0, edge0)
	a01 := r3.Dot(edge0, edge1)
	a11 := r3.Dot(edge1, edge1)
	b0 := -r3.Dot(diff, edge0)
	b1 := -r3.Dot(diff, edge1)
	if a00 == 0 || a11 == 0 || a00*a11-a01*a01 <= 0 {
		return closestOnDegenerate(p, a, b, c)
	}

	f00 := b0
	f10 := b0 + a00
	f01 := b0 + a01

	var p0, p1, st [2]float64
	var dt1, h0, h1 float64

	switch {
	case f00 >= 0:
		if f01 >= 0 {
			st = minEdge02(a11, b1)
			break
		}
		p0 = [2]float64{0, f00 / (f00 - f01)}
		p1[0] = f01 / (f01 - f10)
		p1[1] = 1 - p1[0]
		dt1 = p1[1] - p0[1]
		h0 = dt1 * (a11*p0[1] + b1)
		if h0 >= 0 {
			st = minEdge02(a11, b1)
			break
		}
		h1 = dt1 * (a01*p1[0] + a11*p1[1] + b1)
		if h1 <= 0 {
			st = minEdge12(a01, a11, b1, f10, f01)
		} else {
			st = minInterior(p0, h0, p1, h1)
		}
	case f01 <= 0:
		if f10 <= 0 {
			st = minEdge12(a01, a11, b1, f10, f01)
			break
		}
		p0 = [2]float64{f00 / (f00 - f10), 0}
		p1[0] = f01 / (f01 - f10)
		p1[1] = 1 - p1[0]
		h0 = p1[1] * (a01*p0[0] + b1)
		if h0 >= 0 {
			st = p0
			break
		}
		h1 = p1[1] * (a01*p1[0] + a11*p1[1] + b1)
		if h1 <= 0 {
			st = minEdge12(a01, a11, b1, f10, f01)
		} else {
			st = minInterior(p0, h0, p1, h1)
		}
	case f10 <= 0:
		p0 = [2]float64{0, f00 / (f00 - f01)}
		p1[0] = f01 / (f01 - f10)
		p1[1] = 1 - p1[0]
		dt1 = p1[1] - p0[1]
		h0 = dt1 * (a11*p0[1] + b1)
		if h0 >= 0 {
			st = minEdge02(a11, b1)
			break
		}
		h1 = dt1 * (a01*p1[0] + a11*p1[1] + b1)
		if h1 <= 0 {
			st = minEdge12(a01, a11, b1, f10, f01)
		} else {
			st = minInterior(p0, h0, p1, h1)
		}
	default:
		p0 = [2]float64{f00 / (f00 - f10), 0}
		p1 = [2]float64{0, f00 / (f00 - f01)}
		h0 = p1[1] * (a01*p0[0] + b1)
		if h0 >= 0 {
			st = p0
			break
		}
		h1 = p1[1] * (a11*p1[1] + b1)
		if h1 <= 0 {
			st = minEdge02(a11, b1)
		} else {
			st = minInterior(p0, h0, p1, h1)
		}
	}
	return r3.Add(a, r3.Add(r3.Scale(st[0], edge0), r3.Scale(st[1], edge1)))
}

func minEdge02(a11, b1 float64) (p [2]float64) {
	switch {
	case b1 >= 0:
		p[1] = 0
	case a11+b1 <= 0:
		p[1] = 1
	default:
		p[1] = -b1 / a11
	}
	return p
}

func minEdge12(a01, a11, b1, f10, f01 float64) (p [2]float64) {
	h0 := a01 + b1 - f10
	if h0 >= 0 {
		p[1] = 0
	} else {
		h1 := a11 + b1 - f01
		if h1 <= 0 {
			p[1] = 1
		} else {
			p[1] = h0 / (h0 - h1)
		}
	}
	p[0] = 1 - p[1]
	return p
}

func minInterior(p0 [2]float64, h0 float64, p1 [2]float64, h1 float64) (p [2]float64) {
	z := h0 / (h0 - h1)
	omz := 1 - z
	p[0] = omz*p0[0] + z*p1[0]
	p[1] = omz*p0[1] + z*p1[1]
	return p
}

// closestOnDegenerate handles zero area triangles by testing their edges.
func closestOnDegenerate(p, a, b, c r3.Vec) r3.Vec {
	best := a
	bestD := r3.Norm2(r3.Sub(p, a))
	for _, e := range [3][2]r3.Vec{{a, b}, {b, c}, {c, a}} {
		q := closestOnSegment(p, e[0], e[1])
		if d := r3.Norm2(r3.Sub(p, q)); d < bestD {
			best, bestD = q, d
		}
	}
	return best
}

func closestOnSegment(p, a, b r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a
	}
	t := r3.Dot(r3.Sub(p, a), ab) / l2
	t = min(1, max(0, t))
	return r3.Add(a, r3.Scale(t, ab))
}
