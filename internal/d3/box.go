package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// d3.Box is a 3d bounding box.
type Box r3.Box

// EmptyBox returns an inverted box that any Include call will shrink onto.
func EmptyBox() Box {
	return Box{Min: Elem(math.MaxFloat64), Max: Elem(-math.MaxFloat64)}
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Diagonal returns the length of the box diagonal.
func (a Box) Diagonal() float64 {
	if a.Min.X > a.Max.X {
		return 0
	}
	return r3.Norm(a.Size())
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}
