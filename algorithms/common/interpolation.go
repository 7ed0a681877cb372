package common

import (
	"math"
)

// QuadraticVertex fits a parabola through three points using Lagrange
// coefficients and returns its vertex.
//
// ok is false when two of the x-coordinates coincide or when the three
// points are colinear (|a| below machine epsilon); a degenerate fit has no
// usable vertex.
func QuadraticVertex(x0, y0, x1, y1, x2, y2 float64) (x, y float64, ok bool) {
	div := (x0 - x1) * (x0 - x2) * (x1 - x2)
	if math.Abs(div) < Epsilon {
		return 0, 0, false
	}

	a := (y0*(x1-x2) + y1*(x2-x0) + y2*(x0-x1)) / div
	if math.Abs(a) < Epsilon {
		return 0, 0, false
	}

	b := -(y0*(x1*x1-x2*x2) + y1*(x2*x2-x0*x0) + y2*(x0*x0-x1*x1)) / div
	c := (y0*x1*x2*(x1-x2) + y1*x2*x0*(x2-x0) + y2*x0*x1*(x0-x1)) / div

	x = -b / (2 * a)
	y = a*x*x + b*x + c
	return x, y, true
}
