package pool

import (
	"errors"

	"gonum.org/v1/gonum/floats/scalar"
)

// ErrDegenerateGeometry is returned when two lines that should cross are
// parallel, coincident or zero length.
var ErrDegenerateGeometry = errors.New("pool: degenerate geometry")

// Intersect returns the crossing point of the infinite lines through l1 and l2.
// Uses the two-line determinant form, which is symmetric in its arguments.
func Intersect(l1, l2 Line) (Point, error) {
	x1, y1 := l1[0].X, l1[0].Y
	x2, y2 := l1[1].X, l1[1].Y
	x3, y3 := l2[0].X, l2[0].Y
	x4, y4 := l2[1].X, l2[1].Y

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)

	scale := l1.Length() * l2.Length()
	if scale == 0 || scalar.EqualWithinAbs(denom/scale, 0, parallelTolerance) {
		return Point{}, ErrDegenerateGeometry
	}

	a := x1*y2 - y1*x2
	b := x3*y4 - y3*x4

	p := Point{
		X: (a*(x3-x4) - (x1-x2)*b) / denom,
		Y: (a*(y3-y4) - (y1-y2)*b) / denom,
	}
	if !p.IsFinite() {
		return Point{}, ErrDegenerateGeometry
	}
	return p, nil
}
