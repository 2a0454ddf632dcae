package pool

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position (or a displacement) in view-space coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func fromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

func (p Point) Add(o Point) Point {
	return fromVec(r2.Add(p.vec(), o.vec()))
}

func (p Point) Sub(o Point) Point {
	return fromVec(r2.Sub(p.vec(), o.vec()))
}

func (p Point) Scale(s float64) Point {
	return fromVec(r2.Scale(s, p.vec()))
}

func (p Point) Norm() float64 {
	return r2.Norm(p.vec())
}

// Unit returns the unit vector in the direction of p, or the zero vector when p is zero.
func (p Point) Unit() Point {
	if p.IsZero() {
		return Point{}
	}
	return fromVec(r2.Unit(p.vec()))
}

func (p Point) DistanceTo(o Point) float64 {
	return o.Sub(p).Norm()
}

func (p Point) Midpoint(o Point) Point {
	return Point{X: (p.X + o.X) / 2, Y: (p.Y + o.Y) / 2}
}

// AngleTo returns the angle of o around p measured from the positive x axis,
// normalized to [0, 2π).
func (p Point) AngleTo(o Point) float64 {
	a := math.Atan2(o.Y-p.Y, o.X-p.X)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Lerp linearly interpolates between a (t=0) and b (t=1).
func Lerp(a, b Point, t float64) Point {
	return Point{
		X: (1-t)*a.X + t*b.X,
		Y: (1-t)*a.Y + t*b.Y,
	}
}

// Rect is an axis-aligned rectangle given by its origin and size.
type Rect struct {
	Origin Point   `json:"origin"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewRect(x, y, width, height float64) Rect {
	return Rect{Origin: Pt(x, y), Width: width, Height: height}
}

func (r Rect) Min() Point {
	return r.Origin
}

func (r Rect) Max() Point {
	return Pt(r.Origin.X+r.Width, r.Origin.Y+r.Height)
}

func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Inset shrinks the rectangle by dx on the left and right and dy on the top and
// bottom. A dimension that would go negative collapses to zero around its center.
func (r Rect) Inset(dx, dy float64) Rect {
	out := Rect{
		Origin: Pt(r.Origin.X+dx, r.Origin.Y+dy),
		Width:  r.Width - 2*dx,
		Height: r.Height - 2*dy,
	}
	if out.Width < 0 {
		out.Origin.X = r.Origin.X + r.Width/2
		out.Width = 0
	}
	if out.Height < 0 {
		out.Origin.Y = r.Origin.Y + r.Height/2
		out.Height = 0
	}
	return out
}

// Contains reports whether p lies inside r; the boundary counts as inside.
func (r Rect) Contains(p Point) bool {
	lo, hi := r.Min(), r.Max()
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}
