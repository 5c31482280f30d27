package dygraph

import (
	"fmt"
	"math"
)

// Point is a position in the layout plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Blend moves p towards to by ratio r. It makes Point usable in rect
// functions with any interpolation kernel.
func (p Point) Blend(to Point, r float64) Point {
	return Point{X: p.X + (to.X-p.X)*r, Y: p.Y + (to.Y-p.Y)*r}
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale multiplies both coordinates by f.
func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Norm() }

// Polar returns the point at distance r and angle theta from the origin.
func Polar(r, theta float64) Point {
	return Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
