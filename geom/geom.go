// Package geom holds the small geometry types shared by the locator, tracker and particle packages.
package geom

import (
	"image"
	"math"
)

// Point is a real-valued 2D coordinate.
// Depending on context it is either in absolute pixel space or in frame-relative [0,1] space.
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by f
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Normalize maps absolute pixel coordinates into [0,1] space of a width x height buffer.
func (p Point) Normalize(width, height int) Point {
	return Point{
		X: p.X / float64(width),
		Y: p.Y / float64(height),
	}
}

// Denormalize maps [0,1] coordinates onto a width x height buffer.
func (p Point) Denormalize(width, height int) Point {
	return Point{
		X: p.X * float64(width),
		Y: p.Y * float64(height),
	}
}

// InUnitSquare reports whether p lies in [0,1]x[0,1].
func (p Point) InUnitSquare() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Distance returns Euclidean distance between two points.
func Distance(p1, p2 Point) float64 {
	return math.Sqrt(SquaredDistance(p1, p2))
}

// SquaredDistance returns squared Euclidean distance between two points.
func SquaredDistance(p1, p2 Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return dx*dx + dy*dy
}

// CenteredRect returns integer rectangle of given size centered on location.
// Coordinates are truncated toward negative infinity so a rectangle hanging over the left/top edge keeps its full extent.
func CenteredRect(location, size Point) image.Rectangle {
	minX := int(math.Floor(location.X - size.X/2.0))
	minY := int(math.Floor(location.Y - size.Y/2.0))
	return image.Rect(minX, minY, minX+int(size.X), minY+int(size.Y))
}

func MaxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func MinFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
