// Package geomath provides planar spatial helpers for model geometry.
// Input coordinates are raw XY in feet; distances and areas are reported
// in meters so that match tolerances can be expressed in SI units.
package geomath

import "math"

// FeetToMeters converts US survey-style feet coordinates to meters.
const FeetToMeters = 0.3048

// Point is a planar coordinate in source units (feet).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistM returns the planar distance between two points in meters.
func DistM(a, b Point) float64 {
	dx := (b.X - a.X) * FeetToMeters
	dy := (b.Y - a.Y) * FeetToMeters
	return math.Hypot(dx, dy)
}

// PolylineLengthM returns the total length of a polyline in meters.
// Fewer than two points yields zero.
func PolylineLengthM(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(pts); i++ {
		sum += DistM(pts[i-1], pts[i])
	}
	return sum
}

// Centroid returns the arithmetic mean of the points. The second return
// is false when the slice is empty.
func Centroid(pts []Point) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return Point{X: sx / n, Y: sy / n}, true
}

// BBoxAreaM2 returns the axis-aligned bounding box area in square meters.
func BBoxAreaM2(pts []Point) float64 {
	if len(pts) == 0 {
		return 0
	}
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	w := (maxX - minX) * FeetToMeters
	h := (maxY - minY) * FeetToMeters
	return w * h
}

// RatioClose reports whether a/b lies within [1-tol, 1+tol]. Zero on
// either side never matches.
func RatioClose(a, b, tol float64) bool {
	if a == 0 || b == 0 {
		return false
	}
	r := a / b
	return r >= 1-tol && r <= 1+tol
}
