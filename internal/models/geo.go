package models

import "math"

// Location is a point on the city grid, in grid cells (one cell is one meter).
type Location struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// DistanceTo returns the Euclidean distance between two points.
func (l Location) DistanceTo(o Location) float64 {
	return math.Hypot(o.X-l.X, o.Y-l.Y)
}
