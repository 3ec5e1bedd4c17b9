// internal/geom/vec2.go
package geom

import (
	"fmt"
	"math"
)

// Vec2 is a 2D point/vector used for ship positions and mission waypoints.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FromSlice builds a Vec2 from a [x, y] coordinate pair, the form mission
// payloads and status reports use on the wire.
func FromSlice(coords []float64) (Vec2, error) {
	if len(coords) != 2 {
		return Vec2{}, fmt.Errorf("expected 2 coordinates, got %d", len(coords))
	}
	return Vec2{X: coords[0], Y: coords[1]}, nil
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len returns the Euclidean norm of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vec2) float64 {
	return a.Sub(b).Len()
}
