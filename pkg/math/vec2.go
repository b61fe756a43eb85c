package math

import (
	"math"

	"github.com/golang/geo/r2"
)

// Vec2 is a point or direction in the scene plane.
// It is an alias so the r2 methods (Add, Sub, Mul, Dot, Cross, Norm, Normalize, Ortho) are available directly.
type Vec2 = r2.Point

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// FromAngle returns the unit vector at the given angle (radians, counter-clockwise from +X)
func FromAngle(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{X: cos, Y: sin}
}

// Rotate returns v rotated counter-clockwise by angle radians
func Rotate(v Vec2, angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Distance returns the euclidean distance between two points
func Distance(a, b Vec2) float64 {
	return a.Sub(b).Norm()
}

// IsFinite reports whether both components are finite numbers
func IsFinite(v Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
