package geometry

import (
	"fmt"
	stdmath "math"

	"github.com/golang/geo/r2"

	"github.com/df07/go-light2d/pkg/math"
)

// Circle represents a disc bounded by its circumference
type Circle struct {
	Center math.Vec2
	Radius float64
}

// NewCircle creates a new circle
func NewCircle(center math.Vec2, radius float64) *Circle {
	return &Circle{Center: center, Radius: radius}
}

func (c *Circle) shape() {}

// Closed implements Shape
func (c *Circle) Closed() bool { return true }

// Hit tests if a ray intersects with the circle
func (c *Circle) Hit(ray math.Ray, tMin, tMax float64) (Hit, bool) {
	// Vector from circle center to ray origin
	oc := ray.Origin.Sub(c.Center)

	// Quadratic t² + 2bt + cc = 0 (direction is unit length)
	halfB := oc.Dot(ray.Direction)
	cc := oc.Dot(oc) - c.Radius*c.Radius

	discriminant := halfB*halfB - cc
	if discriminant < 0 {
		return Hit{}, false
	}
	sqrtD := stdmath.Sqrt(discriminant)

	// Try the closer root first, then the farther one
	root := -halfB - sqrtD
	if root <= tMin || root >= tMax {
		root = -halfB + sqrtD
		if root <= tMin || root >= tMax {
			return Hit{}, false
		}
	}

	hit := Hit{T: root, Point: ray.At(root)}
	hit.setFaceNormal(ray, hit.Point.Sub(c.Center).Mul(1.0/c.Radius))
	return hit, true
}

// Bounds returns the bounding rectangle of the circle
func (c *Circle) Bounds() r2.Rect {
	return r2.RectFromCenterSize(c.Center, r2.Point{X: 2 * c.Radius, Y: 2 * c.Radius})
}

// Validate rejects non-positive radii and non-finite centers
func (c *Circle) Validate() error {
	if !math.IsFinite(c.Center) || stdmath.IsNaN(c.Radius) || stdmath.IsInf(c.Radius, 0) {
		return fmt.Errorf("circle at %v radius %v: %w", c.Center, c.Radius, ErrInvalid)
	}
	if c.Radius <= Epsilon {
		return fmt.Errorf("circle at %v has radius %v: %w", c.Center, c.Radius, ErrDegenerate)
	}
	return nil
}
