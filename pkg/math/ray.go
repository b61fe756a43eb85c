package math

// Ray represents a half-line with an origin and a unit direction
type Ray struct {
	Origin    Vec2
	Direction Vec2
}

// NewRay creates a new ray, normalizing the direction
func NewRay(origin, direction Vec2) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec2 {
	return r.Origin.Add(r.Direction.Mul(t))
}
