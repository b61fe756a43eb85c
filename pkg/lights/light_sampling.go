package lights

import (
	stdmath "math"

	"github.com/df07/go-light2d/pkg/geometry"
	"github.com/df07/go-light2d/pkg/math"
)

// LightSample contains information about a sampled point on a light
type LightSample struct {
	Point     math.Vec2 // Point on the light boundary
	Direction math.Vec2 // Unit direction from the shading point to the light
	Distance  float64   // Distance to Point
	Weight    float64   // Angular measure over sampling pdf; E[Le*cos*Weight] is the irradiance
}

// Sample picks a point on an emissive shape as seen from a shading point. u is a
// uniform 2D sample. Returns false when the sample carries no light (shading point
// inside the light, or a back-facing boundary point).
func Sample(shape geometry.Shape, from math.Vec2, u math.Vec2) (LightSample, bool) {
	switch s := shape.(type) {
	case *geometry.Circle:
		return sampleCircle(s, from, u)
	case *geometry.Segment:
		return sampleSegment(s, from, u)
	case *geometry.Polygon:
		return samplePolygon(s, from, u)
	default:
		return LightSample{}, false
	}
}

// sampleCircle samples uniformly within the angle the circle subtends; every
// direction in that cone hits the circle, so the weight is the cone width.
func sampleCircle(c *geometry.Circle, from math.Vec2, u math.Vec2) (LightSample, bool) {
	toCenter := c.Center.Sub(from)
	d := toCenter.Norm()
	if d <= c.Radius+geometry.Epsilon {
		return LightSample{}, false
	}

	halfAngle := stdmath.Asin(c.Radius / d)
	theta := (2*u.X - 1) * halfAngle
	direction := math.Rotate(toCenter.Mul(1/d), theta)

	// Near root of the ray-circle quadratic, clamped at the tangent
	sin, cos := stdmath.Sincos(theta)
	distance := d*cos - stdmath.Sqrt(max(0, c.Radius*c.Radius-d*d*sin*sin))

	return LightSample{
		Point:     from.Add(direction.Mul(distance)),
		Direction: direction,
		Distance:  distance,
		Weight:    2 * halfAngle,
	}, true
}

func sampleSegment(s *geometry.Segment, from math.Vec2, u math.Vec2) (LightSample, bool) {
	point := s.A.Add(s.B.Sub(s.A).Mul(u.X))
	return towardPoint(from, point, s.Normal(), s.Length(), true)
}

// samplePolygon picks an edge in proportion to its length, then a point along it
func samplePolygon(p *geometry.Polygon, from math.Vec2, u math.Vec2) (LightSample, bool) {
	perimeter := p.Perimeter()
	target := u.X * perimeter

	for i := range p.Vertices {
		a, b := p.Edge(i)
		length := math.Distance(a, b)
		if target <= length || i == len(p.Vertices)-1 {
			t := min(1, target/length)
			point := a.Add(b.Sub(a).Mul(t))
			return towardPoint(from, point, p.EdgeNormal(i), perimeter, false)
		}
		target -= length
	}
	return LightSample{}, false
}

// towardPoint converts an area sample on a light boundary into a direction sample.
// dθ = cos(θ_light) dl / distance. Two-sided boundaries emit from both faces.
func towardPoint(from, point, normal math.Vec2, measure float64, twoSided bool) (LightSample, bool) {
	offset := point.Sub(from)
	distance := offset.Norm()
	if distance < geometry.Epsilon {
		return LightSample{}, false
	}
	direction := offset.Mul(1 / distance)

	cosLight := -direction.Dot(normal)
	if twoSided {
		cosLight = stdmath.Abs(cosLight)
	}
	if cosLight <= 0 {
		return LightSample{}, false
	}

	return LightSample{
		Point:     point,
		Direction: direction,
		Distance:  distance,
		Weight:    measure * cosLight / distance,
	}, true
}
