package geometry

import (
	"fmt"
	stdmath "math"
	"slices"

	"github.com/golang/geo/r2"

	"github.com/df07/go-light2d/pkg/math"
)

// Polygon represents a closed simple polygon. Vertices are stored counter-clockwise.
type Polygon struct {
	Vertices []math.Vec2
}

// NewPolygon creates a new polygon, reordering the vertices counter-clockwise
func NewPolygon(vertices ...math.Vec2) *Polygon {
	v := slices.Clone(vertices)
	if signedArea(v) < 0 {
		slices.Reverse(v)
	}
	return &Polygon{Vertices: v}
}

// NewRect creates an axis-aligned rectangle from two opposite corners
func NewRect(min, max math.Vec2) *Polygon {
	return NewPolygon(
		math.NewVec2(min.X, min.Y),
		math.NewVec2(max.X, min.Y),
		math.NewVec2(max.X, max.Y),
		math.NewVec2(min.X, max.Y),
	)
}

// NewRegularPolygon creates a regular n-gon with the given circumradius, first vertex at angle
func NewRegularPolygon(center math.Vec2, radius float64, sides int, angle float64) *Polygon {
	vertices := make([]math.Vec2, sides)
	for i := range vertices {
		theta := angle + 2*stdmath.Pi*float64(i)/float64(sides)
		vertices[i] = center.Add(math.FromAngle(theta).Mul(radius))
	}
	return NewPolygon(vertices...)
}

func (p *Polygon) shape() {}

// Closed implements Shape
func (p *Polygon) Closed() bool { return true }

// Edge returns the i-th edge endpoints
func (p *Polygon) Edge(i int) (math.Vec2, math.Vec2) {
	return p.Vertices[i], p.Vertices[(i+1)%len(p.Vertices)]
}

// EdgeNormal returns the outward unit normal of the i-th edge
func (p *Polygon) EdgeNormal(i int) math.Vec2 {
	a, b := p.Edge(i)
	e := b.Sub(a)
	// Counter-clockwise winding: outward is the right-hand perpendicular
	return math.NewVec2(e.Y, -e.X).Normalize()
}

// Perimeter returns the total edge length
func (p *Polygon) Perimeter() float64 {
	total := 0.0
	for i := range p.Vertices {
		a, b := p.Edge(i)
		total += math.Distance(a, b)
	}
	return total
}

// Area returns the enclosed area
func (p *Polygon) Area() float64 {
	return stdmath.Abs(signedArea(p.Vertices))
}

// Hit tests if a ray intersects with the polygon boundary
func (p *Polygon) Hit(ray math.Ray, tMin, tMax float64) (Hit, bool) {
	closest := tMax
	edge := -1

	for i := range p.Vertices {
		a, b := p.Edge(i)
		seg := Segment{A: a, B: b}
		if hit, ok := seg.Hit(ray, tMin, closest); ok {
			closest = hit.T
			edge = i
		}
	}
	if edge < 0 {
		return Hit{}, false
	}

	hit := Hit{T: closest, Point: ray.At(closest)}
	hit.setFaceNormal(ray, p.EdgeNormal(edge))
	return hit, true
}

// Bounds returns the bounding rectangle of the polygon
func (p *Polygon) Bounds() r2.Rect {
	return r2.RectFromPoints(p.Vertices...)
}

// Validate rejects polygons with too few vertices, repeated vertices or no area
func (p *Polygon) Validate() error {
	if len(p.Vertices) < 3 {
		return fmt.Errorf("polygon has %d vertices: %w", len(p.Vertices), ErrDegenerate)
	}
	for i, v := range p.Vertices {
		if !math.IsFinite(v) {
			return fmt.Errorf("polygon vertex %d %v: %w", i, v, ErrInvalid)
		}
		a, b := p.Edge(i)
		if math.Distance(a, b) <= Epsilon {
			return fmt.Errorf("polygon edge %d has zero length: %w", i, ErrDegenerate)
		}
	}
	if p.Area() <= Epsilon*Epsilon {
		return fmt.Errorf("polygon has zero area: %w", ErrDegenerate)
	}
	if signedArea(p.Vertices) < 0 {
		return fmt.Errorf("polygon is wound clockwise, build it with NewPolygon: %w", ErrInvalid)
	}
	return nil
}

// signedArea uses the shoelace formula; positive for counter-clockwise winding
func signedArea(vertices []math.Vec2) float64 {
	area := 0.0
	for i := range vertices {
		a := vertices[i]
		b := vertices[(i+1)%len(vertices)]
		area += a.Cross(b)
	}
	return area / 2
}
