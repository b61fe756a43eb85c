package geometry

import (
	"fmt"
	stdmath "math"

	"github.com/golang/geo/r2"

	"github.com/df07/go-light2d/pkg/math"
)

// Segment represents a line segment between two endpoints. It has no interior.
type Segment struct {
	A, B math.Vec2
}

// NewSegment creates a new segment
func NewSegment(a, b math.Vec2) *Segment {
	return &Segment{A: a, B: b}
}

func (s *Segment) shape() {}

// Closed implements Shape
func (s *Segment) Closed() bool { return false }

// Length returns the distance between the endpoints
func (s *Segment) Length() float64 {
	return math.Distance(s.A, s.B)
}

// Normal returns one of the two unit normals of the segment (left of A->B)
func (s *Segment) Normal() math.Vec2 {
	return s.B.Sub(s.A).Ortho().Normalize()
}

// Hit tests if a ray intersects with the segment
func (s *Segment) Hit(ray math.Ray, tMin, tMax float64) (Hit, bool) {
	edge := s.B.Sub(s.A)

	// Solve origin + t*d = A + u*edge
	denominator := ray.Direction.Cross(edge)
	if stdmath.Abs(denominator) < 1e-12 {
		// Parallel (or collinear) with the segment
		return Hit{}, false
	}

	w := s.A.Sub(ray.Origin)
	t := w.Cross(edge) / denominator
	if t <= tMin || t >= tMax {
		return Hit{}, false
	}

	u := w.Cross(ray.Direction) / denominator
	if u < 0 || u > 1 {
		return Hit{}, false
	}

	// Orient the normal against the incoming ray
	normal := edge.Ortho().Normalize()
	if normal.Dot(ray.Direction) > 0 {
		normal = normal.Mul(-1)
	}

	return Hit{
		T:         t,
		Point:     ray.At(t),
		Normal:    normal,
		FrontFace: true,
	}, true
}

// Bounds returns the bounding rectangle of the segment
func (s *Segment) Bounds() r2.Rect {
	return r2.RectFromPoints(s.A, s.B)
}

// Validate rejects zero-length and non-finite segments
func (s *Segment) Validate() error {
	if !math.IsFinite(s.A) || !math.IsFinite(s.B) {
		return fmt.Errorf("segment %v-%v: %w", s.A, s.B, ErrInvalid)
	}
	if s.Length() <= Epsilon {
		return fmt.Errorf("segment %v-%v has zero length: %w", s.A, s.B, ErrDegenerate)
	}
	return nil
}
