package geometry

import (
	"errors"

	"github.com/golang/geo/r2"

	"github.com/df07/go-light2d/pkg/math"
)

// Epsilon is the minimum hit distance; anything closer is treated as a miss so a
// ray leaving a surface does not re-hit it at its own origin.
const Epsilon = 1e-6

var (
	// ErrDegenerate is returned for shapes that enclose no length or area
	ErrDegenerate = errors.New("degenerate geometry")
	// ErrInvalid is returned for shapes with non-finite parameters
	ErrInvalid = errors.New("invalid geometry")
)

// Hit contains information about a ray-shape intersection
type Hit struct {
	T         float64   // Distance along the ray (always > Epsilon)
	Point     math.Vec2 // Point of intersection
	Normal    math.Vec2 // Unit normal, outward for closed shapes, against the ray for segments
	FrontFace bool      // Whether the ray arrived from outside the shape
}

// Shape is the closed set of primitives a scene can contain: *Circle, *Segment and *Polygon.
type Shape interface {
	// Hit returns the nearest intersection with t in (tMin, tMax)
	Hit(ray math.Ray, tMin, tMax float64) (Hit, bool)
	// Bounds returns the axis-aligned bounding rectangle
	Bounds() r2.Rect
	// Closed reports whether the shape encloses an interior
	Closed() bool
	// Validate rejects degenerate parameters
	Validate() error

	shape()
}

// setFaceNormal orients a closed shape's hit: Normal stays outward, FrontFace records the side.
func (h *Hit) setFaceNormal(ray math.Ray, outwardNormal math.Vec2) {
	h.Normal = outwardNormal
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
}

// FacingNormal returns the normal flipped to face the incoming ray
func (h Hit) FacingNormal() math.Vec2 {
	if h.FrontFace {
		return h.Normal
	}
	return h.Normal.Mul(-1)
}
