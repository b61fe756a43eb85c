package scene

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/golang/geo/r2"

	"github.com/df07/go-light2d/pkg/geometry"
	"github.com/df07/go-light2d/pkg/material"
	"github.com/df07/go-light2d/pkg/math"
)

var (
	// ErrEmpty is returned for scenes without any primitives
	ErrEmpty = errors.New("scene has no primitives")
	// ErrNoLights is returned for scenes without an emissive primitive
	ErrNoLights = errors.New("scene has no lights")
)

// Entry pairs a primitive with its material
type Entry struct {
	Name     string
	Shape    geometry.Shape
	Material material.Material
}

// Scene contains all the elements needed for rendering. It is read-only once
// Preprocess has succeeded and may be shared by any number of workers.
type Scene struct {
	Entries        []Entry    // Primitives in scene order
	Lights         []int      // Indices of emissive entries
	Background     math.Color // Radiance of rays that escape the scene
	AmbientIOR     float64    // Index of refraction outside every medium
	View           r2.Rect    // World-space rectangle mapped onto the image
	SamplingConfig SamplingConfig
}

// New builds a scene from entries and validates it
func New(entries ...Entry) (*Scene, error) {
	s := &Scene{
		Entries:        entries,
		SamplingConfig: DefaultSamplingConfig(),
	}
	if err := s.Preprocess(); err != nil {
		return nil, err
	}
	return s, nil
}

// Preprocess fills in defaults, indexes the lights and validates the scene
func (s *Scene) Preprocess() error {
	if s.AmbientIOR == 0 {
		s.AmbientIOR = 1
	}
	if s.View.IsEmpty() || s.View.Size().X <= 0 || s.View.Size().Y <= 0 {
		bounds := s.Bounds()
		margin := 0.05 * max(bounds.Size().X, bounds.Size().Y)
		s.View = bounds.ExpandedByMargin(margin)
	}

	s.Lights = s.Lights[:0]
	for i, e := range s.Entries {
		if e.Material != nil && material.IsEmitter(e.Material) {
			s.Lights = append(s.Lights, i)
		}
	}

	return s.Validate()
}

// Validate rejects degenerate geometry, invalid materials and bad render settings
func (s *Scene) Validate() error {
	if len(s.Entries) == 0 {
		return ErrEmpty
	}
	for i, e := range s.Entries {
		if e.Shape == nil {
			return fmt.Errorf("entry %d (%s) has no shape: %w", i, e.Name, geometry.ErrInvalid)
		}
		if err := e.Shape.Validate(); err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, e.Name, err)
		}
		if e.Material == nil {
			return fmt.Errorf("entry %d (%s) has no material: %w", i, e.Name, material.ErrInvalid)
		}
		if err := e.Material.Validate(); err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, e.Name, err)
		}
	}

	if len(s.Lights) == 0 {
		return ErrNoLights
	}
	for _, li := range s.Lights {
		if li < 0 || li >= len(s.Entries) || !material.IsEmitter(s.Entries[li].Material) {
			return fmt.Errorf("light index %d does not refer to an emissive entry: %w", li, material.ErrInvalid)
		}
	}

	if !s.Background.IsValid() {
		return fmt.Errorf("background %v: %w", s.Background, material.ErrInvalid)
	}
	if stdmath.IsNaN(s.AmbientIOR) || s.AmbientIOR <= 0 {
		return fmt.Errorf("ambient index of refraction %v: %w", s.AmbientIOR, material.ErrInvalid)
	}
	if s.View.IsEmpty() || s.View.Size().X <= 0 || s.View.Size().Y <= 0 {
		return fmt.Errorf("view %v has no area: %w", s.View, ErrInvalidConfig)
	}
	return s.SamplingConfig.Validate()
}

// Bounds returns the union of all primitive bounds
func (s *Scene) Bounds() r2.Rect {
	bounds := r2.EmptyRect()
	for _, e := range s.Entries {
		if e.Shape != nil {
			bounds = bounds.Union(e.Shape.Bounds())
		}
	}
	return bounds
}

// NearestHit returns the closest intersection along ray over all entries except
// exclude (-1 for none). Equal distances resolve to the earlier entry.
func (s *Scene) NearestHit(ray math.Ray, exclude int) (geometry.Hit, int, bool) {
	var closest geometry.Hit
	index := -1
	closestSoFar := stdmath.Inf(1)

	for i, e := range s.Entries {
		if i == exclude {
			continue
		}
		if hit, isHit := e.Shape.Hit(ray, geometry.Epsilon, closestSoFar); isHit && hit.T < closestSoFar {
			closestSoFar = hit.T
			closest = hit
			index = i
		}
	}

	return closest, index, index >= 0
}

// Departing returns the exclusion index for a ray leaving entry i: open shapes
// can never be hit twice by a straight ray, closed ones can.
func (s *Scene) Departing(i int) int {
	if i >= 0 && !s.Entries[i].Shape.Closed() {
		return i
	}
	return -1
}

// Enclosing returns the medium entry the origin of ray lies inside, or -1. A
// closed medium contains the origin when the first boundary the ray meets is a
// back face. Nested media resolve to the earliest entry.
func (s *Scene) Enclosing(ray math.Ray) int {
	for i, e := range s.Entries {
		if !s.isMedium(i) {
			continue
		}
		if hit, isHit := e.Shape.Hit(ray, geometry.Epsilon, stdmath.Inf(1)); isHit && !hit.FrontFace {
			return i
		}
	}
	return -1
}

// MediumAfter returns the medium a ray continues in after leaving a hit on entry
// index with the given direction. medium is the one it arrived in, -1 for none.
func (s *Scene) MediumAfter(index int, hit geometry.Hit, direction math.Vec2, medium int) int {
	if !s.isMedium(index) {
		return medium
	}
	if direction.Dot(hit.Normal) < 0 {
		return index
	}
	if medium == index {
		return -1
	}
	return medium
}

// MediumExtinction returns the extinction of medium, zero outside any medium
func (s *Scene) MediumExtinction(medium int) math.Color {
	if medium < 0 {
		return math.Color{}
	}
	extinction, _ := material.Extinction(s.Entries[medium].Material)
	return extinction
}

func (s *Scene) isMedium(i int) bool {
	_, ok := material.Extinction(s.Entries[i].Material)
	return ok && s.Entries[i].Shape.Closed()
}

// crossingLimit bounds the boundaries a straight ray can cross in this scene
func (s *Scene) crossingLimit() int {
	limit := 1
	for _, e := range s.Entries {
		switch shape := e.Shape.(type) {
		case *geometry.Polygon:
			limit += len(shape.Vertices)
		default:
			limit += 2
		}
	}
	return limit
}

// Transmittance follows a shadow ray toward the target entry. medium is the
// entry the ray starts inside (-1 for none). Every stretch travelled inside a
// medium is attenuated, absorbing boundaries are crossed and anything else
// blocks the ray. Returns black when occluded.
func (s *Scene) Transmittance(ray math.Ray, target, exclude, medium int) math.Color {
	transmittance := math.Gray(1)

	for step := s.crossingLimit(); step >= 0; step-- {
		hit, index, isHit := s.NearestHit(ray, exclude)
		if !isHit {
			return math.Color{}
		}
		if medium >= 0 {
			transmittance = transmittance.MultiplyColor(math.BeerLambert(s.MediumExtinction(medium), hit.T))
		}
		if index == target {
			return transmittance
		}

		if _, ok := s.Entries[index].Material.(*material.Absorbing); !ok {
			return math.Color{}
		}

		medium = s.MediumAfter(index, hit, ray.Direction, medium)
		ray = math.Ray{Origin: hit.Point, Direction: ray.Direction}
		exclude = s.Departing(index)
	}

	return math.Color{}
}
