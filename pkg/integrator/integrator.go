package integrator

import (
	"github.com/df07/go-light2d/pkg/core"
	"github.com/df07/go-light2d/pkg/math"
	"github.com/df07/go-light2d/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the radiance arriving at the ray origin from the ray direction
	RayColor(ray math.Ray, scene *scene.Scene, sampler core.Sampler) math.Color
}
