package integrator

import (
	"github.com/df07/go-light2d/pkg/core"
	"github.com/df07/go-light2d/pkg/geometry"
	"github.com/df07/go-light2d/pkg/lights"
	"github.com/df07/go-light2d/pkg/material"
	"github.com/df07/go-light2d/pkg/math"
	"github.com/df07/go-light2d/pkg/scene"
)

// RayTracingIntegrator follows specular and refractive chains recursively and
// shades diffuse hits with direct lighting only
type RayTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewRayTracingIntegrator creates a new ray tracing integrator
func NewRayTracingIntegrator(config scene.SamplingConfig) *RayTracingIntegrator {
	return &RayTracingIntegrator{
		config: config,
	}
}

// RayColor computes the radiance carried back along a single eye ray
func (rt *RayTracingIntegrator) RayColor(ray math.Ray, s *scene.Scene, sampler core.Sampler) math.Color {
	return rt.trace(ray, s, sampler, 0, -1, s.Enclosing(ray))
}

// trace returns the radiance along ray. exclude is the primitive the ray just left
// when that primitive is open, -1 otherwise. medium is the entry whose interior
// the ray travels through, -1 for none.
func (rt *RayTracingIntegrator) trace(ray math.Ray, s *scene.Scene, sampler core.Sampler, depth, exclude, medium int) math.Color {
	// Past the bounce limit no more light is gathered
	if depth > rt.config.MaxDepth {
		return math.Color{}
	}

	hit, index, isHit := s.NearestHit(ray, exclude)
	if !isHit {
		return s.Background
	}

	entry := s.Entries[index]

	var color math.Color
	switch m := entry.Material.(type) {
	case *material.Emissive:
		color = m.Radiance

	case *material.Diffuse:
		color = rt.directLighting(hit, m, s, sampler, s.Departing(index), medium)

	case *material.Specular:
		reflected := math.NewRay(hit.Point, math.Reflect(ray.Direction, hit.FacingNormal()))
		color = rt.continueRay(reflected, hit, s, sampler, depth, index, medium).Multiply(m.Reflectivity)

	case *material.Refractive:
		color = rt.continueRay(rt.scatterRefractive(ray, hit, m, s, sampler), hit, s, sampler, depth, index, medium)

	case *material.Absorbing:
		// Index-matched boundary, the ray crosses it unbent
		color = rt.continueRay(math.Ray{Origin: hit.Point, Direction: ray.Direction}, hit, s, sampler, depth, index, medium)
	}

	if medium >= 0 {
		color = color.MultiplyColor(math.BeerLambert(s.MediumExtinction(medium), hit.T))
	}

	return color
}

// continueRay traces the continuation of a ray that hit entry index
func (rt *RayTracingIntegrator) continueRay(ray math.Ray, hit geometry.Hit, s *scene.Scene, sampler core.Sampler, depth, index, medium int) math.Color {
	return rt.trace(ray, s, sampler, depth+1, s.Departing(index), s.MediumAfter(index, hit, ray.Direction, medium))
}

// scatterRefractive picks the refracted or reflected continuation at a dielectric boundary
func (rt *RayTracingIntegrator) scatterRefractive(ray math.Ray, hit geometry.Hit, m *material.Refractive, s *scene.Scene, sampler core.Sampler) math.Ray {
	normal := hit.FacingNormal()

	eta := s.AmbientIOR / m.IOR
	if !hit.FrontFace {
		eta = m.IOR / s.AmbientIOR
	}

	refracted, canRefract := math.Refract(ray.Direction, normal, eta)
	if canRefract && m.Fresnel {
		cosine := -ray.Direction.Dot(normal)
		if sampler.Get1D() < math.Schlick(cosine, eta) {
			canRefract = false
		}
	}

	if !canRefract {
		// Total internal reflection, or a Fresnel reflection
		return math.NewRay(hit.Point, math.Reflect(ray.Direction, normal))
	}
	return math.NewRay(hit.Point, refracted)
}

// directLighting estimates the light reflected by a diffuse surface with one
// shadow ray per light. Shadow rays start in medium. A 2D Lambertian surface reflects albedo/2 * ∫ Le cosθ dθ.
func (rt *RayTracingIntegrator) directLighting(hit geometry.Hit, m *material.Diffuse, s *scene.Scene, sampler core.Sampler, exclude, medium int) math.Color {
	// Inside a closed diffuse shape no light arrives
	if !hit.FrontFace {
		return math.Color{}
	}
	normal := hit.FacingNormal()

	var irradiance math.Color
	for _, li := range s.Lights {
		light := s.Entries[li]
		sample, ok := lights.Sample(light.Shape, hit.Point, sampler.Get2D())
		if !ok {
			continue
		}

		cosine := sample.Direction.Dot(normal)
		if cosine <= 0 {
			continue // Light is behind the surface
		}

		shadowRay := math.Ray{Origin: hit.Point, Direction: sample.Direction}
		transmittance := s.Transmittance(shadowRay, li, exclude, medium)
		if transmittance.IsBlack() {
			continue
		}

		emission := light.Material.(*material.Emissive).Radiance
		irradiance = irradiance.Add(emission.MultiplyColor(transmittance).Multiply(cosine * sample.Weight))
	}

	return m.Albedo.MultiplyColor(irradiance).Multiply(0.5)
}
