package material

import (
	"fmt"
	stdmath "math"

	"github.com/df07/go-light2d/pkg/math"
)

// Diffuse scatters incident light equally in all directions on the lit side
type Diffuse struct {
	Albedo math.Color // Fraction of light reflected per channel
}

// NewDiffuse creates a new diffuse material
func NewDiffuse(albedo math.Color) *Diffuse {
	return &Diffuse{Albedo: albedo}
}

func (d *Diffuse) material() {}

func (d *Diffuse) Validate() error {
	return validateColor("diffuse albedo", d.Albedo, 1)
}

// Specular is a perfect mirror
type Specular struct {
	Reflectivity float64 // Fraction of light reflected
}

// NewSpecular creates a new mirror material
func NewSpecular(reflectivity float64) *Specular {
	return &Specular{Reflectivity: reflectivity}
}

func (s *Specular) material() {}

func (s *Specular) Validate() error {
	if stdmath.IsNaN(s.Reflectivity) || s.Reflectivity < 0 || s.Reflectivity > 1 {
		return fmt.Errorf("reflectivity %v must be in [0,1]: %w", s.Reflectivity, ErrInvalid)
	}
	return nil
}

// Refractive bends light at its boundary according to Snell's law. A non-zero
// Extinction makes the interior absorb per Beer-Lambert.
type Refractive struct {
	IOR        float64    // Index of refraction (e.g., 1.5 for glass)
	Extinction math.Color // Interior extinction coefficients per unit length
	Fresnel    bool       // Reflect with Schlick probability instead of always refracting
}

// NewRefractive creates a new clear refractive material
func NewRefractive(ior float64) *Refractive {
	return &Refractive{IOR: ior}
}

// NewTintedGlass creates a refractive material with an absorbing interior
func NewTintedGlass(ior float64, extinction math.Color) *Refractive {
	return &Refractive{IOR: ior, Extinction: extinction, Fresnel: true}
}

func (r *Refractive) material() {}

func (r *Refractive) Validate() error {
	if stdmath.IsNaN(r.IOR) || stdmath.IsInf(r.IOR, 0) || r.IOR <= 0 {
		return fmt.Errorf("index of refraction %v must be positive: %w", r.IOR, ErrInvalid)
	}
	return validateColor("extinction", r.Extinction, stdmath.MaxFloat64)
}

// Absorbing bounds an index-matched medium: rays cross the boundary unbent and
// are attenuated only while inside.
type Absorbing struct {
	Extinction math.Color // Interior extinction coefficients per unit length
}

// NewAbsorbing creates a new absorbing medium
func NewAbsorbing(extinction math.Color) *Absorbing {
	return &Absorbing{Extinction: extinction}
}

func (a *Absorbing) material() {}

func (a *Absorbing) Validate() error {
	return validateColor("extinction", a.Extinction, stdmath.MaxFloat64)
}

// Emissive marks a primitive as a light source
type Emissive struct {
	Radiance math.Color // Emitted radiance per channel
}

// NewEmissive creates a new emissive material
func NewEmissive(radiance math.Color) *Emissive {
	return &Emissive{Radiance: radiance}
}

func (e *Emissive) material() {}

func (e *Emissive) Validate() error {
	return validateColor("radiance", e.Radiance, stdmath.MaxFloat64)
}
