package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-light2d/pkg/math"
)

// ErrInvalid is returned for materials with out-of-range parameters
var ErrInvalid = errors.New("invalid material")

// Material is the closed set of surface behaviours: *Diffuse, *Specular,
// *Refractive, *Absorbing and *Emissive.
type Material interface {
	// Validate rejects out-of-range parameters
	Validate() error

	material()
}

// Extinction returns the interior extinction coefficients of a medium material.
// ok is false for materials that do not bound a medium.
func Extinction(m Material) (extinction math.Color, ok bool) {
	switch m := m.(type) {
	case *Refractive:
		return m.Extinction, true
	case *Absorbing:
		return m.Extinction, true
	default:
		return math.Color{}, false
	}
}

// IsEmitter reports whether the material emits light
func IsEmitter(m Material) bool {
	_, ok := m.(*Emissive)
	return ok
}

func validateColor(name string, c math.Color, upper float64) error {
	if !c.IsValid() {
		return fmt.Errorf("%s %v must be finite and non-negative: %w", name, c, ErrInvalid)
	}
	if c.MaxComponent() > upper {
		return fmt.Errorf("%s %v exceeds %v: %w", name, c, upper, ErrInvalid)
	}
	return nil
}
