package scene

import (
	"github.com/golang/geo/r2"

	"github.com/df07/go-light2d/pkg/geometry"
	"github.com/df07/go-light2d/pkg/material"
	"github.com/df07/go-light2d/pkg/math"
)

// unitView is the [0,1]x[0,1] world rectangle used by the built-in scenes
var unitView = r2.RectFromPoints(math.NewVec2(0, 0), math.NewVec2(1, 1))

// withView sets the view and re-validates; built-in scenes are static so a failure is a programming error
func withView(s *Scene, err error) *Scene {
	if err != nil {
		panic(err)
	}
	s.View = unitView
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// NewDefaultScene creates a scene exercising every material: two lights, tinted
// glass, a mirror, an absorbing slab and a diffuse floor
func NewDefaultScene() *Scene {
	warm := material.NewEmissive(math.NewColor(6.0, 5.0, 3.6))
	cool := material.NewEmissive(math.NewColor(0.8, 1.6, 5.0))
	glass := material.NewTintedGlass(1.5, math.NewColor(3.0, 1.0, 0.4))
	mirror := material.NewSpecular(0.9)
	smoke := material.NewAbsorbing(math.NewColor(6.0, 6.0, 2.0))
	floor := material.NewDiffuse(math.NewColor(0.75, 0.7, 0.65))

	return withView(New(
		Entry{Name: "warm light", Shape: geometry.NewCircle(math.NewVec2(0.25, 0.78), 0.06), Material: warm},
		Entry{Name: "cool light", Shape: geometry.NewCircle(math.NewVec2(0.86, 0.84), 0.035), Material: cool},
		Entry{Name: "glass ball", Shape: geometry.NewCircle(math.NewVec2(0.58, 0.46), 0.14), Material: glass},
		Entry{Name: "mirror", Shape: geometry.NewSegment(math.NewVec2(0.08, 0.35), math.NewVec2(0.3, 0.18)), Material: mirror},
		Entry{Name: "smoke", Shape: geometry.NewRect(math.NewVec2(0.78, 0.2), math.NewVec2(0.92, 0.55)), Material: smoke},
		Entry{Name: "floor", Shape: geometry.NewRect(math.NewVec2(0, 0), math.NewVec2(1, 0.06)), Material: floor},
	))
}

// NewFalloffScene creates a single circular light facing a diffuse wall, the
// reference setup for the 1/d falloff of 2D diffuse lighting
func NewFalloffScene() *Scene {
	return withView(New(
		Entry{Name: "light", Shape: geometry.NewCircle(math.NewVec2(0.2, 0.5), 0.03), Material: material.NewEmissive(math.Gray(10))},
		Entry{Name: "wall", Shape: geometry.NewSegment(math.NewVec2(0.9, 0), math.NewVec2(0.9, 1)), Material: material.NewDiffuse(math.Gray(0.8))},
	))
}

// NewPrismScene creates a glass triangle lit by a bar light
func NewPrismScene() *Scene {
	prism := &material.Refractive{IOR: 1.6, Fresnel: true}

	return withView(New(
		Entry{Name: "bar light", Shape: geometry.NewSegment(math.NewVec2(0.05, 0.3), math.NewVec2(0.05, 0.7)), Material: material.NewEmissive(math.Gray(3))},
		Entry{Name: "prism", Shape: geometry.NewRegularPolygon(math.NewVec2(0.5, 0.5), 0.2, 3, 0), Material: prism},
		Entry{Name: "screen", Shape: geometry.NewSegment(math.NewVec2(0.95, 0.05), math.NewVec2(0.95, 0.95)), Material: material.NewDiffuse(math.Gray(0.9))},
	))
}

// NewAbsorptionScene creates three absorbing slabs of increasing thickness in front of a light
func NewAbsorptionScene() *Scene {
	medium := material.NewAbsorbing(math.NewColor(2.0, 5.0, 9.0))

	return withView(New(
		Entry{Name: "light", Shape: geometry.NewRect(math.NewVec2(0.05, 0.1), math.NewVec2(0.1, 0.9)), Material: material.NewEmissive(math.Gray(2))},
		Entry{Name: "thin", Shape: geometry.NewRect(math.NewVec2(0.3, 0.7), math.NewVec2(0.35, 0.9)), Material: medium},
		Entry{Name: "medium", Shape: geometry.NewRect(math.NewVec2(0.3, 0.4), math.NewVec2(0.45, 0.6)), Material: medium},
		Entry{Name: "thick", Shape: geometry.NewRect(math.NewVec2(0.3, 0.1), math.NewVec2(0.6, 0.3)), Material: medium},
		Entry{Name: "wall", Shape: geometry.NewSegment(math.NewVec2(0.9, 0.05), math.NewVec2(0.9, 0.95)), Material: material.NewDiffuse(math.Gray(0.9))},
	))
}

// NewMirrorsScene creates two facing mirrors around a light, the mutual
// reflection case bounded only by the depth limit
func NewMirrorsScene() *Scene {
	mirror := material.NewSpecular(0.95)

	s := withView(New(
		Entry{Name: "light", Shape: geometry.NewCircle(math.NewVec2(0.5, 0.5), 0.05), Material: material.NewEmissive(math.NewColor(4, 2, 1))},
		Entry{Name: "top mirror", Shape: geometry.NewSegment(math.NewVec2(0.1, 0.8), math.NewVec2(0.9, 0.8)), Material: mirror},
		Entry{Name: "bottom mirror", Shape: geometry.NewSegment(math.NewVec2(0.1, 0.2), math.NewVec2(0.9, 0.2)), Material: mirror},
	))
	s.SamplingConfig.MaxDepth = 16
	return s
}
