package math

import "math"

// Color holds per-channel radiance. Values are not bounded above.
type Color struct {
	R, G, B float64
}

// NewColor creates a new Color
func NewColor(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// Gray returns a color with all channels set to v
func Gray(v float64) Color {
	return Color{R: v, G: v, B: v}
}

// Add returns the channel-wise sum of two colors
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B}
}

// Multiply returns the color scaled by a scalar
func (c Color) Multiply(scalar float64) Color {
	return Color{c.R * scalar, c.G * scalar, c.B * scalar}
}

// MultiplyColor returns the channel-wise product of two colors
func (c Color) MultiplyColor(other Color) Color {
	return Color{
		R: c.R * other.R,
		G: c.G * other.G,
		B: c.B * other.B,
	}
}

// Luminance returns the perceptual luminance of an RGB color
// Uses standard luminance weights: 0.299*R + 0.587*G + 0.114*B
func (c Color) Luminance() float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// MaxComponent returns the largest channel value
func (c Color) MaxComponent() float64 {
	return max(c.R, c.G, c.B)
}

// IsBlack reports whether every channel is zero
func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// IsValid reports whether every channel is finite and non-negative
func (c Color) IsValid() bool {
	for _, v := range [3]float64{c.R, c.G, c.B} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// Clamp returns a color with channels clamped to [minVal, maxVal]
func (c Color) Clamp(minVal, maxVal float64) Color {
	return Color{
		R: max(minVal, min(maxVal, c.R)),
		G: max(minVal, min(maxVal, c.G)),
		B: max(minVal, min(maxVal, c.B)),
	}
}

// GammaCorrect applies gamma correction to color values
func (c Color) GammaCorrect(gamma float64) Color {
	invGamma := 1.0 / gamma
	return Color{
		R: math.Pow(c.R, invGamma),
		G: math.Pow(c.G, invGamma),
		B: math.Pow(c.B, invGamma),
	}
}
