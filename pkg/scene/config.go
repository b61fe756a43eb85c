package scene

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for out-of-range sampling parameters
var ErrInvalidConfig = errors.New("invalid sampling config")

// Strategy selects how sample directions are drawn for a pixel
type Strategy string

const (
	// StrategyUniform draws every direction independently and uniformly
	StrategyUniform Strategy = "uniform"
	// StrategyStratified uses a van der Corput sequence rotated by a random per-pixel offset
	StrategyStratified Strategy = "stratified"
	// StrategyJittered splits the circle into SamplesPerPixel strata with one random sample each.
	// Requires every pixel to take the full sample count, so adaptive sampling must be off.
	StrategyJittered Strategy = "jittered"
)

// ParseStrategy converts a name into a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategyUniform, StrategyStratified, StrategyJittered:
		return s, nil
	case "":
		return StrategyStratified, nil
	default:
		return "", fmt.Errorf("unknown sampling strategy %q: %w", name, ErrInvalidConfig)
	}
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width                 int      // Image width
	Height                int      // Image height
	SamplesPerPixel       int      // Number of rays per pixel
	MaxDepth              int      // Maximum ray bounce depth
	Strategy              Strategy // Direction sampling strategy
	Seed                  int64    // Base seed; each tile derives its own generator from it
	AdaptiveMinSamples    float64  // Minimum samples as percentage of max samples (0.0-1.0)
	AdaptiveThreshold     float64  // Relative error threshold for adaptive convergence (0 disables)
	AdaptiveDarkThreshold float64  // Variance threshold for near-black pixels
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:                 512,
		Height:                512,
		SamplesPerPixel:       64,
		MaxDepth:              8,
		Strategy:              StrategyStratified,
		Seed:                  42,
		AdaptiveMinSamples:    0.25,
		AdaptiveThreshold:     0.01,
		AdaptiveDarkThreshold: 1e-6,
	}
}

// Validate checks that the configuration describes a finite, non-empty render
func (c SamplingConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("image size %dx%d: %w", c.Width, c.Height, ErrInvalidConfig)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel %d: %w", c.SamplesPerPixel, ErrInvalidConfig)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth %d: %w", c.MaxDepth, ErrInvalidConfig)
	}
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if c.AdaptiveMinSamples < 0 || c.AdaptiveMinSamples > 1 {
		return fmt.Errorf("adaptive min samples %v must be in [0,1]: %w", c.AdaptiveMinSamples, ErrInvalidConfig)
	}
	if c.AdaptiveThreshold < 0 || c.AdaptiveDarkThreshold < 0 {
		return fmt.Errorf("adaptive thresholds must be non-negative: %w", ErrInvalidConfig)
	}
	if c.Strategy == StrategyJittered && c.AdaptiveThreshold > 0 {
		return fmt.Errorf("jittered sampling needs the full sample count, disable adaptive sampling: %w", ErrInvalidConfig)
	}
	return nil
}
