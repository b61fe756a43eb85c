package renderer

import (
	"image"
	stdmath "math"

	"github.com/df07/go-light2d/pkg/core"
	"github.com/df07/go-light2d/pkg/integrator"
	"github.com/df07/go-light2d/pkg/math"
	"github.com/df07/go-light2d/pkg/scene"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	viewport   Viewport
	config     scene.SamplingConfig
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator.
// config overrides the scene's own sampling settings.
func NewTileRenderer(s *scene.Scene, integratorInst integrator.Integrator, config scene.SamplingConfig) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		integrator: integratorInst,
		viewport:   NewViewport(s.View, config.Width, config.Height),
		config:     config,
	}
}

// RenderTileBounds renders pixels within the specified bounds using the integrator
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, buffer *PixelBuffer, sampler core.Sampler, targetSamples int) RenderStats {
	// Initialize statistics tracking for this specific bounds
	stats := tr.initRenderStatsForBounds(bounds, targetSamples)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			samplesUsed := tr.adaptiveSamplePixel(i, j, buffer.At(i, j), sampler, targetSamples)
			tr.updateStats(&stats, samplesUsed)
		}
	}

	// Finalize statistics
	tr.finalizeStats(&stats)
	return stats
}

// adaptiveSamplePixel takes samples until the pixel converges or reaches maxSamples
func (tr *TileRenderer) adaptiveSamplePixel(i, j int, ps *PixelStats, sampler core.Sampler, maxSamples int) int {
	initialSampleCount := ps.SampleCount

	for ps.SampleCount < maxSamples && !tr.shouldStopSampling(ps, maxSamples) {
		ray := tr.generateRay(i, j, ps, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.scene, sampler))
	}

	return ps.SampleCount - initialSampleCount
}

// generateRay starts a ray at a jittered point inside the pixel, heading in the
// direction the sampling strategy assigns to the pixel's next sample
func (tr *TileRenderer) generateRay(i, j int, ps *PixelStats, sampler core.Sampler) math.Ray {
	origin := tr.viewport.PixelToWorld(i, j, sampler.Get2D())

	var angle float64
	switch tr.config.Strategy {
	case scene.StrategyUniform:
		angle = core.SampleUniformAngle(sampler.Get1D())
	case scene.StrategyJittered:
		angle = core.SampleStratifiedAngle(ps.SampleCount%tr.config.SamplesPerPixel, tr.config.SamplesPerPixel, sampler.Get1D())
	default:
		if ps.SampleCount == 0 {
			ps.Offset = sampler.Get1D()
		}
		u := radicalInverse(ps.SampleCount) + ps.Offset
		angle = core.SampleUniformAngle(u - stdmath.Floor(u))
	}

	return math.Ray{Origin: origin, Direction: math.FromAngle(angle)}
}

// radicalInverse is the base-2 van der Corput sequence: every prefix of length 2^k
// has exactly one point in each of 2^k equal strata
func radicalInverse(index int) float64 {
	result := 0.0
	scale := 0.5
	for i := uint(index); i > 0; i >>= 1 {
		if i&1 == 1 {
			result += scale
		}
		scale *= 0.5
	}
	return result
}

// shouldStopSampling determines if adaptive sampling should stop based on perceptual relative error
func (tr *TileRenderer) shouldStopSampling(ps *PixelStats, maxSamples int) bool {
	if tr.config.AdaptiveThreshold <= 0 {
		return false
	}

	// Calculate minimum samples as percentage of max samples, but ensure at least 2 samples
	minSamples := max(2, int(float64(maxSamples)*tr.config.AdaptiveMinSamples))
	if ps.SampleCount < minSamples {
		return false
	}

	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	variance := ps.Variance()

	// Avoid division by zero for black pixels
	if mean <= 1e-8 {
		return variance < tr.config.AdaptiveDarkThreshold
	}

	// Relative standard error of the mean
	relativeError := stdmath.Sqrt(variance/float64(ps.SampleCount)) / mean

	return relativeError < tr.config.AdaptiveThreshold
}

// initRenderStatsForBounds initializes the render statistics tracking for specific bounds
func (tr *TileRenderer) initRenderStatsForBounds(bounds image.Rectangle, maxSamples int) RenderStats {
	pixelCount := bounds.Dx() * bounds.Dy()
	return RenderStats{
		TotalPixels:    pixelCount,
		TotalSamples:   0,
		AverageSamples: 0,
		MaxSamples:     maxSamples,
		MinSamples:     maxSamples, // Start with max, will be reduced
		MaxSamplesUsed: 0,
	}
}

// updateStats updates the render statistics with data from a single pixel
func (tr *TileRenderer) updateStats(stats *RenderStats, samplesUsed int) {
	stats.TotalSamples += samplesUsed
	stats.MinSamples = min(stats.MinSamples, samplesUsed)
	stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
}

// finalizeStats calculates final statistics after all pixels are rendered
func (tr *TileRenderer) finalizeStats(stats *RenderStats) {
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
}
