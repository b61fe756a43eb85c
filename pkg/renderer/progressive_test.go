package renderer

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/df07/go-light2d/pkg/core"
	"github.com/df07/go-light2d/pkg/geometry"
	"github.com/df07/go-light2d/pkg/material"
	mathpkg "github.com/df07/go-light2d/pkg/math"
	"github.com/df07/go-light2d/pkg/scene"
)

// falloffScene builds a small light-and-wall scene rendered without adaptive sampling
func falloffScene(t *testing.T, radiance float64, size, spp int, seed int64, strategy scene.Strategy) *scene.Scene {
	t.Helper()
	s, err := scene.New(
		scene.Entry{Name: "light", Shape: geometry.NewCircle(mathpkg.NewVec2(0.3, 0.5), 0.08), Material: material.NewEmissive(mathpkg.Gray(radiance))},
		scene.Entry{Name: "mirror", Shape: geometry.NewSegment(mathpkg.NewVec2(0.1, 0.1), mathpkg.NewVec2(0.5, 0.15)), Material: material.NewSpecular(0.9)},
		scene.Entry{Name: "wall", Shape: geometry.NewSegment(mathpkg.NewVec2(0.9, 0), mathpkg.NewVec2(0.9, 1)), Material: material.NewDiffuse(mathpkg.Gray(0.8))},
	)
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	s.SamplingConfig.Width = size
	s.SamplingConfig.Height = size
	s.SamplingConfig.SamplesPerPixel = spp
	s.SamplingConfig.Seed = seed
	s.SamplingConfig.Strategy = strategy
	s.SamplingConfig.AdaptiveThreshold = 0
	return s
}

func render(t *testing.T, s *scene.Scene, config ProgressiveConfig) *Image {
	t.Helper()
	pr, err := NewProgressiveRaytracer(s, config, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create raytracer: %v", err)
	}
	img, _, err := pr.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return img
}

func TestProgressiveSampleCalculation(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.InitialSamples = 1
	config.MaxSamplesPerPixel = 50
	config.MaxPasses = 7

	pr := &ProgressiveRaytracer{
		config: config,
	}

	// Pass 1: 1 sample
	// Pass 2-6: (50-1)/6 = 8.16 -> 8 samples per pass -> 1 + 8*1 = 9, 1 + 8*2 = 17, etc.
	// Pass 7: 50 (final pass gets all remaining)
	expectedTotalSamples := []int{1, 9, 17, 25, 33, 41, 50}

	for pass := 1; pass <= 7; pass++ {
		totalSamples := pr.getSamplesForPass(pass)

		if totalSamples != expectedTotalSamples[pass-1] {
			t.Errorf("Pass %d: expected %d total samples, got %d",
				pass, expectedTotalSamples[pass-1], totalSamples)
		}
	}

	pr.config.MaxPasses = 1
	if got := pr.getSamplesForPass(1); got != 50 {
		t.Errorf("Single pass: expected 50 samples, got %d", got)
	}
}

func TestProgressiveConfig(t *testing.T) {
	config := DefaultProgressiveConfig()

	if config.TileSize != 32 {
		t.Errorf("Expected default tile size 32, got %d", config.TileSize)
	}
	if config.InitialSamples != 1 {
		t.Errorf("Expected default initial samples 1, got %d", config.InitialSamples)
	}
	if config.MaxSamplesPerPixel != 0 {
		t.Errorf("Expected max samples to default to the scene's, got %d", config.MaxSamplesPerPixel)
	}
	if config.MaxPasses != 7 {
		t.Errorf("Expected default max passes 7, got %d", config.MaxPasses)
	}
}

func TestNewProgressiveRaytracer_ClampsPasses(t *testing.T) {
	s := falloffScene(t, 10, 8, 3, 1, scene.StrategyStratified)
	pr, err := NewProgressiveRaytracer(s, DefaultProgressiveConfig(), nil, nil)
	if err != nil {
		t.Fatalf("Failed to create raytracer: %v", err)
	}

	// 3 samples allow at most 3 passes of one new sample each
	if got := pr.Config().MaxPasses; got != 3 {
		t.Errorf("Expected passes clamped to 3, got %d", got)
	}
	if got := pr.Config().MaxSamplesPerPixel; got != 3 {
		t.Errorf("Expected max samples from the scene, got %d", got)
	}
}

func TestNewProgressiveRaytracer_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *scene.Scene, c *ProgressiveConfig)
		want   error
	}{
		{"zero width", func(s *scene.Scene, c *ProgressiveConfig) { s.SamplingConfig.Width = 0 }, scene.ErrInvalidConfig},
		{"negative depth", func(s *scene.Scene, c *ProgressiveConfig) { s.SamplingConfig.MaxDepth = -1 }, scene.ErrInvalidConfig},
		{"jittered with adaptive", func(s *scene.Scene, c *ProgressiveConfig) {
			s.SamplingConfig.Strategy = scene.StrategyJittered
			s.SamplingConfig.AdaptiveThreshold = 0.05
		}, scene.ErrInvalidConfig},
		{"zero tile size", func(s *scene.Scene, c *ProgressiveConfig) { c.TileSize = 0 }, scene.ErrInvalidConfig},
		{"degenerate shape", func(s *scene.Scene, c *ProgressiveConfig) {
			s.Entries[0].Shape = geometry.NewCircle(mathpkg.NewVec2(0, 0), 0)
		}, geometry.ErrDegenerate},
		{"no lights", func(s *scene.Scene, c *ProgressiveConfig) { s.Lights = nil }, scene.ErrNoLights},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := falloffScene(t, 10, 8, 4, 1, scene.StrategyStratified)
			config := DefaultProgressiveConfig()
			tt.modify(s, &config)

			_, err := NewProgressiveRaytracer(s, config, nil, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRender_DeterministicAcrossWorkers(t *testing.T) {
	for _, strategy := range []scene.Strategy{scene.StrategyUniform, scene.StrategyStratified, scene.StrategyJittered} {
		t.Run(string(strategy), func(t *testing.T) {
			config := DefaultProgressiveConfig()
			config.TileSize = 8
			config.MaxPasses = 3

			config.NumWorkers = 1
			single := render(t, falloffScene(t, 10, 24, 8, 5, strategy), config)

			config.NumWorkers = 4
			parallel := render(t, falloffScene(t, 10, 24, 8, 5, strategy), config)

			for i := range single.Pix {
				if single.Pix[i] != parallel.Pix[i] {
					t.Fatalf("Pixel %d differs: %v (1 worker) vs %v (4 workers)", i, single.Pix[i], parallel.Pix[i])
				}
			}
		})
	}
}

func TestRender_AdaptiveDeterministicAcrossWorkers(t *testing.T) {
	s1 := scene.NewDefaultScene()
	s1.SamplingConfig.Width, s1.SamplingConfig.Height, s1.SamplingConfig.SamplesPerPixel = 20, 20, 16
	s2 := scene.NewDefaultScene()
	s2.SamplingConfig = s1.SamplingConfig

	config := DefaultProgressiveConfig()
	config.TileSize = 6
	config.NumWorkers = 1
	a := render(t, s1, config)
	config.NumWorkers = 3
	b := render(t, s2, config)

	if a.TotalEnergy() != b.TotalEnergy() {
		t.Errorf("Energy differs between worker counts: %v vs %v", a.TotalEnergy(), b.TotalEnergy())
	}
}

func TestRender_SeedChangesNoise(t *testing.T) {
	config := DefaultProgressiveConfig()
	a := render(t, falloffScene(t, 10, 8, 4, 1, scene.StrategyUniform), config)
	b := render(t, falloffScene(t, 10, 8, 4, 2, scene.StrategyUniform), config)
	if a.TotalEnergy() == b.TotalEnergy() {
		t.Error("Expected different seeds to give different noise")
	}
}

func TestRender_LinearInEmission(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.MaxPasses = 2

	base := render(t, falloffScene(t, 10, 16, 8, 3, scene.StrategyStratified), config)
	doubled := render(t, falloffScene(t, 20, 16, 8, 3, scene.StrategyStratified), config)

	if base.TotalEnergy() <= 0 {
		t.Fatal("Expected a lit image")
	}
	ratio := doubled.TotalEnergy() / base.TotalEnergy()
	if math.Abs(ratio-2) > 1e-9 {
		t.Errorf("Expected image energy to double with emission, ratio %v", ratio)
	}
}

// pixelVariance renders the scene with several seeds and returns the mean over
// pixels of the variance between runs
func pixelVariance(t *testing.T, spp, runs int) float64 {
	const size = 12
	images := make([]*Image, runs)
	for r := 0; r < runs; r++ {
		config := DefaultProgressiveConfig()
		config.MaxPasses = 1
		images[r] = render(t, falloffScene(t, 10, size, spp, int64(100+r), scene.StrategyUniform), config)
	}

	total := 0.0
	for i := 0; i < size*size; i++ {
		mean, meanSq := 0.0, 0.0
		for _, img := range images {
			l := img.Pix[i].Luminance()
			mean += l
			meanSq += l * l
		}
		mean /= float64(runs)
		meanSq /= float64(runs)
		total += meanSq - mean*mean
	}
	return total / float64(size*size)
}

func TestRender_VarianceDecreasesWithSamples(t *testing.T) {
	low := pixelVariance(t, 4, 16)
	high := pixelVariance(t, 64, 16)

	if low <= 0 {
		t.Fatal("Expected noisy estimates at low sample counts")
	}
	// Expected ratio is 16; leave room for estimation noise
	if high > low/4 {
		t.Errorf("Expected variance to shrink with more samples: %v at 4 spp, %v at 64 spp", low, high)
	}
}

func TestRenderProgressive_Passes(t *testing.T) {
	s := falloffScene(t, 10, 16, 12, 1, scene.StrategyStratified)
	config := DefaultProgressiveConfig()
	config.TileSize = 8
	config.MaxPasses = 3

	pr, err := NewProgressiveRaytracer(s, config, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create raytracer: %v", err)
	}

	passChan, tileChan, errChan := pr.RenderProgressive(context.Background(), RenderOptions{TileUpdates: true})

	tiles := 0
	done := make(chan struct{})
	go func() {
		for range tileChan {
			tiles++
		}
		close(done)
	}()

	var passes []PassResult
	for result := range passChan {
		passes = append(passes, result)
	}
	<-done
	if err := <-errChan; err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(passes) != 3 {
		t.Fatalf("Expected 3 passes, got %d", len(passes))
	}
	expectedSamples := []int{1, 6, 12}
	for i, pass := range passes {
		if pass.Stats.MinSamples != expectedSamples[i] || pass.Stats.MaxSamplesUsed != expectedSamples[i] {
			t.Errorf("Pass %d: expected %d samples for every pixel, got %d-%d",
				pass.PassNumber, expectedSamples[i], pass.Stats.MinSamples, pass.Stats.MaxSamplesUsed)
		}
		if pass.IsLast != (i == len(passes)-1) {
			t.Errorf("Pass %d: IsLast = %v", pass.PassNumber, pass.IsLast)
		}
	}
	if tiles != 3*4 {
		t.Errorf("Expected 12 tile updates, got %d", tiles)
	}
}

func TestRender_Cancelled(t *testing.T) {
	pr, err := NewProgressiveRaytracer(falloffScene(t, 10, 8, 4, 1, scene.StrategyStratified), DefaultProgressiveConfig(), nil, nil)
	if err != nil {
		t.Fatalf("Failed to create raytracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := pr.Render(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNewTileGrid(t *testing.T) {
	// Test tile grid generation for a 400x225 image with 64x64 tiles
	width, height, tileSize := 400, 225, 64
	tiles := NewTileGrid(width, height, tileSize, 42)

	expectedTilesX := (width + tileSize - 1) / tileSize   // 7 tiles
	expectedTilesY := (height + tileSize - 1) / tileSize  // 4 tiles
	expectedTotalTiles := expectedTilesX * expectedTilesY // 28 tiles

	if len(tiles) != expectedTotalTiles {
		t.Errorf("Expected %d tiles, got %d", expectedTotalTiles, len(tiles))
	}

	// Tiles cover the entire image without gaps or overlaps
	covered := make([][]bool, height)
	for y := range covered {
		covered[y] = make([]bool, width)
	}

	for _, tile := range tiles {
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				if x >= width || y >= height {
					t.Errorf("Tile %d extends beyond image bounds at (%d,%d)", tile.ID, x, y)
				}
				if covered[y][x] {
					t.Errorf("Pixel (%d,%d) is covered by multiple tiles", x, y)
				}
				covered[y][x] = true
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !covered[y][x] {
				t.Errorf("Pixel (%d,%d) is not covered by any tile", x, y)
			}
		}
	}
}

func TestTileDeterministicRandom(t *testing.T) {
	bounds := image.Rect(0, 0, 64, 64)
	tile1 := NewTile(42, bounds, 7)
	tile2 := NewTile(42, bounds, 7)

	// Same ID and seed produce the same sequence
	val1 := tile1.Sampler.Get1D()
	val2 := tile2.Sampler.Get1D()

	if val1 != val2 {
		t.Errorf("Tiles with same ID should produce same random values: %f != %f", val1, val2)
	}

	// Different tile IDs should produce different sequences
	tile3 := NewTile(43, bounds, 7)
	if val1 == tile3.Sampler.Get1D() {
		t.Error("Tiles with different IDs should produce different random values")
	}

	// So should a different base seed
	tile4 := NewTile(42, bounds, 8)
	if val1 == tile4.Sampler.Get1D() {
		t.Error("Tiles with different seeds should produce different random values")
	}
}

var _ core.Logger = (*DefaultLogger)(nil)
