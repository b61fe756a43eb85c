package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-light2d/pkg/core"
	"github.com/df07/go-light2d/pkg/integrator"
	"github.com/df07/go-light2d/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize           int // Size of each tile (32x32 recommended)
	InitialSamples     int // Samples for first pass (1 recommended)
	MaxSamplesPerPixel int // Maximum total samples per pixel (0 = scene SamplesPerPixel)
	MaxPasses          int // Maximum number of passes
	NumWorkers         int // Number of parallel workers (0 = use CPU count)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:           32,
		InitialSamples:     1,
		MaxSamplesPerPixel: 0, // Use the scene's sampling config
		MaxPasses:          7,
		NumWorkers:         0, // Auto-detect CPU count
	}
}

// ProgressiveRaytracer manages progressive rendering with multiple passes
type ProgressiveRaytracer struct {
	scene         *scene.Scene
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile      // Tile management
	currentPass   int          // Progressive state
	buffer        *PixelBuffer // Shared pixel statistics (global image coordinates)
	workerPool    *WorkerPool  // Worker pool for parallel processing
	logger        core.Logger  // Logger for rendering output
}

// NewProgressiveRaytracer creates a new progressive raytracer. The scene and its
// sampling config are validated here so no work starts on bad input.
// config.MaxSamplesPerPixel, when set, overrides the scene's SamplesPerPixel.
func NewProgressiveRaytracer(s *scene.Scene, config ProgressiveConfig, integratorInst integrator.Integrator, logger core.Logger) (*ProgressiveRaytracer, error) {
	if s == nil {
		return nil, fmt.Errorf("nil scene: %w", scene.ErrEmpty)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}

	samplingConfig := s.SamplingConfig
	if config.MaxSamplesPerPixel > 0 {
		samplingConfig.SamplesPerPixel = config.MaxSamplesPerPixel
	}
	if err := samplingConfig.Validate(); err != nil {
		return nil, err
	}
	config.MaxSamplesPerPixel = samplingConfig.SamplesPerPixel

	if config.TileSize <= 0 {
		return nil, fmt.Errorf("tile size %d: %w", config.TileSize, scene.ErrInvalidConfig)
	}
	if config.MaxPasses <= 0 {
		return nil, fmt.Errorf("max passes %d: %w", config.MaxPasses, scene.ErrInvalidConfig)
	}
	config.InitialSamples = min(max(1, config.InitialSamples), config.MaxSamplesPerPixel)
	// A pass must add at least one sample
	config.MaxPasses = min(config.MaxPasses, config.MaxSamplesPerPixel-config.InitialSamples+1)

	if integratorInst == nil {
		integratorInst = integrator.NewRayTracingIntegrator(samplingConfig)
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	width, height := samplingConfig.Width, samplingConfig.Height
	tiles := NewTileGrid(width, height, config.TileSize, samplingConfig.Seed)
	tileRenderer := NewTileRenderer(s, integratorInst, samplingConfig)

	return &ProgressiveRaytracer{
		scene:       s,
		width:       width,
		height:      height,
		config:      config,
		tiles:       tiles,
		currentPass: 0,
		buffer:      NewPixelBuffer(width, height),
		workerPool:  NewWorkerPool(tileRenderer, len(tiles), config.NumWorkers),
		logger:      logger,
	}, nil
}

// Config returns the effective progressive configuration
func (pr *ProgressiveRaytracer) Config() ProgressiveConfig {
	return pr.config
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return pr.config.MaxSamplesPerPixel
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.config.MaxSamplesPerPixel - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	// Calculate target total samples for this pass
	targetSamples := pr.config.InitialSamples + (passNumber-1)*samplesPerPass

	// For the final pass, use all remaining samples
	if passNumber >= pr.config.MaxPasses {
		targetSamples = pr.config.MaxSamplesPerPixel
	}

	return targetSamples
}

// RenderPass renders a single progressive pass using parallel processing. It
// returns once every tile has finished the pass.
func (pr *ProgressiveRaytracer) RenderPass(passNumber int, tileCallback func(TileCompletionResult)) (*Image, RenderStats, error) {
	pr.currentPass = passNumber

	// Calculate target samples for this pass
	targetSamples := pr.getSamplesForPass(passNumber)

	pr.logger.Printf("Pass %d: Target %d samples per pixel (using %d workers)...\n",
		passNumber, targetSamples, pr.workerPool.GetNumWorkers())

	pr.workerPool.Start()

	// Submit all tiles as tasks
	for taskID, tile := range pr.tiles {
		pr.workerPool.SubmitTask(TileTask{
			Tile:          tile,
			PassNumber:    passNumber,
			TargetSamples: targetSamples,
			TaskID:        taskID,
			Buffer:        pr.buffer,
		})
	}

	// Wait for all tiles to complete and dispatch tile callbacks in thread-safe manner
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			return nil, RenderStats{}, result.Error
		}

		tile := pr.tiles[result.TaskID]
		tile.PassesCompleted++

		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:      tile.Bounds.Min.X / pr.config.TileSize,
				TileY:      tile.Bounds.Min.Y / pr.config.TileSize,
				Bounds:     tile.Bounds,
				TileImage:  pr.extractTileImage(tile),
				PassNumber: passNumber,

				// Progress information
				TileNumber:  i + 1,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.config.MaxPasses,
			})
		}
	}

	// Assemble image and calculate final stats from actual pixel data
	img, stats := pr.assembleCurrentImage(targetSamples)

	return img, stats, nil
}

// extractTileImage copies the current averages of a tile into its own image
func (pr *ProgressiveRaytracer) extractTileImage(tile *Tile) *Image {
	bounds := tile.Bounds
	tileImage := NewImage(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			tileImage.Set(x-bounds.Min.X, y-bounds.Min.Y, pr.buffer.At(x, y).GetColor())
		}
	}

	return tileImage
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *Image
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int             // Tile coordinates (not pixel coordinates)
	TileY      int             // ...
	Bounds     image.Rectangle // Pixel bounds of the tile
	TileImage  *Image          // Image data for just this tile
	PassNumber int             // Which pass this tile was rendered in

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders with channel-based communication.
// Returns channels for events. The caller should read from these channels in separate goroutines.
// If options.TileUpdates is false, the tile channel will be closed immediately and no tile events will be generated.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100) // Buffer for tiles
	errChan := make(chan error, 1)

	// If tile updates are disabled, close the channel immediately
	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.workerPool.Stop()

		pr.logger.Printf("Starting progressive rendering with %d passes...\n", pr.config.MaxPasses)

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			// Check if client disconnected before starting this pass
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			startTime := time.Now()

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Channel full, drop the update
					}
				}
			}

			img, stats, err := pr.RenderPass(pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (average: %.1f samples/pixel)\n",
				pass, time.Since(startTime), stats.AverageSamples)

			isLast := pass == pr.config.MaxPasses
			select {
			case passChan <- PassResult{PassNumber: pass, Image: img, Stats: stats, IsLast: isLast}:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}

// Render runs every pass and returns the final image
func (pr *ProgressiveRaytracer) Render(ctx context.Context) (*Image, RenderStats, error) {
	passChan, _, errChan := pr.RenderProgressive(ctx, RenderOptions{})

	var last PassResult
	for result := range passChan {
		last = result
	}
	if err := <-errChan; err != nil {
		return nil, RenderStats{}, err
	}
	if last.Image == nil {
		return nil, RenderStats{}, fmt.Errorf("render produced no passes")
	}
	return last.Image, last.Stats, nil
}

// assembleCurrentImage creates an image from the current state of the shared pixel stats
// and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage(targetSamples int) (*Image, RenderStats) {
	img := pr.buffer.Finalize()

	stats := RenderStats{
		TotalPixels:    pr.width * pr.height,
		MaxSamples:     targetSamples,
		MinSamples:     pr.config.MaxSamplesPerPixel, // Start high, will be reduced
		MaxSamplesUsed: 0,
	}

	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			count := pr.buffer.At(x, y).SampleCount
			stats.TotalSamples += count
			stats.MinSamples = min(stats.MinSamples, count)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, count)
		}
	}

	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)

	return img, stats
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of passes completed for this tile
	Sampler         core.Sampler    // Tile-specific generator for deterministic results
}

// NewTile creates a new tile whose generator depends only on the base seed and tile id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:              id,
		Bounds:          bounds,
		PassesCompleted: 0,
		Sampler:         core.NewSeededSampler(core.SeedFor(seed, id)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}
