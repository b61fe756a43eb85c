package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-light2d/pkg/loaders"
	"github.com/df07/go-light2d/pkg/output"
	"github.com/df07/go-light2d/pkg/renderer"
	"github.com/df07/go-light2d/pkg/scene"
)

// Config holds the command line options
type Config struct {
	SceneType string
	Width     int
	Height    int
	Samples   int
	MaxDepth  int
	Passes    int
	Workers   int
	Seed      int64
	Strategy  string
	Adaptive  float64
	Exposure  float64
	Reinhard  bool
	Overlay   bool
	Scale     int
	Out       string
	Help      bool

	set map[string]bool // Flags given explicitly; only these override the scene
}

func parseFlags(args []string) (Config, error) {
	var config Config
	fs := flag.NewFlagSet("light2d", flag.ContinueOnError)
	fs.StringVar(&config.SceneType, "scene", "default", "Built-in scene name, scenes/<name>.json, or a .json path")
	fs.IntVar(&config.Width, "width", 0, "Image width (0 = scene setting)")
	fs.IntVar(&config.Height, "height", 0, "Image height (0 = scene setting)")
	fs.IntVar(&config.Samples, "spp", 0, "Maximum samples per pixel (0 = scene setting)")
	fs.IntVar(&config.MaxDepth, "depth", 0, "Maximum recursion depth")
	fs.IntVar(&config.Passes, "passes", 7, "Number of progressive passes")
	fs.IntVar(&config.Workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	fs.Int64Var(&config.Seed, "seed", 0, "Base random seed")
	fs.StringVar(&config.Strategy, "strategy", "", "Direction sampling: uniform, stratified or jittered")
	fs.Float64Var(&config.Adaptive, "adaptive", 0, "Adaptive sampling relative error threshold (0 disables)")
	fs.Float64Var(&config.Exposure, "exposure", 1.0, "Linear exposure applied before tone mapping")
	fs.BoolVar(&config.Reinhard, "reinhard", false, "Compress highlights instead of clipping")
	fs.BoolVar(&config.Overlay, "overlay", false, "Draw primitive outlines over the render")
	fs.IntVar(&config.Scale, "scale", 1, "Integer upscaling factor for the saved image")
	fs.StringVar(&config.Out, "out", "", "Output PNG path (default output/<scene>/render_<timestamp>.png)")
	fs.BoolVar(&config.Help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return config, err
	}

	config.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { config.set[f.Name] = true })

	if config.Help {
		showHelp(fs)
	}
	return config, nil
}

func showHelp(fs *flag.FlagSet) {
	fmt.Println("2D Light Transport Renderer")
	fmt.Println("Usage: light2d [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Built-in scenes:")
	for _, info := range scene.ListScenes() {
		fmt.Printf("  %-12s %s\n", info.ID, info.Description)
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
}

func main() {
	config, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if config.Help {
		return
	}

	if err := run(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(config Config) error {
	fmt.Println("Starting 2D Light Transport Renderer...")

	selected, err := createScene(config.SceneType)
	if err != nil {
		return err
	}
	if err := applyOverrides(selected, config); err != nil {
		return err
	}

	progressiveConfig := renderer.DefaultProgressiveConfig()
	progressiveConfig.MaxPasses = config.Passes
	progressiveConfig.NumWorkers = config.Workers

	raytracer, err := renderer.NewProgressiveRaytracer(selected, progressiveConfig, nil, renderer.NewDefaultLogger())
	if err != nil {
		return err
	}

	// Ctrl-C stops after the current pass
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startTime := time.Now()
	img, stats, err := raytracer.Render(ctx)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	fmt.Printf("Samples per pixel: %.1f (range %d - %d)\n",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)

	rgba := output.ToneMap(img, output.Options{Exposure: config.Exposure, Gamma: 2.2, Reinhard: config.Reinhard})
	if config.Overlay {
		viewport := renderer.NewViewport(selected.View, img.Width, img.Height)
		output.Overlay(rgba, selected, viewport)
	}
	rgba = output.Upscale(rgba, config.Scale)

	filename := config.Out
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join(createOutputDir(config.SceneType), fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := output.SavePNG(filename, rgba); err != nil {
		return err
	}

	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

// createScene resolves a built-in scene name or a JSON scene file
func createScene(sceneType string) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, fmt.Errorf("scene name cannot be empty")
	}

	if s, err := scene.Builtin(sceneType); err == nil {
		fmt.Printf("Using %s scene...\n", sceneType)
		return s, nil
	}

	if s := tryLoadJSONScene(sceneType); s != nil {
		return s, nil
	}

	// Report the loader error for explicit paths
	if strings.HasSuffix(sceneType, ".json") {
		_, err := loaders.LoadJSON(sceneType)
		return nil, err
	}
	return nil, fmt.Errorf("unknown scene %q (built-in scenes: %s)", sceneType, strings.Join(scene.Names(), ", "))
}

// tryLoadJSONScene loads a scene given as a .json path or as a name under scenes/
func tryLoadJSONScene(sceneType string) *scene.Scene {
	var filename string
	if strings.HasSuffix(sceneType, ".json") {
		filename = sceneType
	} else {
		filename = filepath.Join("scenes", sceneType+".json")
	}

	if _, err := os.Stat(filename); err != nil {
		return nil
	}

	s, err := loaders.LoadJSON(filename)
	if err != nil {
		fmt.Printf("Failed to load %s: %v\n", filename, err)
		return nil
	}
	fmt.Printf("Using scene file %s...\n", filename)
	return s
}

// createOutputDir returns output/<scene base name>
func createOutputDir(sceneType string) string {
	base := strings.TrimSuffix(filepath.Base(sceneType), filepath.Ext(sceneType))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "scene"
	}
	return filepath.Join("output", base)
}

// applyOverrides copies explicitly given flags into the scene's sampling config
func applyOverrides(s *scene.Scene, config Config) error {
	sc := &s.SamplingConfig
	if config.set["width"] {
		sc.Width = config.Width
	}
	if config.set["height"] {
		sc.Height = config.Height
	}
	if config.set["spp"] {
		sc.SamplesPerPixel = config.Samples
	}
	if config.set["depth"] {
		sc.MaxDepth = config.MaxDepth
	}
	if config.set["seed"] {
		sc.Seed = config.Seed
	}
	if config.set["adaptive"] {
		sc.AdaptiveThreshold = config.Adaptive
	}
	if config.set["strategy"] {
		strategy, err := scene.ParseStrategy(config.Strategy)
		if err != nil {
			return err
		}
		sc.Strategy = strategy
		// Jittered strata need every pixel to take the full sample count
		if strategy == scene.StrategyJittered && !config.set["adaptive"] {
			sc.AdaptiveThreshold = 0
		}
	}
	return sc.Validate()
}
