package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/df07/go-light2d/pkg/geometry"
	"github.com/df07/go-light2d/pkg/material"
	"github.com/df07/go-light2d/pkg/math"
	"github.com/df07/go-light2d/pkg/scene"
)

// ErrUnknownMaterial is returned for material blocks with an unrecognised type
var ErrUnknownMaterial = errors.New("unknown material type")

// Vec2 is a point written as [x, y]
type Vec2 [2]float64

// RGB is a color written as [r, g, b]
type RGB [3]float64

func (v Vec2) point() math.Vec2 { return math.NewVec2(v[0], v[1]) }
func (c RGB) color() math.Color { return math.NewColor(c[0], c[1], c[2]) }

// ViewCfg is the world rectangle shown by the image. Omitted views fit the scene.
type ViewCfg struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

// SamplingCfg overrides scene.DefaultSamplingConfig field by field
type SamplingCfg struct {
	SamplesPerPixel       int      `json:"spp,omitempty"`
	MaxDepth              *int     `json:"maxDepth,omitempty"`
	Strategy              string   `json:"strategy,omitempty"`
	Seed                  *int64   `json:"seed,omitempty"`
	AdaptiveMinSamples    *float64 `json:"adaptiveMinSamples,omitempty"`
	AdaptiveThreshold     *float64 `json:"adaptiveThreshold,omitempty"` // 0 disables adaptive sampling
	AdaptiveDarkThreshold *float64 `json:"adaptiveDarkThreshold,omitempty"`
}

// MaterialCfg describes any material; which fields apply depends on Type
type MaterialCfg struct {
	Type         string   `json:"type"`                   // diffuse, specular, refractive, absorbing, emissive
	Color        RGB      `json:"color,omitempty"`        // diffuse albedo, or emissive radiance when radiance is omitted
	Reflectivity *float64 `json:"reflectivity,omitempty"` // specular, defaults to 1
	IOR          float64  `json:"ior,omitempty"`          // refractive
	Extinction   RGB      `json:"extinction,omitempty"`   // refractive and absorbing
	Radiance     *RGB     `json:"radiance,omitempty"`     // emissive
	Fresnel      bool     `json:"fresnel,omitempty"`      // refractive
}

type CircleCfg struct {
	Name     string      `json:"name,omitempty"`
	Center   Vec2        `json:"center"`
	Radius   float64     `json:"radius"`
	Material MaterialCfg `json:"material"`
}

type SegmentCfg struct {
	Name     string      `json:"name,omitempty"`
	A        Vec2        `json:"a"`
	B        Vec2        `json:"b"`
	Material MaterialCfg `json:"material"`
}

type PolygonCfg struct {
	Name     string      `json:"name,omitempty"`
	Vertices []Vec2      `json:"vertices"`
	Material MaterialCfg `json:"material"`
}

// Config is the top-level JSON scene document
type Config struct {
	Width      int          `json:"width,omitempty"`
	Height     int          `json:"height,omitempty"`
	View       *ViewCfg     `json:"view,omitempty"`
	Background RGB          `json:"background,omitempty"`
	AmbientIOR float64      `json:"ambientIOR,omitempty"`
	Sampling   SamplingCfg  `json:"sampling,omitempty"`
	Circles    []CircleCfg  `json:"circles,omitempty"`
	Segments   []SegmentCfg `json:"segments,omitempty"`
	Polygons   []PolygonCfg `json:"polygons,omitempty"`
}

// Build constructs the runtime material
func (mc MaterialCfg) Build() (material.Material, error) {
	switch strings.ToLower(mc.Type) {
	case "diffuse", "lambertian":
		return material.NewDiffuse(mc.Color.color()), nil
	case "specular", "mirror":
		reflectivity := 1.0
		if mc.Reflectivity != nil {
			reflectivity = *mc.Reflectivity
		}
		return material.NewSpecular(reflectivity), nil
	case "refractive", "dielectric", "glass":
		return &material.Refractive{IOR: mc.IOR, Extinction: mc.Extinction.color(), Fresnel: mc.Fresnel}, nil
	case "absorbing", "medium":
		return material.NewAbsorbing(mc.Extinction.color()), nil
	case "emissive", "light":
		radiance := mc.Color
		if mc.Radiance != nil {
			radiance = *mc.Radiance
		}
		return material.NewEmissive(radiance.color()), nil
	default:
		return nil, fmt.Errorf("%q: %w", mc.Type, ErrUnknownMaterial)
	}
}

// Build converts the document into a validated scene
func (c Config) Build() (*scene.Scene, error) {
	var entries []scene.Entry
	add := func(kind string, i int, name string, shape geometry.Shape, mc MaterialCfg) error {
		if name == "" {
			name = fmt.Sprintf("%s %d", kind, i)
		}
		m, err := mc.Build()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		entries = append(entries, scene.Entry{Name: name, Shape: shape, Material: m})
		return nil
	}

	for i, cc := range c.Circles {
		if err := add("circle", i, cc.Name, geometry.NewCircle(cc.Center.point(), cc.Radius), cc.Material); err != nil {
			return nil, err
		}
	}
	for i, sc := range c.Segments {
		if err := add("segment", i, sc.Name, geometry.NewSegment(sc.A.point(), sc.B.point()), sc.Material); err != nil {
			return nil, err
		}
	}
	for i, pc := range c.Polygons {
		vertices := make([]math.Vec2, len(pc.Vertices))
		for j, v := range pc.Vertices {
			vertices[j] = v.point()
		}
		if err := add("polygon", i, pc.Name, geometry.NewPolygon(vertices...), pc.Material); err != nil {
			return nil, err
		}
	}

	s := &scene.Scene{
		Entries:        entries,
		Background:     c.Background.color(),
		AmbientIOR:     c.AmbientIOR,
		SamplingConfig: c.samplingConfig(),
	}
	if c.View != nil {
		s.View = r2.RectFromPoints(c.View.Min.point(), c.View.Max.point())
	}
	if err := s.Preprocess(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c Config) samplingConfig() scene.SamplingConfig {
	config := scene.DefaultSamplingConfig()
	if c.Width > 0 {
		config.Width = c.Width
	}
	if c.Height > 0 {
		config.Height = c.Height
	}

	sc := c.Sampling
	if sc.SamplesPerPixel > 0 {
		config.SamplesPerPixel = sc.SamplesPerPixel
	}
	if sc.MaxDepth != nil {
		config.MaxDepth = *sc.MaxDepth
	}
	if sc.Strategy != "" {
		config.Strategy = scene.Strategy(strings.ToLower(sc.Strategy))
	}
	if sc.Seed != nil {
		config.Seed = *sc.Seed
	}
	if sc.AdaptiveMinSamples != nil {
		config.AdaptiveMinSamples = *sc.AdaptiveMinSamples
	}
	if sc.AdaptiveThreshold != nil {
		config.AdaptiveThreshold = *sc.AdaptiveThreshold
	}
	if sc.AdaptiveDarkThreshold != nil {
		config.AdaptiveDarkThreshold = *sc.AdaptiveDarkThreshold
	}
	return config
}

// ParseJSON decodes a JSON scene document and builds the scene
func ParseJSON(reader io.Reader) (*scene.Scene, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}
	return config.Build()
}

// LoadJSON loads and builds a JSON scene file
func LoadJSON(filename string) (*scene.Scene, error) {
	// Validate file path for security
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ParseJSON(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// validateFilePath validates a file path for security issues
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)

	// Only allow files in a scenes/ directory or the temp directory (for tests)
	if !strings.HasPrefix(cleanPath, "scenes"+string(filepath.Separator)) &&
		!strings.HasPrefix(cleanPath, filepath.Clean(os.TempDir())) &&
		!strings.Contains(cleanPath, string(filepath.Separator)+"scenes"+string(filepath.Separator)) {
		return fmt.Errorf("file path must be in scenes/ directory")
	}

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return fmt.Errorf("invalid file type: only .json files are allowed")
	}

	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	return nil
}
