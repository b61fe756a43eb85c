package output

import (
	"fmt"
	"image"
	"image/color"
	stdmath "math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/df07/go-light2d/pkg/geometry"
	"github.com/df07/go-light2d/pkg/material"
	"github.com/df07/go-light2d/pkg/math"
	"github.com/df07/go-light2d/pkg/renderer"
	"github.com/df07/go-light2d/pkg/scene"
)

// Options controls the conversion from radiance to display values
type Options struct {
	Exposure float64 // Linear scale applied before tone mapping
	Gamma    float64 // Display gamma (2.2 for sRGB-like output)
	Reinhard bool    // Compress highlights with x/(1+x) instead of clipping
}

// DefaultOptions returns sensible default values
func DefaultOptions() Options {
	return Options{
		Exposure: 1.0,
		Gamma:    2.2,
		Reinhard: false,
	}
}

// ToneMap converts a radiance image into 8-bit RGBA
func ToneMap(img *renderer.Image, opts Options) *image.RGBA {
	if opts.Gamma <= 0 {
		opts.Gamma = 2.2
	}

	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			rgba.SetRGBA(x, y, toRGBA(img.At(x, y), opts))
		}
	}
	return rgba
}

func toRGBA(c math.Color, opts Options) color.RGBA {
	c = c.Multiply(opts.Exposure)
	if opts.Reinhard {
		c = math.NewColor(c.R/(1+c.R), c.G/(1+c.G), c.B/(1+c.B))
	}
	c = c.Clamp(0, 1).GammaCorrect(opts.Gamma)

	return color.RGBA{
		R: uint8(stdmath.Round(255 * c.R)),
		G: uint8(stdmath.Round(255 * c.G)),
		B: uint8(stdmath.Round(255 * c.B)),
		A: 255,
	}
}

// outlineColor picks a stroke color that identifies the material kind
func outlineColor(m material.Material) (r, g, b float64) {
	switch m.(type) {
	case *material.Emissive:
		return 1, 0.85, 0.2
	case *material.Specular:
		return 0.6, 0.8, 1
	case *material.Refractive:
		return 0.3, 1, 0.9
	case *material.Absorbing:
		return 0.9, 0.4, 0.9
	default:
		return 0.8, 0.8, 0.8
	}
}

// Overlay strokes the outline of every primitive on top of a rendered image
func Overlay(rgba *image.RGBA, s *scene.Scene, viewport renderer.Viewport) {
	dc := gg.NewContextForRGBA(rgba)
	dc.SetLineWidth(1)

	for _, e := range s.Entries {
		r, g, b := outlineColor(e.Material)
		dc.SetRGBA(r, g, b, 0.7)

		switch shape := e.Shape.(type) {
		case *geometry.Circle:
			x, y := viewport.WorldToPixel(shape.Center)
			radius := shape.Radius / viewport.PixelSize().X
			dc.DrawCircle(x, y, radius)
		case *geometry.Segment:
			x1, y1 := viewport.WorldToPixel(shape.A)
			x2, y2 := viewport.WorldToPixel(shape.B)
			dc.DrawLine(x1, y1, x2, y2)
		case *geometry.Polygon:
			for i, v := range shape.Vertices {
				x, y := viewport.WorldToPixel(v)
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
		}
		dc.Stroke()
	}
}

// Upscale enlarges an image by an integer factor with Catmull-Rom filtering
func Upscale(src *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return src
	}
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

// SavePNG writes an image as PNG, creating parent directories as needed
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return nil
}
