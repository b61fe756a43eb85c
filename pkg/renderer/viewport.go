package renderer

import (
	"github.com/golang/geo/r2"

	"github.com/df07/go-light2d/pkg/math"
)

// Viewport maps image pixels onto a rectangle of the scene plane
type Viewport struct {
	View   r2.Rect
	Width  int
	Height int
}

// NewViewport creates a viewport showing view on a width x height image
func NewViewport(view r2.Rect, width, height int) Viewport {
	return Viewport{View: view, Width: width, Height: height}
}

// PixelToWorld returns the scene point for pixel (col, row) offset by jitter in
// [0,1)². A jitter of (0.5, 0.5) is the pixel center. Row 0 is the top of the view.
func (v Viewport) PixelToWorld(col, row int, jitter math.Vec2) math.Vec2 {
	size := v.View.Size()
	s := (float64(col) + jitter.X) / float64(v.Width)
	t := (float64(row) + jitter.Y) / float64(v.Height)
	return math.NewVec2(
		v.View.X.Lo+s*size.X,
		v.View.Y.Hi-t*size.Y,
	)
}

// WorldToPixel returns the continuous image coordinates of a scene point
func (v Viewport) WorldToPixel(p math.Vec2) (x, y float64) {
	size := v.View.Size()
	x = (p.X - v.View.X.Lo) / size.X * float64(v.Width)
	y = (v.View.Y.Hi - p.Y) / size.Y * float64(v.Height)
	return x, y
}

// PixelSize returns the world-space size of one pixel
func (v Viewport) PixelSize() math.Vec2 {
	size := v.View.Size()
	return math.NewVec2(size.X/float64(v.Width), size.Y/float64(v.Height))
}
