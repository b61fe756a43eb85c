package renderer

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"

	mathpkg "github.com/df07/go-light2d/pkg/math"
)

func TestViewport_PixelToWorld(t *testing.T) {
	view := r2.RectFromPoints(mathpkg.NewVec2(-2, 1), mathpkg.NewVec2(2, 3))
	v := NewViewport(view, 40, 20)

	tests := []struct {
		name     string
		col, row int
		jitter   mathpkg.Vec2
		want     mathpkg.Vec2
	}{
		{"top left corner", 0, 0, mathpkg.NewVec2(0, 0), mathpkg.NewVec2(-2, 3)},
		{"bottom right corner", 39, 19, mathpkg.NewVec2(1, 1), mathpkg.NewVec2(2, 1)},
		{"pixel center", 20, 10, mathpkg.NewVec2(0.5, 0.5), mathpkg.NewVec2(0.05, 1.95)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.PixelToWorld(tt.col, tt.row, tt.jitter)
			if mathpkg.Distance(got, tt.want) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}

			x, y := v.WorldToPixel(got)
			if math.Abs(x-(float64(tt.col)+tt.jitter.X)) > 1e-9 || math.Abs(y-(float64(tt.row)+tt.jitter.Y)) > 1e-9 {
				t.Errorf("WorldToPixel(%v) = (%f, %f), expected the original pixel coordinates", got, x, y)
			}
		})
	}

	size := v.PixelSize()
	if math.Abs(size.X-0.1) > 1e-12 || math.Abs(size.Y-0.1) > 1e-12 {
		t.Errorf("Expected 0.1 pixel size, got %v", size)
	}
}
