package renderer

import (
	"github.com/df07/go-light2d/pkg/math"
)

// Image is a grid of linear radiance values, row 0 at the top
type Image struct {
	Width  int
	Height int
	Pix    []math.Color
}

// NewImage creates a black image
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]math.Color, width*height),
	}
}

// At returns the radiance of pixel (x, y)
func (img *Image) At(x, y int) math.Color {
	return img.Pix[y*img.Width+x]
}

// Set stores the radiance of pixel (x, y)
func (img *Image) Set(x, y int, c math.Color) {
	img.Pix[y*img.Width+x] = c
}

// TotalEnergy sums every channel of every pixel
func (img *Image) TotalEnergy() float64 {
	total := 0.0
	for _, c := range img.Pix {
		total += c.R + c.G + c.B
	}
	return total
}

// AverageLuminance returns the mean pixel luminance
func (img *Image) AverageLuminance() float64 {
	if len(img.Pix) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range img.Pix {
		total += c.Luminance()
	}
	return total / float64(len(img.Pix))
}

// PixelBuffer holds the running statistics of every pixel. Tiles write disjoint
// regions so workers can share one buffer.
type PixelBuffer struct {
	Width  int
	Height int
	Stats  [][]PixelStats
}

// NewPixelBuffer creates an empty buffer
func NewPixelBuffer(width, height int) *PixelBuffer {
	stats := make([][]PixelStats, height)
	for y := range stats {
		stats[y] = make([]PixelStats, width)
	}
	return &PixelBuffer{Width: width, Height: height, Stats: stats}
}

// At returns the statistics of pixel (x, y)
func (pb *PixelBuffer) At(x, y int) *PixelStats {
	return &pb.Stats[y][x]
}

// Finalize averages the accumulated samples into an image
func (pb *PixelBuffer) Finalize() *Image {
	img := NewImage(pb.Width, pb.Height)
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			img.Set(x, y, pb.Stats[y][x].GetColor())
		}
	}
	return img
}
