package raster

import (
	"image"

	"github.com/Carmen-Shannon/oxy-q3/common"
)

// Framebuffer is a float RGBA color buffer with a [0, 1] depth buffer, 1 being the far plane.
// Rows are written by at most one band task at a time.
type Framebuffer struct {
	width  int
	height int
	color  []float32
	depth  []float32
}

// NewFramebuffer allocates a framebuffer cleared to transparent black at the far plane.
//
// Parameters:
//   - width, height: size in pixels, both > 0
//
// Returns:
//   - *Framebuffer: the framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	if width <= 0 || height <= 0 {
		panic("framebuffer size must be positive")
	}
	fb := &Framebuffer{
		width:  width,
		height: height,
		color:  make([]float32, width*height*4),
		depth:  make([]float32, width*height),
	}
	fb.Clear([4]float32{})
	return fb
}

// Width returns the width in pixels.
func (fb *Framebuffer) Width() int {
	return fb.width
}

// Height returns the height in pixels.
func (fb *Framebuffer) Height() int {
	return fb.height
}

// Clear fills the color buffer with c and resets every depth to the far plane.
func (fb *Framebuffer) Clear(c [4]float32) {
	for i := 0; i < len(fb.color); i += 4 {
		copy(fb.color[i:i+4], c[:])
	}
	for i := range fb.depth {
		fb.depth[i] = 1
	}
}

// Pixel returns the color at (x, y).
func (fb *Framebuffer) Pixel(x, y int) [4]float32 {
	i := (y*fb.width + x) * 4
	return [4]float32{fb.color[i], fb.color[i+1], fb.color[i+2], fb.color[i+3]}
}

// Depth returns the depth at (x, y).
func (fb *Framebuffer) Depth(x, y int) float32 {
	return fb.depth[y*fb.width+x]
}

func (fb *Framebuffer) setPixel(i int, c [4]float32) {
	copy(fb.color[i*4:i*4+4], c[:])
}

// Image converts the color buffer to 8-bit RGBA.
//
// Returns:
//   - *image.RGBA: the image, rows top to bottom
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for i, v := range fb.color {
		img.Pix[i] = uint8(common.Clamp01(v)*255 + 0.5)
	}
	return img
}
