// Package render implements the softras software rasterization pipeline:
// geometry transform, bounding-box culling, edge-function rasterization with
// a depth buffer, BRDF shading, and the per-frame driver.
package render

import (
	"image"
)

// Framebuffer is the color buffer. Pixels are packed 0xAARRGGBB values in
// row-major order with (0,0) at the top-left.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Pixel
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Pixel, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Pixel) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// ClearRows fills rows [y0, y1) with a solid color.
func (fb *Framebuffer) ClearRows(y0, y1 int, c Pixel) {
	y0, y1 = max(y0, 0), min(y1, fb.Height)
	if y0 >= y1 {
		return
	}
	row := fb.Pixels[y0*fb.Width : y1*fb.Width]
	for i := range row {
		row[i] = c
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c Pixel) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// Pixel returns the color at (x, y), or 0 if out of bounds.
func (fb *Framebuffer) Pixel(x, y int) Pixel {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
// It ignores the depth buffer.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Pixel) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, Unpack(fb.Pixels[y*fb.Width+x]))
		}
	}
	return img
}
