package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Pixel is a packed 0xAARRGGBB color as stored in the framebuffer.
type Pixel = uint32

// Colors for convenience
var (
	ColorBlack      = RGB(0, 0, 0)
	ColorWhite      = RGB(255, 255, 255)
	ColorRed        = RGB(255, 0, 0)
	ColorGreen      = RGB(0, 255, 0)
	ColorBlue       = RGB(0, 0, 255)
	ColorYellow     = RGB(255, 255, 0)
	ColorBackground = RGB(100, 100, 100)
)

// RGB packs 8-bit channels into an opaque Pixel.
func RGB(r, g, b uint8) Pixel {
	return 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Pack clamps a linear color to [0,1] and converts it to an opaque Pixel.
// Values above one are hard-clamped, not tone-mapped.
func Pack(c colorful.Color) Pixel {
	r, g, b := c.Clamped().RGB255()
	return RGB(r, g, b)
}

// Unpack converts a Pixel to color.RGBA.
func Unpack(p Pixel) color.RGBA {
	return color.RGBA{
		R: uint8(p >> 16),
		G: uint8(p >> 8),
		B: uint8(p),
		A: uint8(p >> 24),
	}
}

// ToColorful converts a Pixel back to a [0,1] color.
func ToColorful(p Pixel) colorful.Color {
	c := Unpack(p)
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
