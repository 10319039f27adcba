package brdf

import "github.com/lucasb-eyer/go-colorful"

// Black is the zero radiance.
var Black = colorful.Color{}

// Gray returns a color with all three channels set to v.
func Gray(v float64) colorful.Color {
	return colorful.Color{R: v, G: v, B: v}
}

// Scale multiplies every channel of c by s.
func Scale(c colorful.Color, s float64) colorful.Color {
	return colorful.Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

// Mul returns the channel-wise product a * b.
func Mul(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R * b.R, G: a.G * b.G, B: a.B * b.B}
}

// Add returns the channel-wise sum a + b.
func Add(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B}
}
