package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	_ "github.com/ftrvxmtrx/tga" // Register TGA decoder
	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softras/pkg/math3d"
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture is a 2D image of linear [0,1] colors. uv (0,0) addresses the
// top-left texel and coordinates outside [0,1] are clamped.
type Texture struct {
	Width      int
	Height     int
	Texels     []colorful.Color // Row-major texel data
	FilterMode FilterMode
}

// NewTexture creates a black texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Texels: make([]colorful.Color, width*height),
	}
}

// LoadTexture loads a texture from a PNG, JPEG or TGA file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image. Fully
// transparent pixels become black.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			c, _ := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			tex.Texels[y*tex.Width+x] = c
		}
	}
	return tex
}

// NewFlatTexture creates a 1×1 texture of a single color.
func NewFlatTexture(c colorful.Color) *Texture {
	tex := NewTexture(1, 1)
	tex.Texels[0] = c
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 colorful.Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetTexel(x, y, c1)
			} else {
				tex.SetTexel(x, y, c2)
			}
		}
	}
	return tex
}

// SetTexel sets a texel. Out of range coordinates are ignored.
func (t *Texture) SetTexel(x, y int, c colorful.Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Texels[y*t.Width+x] = c
}

// Texel returns the texel at (x, y) with coordinates clamped to the edge.
func (t *Texture) Texel(x, y int) colorful.Color {
	x = clampInt(x, 0, t.Width-1)
	y = clampInt(y, 0, t.Height-1)
	return t.Texels[y*t.Width+x]
}

// Sample returns the color at uv.
func (t *Texture) Sample(uv math3d.Vec2) colorful.Color {
	uv = uv.Clamp(0, 1)
	if t.FilterMode == FilterBilinear {
		return t.sampleBilinear(uv.X, uv.Y)
	}
	return t.sampleNearest(uv.X, uv.Y)
}

// SampleNormal decodes a tangent-space normal from a normal map, mapping
// each channel from [0,1] to [-1,1].
func (t *Texture) SampleNormal(uv math3d.Vec2) math3d.Vec3 {
	c := t.Sample(uv)
	return math3d.V3(2*c.R-1, 2*c.G-1, 2*c.B-1)
}

// SampleScalar returns the red channel at uv.
func (t *Texture) SampleScalar(uv math3d.Vec2) float64 {
	return t.Sample(uv).R
}

func (t *Texture) sampleNearest(u, v float64) colorful.Color {
	// u == 1 lands one past the last texel; Texel clamps it back
	return t.Texel(int(u*float64(t.Width)), int(v*float64(t.Height)))
}

func (t *Texture) sampleBilinear(u, v float64) colorful.Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	top := t.Texel(x0, y0).BlendRgb(t.Texel(x0+1, y0), tx)
	bot := t.Texel(x0, y0+1).BlendRgb(t.Texel(x0+1, y0+1), tx)
	return top.BlendRgb(bot, ty)
}
