package render

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softras/pkg/brdf"
	"github.com/taigrr/softras/pkg/math3d"
)

// Shader computes the color of a covered, depth-accepted fragment.
// Shaders are called from several goroutines by the tiled driver and must
// not mutate shared state.
type Shader interface {
	Shade(f *Fragment) colorful.Color
}

// ShaderFunc adapts a function to the Shader interface.
type ShaderFunc func(f *Fragment) colorful.Color

// Shade calls fn(f).
func (fn ShaderFunc) Shade(f *Fragment) colorful.Color {
	return fn(f)
}

// SolidShader shades every fragment with one color.
type SolidShader colorful.Color

// Shade returns the solid color.
func (s SolidShader) Shade(*Fragment) colorful.Color {
	return colorful.Color(s)
}

// VertexColorShader returns the interpolated vertex color unlit.
type VertexColorShader struct{}

// Shade returns the fragment's vertex color.
func (VertexColorShader) Shade(f *Fragment) colorful.Color {
	return f.Color
}

// DisplayMode selects which lighting terms reach the framebuffer.
type DisplayMode int

const (
	ObservedArea DisplayMode = iota // cosθ as gray
	Diffuse                         // Lambert term
	Specular                        // specular term
	Combined                        // diffuse + specular
)

var displayModeNames = [...]string{"observed-area", "diffuse", "specular", "combined"}

func (m DisplayMode) String() string {
	if m < 0 || int(m) >= len(displayModeNames) {
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
	return displayModeNames[m]
}

// Next cycles ObservedArea → Diffuse → Specular → Combined → ObservedArea.
func (m DisplayMode) Next() DisplayMode {
	return (m + 1) % DisplayMode(len(displayModeNames))
}

// ParseDisplayMode parses a display mode name as printed by String.
func ParseDisplayMode(s string) (DisplayMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range displayModeNames {
		if s == name || s == strings.ReplaceAll(name, "-", "") {
			return DisplayMode(i), nil
		}
	}
	return ObservedArea, fmt.Errorf("unknown display mode %q", s)
}

// SpecularModel selects the specular lobe.
type SpecularModel int

const (
	SpecularPhong SpecularModel = iota
	SpecularCookTorrance
)

func (m SpecularModel) String() string {
	switch m {
	case SpecularPhong:
		return "phong"
	case SpecularCookTorrance:
		return "cook-torrance"
	default:
		return fmt.Sprintf("SpecularModel(%d)", int(m))
	}
}

// ParseSpecularModel parses "phong" or "cook-torrance".
func ParseSpecularModel(s string) (SpecularModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phong":
		return SpecularPhong, nil
	case "cook-torrance", "cooktorrance", "ggx":
		return SpecularCookTorrance, nil
	default:
		return SpecularPhong, fmt.Errorf("unknown specular model %q", s)
	}
}

// Light is a directional light. Direction points from the light into the
// scene.
type Light struct {
	Direction math3d.Vec3
	Intensity float64
}

// DefaultLight shines diagonally down and into the screen.
func DefaultLight() Light {
	return Light{
		Direction: math3d.V3(0.577, -0.577, 0.577),
		Intensity: 7,
	}
}

// BRDFShader evaluates Lambert diffuse plus a Phong or Cook-Torrance
// specular lobe under one directional light.
//
// Missing maps fall back to: diffuse from the vertex color, white specular
// tint, gloss 1. The normal map is only used when UseNormalMap is set.
type BRDFShader struct {
	Mode          DisplayMode
	UseNormalMap  bool
	SpecularModel SpecularModel
	Light         Light

	// Shininess is the Phong exponent before scaling by the gloss map.
	Shininess float64
	// Roughness feeds the Cook-Torrance model.
	Roughness float64
	// Ambient is added as Ambient⊙diffuse in lit diffuse modes.
	Ambient colorful.Color

	DiffuseMap  *Texture
	NormalMap   *Texture
	SpecularMap *Texture
	GlossMap    *Texture
}

// NewBRDFShader creates a shader with the default light and Phong
// shininess 25.
func NewBRDFShader() *BRDFShader {
	return &BRDFShader{
		Mode:      Combined,
		Light:     DefaultLight(),
		Shininess: 25,
		Roughness: 0.5,
	}
}

// Normal returns the shading normal of f: the interpolated normal, or the
// normal map sample rotated into world space by the (T, N×T, N) basis.
func (s *BRDFShader) Normal(f *Fragment) math3d.Vec3 {
	n := f.Normal
	if !s.UseNormalMap || s.NormalMap == nil {
		return n
	}
	t := f.Tangent
	b := n.Cross(t)
	m := s.NormalMap.SampleNormal(f.UV)
	return t.Scale(m.X).Add(b.Scale(m.Y)).Add(n.Scale(m.Z)).Normalize()
}

// Shade implements Shader.
func (s *BRDFShader) Shade(f *Fragment) colorful.Color {
	n := s.Normal(f)
	l := s.Light.Direction.Normalize()

	cosTheta := -l.Dot(n)
	if cosTheta <= 0 {
		return brdf.Black
	}
	if s.Mode == ObservedArea {
		return brdf.Gray(cosTheta)
	}

	var out colorful.Color
	if s.Mode == Diffuse || s.Mode == Combined {
		albedo := s.diffuseSample(f)
		out = brdf.Add(brdf.Lambert(s.Light.Intensity, albedo), brdf.Mul(s.Ambient, albedo))
	}
	if s.Mode == Specular || s.Mode == Combined {
		out = brdf.Add(out, s.specular(f, l, n))
	}
	return brdf.Scale(out, cosTheta).Clamped()
}

func (s *BRDFShader) diffuseSample(f *Fragment) colorful.Color {
	if s.DiffuseMap == nil {
		return f.Color
	}
	return s.DiffuseMap.Sample(f.UV)
}

func (s *BRDFShader) specular(f *Fragment, l, n math3d.Vec3) colorful.Color {
	tint := colorful.Color{R: 1, G: 1, B: 1}
	if s.SpecularMap != nil {
		tint = s.SpecularMap.Sample(f.UV)
	}
	toEye := f.ViewDir.Negate()

	if s.SpecularModel == SpecularCookTorrance {
		spec := brdf.CookTorrance(n, toEye, l.Negate(), tint, s.Roughness)
		return brdf.Scale(spec, s.Light.Intensity)
	}

	gloss := 1.0
	if s.GlossMap != nil {
		gloss = s.GlossMap.SampleScalar(f.UV)
	}
	return brdf.PhongColor(tint, s.Shininess*gloss, l, toEye, n)
}
