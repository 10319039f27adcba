// Package config loads softras render configuration from YAML.
//
// Every field has a default, so a file only needs the values it changes:
//
//	width: 800
//	height: 600
//	shading:
//	  mode: diffuse
//	  normal_map: true
//	meshes:
//	  - path: head.obj
//	textures:
//	  diffuse: head_diffuse.tga
//	  normal: head_nm_tangent.tga
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
	"github.com/taigrr/softras/pkg/render"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Vec3 is a YAML triple written as [x, y, z].
type Vec3 [3]float64

// Vec returns v as a math3d vector.
func (v Vec3) Vec() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Config is a complete render setup.
type Config struct {
	Width      int             `yaml:"width"`
	Height     int             `yaml:"height"`
	Background string          `yaml:"background"`
	Camera     CameraConfig    `yaml:"camera"`
	Light      LightConfig     `yaml:"light"`
	Shading    ShadingConfig   `yaml:"shading"`
	Meshes     []MeshConfig    `yaml:"meshes"`
	Textures   TextureConfig   `yaml:"textures"`
	Render     RenderConfig    `yaml:"render"`
	Turntable  TurntableConfig `yaml:"turntable"`

	// dir is the directory relative asset paths resolve against.
	dir string
}

// CameraConfig places the camera. Angles are in degrees.
type CameraConfig struct {
	Origin Vec3 `yaml:"origin,flow"`
	// Target, when set, overrides Yaw and Pitch.
	Target *Vec3   `yaml:"target,flow,omitempty"`
	Yaw    float64 `yaml:"yaw"`
	Pitch  float64 `yaml:"pitch"`
	FOV    float64 `yaml:"fov"`
	Near   float64 `yaml:"near"`
	Far    float64 `yaml:"far"`
}

// LightConfig is the single directional light.
type LightConfig struct {
	Direction Vec3    `yaml:"direction,flow"`
	Intensity float64 `yaml:"intensity"`
}

// ShadingConfig selects the shader's display mode and specular model.
type ShadingConfig struct {
	Mode          string  `yaml:"mode"`
	NormalMap     bool    `yaml:"normal_map"`
	Shininess     float64 `yaml:"shininess"`
	SpecularModel string  `yaml:"specular_model"`
	Roughness     float64 `yaml:"roughness"`
	Ambient       string  `yaml:"ambient"`
}

// MeshConfig names one mesh: a file or a built-in primitive.
type MeshConfig struct {
	Path      string `yaml:"path,omitempty"`
	Primitive string `yaml:"primitive,omitempty"`
	// Size is the primitive edge length. Zero means 1.
	Size float64 `yaml:"size,omitempty"`
	// Topology selects the quad primitive's index layout.
	Topology    string  `yaml:"topology,omitempty"`
	Translation Vec3    `yaml:"translation,flow"`
	Rotation    Vec3    `yaml:"rotation,flow"`
	Scale       float64 `yaml:"scale,omitempty"`
	Color       string  `yaml:"color,omitempty"`
}

// TextureConfig lists the shader's texture maps. Empty paths are unbound.
type TextureConfig struct {
	Diffuse  string `yaml:"diffuse,omitempty"`
	Normal   string `yaml:"normal,omitempty"`
	Specular string `yaml:"specular,omitempty"`
	Gloss    string `yaml:"gloss,omitempty"`
	Bilinear bool   `yaml:"bilinear"`
}

// RenderConfig tunes the frame driver.
type RenderConfig struct {
	// Tiles is the band height in rows for the parallel driver. Zero
	// renders serially.
	Tiles       int  `yaml:"tiles"`
	Workers     int  `yaml:"workers"`
	FrustumCull bool `yaml:"frustum_cull"`
	// Wireframe outlines every triangle and Bounds every mesh box after
	// shading.
	Wireframe bool `yaml:"wireframe"`
	Bounds    bool `yaml:"bounds"`
}

// TurntableConfig drives the spring-damped rotation animation.
type TurntableConfig struct {
	// Speed is the target yaw rate in degrees per second.
	Speed     float64 `yaml:"speed"`
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
	FPS       int     `yaml:"fps"`
	Frames    int     `yaml:"frames"`
}

// Default returns the built-in configuration: a unit cube three units in
// front of the camera under the default light.
func Default() *Config {
	return &Config{
		Width:      640,
		Height:     480,
		Background: "#646464",
		Camera: CameraConfig{
			Origin: Vec3{0, 0, -3},
			FOV:    45,
			Near:   0.1,
			Far:    100,
		},
		Light: LightConfig{
			Direction: Vec3{0.577, -0.577, 0.577},
			Intensity: 7,
		},
		Shading: ShadingConfig{
			Mode:          render.Combined.String(),
			Shininess:     25,
			SpecularModel: render.SpecularPhong.String(),
			Roughness:     0.5,
			Ambient:       "#000000",
		},
		Meshes: []MeshConfig{
			{Primitive: "cube", Size: 1, Rotation: Vec3{20, 30, 0}},
		},
		Render: RenderConfig{
			FrustumCull: true,
		},
		Turntable: TurntableConfig{
			Speed:     45,
			Frequency: 4,
			Damping:   1,
			FPS:       30,
			Frames:    36,
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
// Relative asset paths in the file resolve against its directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes c as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// Resolve returns path relative to the config file's directory. Absolute
// and empty paths are returned unchanged.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Validate reports every invalid field. Each error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	if c.Width <= 0 || c.Height <= 0 {
		bad("size %dx%d must be positive", c.Width, c.Height)
	}
	if _, err := colorful.Hex(c.Background); err != nil {
		bad("background %q: %v", c.Background, err)
	}

	cam := c.Camera
	if !(cam.FOV > 0 && cam.FOV < 180) {
		bad("camera fov %v must be between 0 and 180 degrees", cam.FOV)
	}
	if !(cam.Near > 0 && cam.Far > cam.Near) {
		bad("camera clip planes %v..%v must satisfy 0 < near < far", cam.Near, cam.Far)
	}

	if c.Light.Direction.Vec().LenSq() == 0 {
		bad("light direction must be non-zero")
	}
	if c.Light.Intensity < 0 {
		bad("light intensity %v must not be negative", c.Light.Intensity)
	}

	sh := c.Shading
	if _, err := render.ParseDisplayMode(sh.Mode); err != nil {
		bad("shading mode: %v", err)
	}
	if _, err := render.ParseSpecularModel(sh.SpecularModel); err != nil {
		bad("specular model: %v", err)
	}
	if sh.Shininess < 0 {
		bad("shininess %v must not be negative", sh.Shininess)
	}
	if !(sh.Roughness > 0 && sh.Roughness <= 1) {
		bad("roughness %v must be in (0, 1]", sh.Roughness)
	}
	if sh.Ambient != "" {
		if _, err := colorful.Hex(sh.Ambient); err != nil {
			bad("ambient %q: %v", sh.Ambient, err)
		}
	}

	if len(c.Meshes) == 0 {
		bad("no meshes")
	}
	for i, m := range c.Meshes {
		if err := m.validate(); err != nil {
			bad("mesh %d: %v", i, err)
		}
	}

	if c.Render.Tiles < 0 || c.Render.Workers < 0 {
		bad("render tiles and workers must not be negative")
	}

	tt := c.Turntable
	if tt.Frequency <= 0 || tt.Damping < 0 {
		bad("turntable spring frequency %v, damping %v", tt.Frequency, tt.Damping)
	}
	if tt.FPS <= 0 || tt.Frames < 0 {
		bad("turntable fps %d, frames %d", tt.FPS, tt.Frames)
	}

	return errors.Join(errs...)
}

func (m MeshConfig) validate() error {
	switch {
	case m.Path == "" && m.Primitive == "":
		return errors.New("needs a path or a primitive")
	case m.Path != "" && m.Primitive != "":
		return errors.New("path and primitive are exclusive")
	case m.Path != "":
		switch ext := strings.ToLower(filepath.Ext(m.Path)); ext {
		case ".obj", ".glb", ".gltf":
		default:
			return fmt.Errorf("unsupported model format %q", ext)
		}
	default:
		switch m.Primitive {
		case "cube", "quad":
		default:
			return fmt.Errorf("unknown primitive %q", m.Primitive)
		}
	}

	if m.Topology != "" {
		if m.Primitive != "quad" {
			return errors.New("topology only applies to the quad primitive")
		}
		if _, err := models.ParseTopology(m.Topology); err != nil {
			return err
		}
	}
	if m.Size < 0 || m.Scale < 0 {
		return fmt.Errorf("size %v and scale %v must not be negative", m.Size, m.Scale)
	}
	if m.Color != "" {
		if _, err := colorful.Hex(m.Color); err != nil {
			return fmt.Errorf("color %q: %w", m.Color, err)
		}
	}
	return nil
}

// DisplayMode returns the parsed shading mode.
func (c *Config) DisplayMode() (render.DisplayMode, error) {
	return render.ParseDisplayMode(c.Shading.Mode)
}

// BackgroundPixel returns the clear color.
func (c *Config) BackgroundPixel() (render.Pixel, error) {
	bg, err := colorful.Hex(c.Background)
	if err != nil {
		return 0, fmt.Errorf("background: %w", err)
	}
	return render.Pack(bg), nil
}

// NewCamera builds a camera for a width × height viewport.
func (c *Config) NewCamera(width, height int) *render.Camera {
	cam := render.NewCamera()
	cam.SetOrigin(c.Camera.Origin.Vec())
	cam.SetFOV(c.Camera.FOV * math.Pi / 180)
	cam.SetAspectRatio(float64(width) / float64(height))
	cam.SetClipPlanes(c.Camera.Near, c.Camera.Far)
	if c.Camera.Target != nil {
		cam.LookAt(c.Camera.Target.Vec())
	} else {
		cam.SetRotation(c.Camera.Pitch*math.Pi/180, c.Camera.Yaw*math.Pi/180)
	}
	return cam
}

// NewShader builds a BRDF shader without texture maps.
func (c *Config) NewShader() (*render.BRDFShader, error) {
	mode, err := render.ParseDisplayMode(c.Shading.Mode)
	if err != nil {
		return nil, err
	}
	model, err := render.ParseSpecularModel(c.Shading.SpecularModel)
	if err != nil {
		return nil, err
	}

	s := render.NewBRDFShader()
	s.Mode = mode
	s.SpecularModel = model
	s.UseNormalMap = c.Shading.NormalMap
	s.Shininess = c.Shading.Shininess
	s.Roughness = c.Shading.Roughness
	s.Light = render.Light{
		Direction: c.Light.Direction.Vec().Normalize(),
		Intensity: c.Light.Intensity,
	}
	if c.Shading.Ambient != "" {
		if s.Ambient, err = colorful.Hex(c.Shading.Ambient); err != nil {
			return nil, fmt.Errorf("ambient: %w", err)
		}
	}
	return s, nil
}

// Local returns the mesh's orientation and size: scale, then rotation
// about X, Y and Z (degrees).
func (m MeshConfig) Local() math3d.Mat4 {
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}
	const deg = math.Pi / 180
	return math3d.RotateZ(m.Rotation[2] * deg).
		Mul(math3d.RotateY(m.Rotation[1] * deg)).
		Mul(math3d.RotateX(m.Rotation[0] * deg)).
		Mul(math3d.ScaleUniform(scale))
}

// World returns the model-to-world matrix: Local followed by the
// translation.
func (m MeshConfig) World() math3d.Mat4 {
	return math3d.Translate(m.Translation.Vec()).Mul(m.Local())
}
