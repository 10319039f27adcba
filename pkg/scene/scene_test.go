package scene

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/softras/pkg/config"
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/render"
)

const quadOBJ = `# unit quad
v -1 1 0
v 1 1 0
v 1 -1 0
v -1 -1 0
vt 0 1
vt 1 1
vt 1 0
vt 0 0
f 1/1 2/2 3/3 4/4
`

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Width = 64
	cfg.Height = 48
	return cfg
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestBuildDefault(t *testing.T) {
	s, err := Build(smallConfig())
	require.NoError(t, err)

	require.Len(t, s.Objects, 1)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 24, s.Objects[0].Mesh.VertexCount())
	assert.Same(t, s.Shader, s.Items()[0].Shader)
	assert.Equal(t, render.ColorBackground, s.Renderer.Background)

	stats, err := s.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MeshesDrawn)
	assert.Equal(t, 12, stats.Triangles)
	assert.Positive(t, stats.PixelsShaded)

	assert.NotEqual(t, render.ColorBackground, s.Renderer.Color.Pixel(32, 24), "cube should cover the center")
	assert.Equal(t, render.ColorBackground, s.Renderer.Color.Pixel(0, 0))
}

func TestRenderTiledMatchesSerial(t *testing.T) {
	serial, err := Build(smallConfig())
	require.NoError(t, err)

	cfg := smallConfig()
	cfg.Render.Tiles = 8
	cfg.Render.Workers = 3
	tiled, err := Build(cfg)
	require.NoError(t, err)

	for range 5 {
		serial.Step()
		tiled.Step()
	}

	_, err = serial.Render(context.Background())
	require.NoError(t, err)
	_, err = tiled.Render(context.Background())
	require.NoError(t, err)

	assert.Equal(t, serial.Renderer.Color.Pixels, tiled.Renderer.Color.Pixels)
}

func TestStepRotatesObjects(t *testing.T) {
	s, err := Build(smallConfig())
	require.NoError(t, err)

	before := s.Objects[0].Mesh.World
	for range 10 {
		s.Step()
	}
	assert.NotEqual(t, before, s.Objects[0].Mesh.World)
	assert.Positive(t, s.Turntable.Angle)
}

func TestBuildFromFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0o644))
	writePNG(t, filepath.Join(dir, "diffuse.png"), 4, 2)

	cfgPath := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
width: 32
height: 32
meshes:
  - path: quad.obj
    translation: [0, 0, 1]
    color: "#00ff00"
textures:
  diffuse: diffuse.png
  bilinear: true
`), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	s, err := Build(cfg)
	require.NoError(t, err)

	require.Len(t, s.Objects, 1)
	mesh := s.Objects[0].Mesh
	assert.Equal(t, 4, mesh.VertexCount())
	assert.Equal(t, 2, mesh.TriangleCount())
	assert.Equal(t, 1.0, mesh.Vertices[0].Color.G)
	assert.Equal(t, math3d.V3(0, 0, 1), mesh.World.Translation())

	require.NotNil(t, s.Shader.DiffuseMap)
	assert.Equal(t, 4, s.Shader.DiffuseMap.Width)
	assert.Equal(t, 2, s.Shader.DiffuseMap.Height)
	assert.Equal(t, render.FilterBilinear, s.Shader.DiffuseMap.FilterMode)
	assert.Nil(t, s.Shader.NormalMap)
}

func TestBuildPrimitives(t *testing.T) {
	cfg := smallConfig()
	cfg.Meshes = []config.MeshConfig{
		{Primitive: "quad", Topology: "strip", Size: 2},
		{Primitive: "cube", Translation: config.Vec3{2, 0, 0}},
	}
	s, err := Build(cfg)
	require.NoError(t, err)

	require.Len(t, s.Objects, 2)
	assert.Equal(t, 4, len(s.Objects[0].Mesh.Indices))
	assert.Equal(t, 36, len(s.Objects[1].Mesh.Indices))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing mesh", func(c *config.Config) {
			c.Meshes = []config.MeshConfig{{Path: filepath.Join(t.TempDir(), "nope.obj")}}
		}},
		{"missing texture", func(c *config.Config) {
			c.Textures.Normal = filepath.Join(t.TempDir(), "nope.png")
		}},
		{"bad shading mode", func(c *config.Config) { c.Shading.Mode = "toon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mutate(cfg)
			_, err := Build(cfg)
			assert.Error(t, err)
		})
	}
}

func TestOverlays(t *testing.T) {
	count := func(s *Scene, c render.Pixel) int {
		n := 0
		for _, p := range s.Renderer.Color.Pixels {
			if p == c {
				n++
			}
		}
		return n
	}

	tests := []struct {
		name      string
		wireframe bool
		bounds    bool
	}{
		{"none", false, false},
		{"wireframe", true, false},
		{"bounds", false, true},
		{"both", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.Render.Wireframe = tt.wireframe
			cfg.Render.Bounds = tt.bounds
			s, err := Build(cfg)
			require.NoError(t, err)

			_, err = s.Render(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wireframe, count(s, render.ColorGreen) > 0, "triangle edges")
			assert.Equal(t, tt.bounds, count(s, render.ColorYellow) > 0, "bounds box")
		})
	}
}

func TestResize(t *testing.T) {
	s, err := Build(smallConfig())
	require.NoError(t, err)

	s.Resize(100, 50)
	assert.Equal(t, 100, s.Renderer.Width)
	assert.Len(t, s.Renderer.Color.Pixels, 5000)
	assert.InDelta(t, 2.0, s.Camera.AspectRatio, 1e-12)

	s.Resize(0, 10)
	assert.Equal(t, 100, s.Renderer.Width)
	assert.Equal(t, 100, s.Image().Bounds().Dx())
}
