// Package scene assembles meshes, textures, a camera and a renderer from a
// config and animates the meshes between frames.
package scene

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/softras/pkg/config"
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
	"github.com/taigrr/softras/pkg/render"
)

// Object is a mesh placed in the world. Its world matrix is rebuilt each
// frame as Local, then the turntable yaw, then Translation.
type Object struct {
	Mesh        *models.Mesh
	Local       math3d.Mat4
	Translation math3d.Vec3
}

// Place sets the mesh world matrix for a turntable angle.
func (o *Object) Place(angle float64) {
	o.Mesh.World = math3d.Translate(o.Translation).
		Mul(math3d.RotateY(angle)).
		Mul(o.Local)
}

// Scene is everything needed to render frames of one configuration.
type Scene struct {
	Config    *config.Config
	Camera    *render.Camera
	Renderer  *render.Renderer
	Shader    *render.BRDFShader
	Objects   []Object
	Turntable *Turntable
	// Wireframe overlays triangle edges and Bounds each mesh's world box
	// after shading.
	Wireframe bool
	Bounds    bool

	items []render.Item
}

// Build loads the meshes and textures named in cfg.
func Build(cfg *config.Config) (*Scene, error) {
	shader, err := cfg.NewShader()
	if err != nil {
		return nil, err
	}
	bg, err := cfg.BackgroundPixel()
	if err != nil {
		return nil, err
	}

	r := render.NewRenderer(cfg.Width, cfg.Height)
	r.Background = bg
	r.Workers = cfg.Render.Workers
	r.FrustumCull = cfg.Render.FrustumCull

	tt := cfg.Turntable
	s := &Scene{
		Config:    cfg,
		Camera:    cfg.NewCamera(cfg.Width, cfg.Height),
		Renderer:  r,
		Shader:    shader,
		Turntable: NewTurntable(tt.FPS, tt.Speed*math.Pi/180, tt.Frequency, tt.Damping),
		Wireframe: cfg.Render.Wireframe,
		Bounds:    cfg.Render.Bounds,
	}

	if err := s.loadTextures(); err != nil {
		return nil, err
	}

	for i, mc := range cfg.Meshes {
		mesh, embedded, err := s.loadMesh(mc)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		if embedded != nil && shader.DiffuseMap == nil {
			shader.DiffuseMap = s.texture(render.TextureFromImage(embedded))
		}
		if mc.Color != "" {
			c, err := colorful.Hex(mc.Color)
			if err != nil {
				return nil, fmt.Errorf("mesh %d color: %w", i, err)
			}
			mesh.SetColor(c)
		}

		slog.Debug("loaded mesh", "name", mesh.Name, "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())

		obj := Object{Mesh: mesh, Local: mc.Local(), Translation: mc.Translation.Vec()}
		obj.Place(0)
		s.Objects = append(s.Objects, obj)
		s.items = append(s.items, render.Item{Mesh: mesh, Shader: shader})
	}

	return s, nil
}

func (s *Scene) loadMesh(mc config.MeshConfig) (*models.Mesh, image.Image, error) {
	size := mc.Size
	if size == 0 {
		size = 1
	}

	switch mc.Primitive {
	case "cube":
		return models.NewCube(size), nil, nil
	case "quad":
		topology := models.TriangleList
		if mc.Topology != "" {
			var err error
			if topology, err = models.ParseTopology(mc.Topology); err != nil {
				return nil, nil, err
			}
		}
		return models.NewQuad(size, topology), nil, nil
	}

	path := s.Config.Resolve(mc.Path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		mesh, err := models.LoadOBJ(path)
		return mesh, nil, err
	case ".glb", ".gltf":
		return models.LoadGLBWithTexture(path)
	default:
		return nil, nil, fmt.Errorf("unsupported model format: %s", path)
	}
}

// loadTextures binds the configured texture maps to the shader.
func (s *Scene) loadTextures() error {
	maps := []struct {
		name string
		path string
		dst  **render.Texture
	}{
		{"diffuse", s.Config.Textures.Diffuse, &s.Shader.DiffuseMap},
		{"normal", s.Config.Textures.Normal, &s.Shader.NormalMap},
		{"specular", s.Config.Textures.Specular, &s.Shader.SpecularMap},
		{"gloss", s.Config.Textures.Gloss, &s.Shader.GlossMap},
	}

	for _, m := range maps {
		if m.path == "" {
			continue
		}
		tex, err := render.LoadTexture(s.Config.Resolve(m.path))
		if err != nil {
			return fmt.Errorf("%s map: %w", m.name, err)
		}
		*m.dst = s.texture(tex)
	}
	return nil
}

func (s *Scene) texture(t *render.Texture) *render.Texture {
	if s.Config.Textures.Bilinear {
		t.FilterMode = render.FilterBilinear
	}
	return t
}

// Items returns the render list: every object paired with the shader.
func (s *Scene) Items() []render.Item {
	return s.items
}

// Resize changes the output resolution and camera aspect ratio.
func (s *Scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.Renderer.Resize(width, height)
	s.Camera.SetAspectRatio(float64(width) / float64(height))
}

// Step advances the turntable and re-places every object.
func (s *Scene) Step() {
	angle := s.Turntable.Step()
	for i := range s.Objects {
		s.Objects[i].Place(angle)
	}
}

// Render draws one frame with the serial driver, or the tiled driver when
// the config sets a band height.
func (s *Scene) Render(ctx context.Context) (render.FrameStats, error) {
	var (
		stats render.FrameStats
		err   error
	)
	if tiles := s.Config.Render.Tiles; tiles > 0 {
		stats, err = s.Renderer.RenderFrameTiled(ctx, s.Camera, s.items, tiles)
	} else {
		stats = s.Renderer.RenderFrame(s.Camera, s.items)
	}
	if err != nil {
		return stats, err
	}

	if s.Wireframe || s.Bounds {
		wf := render.NewWireframe(s.Camera, s.Renderer.Color)
		for _, obj := range s.Objects {
			if s.Wireframe {
				wf.DrawMesh(obj.Mesh, render.ColorGreen)
			}
			if s.Bounds {
				wf.DrawBounds(render.MeshAABB(obj.Mesh), render.ColorYellow)
			}
		}
	}
	return stats, nil
}

// Image returns the color buffer as an image.
func (s *Scene) Image() *image.RGBA {
	return s.Renderer.Color.ToImage()
}
