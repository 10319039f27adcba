package render

import (
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// boxEdges indexes AABB.Corners: bit 0 is X, bit 1 is Y, bit 2 is Z.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along X
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along Y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along Z
}

// Wireframe draws debug lines over a rendered frame. It ignores the depth
// buffer and draws a segment only when both endpoints are inside the clip
// volume.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a wireframe overlay for fb seen through camera.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawLine3D draws a world-space segment. It reports whether it was drawn.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Pixel) bool {
	x1, y1, _, vis1 := w.camera.WorldToScreen(p1, w.fb.Width, w.fb.Height)
	x2, y2, _, vis2 := w.camera.WorldToScreen(p2, w.fb.Width, w.fb.Height)
	if !vis1 || !vis2 {
		return false
	}
	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), color)
	return true
}

// DrawMesh outlines every triangle of mesh under its world matrix.
func (w *Wireframe) DrawMesh(mesh *models.Mesh, color Pixel) {
	world := make([]math3d.Vec3, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		world[i] = mesh.World.MulVec3(v.Position)
	}
	for _, t := range mesh.Triangles() {
		a, b, c := world[t.Index[0]], world[t.Index[1]], world[t.Index[2]]
		w.DrawLine3D(a, b, color)
		w.DrawLine3D(b, c, color)
		w.DrawLine3D(c, a, color)
	}
}

// DrawBounds outlines a world-space box.
func (w *Wireframe) DrawBounds(box AABB, color Pixel) {
	corners := box.Corners()
	for _, e := range boxEdges {
		w.DrawLine3D(corners[e[0]], corners[e[1]], color)
	}
}
