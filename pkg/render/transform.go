package render

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// VertexOut is a vertex after the geometry transform.
//
// Position holds NDC x, y, z in its first three components and the
// unmodified clip-space w, which is the view depth used for
// perspective-correct interpolation. Normal, Tangent and ViewDir are in
// world space.
type VertexOut struct {
	Position math3d.Vec4
	Screen   math3d.Vec2
	Color    colorful.Color
	UV       math3d.Vec2
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	ViewDir  math3d.Vec3
}

// ToScreen maps NDC x, y to pixel coordinates. Screen y grows downwards.
func ToScreen(ndc math3d.Vec4, width, height int) math3d.Vec2 {
	return math3d.V2(
		(ndc.X+1)*0.5*float64(width),
		(1-ndc.Y)*0.5*float64(height),
	)
}

// Transform runs every vertex of mesh through its world matrix and the
// camera's view and projection.
func Transform(mesh *models.Mesh, cam *Camera, width, height int) []VertexOut {
	return TransformInto(nil, mesh, cam.ViewProjectionMatrix(), cam.Origin, width, height)
}

// TransformInto is Transform with a caller-supplied destination slice and
// precomputed view-projection matrix. dst is grown as needed and returned.
func TransformInto(dst []VertexOut, mesh *models.Mesh, viewProj math3d.Mat4, origin math3d.Vec3, width, height int) []VertexOut {
	if cap(dst) < len(mesh.Vertices) {
		dst = make([]VertexOut, len(mesh.Vertices))
	}
	dst = dst[:len(mesh.Vertices)]

	world := mesh.World
	wvp := viewProj.Mul(world)

	for i := range mesh.Vertices {
		in := &mesh.Vertices[i]
		out := &dst[i]

		ndc := wvp.TransformPoint(in.Position).PerspectiveDivide()
		out.Position = ndc
		out.Screen = ToScreen(ndc, width, height)
		out.Color = in.Color
		out.UV = in.UV
		out.Normal = world.TransformDir(in.Normal)
		out.Tangent = world.TransformDir(in.Tangent)
		out.ViewDir = world.MulVec3(in.Position).Sub(origin).Normalize()
	}
	return dst
}

// ClipVolumeContains reports whether an NDC position lies inside
// [-1,1]×[-1,1]×[0,1]. NaN components are outside.
func ClipVolumeContains(ndc math3d.Vec4) bool {
	return ndc.X >= -1 && ndc.X <= 1 &&
		ndc.Y >= -1 && ndc.Y <= 1 &&
		ndc.Z >= 0 && ndc.Z <= 1
}

// TriangleInClipVolume is the coarse per-triangle reject: a triangle is kept
// only when all three vertices are inside the clip volume.
func TriangleInClipVolume(a, b, c *VertexOut) bool {
	return ClipVolumeContains(a.Position) &&
		ClipVolumeContains(b.Position) &&
		ClipVolumeContains(c.Position)
}
