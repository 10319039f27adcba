package models

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softras/pkg/math3d"
)

// cubeFaces lists each face's outward normal and the up direction of its uv
// layout. The right direction is normal × up.
var cubeFaces = [6][2]math3d.Vec3{
	{{X: 0, Y: 0, Z: -1}, {X: 0, Y: 1, Z: 0}},  // front
	{{X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}},   // back
	{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},   // right
	{{X: -1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},  // left
	{{X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}},   // top
	{{X: 0, Y: -1, Z: 0}, {X: 0, Y: 0, Z: -1}}, // bottom
}

// NewCube creates an axis-aligned cube centered on the origin with one
// uv square per face and flat normals. Faces wind clockwise seen from
// outside.
func NewCube(size float64) *Mesh {
	h := size / 2
	m := NewMesh("cube", TriangleList)
	white := colorful.Color{R: 1, G: 1, B: 1}

	for _, face := range cubeFaces {
		n, up := face[0], face[1]
		right := n.Cross(up)
		center := n.Scale(h)

		base := uint32(len(m.Vertices))
		corners := [4]struct {
			du, dv float64
			uv     math3d.Vec2
		}{
			{-1, 1, math3d.V2(0, 0)},
			{1, 1, math3d.V2(1, 0)},
			{1, -1, math3d.V2(1, 1)},
			{-1, -1, math3d.V2(0, 1)},
		}
		for _, c := range corners {
			m.Vertices = append(m.Vertices, Vertex{
				Position: center.Add(right.Scale(c.du * h)).Add(up.Scale(c.dv * h)),
				Color:    white,
				UV:       c.uv,
				Normal:   n,
				Tangent:  right,
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	return m
}

// NewQuad creates a size × size square in the XY plane facing -Z. A strip
// quad uses four indices; a list quad uses six.
func NewQuad(size float64, topology Topology) *Mesh {
	h := size / 2
	m := NewMesh("quad", topology)
	white := colorful.Color{R: 1, G: 1, B: 1}

	// top-left, top-right, bottom-left, bottom-right
	for i, p := range []math3d.Vec3{{X: -h, Y: h}, {X: h, Y: h}, {X: -h, Y: -h}, {X: h, Y: -h}} {
		m.Vertices = append(m.Vertices, Vertex{
			Position: p,
			Color:    white,
			UV:       math3d.V2(float64(i%2), float64(i/2)),
			Normal:   math3d.V3(0, 0, -1),
			Tangent:  math3d.Right(),
		})
	}

	if topology == TriangleStrip {
		m.Indices = []uint32{0, 1, 2, 3}
	} else {
		m.Indices = []uint32{0, 1, 2, 1, 3, 2}
	}
	return m
}
