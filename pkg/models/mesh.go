// Package models provides mesh representation and loading for softras.
package models

import (
	"fmt"
	"iter"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softras/pkg/math3d"
)

// Topology describes how a mesh's index buffer forms triangles.
type Topology int

const (
	// TriangleList uses three indices per independent triangle.
	TriangleList Topology = iota
	// TriangleStrip shares two indices between consecutive triangles.
	// Every second triangle has reversed winding.
	TriangleStrip
)

// String returns the config name of the topology.
func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "list"
	case TriangleStrip:
		return "strip"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// ParseTopology parses "list" or "strip".
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "list", "trianglelist":
		return TriangleList, nil
	case "strip", "trianglestrip":
		return TriangleStrip, nil
	default:
		return TriangleList, fmt.Errorf("unknown topology %q", s)
	}
}

// Stride returns how far the index cursor advances per triangle.
func (t Topology) Stride() int {
	if t == TriangleStrip {
		return 1
	}
	return 3
}

// TriangleCount returns the number of triangles formed by n indices.
func (t Topology) TriangleCount(n int) int {
	if t == TriangleStrip {
		return max(n-2, 0)
	}
	return n / 3
}

// Vertex holds all per-vertex attributes.
type Vertex struct {
	Position math3d.Vec3
	Color    colorful.Color
	UV       math3d.Vec2
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
}

// Triangle is one primitive produced by Mesh.Triangles.
// Sign is -1 for the odd triangles of a strip, whose winding is reversed.
type Triangle struct {
	Index [3]uint32
	Sign  float64
}

// Mesh is an indexed vertex buffer with a topology and a model-to-world matrix.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Topology Topology

	// World is the model-to-world transform. Animators may replace it
	// between frames; the renderer only reads it.
	World math3d.Mat4
}

// NewMesh creates an empty mesh with an identity world matrix.
func NewMesh(name string, topology Topology) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]Vertex, 0),
		Indices:  make([]uint32, 0),
		Topology: topology,
		World:    math3d.Identity(),
	}
}

// Triangles iterates the mesh's triangles in draw order. The single
// traversal covers both topologies: lists advance by three indices, strips
// by one with the winding sign alternating.
func (m *Mesh) Triangles() iter.Seq2[int, Triangle] {
	return func(yield func(int, Triangle) bool) {
		stride := m.Topology.Stride()
		count := m.Topology.TriangleCount(len(m.Indices))
		for tri := range count {
			i := tri * stride
			t := Triangle{
				Index: [3]uint32{m.Indices[i], m.Indices[i+1], m.Indices[i+2]},
				Sign:  1,
			}
			if m.Topology == TriangleStrip && tri%2 != 0 {
				t.Sign = -1
			}
			if !yield(tri, t) {
				return
			}
		}
	}
}

// Bounds returns the model-space axis-aligned bounding box of the current
// vertex positions. An empty mesh has a zero box.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return lo, hi
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return m.Topology.TriangleCount(len(m.Indices))
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// faceNormal returns the unnormalized normal of a triangle with the strip
// sign applied, so it points towards the viewer for clockwise front faces.
func (m *Mesh) faceNormal(t Triangle) math3d.Vec3 {
	v0 := m.Vertices[t.Index[0]].Position
	v1 := m.Vertices[t.Index[1]].Position
	v2 := m.Vertices[t.Index[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0)).Scale(t.Sign)
}

// CalculateNormals assigns each triangle's face normal to its vertices.
// Vertices shared between triangles keep the last face written.
func (m *Mesh) CalculateNormals() {
	for _, t := range m.Triangles() {
		n := m.faceNormal(t).Normalize()
		for _, idx := range t.Index {
			m.Vertices[idx].Normal = n
		}
	}
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, t := range m.Triangles() {
		n := m.faceNormal(t) // area weighted, normalized below
		for _, idx := range t.Index {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// CalculateTangents derives per-vertex tangents from the uv layout and
// orthogonalizes them against the vertex normals. Normals must be set first.
func (m *Mesh) CalculateTangents() {
	acc := make([]math3d.Vec3, len(m.Vertices))

	for _, t := range m.Triangles() {
		a, b, c := m.Vertices[t.Index[0]], m.Vertices[t.Index[1]], m.Vertices[t.Index[2]]

		e1 := b.Position.Sub(a.Position)
		e2 := c.Position.Sub(a.Position)
		d1 := b.UV.Sub(a.UV)
		d2 := c.UV.Sub(a.UV)

		det := d1.Cross(d2)
		if det == 0 {
			continue
		}
		tangent := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(1 / det)

		for _, idx := range t.Index {
			acc[idx] = acc[idx].Add(tangent)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := acc[i].Sub(n.Scale(n.Dot(acc[i])))
		if t.LenSq() < 1e-12 {
			t = anyPerpendicular(n)
		}
		m.Vertices[i].Tangent = t.Normalize()
	}
}

// anyPerpendicular returns a vector orthogonal to n.
func anyPerpendicular(n math3d.Vec3) math3d.Vec3 {
	axis := math3d.Right()
	if n.X*n.X > 0.81 {
		axis = math3d.Up()
	}
	return axis.Sub(n.Scale(n.Dot(axis)))
}

// SetColor sets every vertex color.
func (m *Mesh) SetColor(c colorful.Color) {
	for i := range m.Vertices {
		m.Vertices[i].Color = c
	}
}
