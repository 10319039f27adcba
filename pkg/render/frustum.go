package render

import (
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// Plane is Ax + By + Cz + D = 0 with (A, B, C) the normal.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// Distance returns the signed distance from the plane to a point.
// Positive is on the normal's side.
func (p Plane) Distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six inward-facing planes of a view volume.
type Frustum struct {
	Planes [6]Plane
}

// Plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustum extracts the planes of a view-projection matrix with the
// Gribb/Hartmann method, for clip volumes whose z runs from 0 to w.
//
// Row i of the column-major m is (m[i], m[i+4], m[i+8], m[i+12]).
func NewFrustum(m math3d.Mat4) Frustum {
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	r0, d0 := row(0)
	r1, d1 := row(1)
	r2, d2 := row(2)
	r3, d3 := row(3)

	f := Frustum{Planes: [6]Plane{
		FrustumLeft:   {Normal: r3.Add(r0), D: d3 + d0},
		FrustumRight:  {Normal: r3.Sub(r0), D: d3 - d0},
		FrustumBottom: {Normal: r3.Add(r1), D: d3 + d1},
		FrustumTop:    {Normal: r3.Sub(r1), D: d3 - d1},
		FrustumNear:   {Normal: r2, D: d2}, // z >= 0
		FrustumFar:    {Normal: r3.Sub(r2), D: d3 - d2},
	}}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// Frustum returns the camera's current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustum(c.ViewProjectionMatrix())
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// MeshAABB returns the world-space bounds of a mesh under its world matrix.
func MeshAABB(m *models.Mesh) AABB {
	lo, hi := m.Bounds()
	return AABB{Min: lo, Max: hi}.Transform(m.World)
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]math3d.Vec3 {
	var c [8]math3d.Vec3
	for i := range c {
		c[i] = math3d.V3(
			pick(i&1 != 0, b.Max.X, b.Min.X),
			pick(i&2 != 0, b.Max.Y, b.Min.Y),
			pick(i&4 != 0, b.Max.Z, b.Min.Z),
		)
	}
	return c
}

// Transform returns the box bounding all eight transformed corners.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := b.Corners()
	p := m.MulVec3(corners[0])
	out := AABB{Min: p, Max: p}
	for _, c := range corners[1:] {
		p = m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Grow returns the box expanded by d on every side.
func (b AABB) Grow(d float64) AABB {
	pad := math3d.V3(d, d, d)
	return AABB{Min: b.Min.Sub(pad), Max: b.Max.Add(pad)}
}

// IntersectAABB reports whether any part of the box may be inside the
// frustum. It tests the corner furthest along each plane normal, so boxes
// near frustum corners can pass conservatively.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		far := math3d.V3(
			pick(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.Distance(far) < 0 {
			return false
		}
	}
	return true
}

// ContainsAABB reports whether the box is entirely inside the frustum.
func (f Frustum) ContainsAABB(box AABB) bool {
	for _, plane := range f.Planes {
		near := math3d.V3(
			pick(plane.Normal.X >= 0, box.Min.X, box.Max.X),
			pick(plane.Normal.Y >= 0, box.Min.Y, box.Max.Y),
			pick(plane.Normal.Z >= 0, box.Min.Z, box.Max.Z),
		)
		if plane.Distance(near) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
