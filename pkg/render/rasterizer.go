package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softras/pkg/math3d"
)

// DegenerateEpsilon is the smallest |twice-area| in pixels² that a triangle
// needs to be rasterized.
const DegenerateEpsilon = 1e-4

// Rect is a half-open pixel rectangle [MinX, MaxX) × [MinY, MaxY).
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

// FullRect returns the rectangle covering a width × height target.
func FullRect(width, height int) Rect {
	return Rect{0, 0, width, height}
}

// Intersect returns the overlap of r and o.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		MinX: max(r.MinX, o.MinX),
		MinY: max(r.MinY, o.MinY),
		MaxX: min(r.MaxX, o.MaxX),
		MaxY: min(r.MaxY, o.MaxY),
	}
}

// Empty reports whether r contains no pixels.
func (r Rect) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Area returns the number of pixels in r.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return (r.MaxX - r.MinX) * (r.MaxY - r.MinY)
}

// BoundingBox returns the pixel rectangle to scan for a triangle: the
// floor/ceil of its screen extent grown by one pixel on each side and
// clamped to the target.
func BoundingBox(s0, s1, s2 math3d.Vec2, width, height int) Rect {
	minX := math.Min(s0.X, math.Min(s1.X, s2.X))
	minY := math.Min(s0.Y, math.Min(s1.Y, s2.Y))
	maxX := math.Max(s0.X, math.Max(s1.X, s2.X))
	maxY := math.Max(s0.Y, math.Max(s1.Y, s2.Y))

	return Rect{
		MinX: clampInt(int(math.Floor(minX))-1, 0, width),
		MinY: clampInt(int(math.Floor(minY))-1, 0, height),
		MaxX: clampInt(int(math.Ceil(maxX))+1, 0, width),
		MaxY: clampInt(int(math.Ceil(maxY))+1, 0, height),
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// SignedArea returns twice the signed area of the screen triangle,
// cross(s0-s1, s2-s1). It is negative for clockwise (front-facing)
// triangles in y-down screen space.
func SignedArea(s0, s1, s2 math3d.Vec2) float64 {
	return s0.Sub(s1).Cross(s2.Sub(s1))
}

// IsDegenerate reports whether a triangle with twice-area w is too thin to
// rasterize.
func IsDegenerate(w float64) bool {
	return !(math.Abs(w) >= DegenerateEpsilon)
}

// EdgeFunctions returns the three edge-function values of p. Ei is zero on
// the edge opposite vertex i and E0+E1+E2 equals SignedArea.
func EdgeFunctions(s0, s1, s2, p math3d.Vec2) (e0, e1, e2 float64) {
	e0 = p.Sub(s1).Cross(s2.Sub(s1))
	e1 = p.Sub(s2).Cross(s0.Sub(s2))
	e2 = p.Sub(s0).Cross(s1.Sub(s0))
	return e0, e1, e2
}

// isTopLeft reports whether the directed edge a→b, oriented clockwise on
// screen, is a top edge (horizontal, pointing right) or a left edge
// (pointing up).
func isTopLeft(a, b math3d.Vec2, sign float64) bool {
	dx := (b.X - a.X) * sign
	dy := (b.Y - a.Y) * sign
	return (dy == 0 && dx > 0) || dy < 0
}

// TriangleStatus is the outcome of DrawTriangle.
type TriangleStatus int

const (
	TriangleDrawn TriangleStatus = iota
	TriangleDegenerate
	TriangleBackFacing
)

// Fragment is one covered pixel with perspective-correct attributes.
type Fragment struct {
	X, Y int
	// Weights are the screen-space barycentric weights; they sum to one.
	Weights [3]float64
	// Depth is the perspective-correct view depth.
	Depth   float64
	Color   colorful.Color
	UV      math3d.Vec2
	Normal  math3d.Vec3
	Tangent math3d.Vec3
	ViewDir math3d.Vec3
}

// Interpolate fills the depth and attributes of f from its weights. Each
// attribute is Σ(wi·ai/wwi)·depth, where wwi is vertex i's clip w and depth
// is 1/Σ(wi/wwi). Directions are renormalized.
func Interpolate(v *[3]VertexOut, f *Fragment) {
	i0 := f.Weights[0] / v[0].Position.SafeW()
	i1 := f.Weights[1] / v[1].Position.SafeW()
	i2 := f.Weights[2] / v[2].Position.SafeW()
	f.Depth = 1 / (i0 + i1 + i2)
	f.interpolateAttributes(v, i0*f.Depth, i1*f.Depth, i2*f.Depth)
}

func (f *Fragment) interpolateAttributes(v *[3]VertexOut, p0, p1, p2 float64) {
	f.Color = colorful.Color{
		R: v[0].Color.R*p0 + v[1].Color.R*p1 + v[2].Color.R*p2,
		G: v[0].Color.G*p0 + v[1].Color.G*p1 + v[2].Color.G*p2,
		B: v[0].Color.B*p0 + v[1].Color.B*p1 + v[2].Color.B*p2,
	}
	f.UV = v[0].UV.Scale(p0).Add(v[1].UV.Scale(p1)).Add(v[2].UV.Scale(p2))
	f.Normal = blend3(v[0].Normal, v[1].Normal, v[2].Normal, p0, p1, p2).Normalize()
	f.Tangent = blend3(v[0].Tangent, v[1].Tangent, v[2].Tangent, p0, p1, p2).Normalize()
	f.ViewDir = blend3(v[0].ViewDir, v[1].ViewDir, v[2].ViewDir, p0, p1, p2).Normalize()
}

func blend3(a, b, c math3d.Vec3, p0, p1, p2 float64) math3d.Vec3 {
	return math3d.Vec3{
		X: a.X*p0 + b.X*p1 + c.X*p2,
		Y: a.Y*p0 + b.Y*p1 + c.Y*p2,
		Z: a.Z*p0 + b.Z*p1 + c.Z*p2,
	}
}

// RasterStats counts per-pixel work.
type RasterStats struct {
	PixelsTested int // Pixel centers evaluated inside bounding boxes
	PixelsShaded int // Pixels that passed the depth test
}

// Add accumulates o into s.
func (s *RasterStats) Add(o RasterStats) {
	s.PixelsTested += o.PixelsTested
	s.PixelsShaded += o.PixelsShaded
}

// Rasterizer scan-converts triangles into a color and depth buffer pair.
// A Rasterizer owns its buffers' cells inside the clip rectangles it is
// given; several rasterizers may share buffers when their clip rectangles
// are disjoint.
type Rasterizer struct {
	Color *Framebuffer
	Depth *DepthBuffer
	Stats RasterStats
}

// NewRasterizer creates a rasterizer writing into color and depth, which
// must have the same dimensions.
func NewRasterizer(color *Framebuffer, depth *DepthBuffer) *Rasterizer {
	return &Rasterizer{Color: color, Depth: depth}
}

// DrawTriangle rasterizes one triangle inside clip. sign is -1 for the odd
// triangles of a strip and +1 otherwise.
//
// A pixel is covered when sign·Ei < 0 for all three edges, or sign·Ei == 0
// on a top or left edge. Covered pixels are depth tested against the
// perspective-correct view depth with strict less-than; the depth is
// written before the shader runs.
func (r *Rasterizer) DrawTriangle(v *[3]VertexOut, sign float64, shader Shader, clip Rect) TriangleStatus {
	s0, s1, s2 := v[0].Screen, v[1].Screen, v[2].Screen

	area := SignedArea(s0, s1, s2)
	if IsDegenerate(area) {
		return TriangleDegenerate
	}
	if sign*area > 0 {
		return TriangleBackFacing
	}

	width := r.Color.Width
	box := BoundingBox(s0, s1, s2, width, r.Color.Height).Intersect(clip)
	if box.Empty() {
		return TriangleDrawn
	}

	// Edge i is the directed edge opposite vertex i.
	tl0 := isTopLeft(s1, s2, sign)
	tl1 := isTopLeft(s2, s0, sign)
	tl2 := isTopLeft(s0, s1, sign)

	invArea := 1 / area
	invW0 := 1 / v[0].Position.SafeW()
	invW1 := 1 / v[1].Position.SafeW()
	invW2 := 1 / v[2].Position.SafeW()

	var frag Fragment
	for py := box.MinY; py < box.MaxY; py++ {
		row := py * width
		for px := box.MinX; px < box.MaxX; px++ {
			r.Stats.PixelsTested++

			p := math3d.V2(float64(px)+0.5, float64(py)+0.5)
			e0, e1, e2 := EdgeFunctions(s0, s1, s2, p)
			if !covered(e0*sign, tl0) || !covered(e1*sign, tl1) || !covered(e2*sign, tl2) {
				continue
			}

			w0, w1, w2 := e0*invArea, e1*invArea, e2*invArea
			i0, i1, i2 := w0*invW0, w1*invW1, w2*invW2
			depth := 1 / (i0 + i1 + i2)

			idx := row + px
			if !r.Depth.Test(idx, depth) {
				continue
			}
			r.Stats.PixelsShaded++

			frag.X, frag.Y = px, py
			frag.Weights = [3]float64{w0, w1, w2}
			frag.Depth = depth
			frag.interpolateAttributes(v, i0*depth, i1*depth, i2*depth)

			r.Color.Pixels[idx] = Pack(shader.Shade(&frag))
		}
	}
	return TriangleDrawn
}

// covered applies the coverage test to one sign-corrected edge value.
func covered(e float64, topLeft bool) bool {
	return e < 0 || (e == 0 && topLeft)
}
