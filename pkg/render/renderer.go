package render

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/softras/pkg/models"
)

// DefaultTileRows is the band height used by RenderFrameTiled when the
// caller passes zero.
const DefaultTileRows = 32

// Item is a mesh paired with the shader that colors it.
type Item struct {
	Mesh   *models.Mesh
	Shader Shader
}

// FrameStats counts the work done for one frame.
type FrameStats struct {
	MeshesTested int // Meshes submitted
	MeshesCulled int // Meshes rejected by the view frustum
	MeshesDrawn  int // Meshes whose triangles were submitted
	MeshesInside int // Drawn meshes wholly inside the frustum

	Triangles    int // Triangles of drawn meshes
	ClipRejected int // Triangles with a vertex outside the clip volume
	Degenerate   int // Triangles with near-zero screen area
	BackFacing   int // Triangles wound away from the camera

	RasterStats
}

// Renderer is the frame driver. It owns a color and depth buffer pair and
// renders lists of items into them.
type Renderer struct {
	Width  int
	Height int
	Color  *Framebuffer
	Depth  *DepthBuffer

	// Background is the clear color.
	Background Pixel
	// Workers bounds the number of bands rendered at once by
	// RenderFrameTiled. Zero means GOMAXPROCS.
	Workers int
	// FrustumCull skips meshes whose world bounds miss the view frustum.
	FrustumCull bool

	raster  *Rasterizer
	stats   FrameStats
	scratch []VertexOut
}

// NewRenderer creates a renderer with width × height buffers.
func NewRenderer(width, height int) *Renderer {
	r := &Renderer{
		Background:  ColorBackground,
		FrustumCull: true,
	}
	r.Resize(width, height)
	return r
}

// Resize reallocates the buffers.
func (r *Renderer) Resize(width, height int) {
	r.Width = width
	r.Height = height
	r.Color = NewFramebuffer(width, height)
	r.Depth = NewDepthBuffer(width, height)
	r.raster = NewRasterizer(r.Color, r.Depth)
}

// Stats returns the counters of the last rendered frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Clear resets the color buffer to the background and the depth buffer to
// +Inf.
func (r *Renderer) Clear() {
	r.Color.Clear(r.Background)
	r.Depth.Reset()
}

// RenderFrame clears the buffers and draws every item in order on the
// calling goroutine.
func (r *Renderer) RenderFrame(cam *Camera, items []Item) FrameStats {
	r.Clear()
	r.stats = FrameStats{}
	r.raster.Stats = RasterStats{}

	full := FullRect(r.Width, r.Height)
	r.eachTriangle(cam, items, func(tri *[3]VertexOut, sign float64, shader Shader) {
		switch r.raster.DrawTriangle(tri, sign, shader, full) {
		case TriangleDegenerate:
			r.stats.Degenerate++
		case TriangleBackFacing:
			r.stats.BackFacing++
		}
	})

	r.stats.RasterStats = r.raster.Stats
	return r.stats
}

// eachTriangle runs the geometry stage: frustum culling, vertex transform
// and the coarse clip-volume reject. fn receives the surviving triangles
// in submission order.
//
// Mesh bounds are taken from the current vertex positions every frame.
// A mesh whose padded bounds lie wholly inside the frustum cannot have a
// vertex outside the clip volume, so its triangles skip the clip test.
func (r *Renderer) eachTriangle(cam *Camera, items []Item, fn func(tri *[3]VertexOut, sign float64, shader Shader)) {
	viewProj := cam.ViewProjectionMatrix()
	frustum := cam.Frustum()

	for _, item := range items {
		r.stats.MeshesTested++
		inside := false
		if r.FrustumCull {
			box := MeshAABB(item.Mesh)
			if !frustum.IntersectAABB(box) {
				r.stats.MeshesCulled++
				continue
			}
			inside = frustum.ContainsAABB(box.Grow(insideMargin(box)))
		}
		r.stats.MeshesDrawn++
		if inside {
			r.stats.MeshesInside++
		}

		shader := item.Shader
		if shader == nil {
			shader = VertexColorShader{}
		}

		r.scratch = TransformInto(r.scratch, item.Mesh, viewProj, cam.Origin, r.Width, r.Height)
		verts := r.scratch

		for _, t := range item.Mesh.Triangles() {
			r.stats.Triangles++
			tri := [3]VertexOut{verts[t.Index[0]], verts[t.Index[1]], verts[t.Index[2]]}
			if !inside && !TriangleInClipVolume(&tri[0], &tri[1], &tri[2]) {
				r.stats.ClipRejected++
				continue
			}
			fn(&tri, t.Sign, shader)
		}
	}
}

// insideMargin pads a box before the containment test so vertices that
// round onto a frustum plane still take the per-triangle clip test.
func insideMargin(box AABB) float64 {
	return 1e-6*box.Max.Sub(box.Min).Len() + 1e-9
}

// binnedTriangle is a clip-accepted, front-facing triangle waiting for
// the band pass.
type binnedTriangle struct {
	verts  [3]VertexOut
	sign   float64
	shader Shader
}

// RenderFrameTiled renders the same image as RenderFrame using several
// goroutines. The frame is split into horizontal bands of tileRows rows;
// each band is cleared and rasterized by one goroutine that owns its rows
// of both buffers exclusively, drawing the triangles that touch it in
// submission order. Per-pixel results therefore match the serial driver.
//
// The geometry stage runs on the calling goroutine. If ctx is cancelled
// the frame is left partially drawn and ctx.Err() is returned.
func (r *Renderer) RenderFrameTiled(ctx context.Context, cam *Camera, items []Item, tileRows int) (FrameStats, error) {
	if tileRows <= 0 {
		tileRows = DefaultTileRows
	}
	r.stats = FrameStats{}

	bands := (r.Height + tileRows - 1) / tileRows
	bins := make([][]int, bands)
	var tris []binnedTriangle

	r.eachTriangle(cam, items, func(tri *[3]VertexOut, sign float64, shader Shader) {
		area := SignedArea(tri[0].Screen, tri[1].Screen, tri[2].Screen)
		switch {
		case IsDegenerate(area):
			r.stats.Degenerate++
			return
		case sign*area > 0:
			r.stats.BackFacing++
			return
		}

		box := BoundingBox(tri[0].Screen, tri[1].Screen, tri[2].Screen, r.Width, r.Height)
		if box.Empty() {
			return
		}
		idx := len(tris)
		tris = append(tris, binnedTriangle{verts: *tri, sign: sign, shader: shader})
		for b := box.MinY / tileRows; b <= (box.MaxY-1)/tileRows; b++ {
			bins[b] = append(bins[b], idx)
		}
	})

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	bandStats := make([]RasterStats, bands)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for b := range bands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			y0 := b * tileRows
			y1 := min(y0+tileRows, r.Height)
			r.Color.ClearRows(y0, y1, r.Background)
			r.Depth.ResetRows(y0, y1)

			band := Rect{MinX: 0, MinY: y0, MaxX: r.Width, MaxY: y1}
			raster := NewRasterizer(r.Color, r.Depth)
			for _, idx := range bins[b] {
				t := &tris[idx]
				raster.DrawTriangle(&t.verts, t.sign, t.shader, band)
			}
			bandStats[b] = raster.Stats
			return nil
		})
	}

	err := g.Wait()
	for _, s := range bandStats {
		r.stats.RasterStats.Add(s)
	}
	return r.stats, err
}
