package render

import (
	"math"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

// testFrustum looks down +Z from the origin with a 60° vertical field of view.
func testFrustum(near, far float64) Frustum {
	proj := math3d.PerspectiveFovLH(math.Pi/3, 16.0/9.0, near, far)
	view := math3d.LookAtLH(math3d.Zero3(), math3d.Forward(), math3d.Up())
	return NewFrustum(proj.Mul(view))
}

func TestPlaneDistance(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.Distance(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if math.Abs(plane.Normal.Len()-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", plane.Normal.Len())
	}
	if math.Abs(plane.Normal.Y-0.6) > 1e-9 || math.Abs(plane.Normal.Z-0.8) > 1e-9 {
		t.Errorf("normal = %v, want (0, 0.6, 0.8)", plane.Normal)
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func TestFrustumNearPlane(t *testing.T) {
	f := testFrustum(0.5, 100)
	near := f.Planes[FrustumNear]

	// z in [0, w] puts the near plane at view depth 0.5 facing +Z.
	if near.Normal.Sub(math3d.Forward()).Len() > 1e-9 {
		t.Errorf("near normal = %v, want +Z", near.Normal)
	}
	if d := near.Distance(math3d.V3(0, 0, 0.5)); math.Abs(d) > 1e-9 {
		t.Errorf("distance to z=0.5 is %v, want 0", d)
	}
	for i, plane := range f.Planes {
		if math.Abs(plane.Normal.Len()-1) > 1e-9 {
			t.Errorf("plane %d not normalized", i)
		}
	}
}

func TestFrustumContainsPointBox(t *testing.T) {
	frustum := testFrustum(0.1, 100)

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"center near", math3d.V3(0, 0, 1), true},
		{"center mid", math3d.V3(0, 0, 50), true},
		{"center far", math3d.V3(0, 0, 99), true},
		{"behind camera", math3d.V3(0, 0, -1), false},
		{"too far", math3d.V3(0, 0, 200), false},
		{"too close", math3d.V3(0, 0, 0.01), false},
		{"right of view", math3d.V3(10, 0, 5), false},
		{"above view", math3d.V3(0, 4, 5), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.ContainsAABB(AABB{tc.point, tc.point}); got != tc.expected {
				t.Errorf("ContainsAABB(%v) = %v, want %v", tc.point, got, tc.expected)
			}
		})
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	frustum := testFrustum(1, 100)

	tests := []struct {
		name      string
		box       AABB
		intersect bool
		contained bool
	}{
		{"inside", AABB{math3d.V3(-1, -1, 9), math3d.V3(1, 1, 11)}, true, true},
		{"straddles near", AABB{math3d.V3(-1, -1, 0), math3d.V3(1, 1, 2)}, true, false},
		{"behind", AABB{math3d.V3(-1, -1, -5), math3d.V3(1, 1, -2)}, false, false},
		{"beyond far", AABB{math3d.V3(-1, -1, 150), math3d.V3(1, 1, 160)}, false, false},
		{"far left", AABB{math3d.V3(-100, -1, 9), math3d.V3(-90, 1, 11)}, false, false},
		{"encloses camera", AABB{math3d.V3(-500, -500, -500), math3d.V3(500, 500, 500)}, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.IntersectAABB(tc.box); got != tc.intersect {
				t.Errorf("IntersectAABB = %v, want %v", got, tc.intersect)
			}
			if got := frustum.ContainsAABB(tc.box); got != tc.contained {
				t.Errorf("ContainsAABB = %v, want %v", got, tc.contained)
			}
		})
	}
}

func TestFrustumWithRotatedCamera(t *testing.T) {
	cam := NewCamera()
	cam.SetRotation(0, math.Pi/2) // looking down +X
	f := cam.Frustum()

	ahead, side := math3d.V3(10, 0, 0), math3d.V3(0, 0, 10)
	if !f.ContainsAABB(AABB{ahead, ahead}) {
		t.Error("point ahead along +X should be visible")
	}
	if f.IntersectAABB(AABB{side, side}) {
		t.Error("point along +Z should be outside after turning")
	}
}

func TestAABBCornersAndTransform(t *testing.T) {
	box := AABB{Min: math3d.V3(-1, -2, -3), Max: math3d.V3(1, 2, 3)}

	if c := box.Center(); c.Len() != 0 {
		t.Errorf("center = %v, want origin", c)
	}
	seen := make(map[math3d.Vec3]bool)
	for i, c := range box.Corners() {
		if c.Min(box.Min) != box.Min || c.Max(box.Max) != box.Max {
			t.Errorf("corner %d %v outside its box", i, c)
		}
		seen[c] = true
	}
	if len(seen) != 8 {
		t.Errorf("%d distinct corners, want 8", len(seen))
	}

	grown := box.Grow(0.5)
	if grown.Min != math3d.V3(-1.5, -2.5, -3.5) || grown.Max != math3d.V3(1.5, 2.5, 3.5) {
		t.Errorf("Grow(0.5) = %+v", grown)
	}

	moved := box.Transform(math3d.Translate(math3d.V3(5, 0, 0)))
	if moved.Min.X != 4 || moved.Max.X != 6 {
		t.Errorf("translated X range = [%v, %v], want [4, 6]", moved.Min.X, moved.Max.X)
	}

	rotated := box.Transform(math3d.RotateY(math.Pi / 2))
	// A quarter turn swaps the X and Z extents.
	if math.Abs(rotated.Max.X-3) > 1e-9 || math.Abs(rotated.Max.Z-1) > 1e-9 {
		t.Errorf("rotated max = %v, want X=3 Z=1", rotated.Max)
	}
}

func TestMeshAABB(t *testing.T) {
	m := models.NewMesh("box", models.TriangleList)
	m.Vertices = []models.Vertex{
		{Position: math3d.V3(-1, 0, 0)},
		{Position: math3d.V3(1, 2, 0)},
		{Position: math3d.V3(0, 1, 3)},
	}
	m.World = math3d.Translate(math3d.V3(0, 0, 10))

	box := MeshAABB(m)
	if box.Min != math3d.V3(-1, 0, 10) || box.Max != math3d.V3(1, 2, 13) {
		t.Errorf("MeshAABB = %+v", box)
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	frustum := testFrustum(0.1, 100)
	box := AABB{math3d.V3(-1, -1, 9), math3d.V3(1, 1, 11)}

	for b.Loop() {
		frustum.IntersectAABB(box)
	}
}

func BenchmarkFrustumExtraction(b *testing.B) {
	cam := NewCamera()
	vp := cam.ViewProjectionMatrix()

	for b.Loop() {
		NewFrustum(vp)
	}
}

func BenchmarkAABBTransform(b *testing.B) {
	box := AABB{math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)}
	m := math3d.RotateY(0.5).Mul(math3d.Translate(math3d.V3(1, 2, 3)))

	for b.Loop() {
		box.Transform(m)
	}
}
