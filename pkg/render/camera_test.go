package render

import (
	"math"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
)

func vecNear(a, b math3d.Vec3) bool {
	return a.Sub(b).Len() < 1e-9
}

func TestCameraBasis(t *testing.T) {
	tests := []struct {
		name       string
		pitch, yaw float64
		forward    math3d.Vec3
		right      math3d.Vec3
	}{
		{"default", 0, 0, math3d.V3(0, 0, 1), math3d.V3(1, 0, 0)},
		{"turned right", 0, math.Pi / 2, math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{"turned around", 0, math.Pi, math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0)},
		{"looking up", math.Pi / 4, 0, math3d.V3(0, math.Sqrt2/2, math.Sqrt2/2), math3d.V3(1, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCamera()
			c.SetRotation(tc.pitch, tc.yaw)
			if !vecNear(c.Forward(), tc.forward) {
				t.Errorf("Forward = %v, want %v", c.Forward(), tc.forward)
			}
			if !vecNear(c.Right(), tc.right) {
				t.Errorf("Right = %v, want %v", c.Right(), tc.right)
			}
			up := c.Up()
			if math.Abs(up.Dot(c.Forward())) > 1e-9 || math.Abs(up.Len()-1) > 1e-9 || up.Y <= 0 {
				t.Errorf("Up = %v is not a unit vector orthogonal to forward", up)
			}
		})
	}
}

func TestCameraViewMatrixMatchesBasis(t *testing.T) {
	c := NewCamera()
	c.SetOrigin(math3d.V3(1, 2, 3))
	c.SetRotation(0.3, -0.8)

	p := c.Origin.Add(c.Forward().Scale(5)).Add(c.Right().Scale(2))
	v := c.ViewMatrix().MulVec3(p)
	if !vecNear(v, math3d.V3(2, 0, 5)) {
		t.Errorf("view-space point = %v, want (2, 0, 5)", v)
	}
}

func TestCameraMatricesInvalidate(t *testing.T) {
	c := NewCamera()
	before := c.ViewProjectionMatrix()

	c.MoveForward(2)
	after := c.ViewProjectionMatrix()
	if before == after {
		t.Error("ViewProjectionMatrix not updated after MoveForward")
	}
	if !vecNear(c.Origin, math3d.V3(0, 0, 2)) {
		t.Errorf("Origin = %v, want (0, 0, 2)", c.Origin)
	}

	c.SetFOV(math.Pi / 2)
	if c.ViewProjectionMatrix() == after {
		t.Error("ViewProjectionMatrix not updated after SetFOV")
	}
	if got, want := c.ViewProjectionMatrix(), c.ProjectionMatrix().Mul(c.ViewMatrix()); got != want {
		t.Error("ViewProjectionMatrix != Projection * View")
	}
}

func TestCameraFieldWritesRebuildMatrices(t *testing.T) {
	c := NewCamera()
	c.ViewProjectionMatrix()

	c.Origin = math3d.V3(0, 0, -4)
	c.Yaw = 0.2
	c.AspectRatio = 2

	fresh := NewCamera()
	fresh.SetOrigin(math3d.V3(0, 0, -4))
	fresh.SetRotation(0, 0.2)
	fresh.SetAspectRatio(2)

	if c.ViewMatrix() != fresh.ViewMatrix() {
		t.Error("ViewMatrix stale after writing Origin and Yaw")
	}
	if c.ViewProjectionMatrix() != fresh.ViewProjectionMatrix() {
		t.Error("ViewProjectionMatrix stale after writing camera fields")
	}

	// A point ahead of the new origin lands at the screen center.
	x, y, _, ok := c.WorldToScreen(c.Origin.Add(c.Forward().Scale(3)), 100, 50)
	if !ok || math.Abs(x-50) > 1e-9 || math.Abs(y-25) > 1e-9 {
		t.Errorf("WorldToScreen = (%v, %v, %v), want center", x, y, ok)
	}
}

func TestCameraMove(t *testing.T) {
	c := NewCamera()
	c.SetRotation(0, math.Pi/2)
	c.MoveRight(1)
	c.MoveUp(2)
	if !vecNear(c.Origin, math3d.V3(0, 2, -1)) {
		t.Errorf("Origin = %v, want (0, 2, -1)", c.Origin)
	}
}

func TestCameraRotateClampsPitch(t *testing.T) {
	c := NewCamera()
	c.Rotate(10, 0.5)
	if c.Pitch >= math.Pi/2 {
		t.Errorf("Pitch = %v, want below π/2", c.Pitch)
	}
	if c.Yaw != 0.5 {
		t.Errorf("Yaw = %v, want 0.5", c.Yaw)
	}
}

func TestCameraLookAt(t *testing.T) {
	c := NewCamera()
	c.SetOrigin(math3d.V3(0, 0, -5))
	target := math3d.V3(3, 4, 0)
	c.LookAt(target)

	want := target.Sub(c.Origin).Normalize()
	if !vecNear(c.Forward(), want) {
		t.Errorf("Forward = %v, want %v", c.Forward(), want)
	}
}

func TestWorldToScreen(t *testing.T) {
	c := NewCamera()
	c.SetAspectRatio(2)

	tests := []struct {
		name    string
		p       math3d.Vec3
		x, y    float64
		visible bool
	}{
		{"center", math3d.V3(0, 0, 10), 100, 50, true},
		{"behind", math3d.V3(0, 0, -10), 0, 0, false},
		{"outside", math3d.V3(100, 0, 10), 0, 0, false},
		{"upper half", math3d.V3(0, 5*math.Tan(math.Pi/8), 10), 100, 25, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, depth, ok := c.WorldToScreen(tc.p, 200, 100)
			if ok != tc.visible {
				t.Fatalf("visible = %v, want %v", ok, tc.visible)
			}
			if !ok {
				return
			}
			if math.Abs(x-tc.x) > 1e-6 || math.Abs(y-tc.y) > 1e-6 {
				t.Errorf("screen = (%v, %v), want (%v, %v)", x, y, tc.x, tc.y)
			}
			if depth < 0 || depth > 1 {
				t.Errorf("depth = %v, want within [0, 1]", depth)
			}
		})
	}
}
