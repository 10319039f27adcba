package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
)

func TestTurntableEasesToSpeed(t *testing.T) {
	tt := NewTurntable(30, math.Pi, 4, 1)
	perFrame := math.Pi / 30

	prev := tt.Angle
	for range 300 {
		angle := tt.Step()
		assert.GreaterOrEqual(t, angle, prev, "angle must not run backwards")
		assert.LessOrEqual(t, tt.Velocity, perFrame+1e-9, "critically damped spring overshot")
		prev = angle
	}
	assert.InDelta(t, perFrame, tt.Velocity, 1e-6)
}

func TestTurntableToggleStops(t *testing.T) {
	tt := NewTurntable(30, math.Pi, 4, 1)
	for range 300 {
		tt.Step()
	}

	tt.Toggle()
	require.False(t, tt.Running)
	for range 300 {
		tt.Step()
	}
	assert.InDelta(t, 0, tt.Velocity, 1e-6)

	stopped := tt.Angle
	tt.Step()
	assert.InDelta(t, stopped, tt.Angle, 1e-6)
}

func TestTurntableReset(t *testing.T) {
	tt := NewTurntable(60, 1, 4, 1)
	for range 10 {
		tt.Step()
	}
	require.NotZero(t, tt.Angle)

	tt.Reset()
	assert.Zero(t, tt.Angle)
	assert.Zero(t, tt.Velocity)
	// first step after a reset only starts the spring
	assert.Zero(t, tt.Step())
}

func TestObjectPlace(t *testing.T) {
	obj := Object{
		Mesh:        models.NewMesh("m", models.TriangleList),
		Local:       math3d.ScaleUniform(2),
		Translation: math3d.V3(0, 0, 5),
	}
	obj.Place(math.Pi / 2)

	// scaled to (2,0,0), yawed to (0,0,-2), moved to (0,0,3)
	got := obj.Mesh.World.MulVec3(math3d.V3(1, 0, 0))
	assert.InDelta(t, 0, got.X, 1e-9)
	assert.InDelta(t, 0, got.Y, 1e-9)
	assert.InDelta(t, 3, got.Z, 1e-9)
}
