package render

import (
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// Camera is a left-handed yaw/pitch camera. Yaw 0 and pitch 0 look down +Z.
// The renderer reads it once per frame; it is not safe for concurrent use.
//
// The fields may be written directly. The cached matrices remember the
// values they were built from and are rebuilt when any of them differ.
type Camera struct {
	// Origin in world space
	Origin math3d.Vec3

	// Orientation (radians)
	Pitch float64 // Rotation around X axis (look up/down)
	Yaw   float64 // Rotation around Y axis (look left/right)

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64
	Far         float64

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewAt         viewKey
	projAt         projKey
	viewProjView   viewKey
	viewProjProj   projKey
	viewOK         bool
	projOK         bool
	viewProjOK     bool
}

// viewKey and projKey are the inputs of the view and projection matrices.
type viewKey struct {
	origin     math3d.Vec3
	pitch, yaw float64
}

type projKey struct {
	fov, aspect, near, far float64
}

func (c *Camera) viewKey() viewKey {
	return viewKey{origin: c.Origin, pitch: c.Pitch, yaw: c.Yaw}
}

func (c *Camera) projKey() projKey {
	return projKey{fov: c.FOV, aspect: c.AspectRatio, near: c.Near, far: c.Far}
}

// NewCamera creates a camera at the origin looking down +Z.
func NewCamera() *Camera {
	return &Camera{
		FOV:         math.Pi / 4, // 45 degrees
		AspectRatio: 4.0 / 3.0,
		Near:        0.1,
		Far:         100,
	}
}

// SetOrigin sets the camera position.
func (c *Camera) SetOrigin(pos math3d.Vec3) {
	c.Origin = pos
}

// SetRotation sets pitch and yaw in radians.
func (c *Camera) SetRotation(pitch, yaw float64) {
	c.Pitch = pitch
	c.Yaw = yaw
	c.clampPitch()
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
}

// Forward returns the unit viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the unit right vector. It stays horizontal.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(
		math.Cos(c.Yaw),
		0,
		-math.Sin(c.Yaw),
	)
}

// Up returns the unit up vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Forward().Cross(c.Right())
}

// ViewMatrix returns the world-to-view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if key := c.viewKey(); !c.viewOK || key != c.viewAt {
		c.viewMatrix = math3d.LookAtLH(c.Origin, c.Origin.Add(c.Forward()), math3d.Up())
		c.viewAt, c.viewOK = key, true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the view-to-clip matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if key := c.projKey(); !c.projOK || key != c.projAt {
		c.projMatrix = math3d.PerspectiveFovLH(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projAt, c.projOK = key, true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view, proj := c.viewKey(), c.projKey()
	if !c.viewProjOK || view != c.viewProjView || proj != c.viewProjProj {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.viewProjView, c.viewProjProj, c.viewProjOK = view, proj, true
	}
	return c.viewProjMatrix
}

// MoveForward moves the camera along its viewing direction.
func (c *Camera) MoveForward(distance float64) {
	c.Origin = c.Origin.Add(c.Forward().Scale(distance))
}

// MoveRight moves the camera right (or left if negative).
func (c *Camera) MoveRight(distance float64) {
	c.Origin = c.Origin.Add(c.Right().Scale(distance))
}

// MoveUp moves the camera along world up.
func (c *Camera) MoveUp(distance float64) {
	c.Origin = c.Origin.Add(math3d.Up().Scale(distance))
}

// Rotate rotates the camera by the given angles (in radians).
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	c.Pitch += deltaPitch
	c.Yaw += deltaYaw
	c.clampPitch()
}

// clampPitch keeps the forward vector away from world up.
func (c *Camera) clampPitch() {
	const maxPitch = math.Pi/2 - 0.01
	c.Pitch = math3d.Clamp(c.Pitch, -maxPitch, maxPitch)
}

// LookAt points the camera at a target point.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Origin).Normalize()

	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(dir.X, dir.Z)
	c.clampPitch()

}

// WorldToScreen projects a world point to pixel coordinates.
// depth is the NDC z in [0, 1]. visible is false outside the clip volume.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().TransformPoint(worldPos)
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if !ClipVolumeContains(ndc) {
		return 0, 0, 0, false
	}

	s := ToScreen(ndc, screenWidth, screenHeight)
	return s.X, s.Y, ndc.Z, true
}
