package math3d

import "math"

// MinW is the smallest homogeneous w magnitude that PerspectiveDivide will
// divide by. Smaller magnitudes are pushed out to ±MinW keeping their sign.
const MinW = 1e-6

// Vec4 represents a 4D vector (or homogeneous 3D point).
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// V4FromV3 creates a Vec4 from Vec3 with specified W.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// SafeW returns W with its magnitude clamped to at least MinW.
// A W of exactly zero is treated as positive.
func (v Vec4) SafeW() float64 {
	if math.Abs(v.W) >= MinW {
		return v.W
	}
	if math.Signbit(v.W) {
		return -MinW
	}
	return MinW
}

// PerspectiveDivide divides X, Y and Z by the clamped W and keeps W as is,
// so the result still carries the clip-space depth for interpolation.
func (v Vec4) PerspectiveDivide() Vec4 {
	w := v.SafeW()
	return Vec4{v.X / w, v.Y / w, v.Z / w, v.W}
}

// Scale returns the scalar product.
func (v Vec4) Scale(s float64) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Dot returns the dot product.
//
//nolint:st1016 // a·b naming convention is clearer for vector operations
func (a Vec4) Dot(b Vec4) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}
