package math3d

import (
	"math"
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4TransformPoint(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.TransformPoint(v)
	}
}

func BenchmarkMat4TransformDir(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(0, 0, 1)

	for b.Loop() {
		_ = m.TransformDir(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))

	for b.Loop() {
		_ = m.Inverse()
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}

func BenchmarkPerspectiveDivide(b *testing.B) {
	v := V4(1, 2, 3, 4)

	for b.Loop() {
		_ = v.PerspectiveDivide()
	}
}

func BenchmarkWorldViewProjection(b *testing.B) {
	// Same chain the geometry transform builds once per mesh
	view := LookAtLH(V3(0, 0, -10), V3(0, 0, 0), Up())
	proj := PerspectiveFovLH(math.Pi/2, 1.333, 0.1, 100.0)
	world := Translate(V3(0, 0, 5)).Mul(RotateY(0.3))

	for b.Loop() {
		_ = proj.Mul(view).Mul(world)
	}
}
