package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order and applied to column
// vectors (M * v). A chain written row-vector style as world·view·projection
// is therefore built as projection.Mul(view).Mul(world).
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// For a transform matrix:
// | Xx Yx Zx Tx |   X,Y,Z = basis vectors (rotation/scale)
// | Xy Yy Zy Ty |   T = translation
// | Xz Yz Zz Tz |
// | 0  0  0  1  |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// LookAtLH creates a left-handed view matrix looking from eye towards target.
// View space has +Z along the viewing direction.
func LookAtLH(eye, target, up Vec3) Mat4 {
	z := target.Sub(eye).Normalize() // Forward
	x := up.Cross(z).Normalize()     // Right
	y := z.Cross(x)                  // Up (recomputed)

	return Mat4{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// PerspectiveFovLH creates a left-handed perspective projection matrix.
// fovy is vertical field of view in radians.
// aspect is width/height.
// View depth near..far maps to NDC z 0..1 and clip w equals view depth.
func PerspectiveFovLH(fovy, aspect, near, far float64) Mat4 {
	t := math.Tan(fovy / 2)
	q := far / (far - near)

	return Mat4{
		1 / (aspect * t), 0, 0, 0,
		0, 1 / t, 0, 0,
		0, 0, q, 1,
		0, 0, -near * q, 0,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1).
func (m Mat4) MulVec3(v Vec3) Vec3 {
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]) / w,
		(m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]) / w,
		(m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]) / w,
	}
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// TransformPoint transforms a Vec3 as a homogeneous point (w=1) without
// dividing, returning the clip-space result.
func (m Mat4) TransformPoint(v Vec3) Vec4 {
	return m.MulVec4(V4FromV3(v, 1))
}

// TransformDir transforms a direction by the upper 3x3 part of the matrix and
// renormalizes it. Translation is ignored.
func (m Mat4) TransformDir(v Vec3) Vec3 {
	return m.MulVec3Dir(v).Normalize()
}

// Transpose swaps rows and columns.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := range 4 {
		for col := range 4 {
			t[col+row*4] = m[row+col*4]
		}
	}
	return t
}

// Determinant returns the determinant of the matrix, computed by the same
// partial-pivot elimination as Inverse.
func (m Mat4) Determinant() float64 {
	det, _ := m.eliminate()
	return det
}

// Inverse returns the inverse of the matrix, or the identity when the
// matrix is singular.
func (m Mat4) Inverse() Mat4 {
	det, inv := m.eliminate()
	if det == 0 {
		return Identity()
	}
	return inv
}

// eliminate runs Gauss-Jordan elimination with partial pivoting on m and
// returns its determinant together with the inverse. The inverse is only
// meaningful when the determinant is non-zero.
func (m Mat4) eliminate() (float64, Mat4) {
	a := m
	inv := Identity()
	det := 1.0

	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a.Get(row, col)) > math.Abs(a.Get(pivot, col)) {
				pivot = row
			}
		}
		p := a.Get(pivot, col)
		if p == 0 {
			return 0, inv
		}
		if pivot != col {
			a.swapRows(pivot, col)
			inv.swapRows(pivot, col)
			det = -det
		}
		det *= p

		a.scaleRow(col, 1/p)
		inv.scaleRow(col, 1/p)
		for row := range 4 {
			if row == col {
				continue
			}
			f := a.Get(row, col)
			if f == 0 {
				continue
			}
			a.subRow(row, col, f)
			inv.subRow(row, col, f)
		}
	}
	return det, inv
}

func (m *Mat4) swapRows(i, j int) {
	for col := range 4 {
		m[i+col*4], m[j+col*4] = m[j+col*4], m[i+col*4]
	}
}

func (m *Mat4) scaleRow(i int, s float64) {
	for col := range 4 {
		m[i+col*4] *= s
	}
}

// subRow subtracts f times row src from row dst.
func (m *Mat4) subRow(dst, src int, f float64) {
	for col := range 4 {
		m[dst+col*4] -= f * m[src+col*4]
	}
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// SetTranslation sets the translation component.
func (m *Mat4) SetTranslation(v Vec3) {
	m[12] = v.X
	m[13] = v.Y
	m[14] = v.Z
}
