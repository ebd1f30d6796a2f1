package math3d

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingularMatrix is returned by Inverse when no usable pivot exists.
var ErrSingularMatrix = errors.New("matrix is not invertible")

// ErrDimension is returned when raw data has the wrong number of elements.
var ErrDimension = errors.New("wrong dimension")

// Mat4 is a 4x4 matrix stored in row-major order.
// Matrices act on column vectors: v' = M * v.
//
// Memory layout (indices):
// | 0  1  2  3  |
// | 4  5  6  7  |
// | 8  9  10 11 |
// | 12 13 14 15 |
//
// For an affine transform the translation lives in the last column
// (indices 3, 7, 11).
type Mat4 [16]float64

// Identity4 is the shared identity matrix. Mat4 is a value type, so
// callers get a copy and cannot modify it.
var Identity4 = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Identity4
}

// NewMat4 builds a matrix from 16 row-major values.
func NewMat4(data []float64) (Mat4, error) {
	var m Mat4
	if len(data) != 16 {
		return m, fmt.Errorf("mat4 from %d values: %w", len(data), ErrDimension)
	}
	copy(m[:], data)
	return m, nil
}

// NewMat4Rows builds a matrix from 4 rows of 4 values.
func NewMat4Rows(rows [][]float64) (Mat4, error) {
	var m Mat4
	if len(rows) != 4 {
		return m, fmt.Errorf("mat4 from %d rows: %w", len(rows), ErrDimension)
	}
	for r, row := range rows {
		if len(row) != 4 {
			return m, fmt.Errorf("mat4 row %d has %d values: %w", r, len(row), ErrDimension)
		}
		copy(m[r*4:r*4+4], row)
	}
	return m, nil
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
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
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Rotate creates a rotation matrix around an arbitrary axis.
func Rotate(axis Vec3, angle float64) Mat4 {
	axis = axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4{
		t*x*x + c, t*x*y - s*z, t*x*z + s*y, 0,
		t*x*y + s*z, t*y*y + c, t*y*z - s*x, 0,
		t*x*z - s*y, t*y*z + s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// FromQuaternion creates a rotation matrix from a unit quaternion (x, y, z, w).
func FromQuaternion(x, y, z, w float64) Mat4 {
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if n == 0 {
		return Identity4
	}
	x, y, z, w = x/n, y/n, z/n, w/n

	return Mat4{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w), 0,
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w), 0,
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
}

// LookAt creates a view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize() // Forward
	s := f.Cross(up).Normalize()     // Right
	u := s.Cross(f)                  // Up (recomputed)

	return Mat4{
		s.X, s.Y, s.Z, -s.Dot(eye),
		u.X, u.Y, u.Z, -u.Dot(eye),
		-f.X, -f.Y, -f.Z, f.Dot(eye),
		0, 0, 0, 1,
	}
}

// Frustum creates a perspective projection from the near-plane window
// (left, right, bottom, top) and the near and far distances.
func Frustum(left, right, bottom, top, near, far float64) Mat4 {
	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)
	nf := 1.0 / (near - far)

	return Mat4{
		2 * near * rl, 0, (right + left) * rl, 0,
		0, 2 * near * tb, (top + bottom) * tb, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}
}

// Perspective creates a perspective projection matrix.
// fovy is vertical field of view in radians.
// aspect is width/height.
// near and far are clipping planes.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	top := near * math.Tan(fovy/2)
	right := top * aspect
	return Frustum(-right, right, -top, top, near, far)
}

// Orthographic creates an orthographic projection matrix.
func Orthographic(left, right, bottom, top, near, far float64) Mat4 {
	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)
	fn := 1.0 / (far - near)

	return Mat4{
		2 * rl, 0, 0, -(right + left) * rl,
		0, 2 * tb, 0, -(top + bottom) * tb,
		0, 0, -2 * fn, -(far + near) * fn,
		0, 0, 0, 1,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row*4+k] * b[k*4+col]
			}
			m[row*4+col] = sum
		}
	}
	return m
}

// Add returns the element-wise sum a + b.
//
//nolint:st1016 // a+b naming convention is clearer for matrix operations
func (a Mat4) Add(b Mat4) Mat4 {
	for i := range a {
		a[i] += b[i]
	}
	return a
}

// Sub returns the element-wise difference a - b.
//
//nolint:st1016 // a-b naming convention is clearer for matrix operations
func (a Mat4) Sub(b Mat4) Mat4 {
	for i := range a {
		a[i] -= b[i]
	}
	return a
}

// MulScalar returns every element multiplied by s.
func (m Mat4) MulScalar(s float64) Mat4 {
	for i := range m {
		m[i] *= s
	}
	return m
}

// AddScalar returns every element increased by s.
func (m Mat4) AddScalar(s float64) Mat4 {
	for i := range m {
		m[i] += s
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1) and divides by the resulting w.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	w := m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]) / w,
		(m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]) / w,
		(m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]) / w,
	}
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]*v.W,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]*v.W,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]*v.W,
		m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Inverse returns the inverse of the matrix using Gauss-Jordan elimination
// with partial pivoting. The receiver is a copy, so m is never modified.
func (m Mat4) Inverse() (Mat4, error) {
	inv := Identity4

	for col := range 4 {
		// Largest magnitude at or below the pivot row.
		pivot := col
		best := math.Abs(m[col*4+col])
		for row := col + 1; row < 4; row++ {
			if v := math.Abs(m[row*4+col]); v > best {
				best = v
				pivot = row
			}
		}
		if best == 0 {
			return Identity4, ErrSingularMatrix
		}

		if pivot != col {
			m.swapRows(pivot, col)
			inv.swapRows(pivot, col)
		}

		p := m[col*4+col]
		for k := range 4 {
			m[col*4+k] /= p
			inv[col*4+k] /= p
		}

		for row := range 4 {
			if row == col {
				continue
			}
			f := m[row*4+col]
			if f == 0 {
				continue
			}
			for k := range 4 {
				m[row*4+k] -= f * m[col*4+k]
				inv[row*4+k] -= f * inv[col*4+k]
			}
		}
	}

	return inv, nil
}

func (m *Mat4) swapRows(a, b int) {
	for k := range 4 {
		m[a*4+k], m[b*4+k] = m[b*4+k], m[a*4+k]
	}
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	det := 0.0
	sign := 1.0
	for c := range 4 {
		det += sign * m[c] * m.minor(0, c)
		sign = -sign
	}
	return det
}

// minor returns the determinant of the 3x3 matrix left after removing row r and column c.
func (m Mat4) minor(r, c int) float64 {
	var sub Mat3
	i := 0
	for row := range 4 {
		if row == r {
			continue
		}
		for col := range 4 {
			if col == c {
				continue
			}
			sub[i] = m[row*4+col]
			i++
		}
	}
	return sub.Determinant()
}

// Mat3 returns the top-left 3x3 block (rotation and scale part).
func (m Mat4) Mat3() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// IsOrthogonal reports whether the 3x3 part satisfies M*Mt == I within
// OrthogonalTolerance. Rotation-plus-translation transforms pass; any
// scaling or shearing fails.
func (m Mat4) IsOrthogonal() bool {
	return m.Mat3().IsOrthogonal()
}

// ApproxEqual reports whether every element differs by at most eps.
func (m Mat4) ApproxEqual(o Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// At returns the element at (row, col). It panics when out of range.
func (m Mat4) At(row, col int) float64 {
	if row < 0 || row > 3 || col < 0 || col > 3 {
		panic(fmt.Sprintf("math3d: Mat4 index (%d, %d) out of range", row, col))
	}
	return m[row*4+col]
}

// Set sets the element at (row, col). It panics when out of range.
func (m *Mat4) Set(row, col int, val float64) {
	if row < 0 || row > 3 || col < 0 || col > 3 {
		panic(fmt.Sprintf("math3d: Mat4 index (%d, %d) out of range", row, col))
	}
	m[row*4+col] = val
}

// Row returns row r as a Vec4.
func (m Mat4) Row(r int) Vec4 {
	return Vec4{m[r*4], m[r*4+1], m[r*4+2], m[r*4+3]}
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}
