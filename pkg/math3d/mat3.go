package math3d

import (
	"fmt"
	"math"
)

// OrthogonalTolerance is the element-wise tolerance used by IsOrthogonal.
const OrthogonalTolerance = 1e-4

// Mat3 is a 3x3 matrix stored in row-major order.
type Mat3 [9]float64

// Identity3 is the 3x3 identity matrix.
var Identity3 = Mat3{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// NewMat3 builds a matrix from 9 row-major values.
func NewMat3(data []float64) (Mat3, error) {
	var m Mat3
	if len(data) != 9 {
		return m, fmt.Errorf("mat3 from %d values: %w", len(data), ErrDimension)
	}
	copy(m[:], data)
	return m, nil
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat3) Mul(b Mat3) Mat3 {
	var m Mat3
	for row := range 3 {
		for col := range 3 {
			var sum float64
			for k := range 3 {
				sum += a[row*3+k] * b[k*3+col]
			}
			m[row*3+col] = sum
		}
	}
	return m
}

// MulVec3 transforms v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Determinant returns the determinant of the matrix.
func (m Mat3) Determinant() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// IsOrthogonal reports whether M*Mt equals the identity within OrthogonalTolerance.
func (m Mat3) IsOrthogonal() bool {
	p := m.Mul(m.Transpose())
	for i := range p {
		if math.Abs(p[i]-Identity3[i]) > OrthogonalTolerance {
			return false
		}
	}
	return true
}

// Mat4 embeds the matrix into the top-left block of an identity Mat4.
func (m Mat3) Mat4() Mat4 {
	return Mat4{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
		0, 0, 0, 1,
	}
}
