package core

import "math"

// Mat4 is a row-major 4x4 matrix acting on column vectors (p' = M * p)
type Mat4 [4][4]float64

// Identity returns the identity matrix
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate returns a translation matrix
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[0][3] = v.X
	m[1][3] = v.Y
	m[2][3] = v.Z
	return m
}

// Scale returns a non-uniform scale matrix
func Scale(v Vec3) Mat4 {
	m := Identity()
	m[0][0] = v.X
	m[1][1] = v.Y
	m[2][2] = v.Z
	return m
}

// Rotate returns a rotation of angle radians about a (not necessarily unit) axis
func Rotate(axis Vec3, angle float64) Mat4 {
	a := axis.Normalize()
	s, c := math.Sin(angle), math.Cos(angle)
	t := 1 - c
	return Mat4{
		{t*a.X*a.X + c, t*a.X*a.Y - s*a.Z, t*a.X*a.Z + s*a.Y, 0},
		{t*a.X*a.Y + s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z - s*a.X, 0},
		{t*a.X*a.Z - s*a.Y, t*a.Y*a.Z + s*a.X, t*a.Z*a.Z + c, 0},
		{0, 0, 0, 1},
	}
}

// LookAt returns the camera-to-world matrix for a camera at eye looking at
// target. The camera looks down its local -Z axis with +Y up.
func LookAt(eye, target, up Vec3) Mat4 {
	w := eye.Subtract(target).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)
	return Mat4{
		{u.X, v.X, w.X, eye.X},
		{u.Y, v.Y, w.Y, eye.Y},
		{u.Z, v.Z, w.Z, eye.Z},
		{0, 0, 0, 1},
	}
}

// Mul returns m * other
func (m Mat4) Mul(other Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * other[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// Transpose returns the transposed matrix
func (m Mat4) Transpose() Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Apply multiplies a homogeneous vector
func (m Mat4) Apply(v Vec4) Vec4 {
	return Vec4{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z + m[0][3]*v.W,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z + m[1][3]*v.W,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z + m[2][3]*v.W,
		W: m[3][0]*v.X + m[3][1]*v.Y + m[3][2]*v.Z + m[3][3]*v.W,
	}
}

// TransformPoint applies the matrix to a point (w = 1)
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return m.Apply(Vec4{p.X, p.Y, p.Z, 1}).XYZ()
}

// TransformDirection applies the matrix to a direction (w = 0)
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return m.Apply(Vec4{d.X, d.Y, d.Z, 0}).XYZ()
}

// Determinant returns the determinant of the matrix
func (m Mat4) Determinant() float64 {
	_, det := m.adjugate()
	return det
}

// Inverse returns the inverse matrix and false when the matrix is singular
func (m Mat4) Inverse() (Mat4, bool) {
	adj, det := m.adjugate()
	if det == 0 || math.IsNaN(det) {
		return Mat4{}, false
	}
	invDet := 1.0 / det
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			adj[i][j] *= invDet
		}
	}
	return adj, true
}

// adjugate computes the adjugate matrix and the determinant by cofactor expansion
func (m Mat4) adjugate() (Mat4, float64) {
	a := m
	s0 := a[0][0]*a[1][1] - a[1][0]*a[0][1]
	s1 := a[0][0]*a[1][2] - a[1][0]*a[0][2]
	s2 := a[0][0]*a[1][3] - a[1][0]*a[0][3]
	s3 := a[0][1]*a[1][2] - a[1][1]*a[0][2]
	s4 := a[0][1]*a[1][3] - a[1][1]*a[0][3]
	s5 := a[0][2]*a[1][3] - a[1][2]*a[0][3]

	c5 := a[2][2]*a[3][3] - a[3][2]*a[2][3]
	c4 := a[2][1]*a[3][3] - a[3][1]*a[2][3]
	c3 := a[2][1]*a[3][2] - a[3][1]*a[2][2]
	c2 := a[2][0]*a[3][3] - a[3][0]*a[2][3]
	c1 := a[2][0]*a[3][2] - a[3][0]*a[2][2]
	c0 := a[2][0]*a[3][1] - a[3][0]*a[2][1]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0

	var r Mat4
	r[0][0] = a[1][1]*c5 - a[1][2]*c4 + a[1][3]*c3
	r[0][1] = -a[0][1]*c5 + a[0][2]*c4 - a[0][3]*c3
	r[0][2] = a[3][1]*s5 - a[3][2]*s4 + a[3][3]*s3
	r[0][3] = -a[2][1]*s5 + a[2][2]*s4 - a[2][3]*s3

	r[1][0] = -a[1][0]*c5 + a[1][2]*c2 - a[1][3]*c1
	r[1][1] = a[0][0]*c5 - a[0][2]*c2 + a[0][3]*c1
	r[1][2] = -a[3][0]*s5 + a[3][2]*s2 - a[3][3]*s1
	r[1][3] = a[2][0]*s5 - a[2][2]*s2 + a[2][3]*s1

	r[2][0] = a[1][0]*c4 - a[1][1]*c2 + a[1][3]*c0
	r[2][1] = -a[0][0]*c4 + a[0][1]*c2 - a[0][3]*c0
	r[2][2] = a[3][0]*s4 - a[3][1]*s2 + a[3][3]*s0
	r[2][3] = -a[2][0]*s4 + a[2][1]*s2 - a[2][3]*s0

	r[3][0] = -a[1][0]*c3 + a[1][1]*c1 - a[1][2]*c0
	r[3][1] = a[0][0]*c3 - a[0][1]*c1 + a[0][2]*c0
	r[3][2] = -a[3][0]*s3 + a[3][1]*s1 - a[3][2]*s0
	r[3][3] = a[2][0]*s3 - a[2][1]*s1 + a[2][2]*s0

	return r, det
}

// ApproxEqual compares two matrices element-wise within tolerance
func (m Mat4) ApproxEqual(other Mat4, tolerance float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(m[i][j]-other[i][j]) > tolerance {
				return false
			}
		}
	}
	return true
}
