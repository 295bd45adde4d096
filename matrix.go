// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cinema

import "github.com/chewxy/math32"

// Mat4 represents a 3D affine or projective transformation matrix
// in row-major order:
//
//	| m0  m1  m2  m3  |
//	| m4  m5  m6  m7  |
//	| m8  m9  m10 m11 |
//	| m12 m13 m14 m15 |
//
// Points are column vectors, so a point p maps to M*p and the
// translation lives in the last column.
type Mat4 [16]float32

// Identity4 returns the identity transformation matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation creates a translation matrix.
func Translation(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}
}

// Scaling creates a scaling matrix.
func Scaling(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotationX creates a rotation around the X axis (angle in radians).
func RotationX(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotationY creates a rotation around the Y axis (angle in radians).
func RotationY(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotationZ creates a rotation around the Z axis (angle in radians).
func RotationZ(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return Mat4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Rotation creates a rotation from Euler angles applied X, then Y, then Z.
func Rotation(euler Vec3) Mat4 {
	if euler == (Vec3{}) {
		return Identity4()
	}
	return RotationZ(euler.Z).Multiply(RotationY(euler.Y)).Multiply(RotationX(euler.X))
}

// Compose builds translate * rotate * scale.
func Compose(pos, euler, scale Vec3) Mat4 {
	return Translation(pos).Multiply(Rotation(euler)).Multiply(Scaling(scale))
}

// Multiply returns m * other: other is applied first, then m.
func (m Mat4) Multiply(other Mat4) Mat4 {
	var r Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * other[k*4+col]
			}
			r[row*4+col] = sum
		}
	}
	return r
}

// TransformPoint applies the transformation to a point (w = 1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// TransformVector applies the transformation to a direction (w = 0),
// ignoring translation.
func (m Mat4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// Project applies the full 4x4 transformation to a point and returns
// the homogeneous result without dividing by w.
func (m Mat4) Project(p Vec3) Vec4 {
	return Vec4{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
		W: m[12]*p.X + m[13]*p.Y + m[14]*p.Z + m[15],
	}
}

// Axis returns column i (0..2) of the linear part, the image of the
// i-th basis vector.
func (m Mat4) Axis(i int) Vec3 {
	return Vec3{X: m[i], Y: m[4+i], Z: m[8+i]}
}

// Origin returns the translation column.
func (m Mat4) Origin() Vec3 {
	return Vec3{X: m[3], Y: m[7], Z: m[11]}
}

// IsIdentity returns true if this is the identity matrix.
func (m Mat4) IsIdentity() bool {
	return m == Identity4()
}

// Perspective creates a right-handed projection matrix mapping the view
// frustum into the clip cube -w <= x,y,z <= w.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), 2 * far * near / (near - far),
		0, 0, -1, 0,
	}
}

// LookAt creates a view matrix for a camera at eye looking at target.
func LookAt(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	return Mat4{
		x.X, x.Y, x.Z, -x.Dot(eye),
		y.X, y.Y, y.Z, -y.Dot(eye),
		z.X, z.Y, z.Z, -z.Dot(eye),
		0, 0, 0, 1,
	}
}
