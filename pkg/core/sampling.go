package core

import (
	"math"
)

// TangentFrame builds two unit vectors (m, l) that form an orthonormal
// basis (m, l, n) with the unit normal n.
func TangentFrame(n Vec3) (m, l Vec3) {
	xy := n.X*n.X + n.Y*n.Y
	if xy < 1e-12 {
		// Normal is (anti)parallel to Z
		if n.Z >= 0 {
			return NewVec3(1, 0, 0), NewVec3(0, 1, 0)
		}
		return NewVec3(1, 0, 0), NewVec3(0, -1, 0)
	}
	l = NewVec3(n.Y, -n.X, 0).Normalize()
	m = NewVec3(n.X*n.Z, n.Y*n.Z, -xy).Normalize()
	return m, l
}

// ToWorld maps a vector expressed in the (m, l, n) frame of normal n to world space
func ToWorld(n, local Vec3) Vec3 {
	m, l := TangentFrame(n)
	return m.Multiply(local.X).Add(l.Multiply(local.Y)).Add(n.Multiply(local.Z))
}

// ToLocal maps a world vector into the (m, l, n) frame of normal n
func ToLocal(n, w Vec3) Vec3 {
	m, l := TangentFrame(n)
	return NewVec3(w.Dot(m), w.Dot(l), w.Dot(n))
}

// SamplePointInUnitDisk generates a random point in a unit disk using concentric mapping
// This avoids rejection sampling by mapping a square uniformly to a disk
func SamplePointInUnitDisk(sample Vec2) Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	uOffset := NewVec2(2*sample.X-1, 2*sample.Y-1)
	if uOffset.IsZero() {
		return Vec2{}
	}

	// Apply concentric mapping to point
	var theta, r float64
	if math.Abs(uOffset.X) > math.Abs(uOffset.Y) {
		r = uOffset.X
		theta = math.Pi / 4 * (uOffset.Y / uOffset.X)
	} else {
		r = uOffset.Y
		theta = math.Pi/2 - math.Pi/4*(uOffset.X/uOffset.Y)
	}

	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// SampleCosineHemisphere generates a cosine-weighted direction in the hemisphere
// around the unit normal and returns it with its solid-angle pdf (cosθ/π)
func SampleCosineHemisphere(normal Vec3, sample Vec2) (Vec3, float64) {
	d := SamplePointInUnitDisk(sample)
	z := math.Sqrt(math.Max(0, 1-d.X*d.X-d.Y*d.Y))
	return ToWorld(normal, NewVec3(d.X, d.Y, z)), z * InvPi
}

// SampleUniformTriangle returns barycentric weights (b1, b2) uniformly
// distributed over a triangle; b0 = 1 - b1 - b2
func SampleUniformTriangle(sample Vec2) (b1, b2 float64) {
	su := math.Sqrt(sample.X)
	return 1 - su, sample.Y * su
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}
