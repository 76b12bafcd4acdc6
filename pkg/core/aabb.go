package core

import (
	"fmt"
	"math"
)

// parallelEpsilon is the direction component below which a ray is treated as
// parallel to the slab planes of that axis
const parallelEpsilon = 1e-5

// faceEpsilon widens face extents so hits on flat boxes survive rounding
const faceEpsilon = 1e-9

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	box := AABB{Min: points[0], Max: points[0]}
	for _, point := range points[1:] {
		box.Min = MinVec(box.Min, point)
		box.Max = MaxVec(box.Max, point)
	}
	return box
}

// Union returns the smallest box containing both boxes
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: MinVec(aabb.Min, other.Min), Max: MaxVec(aabb.Max, other.Max)}
}

// Intersection returns the overlap of both boxes. The result may be inverted
// (min > max on some axis) when the boxes do not overlap.
func (aabb AABB) Intersection(other AABB) AABB {
	return AABB{Min: MaxVec(aabb.Min, other.Min), Max: MinVec(aabb.Max, other.Max)}
}

// Contains reports whether the point lies inside the box (boundary included)
func (aabb AABB) Contains(p Vec3) bool {
	return aabb.Min.X <= p.X && p.X <= aabb.Max.X &&
		aabb.Min.Y <= p.Y && p.Y <= aabb.Max.Y &&
		aabb.Min.Z <= p.Z && p.Z <= aabb.Max.Z
}

// Intersect tests a ray against the box.
//
// Each face plane the ray is not parallel to is intersected and the hit is
// kept only if it lies on the face. rangeMin/rangeMax span the kept distances,
// with rangeMin clamped to tMin so callers can use it as a pruning bound. The
// ray hits when its origin is inside the box or the range overlaps [tMin, tMax].
func (aabb AABB) Intersect(origin, direction Vec3, tMin, tMax float64) (hit bool, rangeMin, rangeMax float64) {
	inside := aabb.Contains(origin)

	low := math.Inf(1)
	high := math.Inf(-1)
	found := false

	for axis := 0; axis < 3; axis++ {
		d := direction.Axis(axis)
		if math.Abs(d) <= parallelEpsilon {
			continue
		}
		invD := 1.0 / d
		o := origin.Axis(axis)
		u, v := (axis+1)%3, (axis+2)%3

		for _, plane := range [2]float64{aabb.Min.Axis(axis), aabb.Max.Axis(axis)} {
			t := (plane - o) * invD
			p := origin.Add(direction.Multiply(t))
			if aabb.Min.Axis(u)-faceEpsilon <= p.Axis(u) && p.Axis(u) <= aabb.Max.Axis(u)+faceEpsilon &&
				aabb.Min.Axis(v)-faceEpsilon <= p.Axis(v) && p.Axis(v) <= aabb.Max.Axis(v)+faceEpsilon {
				low = min(low, t)
				high = max(high, t)
				found = true
			}
		}
	}

	if !found {
		if inside {
			return true, tMin, tMax
		}
		return false, tMin, tMin
	}

	rangeMin = max(low, tMin)
	rangeMax = high
	hit = inside || (high >= tMin && low <= tMax)
	return hit, rangeMin, rangeMax
}

// Hit tests if a ray intersects with this AABB within [tMin, tMax]
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	hit, _, _ := aabb.Intersect(ray.Origin, ray.Direction, tMin, tMax)
	return hit
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the extent of the box on each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// LongestAxis returns the axis with the greatest extent (0=X, 1=Y, 2=Z).
// Ties resolve to the earlier axis.
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	axis := 0
	longest := size.X
	if longest < size.Y {
		axis, longest = 1, size.Y
	}
	if longest < size.Z {
		axis = 2
	}
	return axis
}

// IsValid checks if the AABB has min <= max on every axis
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Transform returns the box bounding the eight transformed corners
func (aabb AABB) Transform(m Mat4) AABB {
	corners := make([]Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		corner := Vec3{aabb.Min.X, aabb.Min.Y, aabb.Min.Z}
		if i&1 != 0 {
			corner.X = aabb.Max.X
		}
		if i&2 != 0 {
			corner.Y = aabb.Max.Y
		}
		if i&4 != 0 {
			corner.Z = aabb.Max.Z
		}
		corners = append(corners, m.TransformPoint(corner))
	}
	return NewAABBFromPoints(corners...)
}

// String formats the box for logs and diagnostics
func (aabb AABB) String() string {
	return fmt.Sprintf("[%v - %v]", aabb.Min, aabb.Max)
}
