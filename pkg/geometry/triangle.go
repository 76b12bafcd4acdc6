package geometry

import (
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// determinantEpsilon rejects rays (nearly) parallel to the triangle plane
// and degenerate zero-area triangles
const determinantEpsilon = 1e-9

// intersectFace solves origin + t*dir = v0 + u*e1 + v*e2 for face f.
// A hit is accepted when t is in [tMin, best] and (u, v) lies inside the
// triangle. On acceptance hit is filled with interpolated attributes, oriented
// against the ray.
func intersectFace(mesh *Mesh, f int, origin, direction core.Vec3, tMin, best float64, hit *core.HitRecord) (float64, bool) {
	v0, v1, v2 := mesh.Face(f)
	edge1 := v1.Position.Subtract(v0.Position)
	edge2 := v2.Position.Subtract(v0.Position)

	pvec := direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if math.Abs(det) < determinantEpsilon {
		return 0, false
	}
	invDet := 1.0 / det

	tvec := origin.Subtract(v0.Position)
	u := tvec.Dot(pvec) * invDet
	qvec := tvec.Cross(edge1)
	v := direction.Dot(qvec) * invDet
	t := edge2.Dot(qvec) * invDet

	if t < tMin || t > best {
		return 0, false
	}
	if u < 0 || v < 0 || u+v > 1 {
		return 0, false
	}

	w := 1 - u - v
	normal := v0.Normal.Multiply(w).Add(v1.Normal.Multiply(u)).Add(v2.Normal.Multiply(v)).Normalize()
	tangent := v0.Tangent.Multiply(w).Add(v1.Tangent.Multiply(u)).Add(v2.Tangent.Multiply(v)).Normalize()
	geomNormal := edge1.Cross(edge2).Normalize()

	hit.T = t
	hit.Position = origin.Add(direction.Multiply(t))
	hit.TexCoord = v0.TexCoord.Multiply(w).Add(v1.TexCoord.Multiply(u)).Add(v2.TexCoord.Multiply(v))
	if geomNormal.Dot(direction) < 0 {
		hit.FrontFace = true
		hit.GeometryNormal = geomNormal
		hit.Normal = normal
		hit.Tangent = tangent
	} else {
		hit.FrontFace = false
		hit.GeometryNormal = geomNormal.Negate()
		hit.Normal = normal.Negate()
		hit.Tangent = tangent.Negate()
	}
	return t, true
}

// IntersectLinear tests every face of the mesh in order and returns the
// nearest hit in [tMin, tMax]. It is the reference the BVH must agree with.
func IntersectLinear(mesh *Mesh, origin, direction core.Vec3, tMin, tMax float64, hit *core.HitRecord) (float64, bool) {
	best := tMax
	found := false
	for f := 0; f < mesh.FaceCount(); f++ {
		if t, ok := intersectFace(mesh, f, origin, direction, tMin, best, hit); ok {
			best = t
			found = true
		}
	}
	return best, found
}
