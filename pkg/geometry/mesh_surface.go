package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// MeshSurface samples points uniformly by area over a world-space mesh
type MeshSurface struct {
	mesh  *Mesh
	faces *core.Distribution1D
	area  float64
}

// NewMeshSurface precomputes per-face areas. The mesh must already be in
// world space (see Mesh.Transformed).
func NewMeshSurface(mesh *Mesh) (*MeshSurface, error) {
	if mesh.FaceCount() == 0 {
		return nil, fmt.Errorf("%w: emissive surface", core.ErrEmptyMesh)
	}
	areas := make([]float64, mesh.FaceCount())
	total := 0.0
	for f := range areas {
		areas[f] = triangleArea(mesh, f)
		total += areas[f]
	}
	faces, err := core.NewDistribution1D(areas)
	if err != nil {
		return nil, err
	}
	return &MeshSurface{mesh: mesh, faces: faces, area: total}, nil
}

func toR3(v core.Vec3) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func triangleArea(mesh *Mesh, f int) float64 {
	v0, v1, v2 := mesh.Face(f)
	p0 := toR3(v0.Position)
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(toR3(v1.Position), p0), r3.Sub(toR3(v2.Position), p0)))
}

// Area returns the summed face area
func (s *MeshSurface) Area() float64 {
	return s.area
}

// Sample picks a face proportional to area, then a uniform point on it
func (s *MeshSurface) Sample(sampler core.Sampler) core.Vec3 {
	f, _ := s.faces.Sample(sampler.Get1D())
	b1, b2 := core.SampleUniformTriangle(sampler.Get2D())
	v0, v1, v2 := s.mesh.Face(f)
	return v0.Position.Multiply(1 - b1 - b2).Add(v1.Position.Multiply(b1)).Add(v2.Position.Multiply(b2))
}
