package geometry

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// Vertex is a mesh vertex with shading attributes
type Vertex struct {
	Position core.Vec3
	Normal   core.Vec3
	Tangent  core.Vec3
	TexCoord core.Vec2
}

// Mesh is an indexed triangle list. Every three indices form one face.
type Mesh struct {
	Vertices     []Vertex
	Indices      []int
	FaceTangents []core.Vec3 // one per face, derived from UV gradients
}

// NewMesh validates the index list and derives per-face and per-vertex tangents.
// Vertex normals shorter than 0.5 are replaced by the face's geometric normal.
// A mesh with no faces is valid and never produces hits.
func NewMesh(vertices []Vertex, indices []int) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: index count %d is not a multiple of 3", core.ErrInvalidMesh, len(indices))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d at position %d (vertex count %d)", core.ErrIndexOutOfRange, idx, i, len(vertices))
		}
	}

	mesh := &Mesh{
		Vertices: append([]Vertex(nil), vertices...),
		Indices:  append([]int(nil), indices...),
	}
	mesh.fillMissingNormals()
	mesh.computeTangents()
	return mesh, nil
}

// FaceCount returns the number of triangles
func (m *Mesh) FaceCount() int {
	return len(m.Indices) / 3
}

// Face returns the three vertices of face f
func (m *Mesh) Face(f int) (v0, v1, v2 *Vertex) {
	return &m.Vertices[m.Indices[3*f]], &m.Vertices[m.Indices[3*f+1]], &m.Vertices[m.Indices[3*f+2]]
}

// FaceBox returns the bounding box of face f
func (m *Mesh) FaceBox(f int) core.AABB {
	v0, v1, v2 := m.Face(f)
	return core.NewAABBFromPoints(v0.Position, v1.Position, v2.Position)
}

// FaceCentroid returns the centroid of face f
func (m *Mesh) FaceCentroid(f int) core.Vec3 {
	v0, v1, v2 := m.Face(f)
	return v0.Position.Add(v1.Position).Add(v2.Position).Multiply(1.0 / 3.0)
}

// FaceNormal returns the unit geometric normal of face f following its winding
func (m *Mesh) FaceNormal(f int) core.Vec3 {
	v0, v1, v2 := m.Face(f)
	return v1.Position.Subtract(v0.Position).Cross(v2.Position.Subtract(v0.Position)).Normalize()
}

// BoundingBox returns the box around every vertex
func (m *Mesh) BoundingBox() core.AABB {
	if len(m.Vertices) == 0 {
		return core.AABB{}
	}
	box := core.NewAABBFromPoints(m.Vertices[0].Position)
	for _, v := range m.Vertices[1:] {
		box = box.Union(core.NewAABBFromPoints(v.Position))
	}
	return box
}

// Transformed returns a copy with positions and tangents mapped by transform
// and normals mapped by its inverse transpose
func (m *Mesh) Transformed(transform core.Mat4) *Mesh {
	inv, ok := transform.Inverse()
	if !ok {
		inv = core.Identity()
	}
	normalMatrix := inv.Transpose()

	out := &Mesh{
		Vertices:     make([]Vertex, len(m.Vertices)),
		Indices:      append([]int(nil), m.Indices...),
		FaceTangents: make([]core.Vec3, len(m.FaceTangents)),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = Vertex{
			Position: transform.TransformPoint(v.Position),
			Normal:   normalMatrix.TransformDirection(v.Normal).Normalize(),
			Tangent:  transform.TransformDirection(v.Tangent).Normalize(),
			TexCoord: v.TexCoord,
		}
	}
	for i, t := range m.FaceTangents {
		out.FaceTangents[i] = transform.TransformDirection(t).Normalize()
	}
	return out
}

func (m *Mesh) fillMissingNormals() {
	for f := 0; f < m.FaceCount(); f++ {
		geomNormal := m.FaceNormal(f)
		for k := 0; k < 3; k++ {
			v := &m.Vertices[m.Indices[3*f+k]]
			if v.Normal.Length() < 0.5 {
				v.Normal = geomNormal
			}
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// computeTangents derives a tangent per face from its UV gradients, then
// accumulates them per vertex and orthogonalizes against the vertex normal.
// Faces without texture coordinates or with a singular UV mapping contribute nothing.
func (m *Mesh) computeTangents() {
	m.FaceTangents = make([]core.Vec3, m.FaceCount())
	sums := make([]core.Vec3, len(m.Vertices))

	for f := 0; f < m.FaceCount(); f++ {
		v0, v1, v2 := m.Face(f)
		if v0.TexCoord.IsZero() && v1.TexCoord.IsZero() && v2.TexCoord.IsZero() {
			continue
		}
		edge1 := v1.Position.Subtract(v0.Position)
		edge2 := v2.Position.Subtract(v0.Position)
		duv1 := v1.TexCoord.Subtract(v0.TexCoord)
		duv2 := v2.TexCoord.Subtract(v0.TexCoord)

		denom := duv1.X*duv2.Y - duv2.X*duv1.Y
		if denom > -1e-12 && denom < 1e-12 {
			continue
		}
		tangent := edge1.Multiply(duv2.Y).Subtract(edge2.Multiply(duv1.Y)).Multiply(1 / denom).Normalize()
		m.FaceTangents[f] = tangent
		for k := 0; k < 3; k++ {
			idx := m.Indices[3*f+k]
			sums[idx] = sums[idx].Add(tangent)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := sums[i]
		if t.IsZero() {
			t = m.Vertices[i].Tangent
		}
		// Gram-Schmidt against the normal
		t = t.Subtract(n.Multiply(n.Dot(t)))
		if t.LengthSquared() < 1e-18 {
			t, _ = core.TangentFrame(n)
		}
		m.Vertices[i].Tangent = t.Normalize()
	}
}
