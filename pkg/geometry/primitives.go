package geometry

import (
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// DefaultSpherePrecision is the latitude band count used by NewSphereMesh callers
// that have no preference
const DefaultSpherePrecision = 60

// NewQuadMesh creates a two-triangle parallelogram spanning corner+s*edgeU+t*edgeV
// for s, t in [0,1]. The front face normal is edgeU x edgeV.
func NewQuadMesh(corner, edgeU, edgeV core.Vec3) *Mesh {
	normal := edgeU.Cross(edgeV).Normalize()
	vertices := []Vertex{
		{Position: corner, Normal: normal, TexCoord: core.NewVec2(0, 0)},
		{Position: corner.Add(edgeU), Normal: normal, TexCoord: core.NewVec2(1, 0)},
		{Position: corner.Add(edgeU).Add(edgeV), Normal: normal, TexCoord: core.NewVec2(1, 1)},
		{Position: corner.Add(edgeV), Normal: normal, TexCoord: core.NewVec2(0, 1)},
	}
	mesh, _ := NewMesh(vertices, []int{0, 1, 2, 0, 2, 3})
	return mesh
}

// NewCubeMesh creates an axis-aligned box with 24 vertices (four per face) so
// every face has flat outward normals and its own [0,1]² texture coordinates
func NewCubeMesh(center, size core.Vec3) *Mesh {
	half := size.Multiply(0.5)
	vertices := make([]Vertex, 0, 24)
	indices := make([]int, 0, 36)

	for axis := 0; axis < 3; axis++ {
		for _, sign := range [2]float64{1, -1} {
			normal := unitAxis(axis).Multiply(sign)
			u := unitAxis((axis + 1) % 3)
			v := unitAxis((axis + 2) % 3)
			if sign < 0 {
				u, v = v, u
			}
			faceCenter := center.Add(normal.MultiplyVec(half))
			u = u.MultiplyVec(half)
			v = v.MultiplyVec(half)

			base := len(vertices)
			vertices = append(vertices,
				Vertex{Position: faceCenter.Subtract(u).Subtract(v), Normal: normal, TexCoord: core.NewVec2(0, 0)},
				Vertex{Position: faceCenter.Add(u).Subtract(v), Normal: normal, TexCoord: core.NewVec2(1, 0)},
				Vertex{Position: faceCenter.Add(u).Add(v), Normal: normal, TexCoord: core.NewVec2(1, 1)},
				Vertex{Position: faceCenter.Subtract(u).Add(v), Normal: normal, TexCoord: core.NewVec2(0, 1)},
			)
			indices = append(indices, base, base+1, base+2, base, base+2, base+3)
		}
	}

	mesh, _ := NewMesh(vertices, indices)
	return mesh
}

// NewSphereMesh tessellates a UV sphere into precision latitude bands and
// 2*precision longitude segments. uFreq and vFreq repeat the texture
// coordinates around and along the sphere.
func NewSphereMesh(center core.Vec3, radius float64, precision int, uFreq, vFreq float64) *Mesh {
	if precision < 2 {
		precision = 2
	}
	columns := 2*precision + 1

	circle := make([]core.Vec2, columns)
	for j := range circle {
		omega := float64(j) / float64(precision) * math.Pi
		circle[j] = core.NewVec2(-math.Sin(omega), -math.Cos(omega))
	}

	vertices := make([]Vertex, 0, (precision+1)*columns)
	for i := 0; i <= precision; i++ {
		theta := float64(i) / float64(precision) * math.Pi
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
		for j := 0; j < columns; j++ {
			normal := core.NewVec3(circle[j].X*sinTheta, cosTheta, circle[j].Y*sinTheta)
			vertices = append(vertices, Vertex{
				Position: center.Add(normal.Multiply(radius)),
				Normal:   normal,
				TexCoord: core.NewVec2(float64(j)/float64(precision)*0.5*uFreq, float64(i)/float64(precision)*vFreq),
			})
		}
	}

	indices := make([]int, 0, precision*2*precision*6)
	for i := 1; i <= precision; i++ {
		for j := 0; j < 2*precision; j++ {
			j1 := j + 1
			cur, prev := i*columns, (i-1)*columns
			indices = append(indices,
				cur+j1, prev+j, cur+j,
				cur+j1, prev+j1, prev+j,
			)
		}
	}

	mesh, _ := NewMesh(vertices, indices)
	return mesh
}

func unitAxis(axis int) core.Vec3 {
	switch axis {
	case 0:
		return core.NewVec3(1, 0, 0)
	case 1:
		return core.NewVec3(0, 1, 0)
	default:
		return core.NewVec3(0, 0, 1)
	}
}
