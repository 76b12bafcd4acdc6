package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

func TestIntersectFace(t *testing.T) {
	mesh := NewQuadMesh(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0))

	tests := []struct {
		name      string
		origin    core.Vec3
		direction core.Vec3
		shouldHit bool
		frontFace bool
		t         float64
	}{
		{
			name:      "Ray hits center of quad",
			origin:    core.NewVec3(0.5, 0.5, 1),
			direction: core.NewVec3(0, 0, -1),
			shouldHit: true,
			frontFace: true,
			t:         1,
		},
		{
			name:      "Ray hits from behind",
			origin:    core.NewVec3(0.25, 0.5, -2),
			direction: core.NewVec3(0, 0, 1),
			shouldHit: true,
			frontFace: false,
			t:         2,
		},
		{
			name:      "Ray misses outside",
			origin:    core.NewVec3(2, 2, 1),
			direction: core.NewVec3(0, 0, -1),
			shouldHit: false,
		},
		{
			name:      "Ray parallel to plane",
			origin:    core.NewVec3(0.5, 0.5, 1),
			direction: core.NewVec3(1, 0, 0),
			shouldHit: false,
		},
		{
			name:      "Quad behind ray",
			origin:    core.NewVec3(0.5, 0.5, 1),
			direction: core.NewVec3(0, 0, 1),
			shouldHit: false,
		},
	}

	const tolerance = 1e-9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hit core.HitRecord
			dist, ok := IntersectLinear(mesh, tt.origin, tt.direction, 1e-3, 1e4, &hit)
			if ok != tt.shouldHit {
				t.Fatalf("hit: got %v, expected %v", ok, tt.shouldHit)
			}
			if !ok {
				return
			}
			if math.Abs(dist-tt.t) > tolerance || math.Abs(hit.T-tt.t) > tolerance {
				t.Errorf("t: got %f (record %f), expected %f", dist, hit.T, tt.t)
			}
			if hit.FrontFace != tt.frontFace {
				t.Errorf("front face: got %v, expected %v", hit.FrontFace, tt.frontFace)
			}
			// Both normals always face the ray origin
			if hit.Normal.Dot(tt.direction) >= 0 || hit.GeometryNormal.Dot(tt.direction) >= 0 {
				t.Errorf("normals %v / %v do not face the ray", hit.Normal, hit.GeometryNormal)
			}
			expected := tt.origin.Add(tt.direction.Multiply(tt.t))
			if hit.Position.Subtract(expected).Length() > tolerance {
				t.Errorf("position: got %v, expected %v", hit.Position, expected)
			}
			if math.Abs(hit.TexCoord.X-expected.X) > tolerance || math.Abs(hit.TexCoord.Y-expected.Y) > tolerance {
				t.Errorf("texcoord: got %v, expected (%f, %f)", hit.TexCoord, expected.X, expected.Y)
			}
		})
	}
}

func TestIntersectFace_RespectsBest(t *testing.T) {
	mesh := NewQuadMesh(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0))
	var hit core.HitRecord
	if _, ok := IntersectLinear(mesh, core.NewVec3(0.5, 0.5, 3), core.NewVec3(0, 0, -1), 1e-3, 2, &hit); ok {
		t.Error("hit beyond the current best must be rejected")
	}
}

func TestDegenerateTriangleNeverHits(t *testing.T) {
	vertices := []Vertex{
		{Position: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1)},
		{Position: core.NewVec3(1, 0, 0), Normal: core.NewVec3(0, 0, 1)},
		{Position: core.NewVec3(2, 0, 0), Normal: core.NewVec3(0, 0, 1)},
	}
	mesh, err := NewMesh(vertices, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var hit core.HitRecord
	if _, ok := IntersectLinear(mesh, core.NewVec3(1, 0, 1), core.NewVec3(0, 0, -1), 1e-3, 1e4, &hit); ok {
		t.Error("collinear triangle reported a hit")
	}
}
