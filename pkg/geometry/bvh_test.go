package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// randomSoup builds a mesh of small random triangles scattered in a cube
func randomSoup(rng *core.RNG, count int) *Mesh {
	vertices := make([]Vertex, 0, 3*count)
	indices := make([]int, 0, 3*count)
	for i := 0; i < count; i++ {
		center := rng.Get3D().Multiply(10).Subtract(core.Splat(5))
		for k := 0; k < 3; k++ {
			offset := rng.Get3D().Subtract(core.Splat(0.5))
			vertices = append(vertices, Vertex{Position: center.Add(offset)})
			indices = append(indices, len(vertices)-1)
		}
	}
	mesh, _ := NewMesh(vertices, indices)
	return mesh
}

// referenceNearest is a plain Möller-Trumbore scan in gonum vectors, kept
// independent of the package's own triangle code
func referenceNearest(mesh *Mesh, origin, direction core.Vec3, tMin, tMax float64) (float64, bool) {
	o, d := toR3(origin), toR3(direction)
	best, found := tMax, false
	for f := 0; f < mesh.FaceCount(); f++ {
		v0, v1, v2 := mesh.Face(f)
		p0 := toR3(v0.Position)
		e1, e2 := r3.Sub(toR3(v1.Position), p0), r3.Sub(toR3(v2.Position), p0)
		p := r3.Cross(d, e2)
		det := r3.Dot(e1, p)
		if math.Abs(det) < 1e-12 {
			continue
		}
		s := r3.Sub(o, p0)
		u := r3.Dot(s, p) / det
		q := r3.Cross(s, e1)
		v := r3.Dot(d, q) / det
		if u < 0 || v < 0 || u+v > 1 {
			continue
		}
		if t := r3.Dot(e2, q) / det; t >= tMin && t < best {
			best, found = t, true
		}
	}
	return best, found
}

func TestBVH_MatchesLinearScan(t *testing.T) {
	rng := core.NewRNG(42)
	mesh := randomSoup(rng, 300)
	bvh := NewBVH(mesh)

	hits := 0
	for i := 0; i < 2000; i++ {
		origin := rng.Get3D().Multiply(20).Subtract(core.Splat(10))
		target := rng.Get3D().Multiply(10).Subtract(core.Splat(5))
		direction := target.Subtract(origin).Normalize()

		var expected, got core.HitRecord
		tLinear, okLinear := IntersectLinear(mesh, origin, direction, 1e-3, 1e4, &expected)
		tBVH, okBVH := bvh.TraceNearest(origin, direction, 1e-3, 1e4, &got)

		if okLinear != okBVH {
			t.Fatalf("ray %d: linear hit=%v, bvh hit=%v", i, okLinear, okBVH)
		}
		if !okLinear {
			continue
		}
		hits++
		if math.Abs(tLinear-tBVH) > 1e-9 {
			t.Errorf("ray %d: linear t=%f, bvh t=%f", i, tLinear, tBVH)
		}
		if tRef, okRef := referenceNearest(mesh, origin, direction, 1e-3, 1e4); !okRef || math.Abs(tRef-tBVH) > 1e-7 {
			t.Errorf("ray %d: reference t=%f (hit=%v), bvh t=%f", i, tRef, okRef, tBVH)
		}
		if got.Position.Subtract(expected.Position).Length() > 1e-9 {
			t.Errorf("ray %d: positions differ %v vs %v", i, got.Position, expected.Position)
		}
		if bvh.TraceAny(origin, direction, 1e-3, 1e4) != true {
			t.Errorf("ray %d: TraceAny missed a hit", i)
		}
	}
	if hits == 0 {
		t.Fatal("no rays hit the soup; test is not exercising anything")
	}
}

func TestBVH_Invariants(t *testing.T) {
	tests := []struct {
		name string
		mesh *Mesh
	}{
		{"single quad", NewQuadMesh(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1))},
		{"cube", NewCubeMesh(core.Vec3{}, core.Splat(1))},
		{"sphere", NewSphereMesh(core.Vec3{}, 1, 16, 1, 1)},
		{"soup", randomSoup(core.NewRNG(1), 257)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bvh := NewBVH(tt.mesh)
			if err := bvh.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			stats := bvh.Stats()
			if stats.TotalFaces != tt.mesh.FaceCount() {
				t.Errorf("stats face count %d, expected %d", stats.TotalFaces, tt.mesh.FaceCount())
			}
			if stats.TotalNodes != bvh.NodeCount() {
				t.Errorf("stats node count %d, arena holds %d", stats.TotalNodes, bvh.NodeCount())
			}
			if tt.mesh.FaceCount() > leafCapacity && stats.LeafNodes < 2 {
				t.Errorf("expected a split for %d faces", tt.mesh.FaceCount())
			}

			for i := 0; i < bvh.NodeCount(); i++ {
				node := bvh.Node(i)
				var expected core.AABB
				if node.Kind == NodeLeaf {
					expected = tt.mesh.FaceBox(node.Faces[0])
					for _, f := range node.Faces[1:] {
						expected = expected.Union(tt.mesh.FaceBox(f))
					}
				} else {
					expected = bvh.Node(node.Left).Box.Union(bvh.Node(node.Right).Box)
				}
				if node.Box != expected {
					t.Errorf("node %d: box %v, expected exactly %v", i, node.Box, expected)
				}
			}
		})
	}
}

func TestBVH_ValidateRejectsLooseBoxes(t *testing.T) {
	tests := []struct {
		name string
		node func(bvh *BVH) int
	}{
		{"root", func(bvh *BVH) int { return 0 }},
		{"internal child", func(bvh *BVH) int { return bvh.Node(0).Left }},
		{"leaf", func(bvh *BVH) int {
			for i := 0; i < bvh.NodeCount(); i++ {
				if bvh.Node(i).Kind == NodeLeaf {
					return i
				}
			}
			return -1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bvh := NewBVH(randomSoup(core.NewRNG(4), 64))
			i := tt.node(bvh)
			if i < 0 {
				t.Fatal("no node to inflate")
			}
			node := bvh.Node(i)
			// Still contains everything below it, but is no longer tight
			node.Box.Max = node.Box.Max.Add(core.Splat(0.5))
			if err := bvh.Validate(); err == nil {
				t.Errorf("Validate accepted inflated box on node %d", i)
			}
		})
	}
}

func TestBVH_EmptyMesh(t *testing.T) {
	mesh, err := NewMesh(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bvh := NewBVH(mesh)
	var hit core.HitRecord
	if _, ok := bvh.TraceNearest(core.Vec3{}, core.NewVec3(0, 0, 1), 1e-3, 1e4, &hit); ok {
		t.Error("empty hierarchy reported a hit")
	}
	if bvh.TraceAny(core.Vec3{}, core.NewVec3(0, 0, 1), 1e-3, 1e4) {
		t.Error("empty hierarchy reported an occluder")
	}
	if err := bvh.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBVH_CubeFaceHit(t *testing.T) {
	bvh := NewBVH(NewCubeMesh(core.Vec3{}, core.Splat(2)))

	tests := []struct {
		name      string
		origin    core.Vec3
		direction core.Vec3
		normal    core.Vec3
	}{
		{"+x face", core.NewVec3(5, 0.1, 0.2), core.NewVec3(-1, 0, 0), core.NewVec3(1, 0, 0)},
		{"-y face", core.NewVec3(0.3, -5, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)},
		{"+z face", core.NewVec3(-0.4, 0.4, 5), core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hit core.HitRecord
			dist, ok := bvh.TraceNearest(tt.origin, tt.direction, 1e-3, 1e4, &hit)
			if !ok {
				t.Fatal("expected hit")
			}
			if math.Abs(dist-4) > 1e-9 {
				t.Errorf("distance: got %f, expected 4", dist)
			}
			if !hit.FrontFace || hit.Normal.Subtract(tt.normal).Length() > 1e-9 {
				t.Errorf("normal: got %v (front=%v), expected %v", hit.Normal, hit.FrontFace, tt.normal)
			}
		})
	}

	// From inside the cube every face is a back face
	var hit core.HitRecord
	if _, ok := bvh.TraceNearest(core.Vec3{}, core.NewVec3(0, 1, 0), 1e-3, 1e4, &hit); !ok || hit.FrontFace {
		t.Errorf("inside ray: hit=%v front=%v, expected back face hit", ok, hit.FrontFace)
	}
}

func TestBVH_CurrentBestPrunes(t *testing.T) {
	bvh := NewBVH(NewCubeMesh(core.Vec3{}, core.Splat(2)))
	var hit core.HitRecord
	best, ok := bvh.TraceNearest(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1), 1e-3, 3.5, &hit)
	if ok || best != 3.5 {
		t.Errorf("got (%f, %v), expected the current best 3.5 and no hit", best, ok)
	}
}
