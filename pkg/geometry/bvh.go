package geometry

import (
	"fmt"
	"sort"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// leafCapacity is the maximum number of faces stored in a leaf
const leafCapacity = 5

// NodeKind discriminates BVH nodes
type NodeKind uint8

const (
	NodeInternal NodeKind = iota
	NodeLeaf
)

// BVHNode is one entry of the node arena. Internal nodes use Left and Right
// (indices into the arena); leaves use Faces.
type BVHNode struct {
	Kind  NodeKind
	Box   core.AABB
	Left  int
	Right int
	Faces []int
}

// BVH is a median-split bounding volume hierarchy over the faces of one mesh.
// Nodes live in a flat arena; the root is always index 0 and every child
// index is greater than its parent's. Immutable after construction.
type BVH struct {
	mesh  *Mesh
	nodes []BVHNode
}

// NewBVH builds a hierarchy over every face of mesh. A mesh with no faces
// yields an empty hierarchy that never reports hits.
func NewBVH(mesh *Mesh) *BVH {
	bvh := &BVH{mesh: mesh}
	if mesh.FaceCount() == 0 {
		return bvh
	}

	faces := make([]int, mesh.FaceCount())
	centroids := make([]core.Vec3, mesh.FaceCount())
	for f := range faces {
		faces[f] = f
		centroids[f] = mesh.FaceCentroid(f)
	}
	bvh.nodes = make([]BVHNode, 0, 2*len(faces)/leafCapacity+1)
	bvh.build(faces, centroids)
	return bvh
}

// build appends the subtree for faces and returns its arena index
func (b *BVH) build(faces []int, centroids []core.Vec3) int {
	box := b.mesh.FaceBox(faces[0])
	for _, f := range faces[1:] {
		box = box.Union(b.mesh.FaceBox(f))
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, BVHNode{Box: box})

	if len(faces) <= leafCapacity {
		b.nodes[idx].Kind = NodeLeaf
		b.nodes[idx].Faces = append([]int(nil), faces...)
		return idx
	}

	axis := box.LongestAxis()
	sort.SliceStable(faces, func(i, j int) bool {
		return centroids[faces[i]].Axis(axis) < centroids[faces[j]].Axis(axis)
	})

	mid := len(faces) / 2
	left := b.build(faces[:mid], centroids)
	right := b.build(faces[mid:], centroids)

	b.nodes[idx].Kind = NodeInternal
	b.nodes[idx].Left = left
	b.nodes[idx].Right = right
	return idx
}

// Mesh returns the mesh the hierarchy was built over
func (b *BVH) Mesh() *Mesh {
	return b.mesh
}

// BoundingBox returns the root box, or the zero box when empty
func (b *BVH) BoundingBox() core.AABB {
	if len(b.nodes) == 0 {
		return core.AABB{}
	}
	return b.nodes[0].Box
}

// NodeCount returns the number of nodes in the arena
func (b *BVH) NodeCount() int {
	return len(b.nodes)
}

// Node returns the node at arena index i
func (b *BVH) Node(i int) *BVHNode {
	return &b.nodes[i]
}

// TraceNearest returns the distance to the closest face hit in [tMin, currentBest]
// and fills hit with its attributes. When nothing closer is found it returns
// currentBest and false, leaving hit untouched.
func (b *BVH) TraceNearest(origin, direction core.Vec3, tMin, currentBest float64, hit *core.HitRecord) (float64, bool) {
	if len(b.nodes) == 0 {
		return currentBest, false
	}
	ok, rangeMin, _ := b.nodes[0].Box.Intersect(origin, direction, tMin, currentBest)
	if !ok || rangeMin > currentBest {
		return currentBest, false
	}

	found := false
	best := b.traceNode(0, origin, direction, tMin, currentBest, hit, &found)
	return best, found
}

type childRange struct {
	index int
	entry float64
	mid   float64
}

func (b *BVH) traceNode(idx int, origin, direction core.Vec3, tMin, best float64, hit *core.HitRecord, found *bool) float64 {
	node := &b.nodes[idx]

	if node.Kind == NodeLeaf {
		for _, f := range node.Faces {
			if t, ok := intersectFace(b.mesh, f, origin, direction, tMin, best, hit); ok {
				best = t
				*found = true
			}
		}
		return best
	}

	var children [2]childRange
	count := 0
	for _, child := range [2]int{node.Left, node.Right} {
		ok, rangeMin, rangeMax := b.nodes[child].Box.Intersect(origin, direction, tMin, best)
		if ok && rangeMin <= best {
			children[count] = childRange{index: child, entry: rangeMin, mid: (rangeMin + rangeMax) / 2}
			count++
		}
	}
	// Visit the child whose range midpoint is nearer first
	if count == 2 && children[1].mid < children[0].mid {
		children[0], children[1] = children[1], children[0]
	}

	for i := 0; i < count; i++ {
		if children[i].entry > best {
			continue
		}
		best = b.traceNode(children[i].index, origin, direction, tMin, best, hit, found)
	}
	return best
}

// TraceAny reports whether any face is hit in [tMin, tMax]. It stops at the
// first hit and does not order children.
func (b *BVH) TraceAny(origin, direction core.Vec3, tMin, tMax float64) bool {
	if len(b.nodes) == 0 {
		return false
	}
	var scratch core.HitRecord
	stack := make([]int, 0, 32)
	stack = append(stack, 0)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &b.nodes[idx]

		ok, rangeMin, _ := node.Box.Intersect(origin, direction, tMin, tMax)
		if !ok || rangeMin > tMax {
			continue
		}
		if node.Kind == NodeLeaf {
			for _, f := range node.Faces {
				if _, hit := intersectFace(b.mesh, f, origin, direction, tMin, tMax, &scratch); hit {
					return true
				}
			}
			continue
		}
		stack = append(stack, node.Right, node.Left)
	}
	return false
}

// Validate checks the structural invariants: every node box equals the union
// of its children's boxes (or of its faces' boxes for leaves), no leaf is
// empty or over capacity, and every face appears in exactly one leaf.
func (b *BVH) Validate() error {
	if len(b.nodes) == 0 {
		if b.mesh.FaceCount() != 0 {
			return fmt.Errorf("bvh: empty arena for %d faces", b.mesh.FaceCount())
		}
		return nil
	}

	seen := make([]int, b.mesh.FaceCount())
	for i := range b.nodes {
		node := &b.nodes[i]
		switch node.Kind {
		case NodeLeaf:
			if len(node.Faces) == 0 || len(node.Faces) > leafCapacity {
				return fmt.Errorf("bvh: leaf %d holds %d faces", i, len(node.Faces))
			}
			box := b.mesh.FaceBox(node.Faces[0])
			for _, f := range node.Faces {
				box = box.Union(b.mesh.FaceBox(f))
				seen[f]++
			}
			if node.Box != box {
				return fmt.Errorf("bvh: leaf %d box %v, faces span %v", i, node.Box, box)
			}
		case NodeInternal:
			for _, child := range [2]int{node.Left, node.Right} {
				if child <= i || child >= len(b.nodes) {
					return fmt.Errorf("bvh: node %d has invalid child %d", i, child)
				}
			}
			if union := b.nodes[node.Left].Box.Union(b.nodes[node.Right].Box); node.Box != union {
				return fmt.Errorf("bvh: node %d box %v, children span %v", i, node.Box, union)
			}
		default:
			return fmt.Errorf("bvh: node %d has unknown kind %d", i, node.Kind)
		}
	}
	for f, n := range seen {
		if n != 1 {
			return fmt.Errorf("bvh: face %d appears in %d leaves", f, n)
		}
	}
	return nil
}

// BVHStats summarizes the shape of a hierarchy
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
	AvgDepth   float64 // average leaf depth
	TotalFaces int
}

// Stats walks the arena and collects node, depth and face counts
func (b *BVH) Stats() BVHStats {
	stats := BVHStats{}
	if len(b.nodes) == 0 {
		return stats
	}
	totalDepth := 0
	b.collectStats(0, 0, &stats, &totalDepth)
	if stats.LeafNodes > 0 {
		stats.AvgDepth = float64(totalDepth) / float64(stats.LeafNodes)
	}
	return stats
}

func (b *BVH) collectStats(idx, depth int, stats *BVHStats, totalDepth *int) {
	node := &b.nodes[idx]
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}
	if node.Kind == NodeLeaf {
		stats.LeafNodes++
		stats.TotalFaces += len(node.Faces)
		*totalDepth += depth
		return
	}
	b.collectStats(node.Left, depth+1, stats, totalDepth)
	b.collectStats(node.Right, depth+1, stats, totalDepth)
}
