package scene

import (
	"sort"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// Ray range used by every integrator query
const (
	RayTMin = 1e-3
	RayTMax = 1e4
)

// degenerateDirection is the local direction length below which an entity's
// transform is treated as collapsing the ray
const degenerateDirection = 1e-6

// candidate is an entity whose root box the ray enters, with the ray mapped
// into its local space. Local directions are unit length; scale converts a
// world distance into the matching local distance.
type candidate struct {
	entity    int
	transform core.Mat4
	inverse   core.Mat4
	origin    core.Vec3
	direction core.Vec3
	scale     float64
	entry     float64 // world distance where the root box range starts
	mid       float64 // world midpoint of the root box range
}

// presort maps the ray into every entity's local space and returns the
// entities whose root box it enters, ordered by the midpoint of the box range
func (s *Scene) presort(origin, direction core.Vec3, time, tMin, tMax float64) []candidate {
	candidates := make([]candidate, 0, len(s.entities))
	for i, e := range s.entities {
		if e.Mesh.FaceCount() == 0 {
			continue
		}
		transform := e.TransformAt(time)
		inverse, ok := e.inverseAt(time)
		if !ok {
			continue
		}
		localDir := inverse.TransformDirection(direction)
		scale := localDir.Length()
		if scale < degenerateDirection {
			continue
		}
		localDir = localDir.Divide(scale)
		localOrigin := inverse.TransformPoint(origin)

		hit, rangeMin, rangeMax := e.BVH.BoundingBox().Intersect(localOrigin, localDir, tMin*scale, tMax*scale)
		if !hit {
			continue
		}
		candidates = append(candidates, candidate{
			entity:    i,
			transform: transform,
			inverse:   inverse,
			origin:    localOrigin,
			direction: localDir,
			scale:     scale,
			entry:     rangeMin / scale,
			mid:       (rangeMin + rangeMax) / 2 / scale,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].mid < candidates[j].mid
	})
	return candidates
}

// TraceRay returns the nearest hit along origin + t*direction with t in
// [tMin, tMax]. Entities move with time. The returned record is in world
// space with unit normals and tangent.
func (s *Scene) TraceRay(origin, direction core.Vec3, time, tMin, tMax float64) (core.HitRecord, bool) {
	var result core.HitRecord
	best := tMax
	found := false

	for _, c := range s.presort(origin, direction, time, tMin, tMax) {
		if c.entry > best {
			continue
		}
		var local core.HitRecord
		t, ok := s.entities[c.entity].BVH.TraceNearest(c.origin, c.direction, tMin*c.scale, best*c.scale, &local)
		if !ok {
			continue
		}
		best = t / c.scale
		found = true
		result = toWorld(local, c, best)
	}
	return result, found
}

// toWorld maps a local hit back through the entity transform. Normals use the
// inverse transpose, which keeps their orientation relative to the ray.
func toWorld(local core.HitRecord, c candidate, t float64) core.HitRecord {
	normalMatrix := c.inverse.Transpose()
	return core.HitRecord{
		EntityID:       c.entity,
		T:              t,
		Position:       c.transform.TransformPoint(local.Position),
		Normal:         normalMatrix.TransformDirection(local.Normal).Normalize(),
		GeometryNormal: normalMatrix.TransformDirection(local.GeometryNormal).Normalize(),
		Tangent:        c.transform.TransformDirection(local.Tangent).Normalize(),
		TexCoord:       local.TexCoord,
		FrontFace:      local.FrontFace,
	}
}

// Occluded reports whether anything lies strictly between from and to
func (s *Scene) Occluded(from, to core.Vec3, time float64) bool {
	offset := to.Subtract(from)
	dist := offset.Length()
	if dist <= 2*RayTMin {
		return false
	}
	direction := offset.Divide(dist)
	tMax := dist - RayTMin
	for _, c := range s.presort(from, direction, time, RayTMin, tMax) {
		if s.entities[c.entity].BVH.TraceAny(c.origin, c.direction, RayTMin*c.scale, tMax*c.scale) {
			return true
		}
	}
	return false
}
