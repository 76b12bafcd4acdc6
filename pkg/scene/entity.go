package scene

import (
	"github.com/google/uuid"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/geometry"
	"github.com/df07/go-sparks-pathtracer/pkg/material"
)

// Entity is one placed instance: a local-space mesh with its hierarchy,
// a material and a world transform that may drift with time
type Entity struct {
	ID        uuid.UUID
	Name      string
	Mesh      *geometry.Mesh
	BVH       *geometry.BVH
	Material  material.Material
	Transform core.Mat4
	Velocity  core.Vec3 // world units per unit of shutter time

	inverse  core.Mat4 // cached inverse of Transform, set by prepare
	prepared bool
}

// NewEntity builds the hierarchy for mesh and places it with transform
func NewEntity(name string, mesh *geometry.Mesh, mat material.Material, transform core.Mat4) *Entity {
	return &Entity{
		ID:        uuid.New(),
		Name:      name,
		Mesh:      mesh,
		BVH:       geometry.NewBVH(mesh),
		Material:  mat,
		Transform: transform,
	}
}

// WithVelocity sets a constant linear velocity for motion blur and returns e
func (e *Entity) WithVelocity(velocity core.Vec3) *Entity {
	e.Velocity = velocity
	return e
}

// TransformAt returns the local-to-world matrix at the given time
func (e *Entity) TransformAt(time float64) core.Mat4 {
	if e.Velocity.IsZero() || time == 0 {
		return e.Transform
	}
	return core.Translate(e.Velocity.Multiply(time)).Mul(e.Transform)
}

// prepare caches the inverse of the static transform
func (e *Entity) prepare() {
	e.inverse, e.prepared = e.Transform.Inverse()
}

// inverseAt returns the world-to-local matrix at the given time
func (e *Entity) inverseAt(time float64) (core.Mat4, bool) {
	if e.prepared && (e.Velocity.IsZero() || time == 0) {
		return e.inverse, true
	}
	return e.TransformAt(time).Inverse()
}

// WorldMesh returns a copy of the mesh in world space at the given time
func (e *Entity) WorldMesh(time float64) *geometry.Mesh {
	return e.Mesh.Transformed(e.TransformAt(time))
}

// WorldBounds returns the world-space box of the entity at the given time
func (e *Entity) WorldBounds(time float64) core.AABB {
	return e.BVH.BoundingBox().Transform(e.TransformAt(time))
}
