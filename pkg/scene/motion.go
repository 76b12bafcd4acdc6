package scene

import (
	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/geometry"
	"github.com/df07/go-sparks-pathtracer/pkg/material"
)

// NewMotionScene creates spheres moving at different velocities during a
// unit shutter interval, next to a static reference sphere
func NewMotionScene() (*Scene, error) {
	b := &builder{scene: New("motion")}
	b.scene.Camera = LookAtCamera(core.NewVec3(0, 2, 7), core.NewVec3(0, 0.8, 0), core.NewVec3(0, 1, 0), 40)
	b.scene.Camera.Shutter = 1

	b.entity(NewEntity("ground",
		geometry.NewQuadMesh(core.NewVec3(-10, 0, -10), core.NewVec3(0, 0, 20), core.NewVec3(20, 0, 0)),
		material.NewLambertian(core.Splat(0.6)), core.Identity()))

	sphere := geometry.NewSphereMesh(core.Vec3{}, 1, 32, 1, 1)
	b.entity(NewEntity("static", sphere,
		material.NewLambertian(core.NewVec3(0.2, 0.6, 0.2)), sphereTransform(core.NewVec3(-2, 0.6, 0), 0.6)))
	b.entity(NewEntity("sliding", sphere,
		material.NewLambertian(core.NewVec3(0.7, 0.2, 0.2)), sphereTransform(core.NewVec3(-0.5, 0.6, 0), 0.6)).
		WithVelocity(core.NewVec3(1, 0, 0)))
	b.entity(NewEntity("bouncing", sphere,
		material.NewPrincipled(material.PrincipledParams{
			Albedo:    core.NewVec3(0.9, 0.8, 0.3),
			IOR:       1.5,
			Metallic:  1,
			Roughness: 0.25,
		}), sphereTransform(core.NewVec3(2, 0.6, 0), 0.6)).
		WithVelocity(core.NewVec3(0, 1.2, 0)))

	b.planeLight("key-light", -2, 2, -1.5, 1.5, 5, "xzy", -1, core.Splat(1), 5)

	return b.done()
}
