package scene

import (
	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/geometry"
	"github.com/df07/go-sparks-pathtracer/pkg/material"
)

// NewSpheresScene creates a row of spheres on a ground quad, lit by a quad
// light overhead and a small emissive sphere
func NewSpheresScene() (*Scene, error) {
	b := &builder{scene: New("spheres")}
	b.scene.Camera = LookAtCamera(core.NewVec3(0, 1.5, 6), core.NewVec3(0, 0.7, 0), core.NewVec3(0, 1, 0), 45)

	b.entity(NewEntity("ground",
		geometry.NewQuadMesh(core.NewVec3(-10, 0, -10), core.NewVec3(0, 0, 20), core.NewVec3(20, 0, 0)),
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)), core.Identity()))

	sphere := geometry.NewSphereMesh(core.Vec3{}, 1, 32, 1, 1)
	b.entity(NewEntity("diffuse", sphere,
		material.NewLambertian(core.NewVec3(0.7, 0.2, 0.2)), sphereTransform(core.NewVec3(-2.2, 0.8, 0), 0.8)))
	b.entity(NewEntity("mirror", sphere,
		material.NewSpecular(core.Splat(0.95)), sphereTransform(core.NewVec3(0, 0.8, 0), 0.8)))
	b.entity(NewEntity("plastic", sphere,
		material.NewPrincipled(material.PrincipledParams{
			Albedo:    core.NewVec3(0.2, 0.3, 0.8),
			IOR:       1.5,
			Roughness: 0.3,
		}), sphereTransform(core.NewVec3(2.2, 0.8, 0), 0.8)))

	b.planeLight("key-light", -1.5, 1.5, -1.5, 1.5, 5, "xzy", -1, core.Splat(1), 6)

	bulb := b.entity(NewEntity("bulb", geometry.NewSphereMesh(core.NewVec3(-1.1, 0.25, 1.4), 0.25, 16, 1, 1),
		material.NewEmission(core.NewVec3(1, 0.7, 0.3), 8), core.Identity()))
	b.emitter(bulb)

	return b.done()
}
