package scene

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/geometry"
	"github.com/df07/go-sparks-pathtracer/pkg/material"
)

// NewPrincipledScene sweeps principled parameters across a row of spheres on
// a checkerboard floor. The last sphere carries a ripple normal map.
func NewPrincipledScene() (*Scene, error) {
	b := &builder{scene: New("principled")}
	b.scene.Camera = LookAtCamera(core.NewVec3(0, 2.5, 9), core.NewVec3(0, 0.6, 0), core.NewVec3(0, 1, 0), 40)

	checker := b.texture(material.NewCheckerboardTexture(256, 256, 32, core.Splat(0.8), core.Splat(0.2)))
	ripple := b.texture(material.NewRippleNormalTexture(256, 12, 0.4))

	floor := material.NewLambertian(core.Splat(1))
	floor.AlbedoTexture = checker
	b.entity(NewEntity("floor",
		geometry.NewQuadMesh(core.NewVec3(-8, 0, -8), core.NewVec3(0, 0, 16), core.NewVec3(16, 0, 0)),
		floor, core.Identity()))

	sweep := []material.PrincipledParams{
		{Albedo: core.NewVec3(0.8, 0.3, 0.2), IOR: 1.5, Roughness: 0.8},
		{Albedo: core.NewVec3(0.8, 0.3, 0.2), IOR: 1.5, Roughness: 0.2},
		{Albedo: core.NewVec3(0.9, 0.7, 0.4), IOR: 1.5, Metallic: 1, Roughness: 0.3},
		{Albedo: core.NewVec3(0.9, 0.9, 0.95), IOR: 1.5, Roughness: 0.05, SpecTrans: 1},
		{Albedo: core.NewVec3(0.3, 0.8, 0.3), IOR: 1.4, Roughness: 0.5, SpecTrans: 0.3, DiffTrans: 0.4, Flatness: 0.5, Thin: true},
	}
	sphere := geometry.NewSphereMesh(core.Vec3{}, 1, geometry.DefaultSpherePrecision, 4, 2)
	for i, params := range sweep {
		mat := material.NewPrincipled(params)
		if i == len(sweep)-1 {
			mat.NormalTexture = ripple
		}
		center := core.NewVec3(float64(i-len(sweep)/2)*1.6, 0.6, 0)
		b.entity(NewEntity(fmt.Sprintf("principled-%d", i), sphere, mat, sphereTransform(center, 0.6)))
	}

	b.planeLight("softbox", -3, 3, -1, 2, 4.5, "xzy", -1, core.Splat(1), 4)

	return b.done()
}
