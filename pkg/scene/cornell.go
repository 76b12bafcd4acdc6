package scene

import (
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/geometry"
	"github.com/df07/go-sparks-pathtracer/pkg/material"
)

// NewCornellScene creates the classic 555-unit Cornell box lit by a ceiling
// rectangle, with a tall and a short block, a mirror sphere and a glass sphere
func NewCornellScene() (*Scene, error) {
	b := &builder{scene: New("cornell")}
	b.scene.Camera = LookAtCamera(
		core.NewVec3(278, 278, -800), // outside the open side of the box
		core.NewVec3(278, 278, 0),
		core.NewVec3(0, 1, 0),
		40,
	)

	white := material.NewLambertian(core.Splat(0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	const size = 555.0
	x := core.NewVec3(size, 0, 0)
	y := core.NewVec3(0, size, 0)
	z := core.NewVec3(0, 0, size)

	// Walls face into the box
	b.entity(NewEntity("floor", geometry.NewQuadMesh(core.Vec3{}, z, x), white, core.Identity()))
	b.entity(NewEntity("ceiling", geometry.NewQuadMesh(y, x, z), white, core.Identity()))
	b.entity(NewEntity("back", geometry.NewQuadMesh(z, y, x), white, core.Identity()))
	// The camera looks down +Z, so +X is on its left
	b.entity(NewEntity("left", geometry.NewQuadMesh(x, z, y), red, core.Identity()))
	b.entity(NewEntity("right", geometry.NewQuadMesh(core.Vec3{}, y, z), green, core.Identity()))

	b.planeLight("ceiling-light", 213, 343, 227, 332, size-1, "xzy", -1, core.Splat(1), 15)

	unitCube := geometry.NewCubeMesh(core.Vec3{}, core.Splat(1))
	b.entity(NewEntity("tall-block", unitCube, white,
		boxTransform(core.NewVec3(165, 330, 165), math.Pi/12, core.NewVec3(368, 165, 351))))
	b.entity(NewEntity("short-block", unitCube, white,
		boxTransform(core.NewVec3(165, 165, 165), -math.Pi/10, core.NewVec3(185, 82.5, 169))))

	b.entity(NewEntity("mirror-ball", geometry.NewSphereMesh(core.Vec3{}, 1, 32, 1, 1),
		material.NewSpecular(core.Splat(0.9)), sphereTransform(core.NewVec3(190, 215, 169), 50)))
	b.entity(NewEntity("glass-ball", geometry.NewSphereMesh(core.Vec3{}, 1, 32, 1, 1),
		material.NewTransmissive(core.Splat(1), 1.5), sphereTransform(core.NewVec3(400, 70, 120), 70)))

	return b.done()
}

// boxTransform scales a unit cube, turns it about +Y and moves its center
func boxTransform(size core.Vec3, angle float64, center core.Vec3) core.Mat4 {
	return core.Translate(center).
		Mul(core.Rotate(core.NewVec3(0, 1, 0), angle)).
		Mul(core.Scale(size))
}

func sphereTransform(center core.Vec3, radius float64) core.Mat4 {
	return core.Translate(center).Mul(core.Scale(core.Splat(radius)))
}
