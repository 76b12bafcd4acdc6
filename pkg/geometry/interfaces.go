package geometry

import "github.com/df07/go-sparks-pathtracer/pkg/core"

// Surface is a region that emitters can be sampled from
type Surface interface {
	Area() float64
	// Sample returns a uniformly distributed point on the surface
	Sample(sampler core.Sampler) core.Vec3
}
