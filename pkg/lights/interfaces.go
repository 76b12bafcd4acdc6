package lights

import "github.com/df07/go-sparks-pathtracer/pkg/core"

// LightSample contains information about a sampled point on a light
type LightSample struct {
	Point    core.Vec3 // Point on the light surface
	Emission core.Vec3 // Emission color of the chosen light
	Strength float64   // Emission strength multiplier
	PDF      float64   // Area density: 1 / total light area
	Index    int       // Index of the chosen light in its set
}
