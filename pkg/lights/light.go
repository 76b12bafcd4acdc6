package lights

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/geometry"
)

// NoEntity marks a light whose surface is not backed by a scene entity
const NoEntity = -1

// Light associates a sampleable surface with its emission. It does not own
// the surface; emitters built from entities share the entity's mesh data.
type Light struct {
	Surface  geometry.Surface
	Emission core.Vec3
	Strength float64
	Entity   int // index of the emissive entity, or NoEntity
}

// NewLight creates a light over surface. A missing surface or one with no
// area is rejected.
func NewLight(surface geometry.Surface, emission core.Vec3, strength float64) (Light, error) {
	if surface == nil {
		return Light{}, fmt.Errorf("%w: missing surface", core.ErrInvalidLight)
	}
	if area := surface.Area(); !(area > 0) {
		return Light{}, fmt.Errorf("%w: surface area %g", core.ErrInvalidLight, area)
	}
	return Light{Surface: surface, Emission: emission, Strength: strength, Entity: NoEntity}, nil
}

// Radiance returns emission scaled by strength
func (l Light) Radiance() core.Vec3 {
	return l.Emission.Multiply(l.Strength)
}
