package material

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// Type selects the scattering model of a Material
type Type int

const (
	Lambertian Type = iota
	Specular
	Transmissive
	Principled
	Emission
)

var typeNames = map[Type]string{
	Lambertian:   "lambertian",
	Specular:     "specular",
	Transmissive: "transmissive",
	Principled:   "principled",
	Emission:     "emission",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a lowercase model name to its Type
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown material type %q", name)
}

// Texture table slots every scene reserves
const (
	WhiteTextureIndex      = 0
	FlatNormalTextureIndex = 1
)

// Material is a plain value: a model tag plus every parameter any model needs.
// Texture fields index into the owning scene's texture table.
type Material struct {
	Type             Type
	Albedo           core.Vec3
	AlbedoTexture    int
	NormalTexture    int
	Emission         core.Vec3
	EmissionStrength float64
	IOR              float64
	Metallic         float64
	Roughness        float64
	SpecTrans        float64 // specular transmission weight
	DiffTrans        float64 // diffuse transmission weight (thin only)
	Flatness         float64 // blend from diffuse to fake subsurface (thin only)
	Thin             bool
}

// Default returns a grey Lambertian material with the default texture slots
func Default() Material {
	return Material{
		Type:             Lambertian,
		Albedo:           core.Splat(0.8),
		AlbedoTexture:    WhiteTextureIndex,
		NormalTexture:    FlatNormalTextureIndex,
		EmissionStrength: 1,
		IOR:              1,
	}
}

// NewLambertian creates a diffuse material
func NewLambertian(albedo core.Vec3) Material {
	m := Default()
	m.Albedo = albedo
	return m
}

// NewSpecular creates a perfect mirror tinted by albedo
func NewSpecular(albedo core.Vec3) Material {
	m := Default()
	m.Type = Specular
	m.Albedo = albedo
	return m
}

// NewTransmissive creates a smooth dielectric
func NewTransmissive(albedo core.Vec3, ior float64) Material {
	m := Default()
	m.Type = Transmissive
	m.Albedo = albedo
	m.IOR = ior
	return m
}

// NewEmission creates an emitter
func NewEmission(emission core.Vec3, strength float64) Material {
	m := Default()
	m.Type = Emission
	m.Emission = emission
	m.EmissionStrength = strength
	return m
}

// PrincipledParams configures NewPrincipled
type PrincipledParams struct {
	Albedo    core.Vec3
	IOR       float64
	Metallic  float64
	Roughness float64
	SpecTrans float64
	DiffTrans float64
	Flatness  float64
	Thin      bool
}

// NewPrincipled creates a multi-lobe principled material
func NewPrincipled(p PrincipledParams) Material {
	m := Default()
	m.Type = Principled
	m.Albedo = p.Albedo
	m.IOR = p.IOR
	m.Metallic = p.Metallic
	m.Roughness = p.Roughness
	m.SpecTrans = p.SpecTrans
	m.DiffTrans = p.DiffTrans
	m.Flatness = p.Flatness
	m.Thin = p.Thin
	return m
}

// IsEmissive reports whether the material terminates paths by emitting
func (m Material) IsEmissive() bool {
	return m.Type == Emission
}

// Radiance returns emission scaled by strength
func (m Material) Radiance() core.Vec3 {
	return m.Emission.Multiply(m.EmissionStrength)
}

// Validate checks parameter ranges. textureCount is the size of the texture
// table the material will index into.
func (m Material) Validate(textureCount int) error {
	if _, ok := typeNames[m.Type]; !ok {
		return fmt.Errorf("material: unknown type %d", int(m.Type))
	}
	if m.AlbedoTexture < 0 || m.AlbedoTexture >= textureCount {
		return fmt.Errorf("%w: albedo texture %d (table size %d)", core.ErrInvalidTexture, m.AlbedoTexture, textureCount)
	}
	if m.NormalTexture < 0 || m.NormalTexture >= textureCount {
		return fmt.Errorf("%w: normal texture %d (table size %d)", core.ErrInvalidTexture, m.NormalTexture, textureCount)
	}
	if (m.Type == Transmissive || m.Type == Principled) && !(m.IOR > 0) {
		return fmt.Errorf("material %s: ior must be positive, got %g", m.Type, m.IOR)
	}
	for name, v := range map[string]float64{
		"metallic":   m.Metallic,
		"roughness":  m.Roughness,
		"spec_trans": m.SpecTrans,
		"diff_trans": m.DiffTrans,
		"flatness":   m.Flatness,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("material %s: %s must be in [0,1], got %g", m.Type, name, v)
		}
	}
	if m.EmissionStrength < 0 {
		return fmt.Errorf("material %s: negative emission strength %g", m.Type, m.EmissionStrength)
	}
	return nil
}
