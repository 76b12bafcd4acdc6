package lights

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// LightSet selects lights proportionally to their area, so a point drawn
// from the set is uniform over the union of all light surfaces
type LightSet struct {
	lights    []Light
	areas     []float64
	totalArea float64
	dist      *core.Distribution1D
}

// NewLightSet creates an empty set
func NewLightSet() *LightSet {
	return &LightSet{}
}

// Add appends a light and refreshes the selection distribution
func (s *LightSet) Add(light Light) error {
	if light.Surface == nil {
		return fmt.Errorf("%w: missing surface", core.ErrInvalidLight)
	}
	area := light.Surface.Area()
	if !(area > 0) {
		return fmt.Errorf("%w: surface area %g", core.ErrInvalidLight, area)
	}

	s.lights = append(s.lights, light)
	s.areas = append(s.areas, area)
	s.totalArea += area

	dist, err := core.NewDistribution1D(s.areas)
	if err != nil {
		return err
	}
	s.dist = dist
	return nil
}

// Len returns the number of lights
func (s *LightSet) Len() int {
	return len(s.lights)
}

// Light returns the light at index i
func (s *LightSet) Light(i int) Light {
	return s.lights[i]
}

// Lights returns the lights in insertion order
func (s *LightSet) Lights() []Light {
	return s.lights
}

// TotalArea returns the summed area of every light
func (s *LightSet) TotalArea() float64 {
	return s.totalArea
}

// PDF returns the area density of any point drawn by Sample
func (s *LightSet) PDF() float64 {
	if s.totalArea == 0 {
		return 0
	}
	return 1 / s.totalArea
}

// Sample draws one light with probability area/totalArea and a uniform point
// on it. Returns false when the set is empty.
func (s *LightSet) Sample(sampler core.Sampler) (LightSample, bool) {
	if len(s.lights) == 0 {
		return LightSample{}, false
	}
	idx, _ := s.dist.Sample(sampler.Get1D())
	light := s.lights[idx]
	return LightSample{
		Point:    light.Surface.Sample(sampler),
		Emission: light.Emission,
		Strength: light.Strength,
		PDF:      1 / s.totalArea,
		Index:    idx,
	}, true
}
