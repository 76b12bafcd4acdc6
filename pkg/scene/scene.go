package scene

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/geometry"
	"github.com/df07/go-sparks-pathtracer/pkg/lights"
	"github.com/df07/go-sparks-pathtracer/pkg/material"
)

// Scene owns every entity, light and texture the integrator reads.
// It is built sequentially, frozen, and then shared read-only by any number
// of tracing goroutines.
type Scene struct {
	Name   string
	Camera CameraParams

	entities    []*Entity
	lights      *lights.LightSet
	entityLight map[int]int // entity index -> light index
	textures    []core.Texture
	frozen      bool
}

// New creates an empty scene whose texture table holds the default white
// albedo texture and the flat normal texture
func New(name string) *Scene {
	return &Scene{
		Name:        name,
		Camera:      DefaultCameraParams(),
		lights:      lights.NewLightSet(),
		entityLight: make(map[int]int),
		textures:    []core.Texture{material.WhiteTexture(), material.FlatNormalTexture()},
	}
}

// AddEntity appends e and returns its index
func (s *Scene) AddEntity(e *Entity) (int, error) {
	if s.frozen {
		return 0, core.ErrSceneFrozen
	}
	if e == nil || e.Mesh == nil || e.BVH == nil {
		return 0, fmt.Errorf("%w: entity has no geometry", core.ErrInvalidMesh)
	}
	s.entities = append(s.entities, e)
	return len(s.entities) - 1, nil
}

// AddMesh is a convenience wrapper that builds an entity and adds it
func (s *Scene) AddMesh(name string, mesh *geometry.Mesh, mat material.Material, transform core.Mat4) (int, error) {
	return s.AddEntity(NewEntity(name, mesh, mat, transform))
}

// AddTexture appends t to the texture table and returns its index
func (s *Scene) AddTexture(t core.Texture) (int, error) {
	if s.frozen {
		return 0, core.ErrSceneFrozen
	}
	if t == nil {
		return 0, fmt.Errorf("%w: nil texture", core.ErrInvalidTexture)
	}
	s.textures = append(s.textures, t)
	return len(s.textures) - 1, nil
}

// AddLight registers surface as the sampleable region of the emissive entity
// at entityIdx. The entity's geometry is what shadow rays must reach and its
// material supplies the emission.
func (s *Scene) AddLight(surface geometry.Surface, entityIdx int) (int, error) {
	if s.frozen {
		return 0, core.ErrSceneFrozen
	}
	if entityIdx < 0 || entityIdx >= len(s.entities) {
		return 0, fmt.Errorf("%w: light entity %d (entity count %d)", core.ErrInvalidLight, entityIdx, len(s.entities))
	}
	mat := s.entities[entityIdx].Material
	if mat.Type != material.Emission {
		return 0, fmt.Errorf("%w: entity %q has %s material", core.ErrInvalidLight, s.entities[entityIdx].Name, mat.Type)
	}
	if _, dup := s.entityLight[entityIdx]; dup {
		return 0, fmt.Errorf("%w: entity %q already emits", core.ErrInvalidLight, s.entities[entityIdx].Name)
	}

	light, err := lights.NewLight(surface, mat.Emission, mat.EmissionStrength)
	if err != nil {
		return 0, err
	}
	light.Entity = entityIdx
	if err := s.lights.Add(light); err != nil {
		return 0, err
	}
	idx := s.lights.Len() - 1
	s.entityLight[entityIdx] = idx
	return idx, nil
}

// AddEmitter registers the whole world-space surface of an emissive entity,
// taken at time 0, as a light sampled proportionally to triangle area
func (s *Scene) AddEmitter(entityIdx int) (int, error) {
	if entityIdx < 0 || entityIdx >= len(s.entities) {
		return 0, fmt.Errorf("%w: emitter entity %d (entity count %d)", core.ErrInvalidLight, entityIdx, len(s.entities))
	}
	surface, err := geometry.NewMeshSurface(s.entities[entityIdx].WorldMesh(0))
	if err != nil {
		return 0, fmt.Errorf("emitter %q: %w", s.entities[entityIdx].Name, err)
	}
	return s.AddLight(surface, entityIdx)
}

// AddPlaneLight adds an emissive rectangle as both traceable geometry and a
// light. facing is +1 or -1 and selects which side of the fixed axis emits.
func (s *Scene) AddPlaneLight(name string, plane *geometry.Plane, facing float64, emission core.Vec3, strength float64) (int, error) {
	entityIdx, err := s.AddMesh(name, plane.Mesh(facing), material.NewEmission(emission, strength), core.Identity())
	if err != nil {
		return 0, err
	}
	return s.AddLight(plane, entityIdx)
}

// Freeze validates the scene and marks it read-only
func (s *Scene) Freeze() error {
	if s.frozen {
		return nil
	}
	if err := s.Validate(); err != nil {
		return err
	}
	for _, e := range s.entities {
		e.prepare()
	}
	s.frozen = true
	return nil
}

// Frozen reports whether Freeze succeeded
func (s *Scene) Frozen() bool {
	return s.frozen
}

// Validate checks material texture indices, hierarchy structure and lights
func (s *Scene) Validate() error {
	for i, e := range s.entities {
		if err := e.Material.Validate(len(s.textures)); err != nil {
			return fmt.Errorf("entity %d (%s): %w", i, e.Name, err)
		}
		if err := e.BVH.Validate(); err != nil {
			return fmt.Errorf("entity %d (%s): %w", i, e.Name, err)
		}
		if _, ok := e.TransformAt(0).Inverse(); !ok {
			return fmt.Errorf("%w: entity %d (%s) has a singular transform", core.ErrInvalidMesh, i, e.Name)
		}
	}
	if s.lights.Len() == 0 {
		return core.ErrNoLights
	}
	return nil
}

// EntityCount returns the number of entities
func (s *Scene) EntityCount() int {
	return len(s.entities)
}

// Entity returns the entity at index i
func (s *Scene) Entity(i int) *Entity {
	return s.entities[i]
}

// EntityIndex finds the first entity with the given name
func (s *Scene) EntityIndex(name string) (int, bool) {
	for i, e := range s.entities {
		if e.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Entities returns the entities in insertion order
func (s *Scene) Entities() []*Entity {
	return s.entities
}

// Lights returns the area-weighted light set
func (s *Scene) Lights() *lights.LightSet {
	return s.lights
}

// LightForEntity returns the light backed by entity i, if any
func (s *Scene) LightForEntity(i int) (int, bool) {
	idx, ok := s.entityLight[i]
	return idx, ok
}

// TextureCount returns the size of the texture table
func (s *Scene) TextureCount() int {
	return len(s.textures)
}

// Texture returns the texture at index i
func (s *Scene) Texture(i int) core.Texture {
	return s.textures[i]
}

// Stats summarizes the scene for logs and reports
type Stats struct {
	Entities  int
	Faces     int
	BVHNodes  int
	MaxDepth  int
	Lights    int
	LightArea float64
	Textures  int
}

// Stats collects entity, face, hierarchy and light totals
func (s *Scene) Stats() Stats {
	stats := Stats{
		Entities:  len(s.entities),
		Lights:    s.lights.Len(),
		LightArea: s.lights.TotalArea(),
		Textures:  len(s.textures),
	}
	for _, e := range s.entities {
		bs := e.BVH.Stats()
		stats.Faces += e.Mesh.FaceCount()
		stats.BVHNodes += bs.TotalNodes
		if bs.MaxDepth > stats.MaxDepth {
			stats.MaxDepth = bs.MaxDepth
		}
	}
	return stats
}

// LogSummary writes the build summary at info level
func (s *Scene) LogSummary(logger core.Logger) {
	st := s.Stats()
	logger.Infof("scene %s: %d entities, %d faces, %d BVH nodes (max depth %d), %d lights (area %.4g), %d textures",
		s.Name, st.Entities, st.Faces, st.BVHNodes, st.MaxDepth, st.Lights, st.LightArea, st.Textures)
}
