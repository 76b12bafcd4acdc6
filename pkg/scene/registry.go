package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/geometry"
)

// Builtin describes a scene constructed in code
type Builtin struct {
	Name        string
	Description string
	build       func() (*Scene, error)
}

var builtins = map[string]Builtin{
	"cornell": {
		Name:        "cornell",
		Description: "Cornell box with a ceiling light, two blocks, a mirror and a glass sphere",
		build:       NewCornellScene,
	},
	"spheres": {
		Name:        "spheres",
		Description: "Lambertian, mirror and principled spheres under a quad light and an emissive sphere",
		build:       NewSpheresScene,
	},
	"motion": {
		Name:        "motion",
		Description: "Moving spheres for shutter motion blur",
		build:       NewMotionScene,
	},
	"principled": {
		Name:        "principled",
		Description: "Principled material sweep over a checkerboard floor with a normal-mapped sphere",
		build:       NewPrincipledScene,
	},
}

// Builtins lists the built-in scenes ordered by name
func Builtins() []Builtin {
	list := make([]Builtin, 0, len(builtins))
	for _, b := range builtins {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Build constructs and freezes the built-in scene with the given name.
// Each customize function may add to the scene before it is frozen.
func Build(name string, customize ...func(*Scene) error) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownScene, name)
	}
	s, err := b.build()
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	for _, fn := range customize {
		if err := fn(s); err != nil {
			return nil, fmt.Errorf("scene %s: %w", name, err)
		}
	}
	if err := s.Freeze(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	return s, nil
}

// builder collects the first error of a chain of scene additions so the
// scene constructors read as a flat list
type builder struct {
	scene *Scene
	err   error
}

func (b *builder) entity(e *Entity) int {
	if b.err != nil {
		return -1
	}
	idx, err := b.scene.AddEntity(e)
	if err != nil {
		b.err = fmt.Errorf("entity %s: %w", e.Name, err)
	}
	return idx
}

func (b *builder) texture(t core.Texture) int {
	if b.err != nil {
		return 0
	}
	idx, err := b.scene.AddTexture(t)
	if err != nil {
		b.err = err
	}
	return idx
}

func (b *builder) emitter(entityIdx int) {
	if b.err != nil {
		return
	}
	if _, err := b.scene.AddEmitter(entityIdx); err != nil {
		b.err = err
	}
}

func (b *builder) done() (*Scene, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.scene, nil
}

func (b *builder) planeLight(name string, min0, max0, min1, max1, fixed float64, order string, facing float64, emission core.Vec3, strength float64) {
	if b.err != nil {
		return
	}
	plane, err := geometry.NewPlane(min0, max0, min1, max1, fixed, order)
	if err != nil {
		b.err = fmt.Errorf("light %s: %w", name, err)
		return
	}
	if _, err := b.scene.AddPlaneLight(name, plane, facing, emission, strength); err != nil {
		b.err = fmt.Errorf("light %s: %w", name, err)
	}
}
