// Package config loads render settings from TOML files.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/integrator"
	"github.com/df07/go-sparks-pathtracer/pkg/loaders"
	"github.com/df07/go-sparks-pathtracer/pkg/renderer"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
)

// Config is the contents of a render configuration file
type Config struct {
	Scene      string           `toml:"scene"`
	LogLevel   string           `toml:"log_level"`
	Render     RenderConfig     `toml:"render"`
	Integrator IntegratorConfig `toml:"integrator"`
	Camera     CameraConfig     `toml:"camera"`
	Textures   []TextureConfig  `toml:"texture"`
}

// RenderConfig is the [render] section
type RenderConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Samples   int    `toml:"samples"`
	Passes    int    `toml:"passes"`
	TileSize  int    `toml:"tile_size"`
	Workers   int    `toml:"workers"` // 0 uses every CPU
	Seed      uint64 `toml:"seed"`
	OutputDir string `toml:"output_dir"`
}

// IntegratorConfig is the [integrator] section
type IntegratorConfig struct {
	NumBounces int     `toml:"num_bounces"`
	ProbRR     float64 `toml:"prob_rr"`
	MaxColor   float64 `toml:"max_color"`
}

// CameraConfig is the [camera] section. Unset fields keep the scene's value.
type CameraConfig struct {
	FOV         *float64 `toml:"fov"`
	Aperture    *float64 `toml:"aperture"`
	FocalLength *float64 `toml:"focal_length"`
	Shutter     *float64 `toml:"shutter"`
	Gamma       *float64 `toml:"gamma"`
}

// TextureConfig is one [[texture]] entry: an image file applied to a named
// entity of the scene as its albedo or normal map
type TextureConfig struct {
	Entity string `toml:"entity"`
	Path   string `toml:"path"`
	Kind   string `toml:"kind"` // "albedo" or "normal"
}

// Default returns the configuration used when no file is given
func Default() Config {
	settings := integrator.DefaultSettings()
	progressive := renderer.DefaultProgressiveConfig()
	return Config{
		Scene:    "cornell",
		LogLevel: "warn",
		Render: RenderConfig{
			Width:     400,
			Height:    300,
			Samples:   progressive.MaxSamplesPerPixel,
			Passes:    progressive.MaxPasses,
			TileSize:  progressive.TileSize,
			Workers:   progressive.NumWorkers,
			Seed:      progressive.Seed,
			OutputDir: "output",
		},
		Integrator: IntegratorConfig{
			NumBounces: settings.NumBounces,
			ProbRR:     settings.ProbRR,
			MaxColor:   settings.MaxColor,
		},
	}
}

// Parse decodes TOML over the defaults and validates the result.
// Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a configuration file
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section
func (c Config) Validate() error {
	if c.Scene == "" {
		return fmt.Errorf("%w: scene is empty", core.ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", core.ErrInvalidConfig, c.LogLevel)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("%w: render size %dx%d", core.ErrInvalidConfig, c.Render.Width, c.Render.Height)
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", core.ErrInvalidConfig, c.Render.Workers)
	}
	if err := c.ProgressiveConfig().Validate(); err != nil {
		return err
	}
	if err := c.IntegratorSettings().Validate(); err != nil {
		return err
	}
	for i, t := range c.Textures {
		if t.Entity == "" || t.Path == "" {
			return fmt.Errorf("%w: texture %d needs an entity and a path", core.ErrInvalidConfig, i)
		}
		if t.Kind != "albedo" && t.Kind != "normal" {
			return fmt.Errorf("%w: texture %d kind %q is not albedo or normal", core.ErrInvalidConfig, i, t.Kind)
		}
	}
	for name, v := range map[string]*float64{
		"fov": c.Camera.FOV, "aperture": c.Camera.Aperture, "focal_length": c.Camera.FocalLength,
		"shutter": c.Camera.Shutter, "gamma": c.Camera.Gamma,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: camera %s %g is negative", core.ErrInvalidConfig, name, *v)
		}
	}
	return nil
}

// IntegratorSettings returns the path tracer settings
func (c Config) IntegratorSettings() integrator.Settings {
	return integrator.Settings{
		NumBounces: c.Integrator.NumBounces,
		ProbRR:     c.Integrator.ProbRR,
		MaxColor:   c.Integrator.MaxColor,
	}
}

// ProgressiveConfig returns the pass schedule
func (c Config) ProgressiveConfig() renderer.ProgressiveConfig {
	progressive := renderer.DefaultProgressiveConfig()
	progressive.TileSize = c.Render.TileSize
	progressive.MaxSamplesPerPixel = c.Render.Samples
	progressive.MaxPasses = c.Render.Passes
	progressive.NumWorkers = c.Render.Workers
	progressive.Seed = c.Render.Seed
	return progressive
}

// ApplyCamera overrides the scene camera with the [camera] section. The
// clamp always follows the integrator's max_color.
func (c Config) ApplyCamera(params scene.CameraParams) scene.CameraParams {
	if c.Camera.FOV != nil {
		params.FOV = *c.Camera.FOV
	}
	if c.Camera.Aperture != nil {
		params.Aperture = *c.Camera.Aperture
	}
	if c.Camera.FocalLength != nil {
		params.FocalLength = *c.Camera.FocalLength
	}
	if c.Camera.Shutter != nil {
		params.Shutter = *c.Camera.Shutter
	}
	if c.Camera.Gamma != nil {
		params.Gamma = *c.Camera.Gamma
	}
	params.Clamp = c.Integrator.MaxColor
	return params
}

// BuildScene builds the configured built-in scene with the [[texture]]
// entries loaded and the [camera] overrides applied
func (c Config) BuildScene() (*scene.Scene, error) {
	s, err := scene.Build(c.Scene, c.applyTextures)
	if err != nil {
		return nil, err
	}
	s.Camera = c.ApplyCamera(s.Camera)
	return s, nil
}

// applyTextures loads every [[texture]] image into the scene's texture
// table and points the named entity's material at it
func (c Config) applyTextures(s *scene.Scene) error {
	for _, t := range c.Textures {
		idx, ok := s.EntityIndex(t.Entity)
		if !ok {
			return fmt.Errorf("%w: texture %s: no entity named %q", core.ErrInvalidConfig, t.Path, t.Entity)
		}
		tex, err := loaders.LoadTexture(t.Path)
		if err != nil {
			return err
		}
		texIdx, err := s.AddTexture(tex)
		if err != nil {
			return err
		}
		e := s.Entity(idx)
		if t.Kind == "normal" {
			e.Material.NormalTexture = texIdx
		} else {
			e.Material.AlbedoTexture = texIdx
		}
	}
	return nil
}
