package integrator

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
)

// Integrator estimates radiance along camera rays. Implementations carry
// per-path state and must not be shared between goroutines.
type Integrator interface {
	// SampleRayPathTrace returns one clamped Monte Carlo radiance estimate
	SampleRayPathTrace(origin, direction core.Vec3, time float64) core.Vec3
	// TraceRay returns the nearest scene hit, for ray picking
	TraceRay(origin, direction core.Vec3, time, tMin, tMax float64) (core.HitRecord, bool)
	// SetSeed restarts the random stream so evaluations are reproducible
	SetSeed(seed uint64)
}

// Factory creates an independent integrator for one worker
type Factory func(seed uint64) (Integrator, error)

// Settings controls path termination and the output clamp
type Settings struct {
	NumBounces int     // diffuse bounce limit; delta bounces get one more
	ProbRR     float64 // Russian roulette continuation probability
	MaxColor   float64 // per-channel clamp applied to every estimate
}

// DefaultSettings returns 16 bounces, p_rr 0.9 and a clamp of 100
func DefaultSettings() Settings {
	return Settings{
		NumBounces: 16,
		ProbRR:     0.9,
		MaxColor:   100,
	}
}

// Validate checks the settings ranges
func (s Settings) Validate() error {
	if s.NumBounces < 0 {
		return fmt.Errorf("%w: num_bounces %d is negative", core.ErrInvalidConfig, s.NumBounces)
	}
	if !(s.ProbRR > 0 && s.ProbRR <= 1) {
		return fmt.Errorf("%w: prob_rr %g must be in (0,1]", core.ErrInvalidConfig, s.ProbRR)
	}
	if !(s.MaxColor > 0) {
		return fmt.Errorf("%w: max_color %g must be positive", core.ErrInvalidConfig, s.MaxColor)
	}
	return nil
}

// NewPathTracerFactory returns a Factory producing path tracers over s
func NewPathTracerFactory(s *scene.Scene, settings Settings) Factory {
	return func(seed uint64) (Integrator, error) {
		return NewPathTracer(s, settings, seed)
	}
}
