package core

import (
	"golang.org/x/exp/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RNG is a seedable pseudo random generator backed by a PCG source.
// It is not safe for concurrent use; give each worker its own RNG.
type RNG struct {
	random *rand.Rand
}

// NewRNG creates a generator with the given seed
func NewRNG(seed uint64) *RNG {
	return &RNG{random: rand.New(rand.NewSource(seed))}
}

// Seed resets the generator so the following draws are reproducible
func (r *RNG) Seed(seed uint64) {
	r.random.Seed(seed)
}

// Get1D returns a random float64 in [0, 1)
func (r *RNG) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RNG) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RNG) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// Intn returns a random int in [0, n)
func (r *RNG) Intn(n int) int {
	return r.random.Intn(n)
}

// Uint64 returns a random 64-bit value, used to derive child seeds
func (r *RNG) Uint64() uint64 {
	return r.random.Uint64()
}
