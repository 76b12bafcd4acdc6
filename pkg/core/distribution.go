package core

import (
	"fmt"
	"sort"
)

// Distribution1D samples an index with probability proportional to a
// non-negative weight. Weights are normalized on construction.
type Distribution1D struct {
	weights []float64 // normalized, sum to 1
	cdf     []float64 // running sum of normalized weights
	total   float64   // sum of the raw weights
}

// NewDistribution1D creates a discrete distribution over the given weights.
// Negative weights are an error. All-zero weights fall back to uniform.
func NewDistribution1D(weights []float64) (*Distribution1D, error) {
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("weight %d is negative (%g)", i, w)
		}
		total += w
	}

	normalized := make([]float64, len(weights))
	cdf := make([]float64, len(weights))
	running := 0.0
	for i, w := range weights {
		if total == 0 {
			normalized[i] = 1.0 / float64(len(weights))
		} else {
			normalized[i] = w / total
		}
		running += normalized[i]
		cdf[i] = running
	}
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1
	}

	return &Distribution1D{weights: normalized, cdf: cdf, total: total}, nil
}

// Sample maps u in [0,1) to an index and returns it with its probability.
// Indices with zero weight are never returned when any weight is positive.
func (d *Distribution1D) Sample(u float64) (int, float64) {
	if len(d.cdf) == 0 {
		return -1, 0
	}
	idx := sort.Search(len(d.cdf), func(i int) bool { return d.cdf[i] > u })
	if idx >= len(d.cdf) {
		idx = len(d.cdf) - 1
	}
	for idx > 0 && d.weights[idx] == 0 {
		idx--
	}
	for idx < len(d.weights)-1 && d.weights[idx] == 0 {
		idx++
	}
	return idx, d.weights[idx]
}

// Probability returns the normalized weight of index i
func (d *Distribution1D) Probability(i int) float64 {
	if i < 0 || i >= len(d.weights) {
		return 0
	}
	return d.weights[i]
}

// Total returns the sum of the raw weights
func (d *Distribution1D) Total() float64 {
	return d.total
}

// Len returns the number of entries
func (d *Distribution1D) Len() int {
	return len(d.weights)
}

// String returns a human-readable representation of the distribution
func (d *Distribution1D) String() string {
	result := fmt.Sprintf("Distribution1D(%d entries, total %.4g):\n", len(d.weights), d.total)
	for i, w := range d.weights {
		result += fmt.Sprintf("  [%d] %.3f\n", i, w)
	}
	return result
}
