package core

import (
	"math"

	"golang.org/x/exp/constraints"
)

const (
	// InvPi is 1/π
	InvPi = 1.0 / math.Pi
)

// Number is any integer or floating point type
type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp limits v to [lo, hi]
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a (t=0) and b (t=1)
func Lerp[T constraints.Float](t, a, b T) T {
	return (1-t)*a + t*b
}

// Pow5 returns x^5
func Pow5(x float64) float64 {
	x2 := x * x
	return x2 * x2 * x
}

// SchlickWeight returns (1 - cos)^5 with cos clamped to [0, 1]
func SchlickWeight(cosTheta float64) float64 {
	return Pow5(1 - Clamp(cosTheta, 0, 1))
}

// PowerHeuristic returns the MIS weight for strategy a against strategy b
// with sample counts nf and ng and exponent 2
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	if math.IsInf(f, 1) {
		return 1
	}
	return (f * f) / (f*f + g*g)
}
