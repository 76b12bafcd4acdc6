package core

import (
	"math"
	"testing"
)

func TestPowerHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		nf       int
		fPdf     float64
		ng       int
		gPdf     float64
		expected float64
	}{
		{
			name:     "Equal PDFs",
			nf:       1,
			fPdf:     0.5,
			ng:       1,
			gPdf:     0.5,
			expected: 0.5,
		},
		{
			name:     "First PDF zero",
			nf:       1,
			fPdf:     0.0,
			ng:       1,
			gPdf:     0.5,
			expected: 0.0,
		},
		{
			name:     "Second PDF zero",
			nf:       1,
			fPdf:     0.5,
			ng:       1,
			gPdf:     0.0,
			expected: 1.0,
		},
		{
			name:     "Both PDFs zero",
			nf:       1,
			fPdf:     0.0,
			ng:       1,
			gPdf:     0.0,
			expected: 0.0,
		},
		{
			name:     "First PDF higher",
			nf:       1,
			fPdf:     0.8,
			ng:       1,
			gPdf:     0.2,
			expected: 0.941176, // (0.8²) / (0.8² + 0.2²)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PowerHeuristic(tt.nf, tt.fPdf, tt.ng, tt.gPdf)
			if math.Abs(result-tt.expected) > 1e-5 {
				t.Errorf("PowerHeuristic: got %f, expected %f", result, tt.expected)
			}
		})
	}
}

func TestTangentFrame_Orthonormal(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(0, 0, -1),
		NewVec3(1, 0, 0),
		NewVec3(0, 1, 0),
		NewVec3(1, 2, 3).Normalize(),
		NewVec3(-0.3, 0.1, -0.9).Normalize(),
	}

	const tolerance = 1e-9
	for _, n := range normals {
		m, l := TangentFrame(n)
		if !m.IsNormalized(tolerance) || !l.IsNormalized(tolerance) {
			t.Errorf("normal %v: frame not unit length m=%v l=%v", n, m, l)
		}
		if math.Abs(m.Dot(l)) > tolerance || math.Abs(m.Dot(n)) > tolerance || math.Abs(l.Dot(n)) > tolerance {
			t.Errorf("normal %v: frame not orthogonal m=%v l=%v", n, m, l)
		}

		w := NewVec3(0.2, -0.7, 0.4)
		back := ToWorld(n, ToLocal(n, w))
		if back.Subtract(w).Length() > tolerance {
			t.Errorf("normal %v: round trip %v -> %v", n, w, back)
		}
	}
}

func TestSampleCosineHemisphere(t *testing.T) {
	rng := NewRNG(42)
	normal := NewVec3(0.3, -0.5, 0.8).Normalize()

	const samples = 20000
	sumCos := 0.0
	for i := 0; i < samples; i++ {
		dir, pdf := SampleCosineHemisphere(normal, rng.Get2D())
		cos := dir.Dot(normal)
		if cos < -1e-9 {
			t.Fatalf("sample %v below hemisphere (cos=%f)", dir, cos)
		}
		if !dir.IsNormalized(1e-6) {
			t.Fatalf("sample %v is not unit length", dir)
		}
		if math.Abs(pdf-cos/math.Pi) > 1e-9 {
			t.Fatalf("pdf %f does not match cos/π %f", pdf, cos/math.Pi)
		}
		sumCos += cos
	}

	// E[cosθ] under a cosine distribution is 2/3
	mean := sumCos / samples
	if math.Abs(mean-2.0/3.0) > 0.01 {
		t.Errorf("mean cosine %f, expected ~0.667", mean)
	}
}

func TestSampleUniformTriangle(t *testing.T) {
	rng := NewRNG(7)
	sumB1, sumB2 := 0.0, 0.0
	const samples = 20000
	for i := 0; i < samples; i++ {
		b1, b2 := SampleUniformTriangle(rng.Get2D())
		if b1 < 0 || b2 < 0 || b1+b2 > 1+1e-12 {
			t.Fatalf("barycentrics (%f, %f) outside the triangle", b1, b2)
		}
		sumB1 += b1
		sumB2 += b2
	}
	// Centroid has all barycentrics at 1/3
	if math.Abs(sumB1/samples-1.0/3.0) > 0.01 || math.Abs(sumB2/samples-1.0/3.0) > 0.01 {
		t.Errorf("mean barycentrics (%f, %f), expected ~(0.333, 0.333)", sumB1/samples, sumB2/samples)
	}
}

func TestSamplePointInUnitDisk(t *testing.T) {
	rng := NewRNG(3)
	for i := 0; i < 1000; i++ {
		p := SamplePointInUnitDisk(rng.Get2D())
		if p.X*p.X+p.Y*p.Y > 1+1e-9 {
			t.Fatalf("point %v outside unit disk", p)
		}
	}
}

func TestDistribution1D(t *testing.T) {
	dist, err := NewDistribution1D([]float64{1, 0, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dist.Total() != 4 {
		t.Errorf("Total: got %f, expected 4", dist.Total())
	}

	tests := []struct {
		name     string
		u        float64
		expected int
		prob     float64
	}{
		{"start", 0.0, 0, 0.25},
		{"inside first", 0.2, 0, 0.25},
		{"boundary skips zero weight", 0.25, 2, 0.75},
		{"inside last", 0.9, 2, 0.75},
		{"almost one", 0.999999, 2, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, prob := dist.Sample(tt.u)
			if idx != tt.expected || math.Abs(prob-tt.prob) > 1e-12 {
				t.Errorf("Sample(%f): got (%d, %f), expected (%d, %f)", tt.u, idx, prob, tt.expected, tt.prob)
			}
		})
	}

	if _, err := NewDistribution1D([]float64{1, -1}); err == nil {
		t.Error("expected error for negative weight")
	}

	uniform, _ := NewDistribution1D([]float64{0, 0})
	if p := uniform.Probability(1); p != 0.5 {
		t.Errorf("all-zero weights: probability %f, expected 0.5", p)
	}
}

func TestRNG_SeedReproducible(t *testing.T) {
	a := NewRNG(99)
	first := []float64{a.Get1D(), a.Get1D(), a.Get1D()}

	a.Seed(99)
	for i, want := range first {
		if got := a.Get1D(); got != want {
			t.Errorf("draw %d after reseed: got %f, expected %f", i, got, want)
		}
	}
}
