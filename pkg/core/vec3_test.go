package core

import (
	"math"
	"testing"
)

func TestVec3_Reflect(t *testing.T) {
	tests := []struct {
		name     string
		incident Vec3
		normal   Vec3
		expected Vec3
	}{
		{
			name:     "Head on",
			incident: NewVec3(0, -1, 0),
			normal:   NewVec3(0, 1, 0),
			expected: NewVec3(0, 1, 0),
		},
		{
			name:     "45 degrees",
			incident: NewVec3(1, -1, 0).Normalize(),
			normal:   NewVec3(0, 1, 0),
			expected: NewVec3(1, 1, 0).Normalize(),
		},
	}

	const tolerance = 1e-9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reflect(tt.incident, tt.normal)
			if result.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("Reflect: got %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestVec3_Refract(t *testing.T) {
	normal := NewVec3(0, 1, 0)

	// Straight through at normal incidence
	straight := Refract(NewVec3(0, -1, 0), normal, 1/1.5)
	if straight.Subtract(NewVec3(0, -1, 0)).Length() > 1e-9 {
		t.Errorf("normal incidence: got %v", straight)
	}

	// Snell's law: sinθt = eta * sinθi
	incident := NewVec3(math.Sin(0.5), -math.Cos(0.5), 0)
	eta := 1 / 1.5
	refracted := Refract(incident, normal, eta)
	if math.Abs(refracted.X-eta*math.Sin(0.5)) > 1e-9 {
		t.Errorf("Snell: sinθt %f, expected %f", refracted.X, eta*math.Sin(0.5))
	}
	if !refracted.IsNormalized(1e-9) {
		t.Errorf("refracted %v is not unit length", refracted)
	}

	// Grazing from the dense side is total internal reflection
	grazing := NewVec3(math.Sin(1.2), -math.Cos(1.2), 0)
	if tir := Refract(grazing, normal, 1.5); !tir.IsZero() {
		t.Errorf("expected zero vector on total internal reflection, got %v", tir)
	}
}

func TestVec3_CrossAndLuminance(t *testing.T) {
	x, y := NewVec3(1, 0, 0), NewVec3(0, 1, 0)
	if z := x.Cross(y); z != NewVec3(0, 0, 1) {
		t.Errorf("x cross y: got %v", z)
	}
	if l := Splat(1).Luminance(); math.Abs(l-1) > 1e-9 {
		t.Errorf("white luminance: got %f, expected 1", l)
	}
}

func TestClampAndLerp(t *testing.T) {
	if v := Clamp(5, 0, 3); v != 3 {
		t.Errorf("Clamp int: got %d", v)
	}
	if v := Clamp(-0.5, 0.0, 1.0); v != 0 {
		t.Errorf("Clamp float: got %f", v)
	}
	if v := Lerp(0.25, 2.0, 6.0); v != 3 {
		t.Errorf("Lerp: got %f, expected 3", v)
	}
	if w := SchlickWeight(1); w != 0 {
		t.Errorf("SchlickWeight(1): got %f, expected 0", w)
	}
	if w := SchlickWeight(0); w != 1 {
		t.Errorf("SchlickWeight(0): got %f, expected 1", w)
	}
}
