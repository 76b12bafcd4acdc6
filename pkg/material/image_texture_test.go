package material

import (
	"errors"
	"testing"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// TestImageTextureSample tests basic texture sampling
func TestImageTextureSample(t *testing.T) {
	// Create a 2x2 checkerboard pattern
	// Layout:
	//   white black
	//   black white
	white := core.NewVec4(1, 1, 1, 1)
	black := core.NewVec4(0, 0, 0, 1)
	texture, err := NewImageTexture(2, 2, []core.Vec4{
		white, black, // Row 0 (top in image coords)
		black, white, // Row 1 (bottom in image coords)
	})
	if err != nil {
		t.Fatalf("NewImageTexture: %v", err)
	}

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec4
	}{
		{"bottom-left maps to row 1", core.NewVec2(0.1, 0.1), black},
		{"bottom-right maps to row 1", core.NewVec2(0.9, 0.1), white},
		{"top-left maps to row 0", core.NewVec2(0.1, 0.9), white},
		{"top-right maps to row 0", core.NewVec2(0.9, 0.9), black},
		{"wraps above one", core.NewVec2(1.1, 1.9), white},
		{"wraps below zero", core.NewVec2(-0.9, -0.1), white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := texture.Sample(tt.uv); result != tt.expected {
				t.Errorf("Sample(%v): expected %v, got %v", tt.uv, tt.expected, result)
			}
		})
	}
}

func TestNewImageTexture_Invalid(t *testing.T) {
	if _, err := NewImageTexture(2, 2, make([]core.Vec4, 3)); !errors.Is(err, core.ErrInvalidTexture) {
		t.Errorf("expected ErrInvalidTexture, got %v", err)
	}
	if _, err := NewImageTexture(0, 1, nil); !errors.Is(err, core.ErrInvalidTexture) {
		t.Errorf("expected ErrInvalidTexture, got %v", err)
	}
}

func TestDefaultTextures(t *testing.T) {
	if c := WhiteTexture().Sample(core.NewVec2(0.3, 0.7)); c != core.NewVec4(1, 1, 1, 1) {
		t.Errorf("white texture: got %v", c)
	}
	if c := FlatNormalTexture().Sample(core.Vec2{}); c != core.NewVec4(0.5, 0.5, 1, 1) {
		t.Errorf("flat normal texture: got %v", c)
	}
}

func TestRippleNormalTexture_Decodes(t *testing.T) {
	tex := NewRippleNormalTexture(32, 4, 0.02)
	for _, p := range tex.Pixels {
		n := p.XYZ().Multiply(2).Subtract(core.Splat(1))
		if !n.IsNormalized(1e-9) || n.Z <= 0 {
			t.Fatalf("decoded normal %v is not a unit vector facing +z", n)
		}
	}
}

func TestCheckerboardTexture(t *testing.T) {
	tex := NewCheckerboardTexture(4, 4, 2, core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1))
	if tex.Pixels[0] != core.NewVec4(1, 0, 0, 1) || tex.Pixels[2] != core.NewVec4(0, 0, 1, 1) {
		t.Errorf("unexpected checker layout: %v %v", tex.Pixels[0], tex.Pixels[2])
	}
}
