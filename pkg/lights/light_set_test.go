package lights

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/geometry"
)

func mustPlane(t *testing.T, min0, max0, min1, max1, fixed float64, order string) *geometry.Plane {
	t.Helper()
	plane, err := geometry.NewPlane(min0, max0, min1, max1, fixed, order)
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	return plane
}

func TestLightSet_AreaWeightedSelection(t *testing.T) {
	set := NewLightSet()

	small, err := NewLight(mustPlane(t, 0, 1, 0, 1, 5, "xzy"), core.NewVec3(1, 0, 0), 2)
	if err != nil {
		t.Fatalf("NewLight: %v", err)
	}
	large, err := NewLight(mustPlane(t, 0, 3, 0, 1, -5, "xzy"), core.NewVec3(0, 1, 0), 1)
	if err != nil {
		t.Fatalf("NewLight: %v", err)
	}
	if err := set.Add(small); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := set.Add(large); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if set.Len() != 2 || set.TotalArea() != 4 {
		t.Fatalf("set: %d lights, area %f; expected 2 lights, area 4", set.Len(), set.TotalArea())
	}
	if math.Abs(set.PDF()-0.25) > 1e-12 {
		t.Errorf("PDF: got %f, expected 0.25", set.PDF())
	}

	rng := core.NewRNG(17)
	const samples = 20000
	counts := [2]int{}
	for i := 0; i < samples; i++ {
		sample, ok := set.Sample(rng)
		if !ok {
			t.Fatal("expected a sample")
		}
		counts[sample.Index]++
		if sample.PDF != 0.25 {
			t.Fatalf("sample pdf %f, expected 0.25", sample.PDF)
		}
		// The point lies on the chosen light's plane
		wantY := 5.0
		if sample.Index == 1 {
			wantY = -5
		}
		if sample.Point.Y != wantY {
			t.Fatalf("light %d sample %v off its plane", sample.Index, sample.Point)
		}
		if sample.Index == 0 && (sample.Strength != 2 || sample.Emission != core.NewVec3(1, 0, 0)) {
			t.Fatalf("light 0 sample carries wrong emission %v x %f", sample.Emission, sample.Strength)
		}
	}
	if frac := float64(counts[1]) / samples; math.Abs(frac-0.75) > 0.02 {
		t.Errorf("large light chosen %f of the time, expected ~0.75", frac)
	}
}

func TestLightSet_Empty(t *testing.T) {
	set := NewLightSet()
	if _, ok := set.Sample(core.NewRNG(1)); ok {
		t.Error("empty set produced a sample")
	}
	if set.PDF() != 0 {
		t.Errorf("empty set PDF: got %f, expected 0", set.PDF())
	}
}

func TestNewLight_Invalid(t *testing.T) {
	if _, err := NewLight(nil, core.Splat(1), 1); !errors.Is(err, core.ErrInvalidLight) {
		t.Errorf("nil surface: expected ErrInvalidLight, got %v", err)
	}
	flat := mustPlane(t, 0, 0, 0, 1, 0, "xyz")
	if _, err := NewLight(flat, core.Splat(1), 1); !errors.Is(err, core.ErrInvalidLight) {
		t.Errorf("zero area: expected ErrInvalidLight, got %v", err)
	}
	if err := NewLightSet().Add(Light{Surface: flat}); !errors.Is(err, core.ErrInvalidLight) {
		t.Errorf("Add zero area: expected ErrInvalidLight, got %v", err)
	}
}

func TestLight_Radiance(t *testing.T) {
	light, err := NewLight(mustPlane(t, 0, 1, 0, 1, 0, "xyz"), core.NewVec3(1, 0.5, 0.25), 4)
	if err != nil {
		t.Fatalf("NewLight: %v", err)
	}
	if r := light.Radiance(); r != core.NewVec3(4, 2, 1) {
		t.Errorf("Radiance: got %v, expected (4, 2, 1)", r)
	}
	if light.Entity != NoEntity {
		t.Errorf("Entity: got %d, expected NoEntity", light.Entity)
	}
}
