package material

import (
	"math"
	"testing"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

var up = core.NewVec3(0, 0, 1)

// integrateHemisphere integrates f over the unit hemisphere around normal
// with a midpoint rule in (θ, φ)
func integrateHemisphere(normal core.Vec3, f func(w core.Vec3) float64) float64 {
	const nTheta, nPhi = 200, 400
	dTheta := (math.Pi / 2) / nTheta
	dPhi := (2 * math.Pi) / nPhi
	sum := 0.0
	for i := 0; i < nTheta; i++ {
		theta := (float64(i) + 0.5) * dTheta
		sinT, cosT := math.Sin(theta), math.Cos(theta)
		for j := 0; j < nPhi; j++ {
			phi := (float64(j) + 0.5) * dPhi
			w := core.ToWorld(normal, core.NewVec3(sinT*math.Cos(phi), sinT*math.Sin(phi), cosT))
			sum += f(w) * sinT
		}
	}
	return sum * dTheta * dPhi
}

func TestTrowbridgeReitz_Normalized(t *testing.T) {
	for _, roughness := range []float64{0.4, 0.5, 0.8, 1.0} {
		d := NewTrowbridgeReitz(roughness)
		integral := integrateHemisphere(up, func(wh core.Vec3) float64 {
			return d.D(up, wh) * wh.Dot(up)
		})
		if math.Abs(integral-1) > 0.01 {
			t.Errorf("roughness %.1f: ∫D cosθ = %f, expected 1", roughness, integral)
		}
	}
}

func TestTrowbridgeReitz_SampleWhFacesViewer(t *testing.T) {
	d := NewTrowbridgeReitz(0.6)
	rng := core.NewRNG(8)
	normal := core.NewVec3(0.2, 0.3, 0.9).Normalize()
	wo := core.NewVec3(0.5, -0.1, 0.6).Normalize()
	for i := 0; i < 2000; i++ {
		wh := d.SampleWh(normal, wo, rng.Get2D())
		if !wh.IsNormalized(1e-6) {
			t.Fatalf("sample %d: wh %v is not unit length", i, wh)
		}
		if wh.Dot(normal) <= 0 {
			t.Fatalf("sample %d: wh %v below the normal", i, wh)
		}
	}
}

func TestLobe_SampleMatchesPdfAndEval(t *testing.T) {
	color := core.NewVec3(0.8, 0.5, 0.3)
	lobes := []Lobe{
		{Kind: LobeDiffuse, Color: color},
		{Kind: LobeFakeSubsurface, Color: color, Roughness: 0.4},
		{Kind: LobeRetro, Color: color, Roughness: 0.7},
		{Kind: LobeLambertianTransmission, Color: color},
		*NewLambertianLobe(color),
		{
			Kind:         LobeMicrofacetReflection,
			Color:        core.Splat(1),
			Distribution: NewTrowbridgeReitz(0.5),
			Fresnel:      DisneyFresnel{R0: core.Splat(0.04), IOR: 1.5},
		},
		{
			Kind:         LobeMicrofacetTransmission,
			Color:        color.Sqrt(),
			Distribution: NewTrowbridgeReitz(0.5),
			EtaA:         1,
			EtaB:         1.5,
		},
	}

	rayOut := core.NewVec3(0.3, 0.1, 0.8).Normalize()
	for _, lobe := range lobes {
		t.Run(lobe.Kind.String(), func(t *testing.T) {
			rng := core.NewRNG(21)
			valid := 0
			for i := 0; i < 500; i++ {
				rayIn, pdf, value := lobe.Sample(up, rayOut, rng, true)
				if pdf == 0 {
					continue
				}
				valid++
				if !rayIn.IsNormalized(1e-6) {
					t.Fatalf("sample %d: rayIn %v not unit length", i, rayIn)
				}
				if p := lobe.Pdf(up, rayOut, rayIn, true); math.Abs(p-pdf) > 1e-6*math.Max(1, pdf) {
					t.Fatalf("sample %d: Sample pdf %g, Pdf %g", i, pdf, p)
				}
				if e := lobe.Eval(up, rayOut, rayIn, true); e.Subtract(value).Length() > 1e-6*math.Max(1, value.Length()) {
					t.Fatalf("sample %d: Sample value %v, Eval %v", i, value, e)
				}
				if value.X < 0 || value.Y < 0 || value.Z < 0 || !value.IsFinite() {
					t.Fatalf("sample %d: invalid value %v", i, value)
				}
			}
			if valid < 250 {
				t.Errorf("only %d of 500 samples were valid", valid)
			}
		})
	}
}

func TestLobe_TransmissionCrossesSurface(t *testing.T) {
	lobes := []Lobe{
		{Kind: LobeLambertianTransmission, Color: core.Splat(1)},
		{Kind: LobeMicrofacetTransmission, Color: core.Splat(1), Distribution: NewTrowbridgeReitz(0.3), EtaA: 1, EtaB: 1.5},
	}
	rayOut := core.NewVec3(0, 0.4, 0.9).Normalize()
	for _, lobe := range lobes {
		rng := core.NewRNG(4)
		for i := 0; i < 500; i++ {
			rayIn, pdf, _ := lobe.Sample(up, rayOut, rng, true)
			if pdf == 0 {
				continue
			}
			// Light must arrive from below the surface
			if rayIn.Negate().Dot(up) > 0 {
				t.Fatalf("%s sample %d: rayIn %v arrives from the viewer's side", lobe.Kind, i, rayIn)
			}
		}
	}
}

func TestLobe_MicrofacetReflectionImportanceSampling(t *testing.T) {
	// With F = 1 the estimate E[f cos / pdf] must match the quadrature of f cos
	lobe := Lobe{
		Kind:         LobeMicrofacetReflection,
		Color:        core.Splat(1),
		Distribution: NewTrowbridgeReitz(0.5),
		Fresnel:      DisneyFresnel{R0: core.Splat(1), Metallic: 1, IOR: 1.5},
	}
	rayOut := core.NewVec3(math.Sin(0.5), 0, math.Cos(0.5))

	reference := integrateHemisphere(up, func(inRev core.Vec3) float64 {
		return lobe.Eval(up, rayOut, inRev.Negate(), true).X * inRev.Dot(up)
	})

	rng := core.NewRNG(1234)
	const samples = 50000
	sum := 0.0
	for i := 0; i < samples; i++ {
		rayIn, pdf, value := lobe.Sample(up, rayOut, rng, true)
		if pdf > 0 {
			sum += value.X * math.Abs(rayIn.Dot(up)) / pdf
		}
	}
	estimate := sum / samples

	if reference <= 0.5 || reference > 1.0001 {
		t.Fatalf("directional albedo %f outside (0.5, 1]", reference)
	}
	if math.Abs(estimate-reference) > 0.02 {
		t.Errorf("importance sampled %f, quadrature %f", estimate, reference)
	}
}

func TestLobe_DiffuseEnergy(t *testing.T) {
	lobe := Lobe{Kind: LobeDiffuse, Color: core.Splat(1)}
	rayOut := up
	albedo := integrateHemisphere(up, func(inRev core.Vec3) float64 {
		return lobe.Eval(up, rayOut, inRev.Negate(), true).X * inRev.Dot(up)
	})
	// (1 - Fi/2) loses 1/42 of the energy at normal incidence
	if math.Abs(albedo-(1-1.0/42)) > 0.002 {
		t.Errorf("diffuse albedo %f, expected %f", albedo, 1-1.0/42)
	}
}

func TestLobe_LambertianEnergy(t *testing.T) {
	lobe := NewLambertianLobe(core.Splat(0.6))
	rayOut := core.NewVec3(0.5, 0, 0.8).Normalize()
	albedo := integrateHemisphere(up, func(inRev core.Vec3) float64 {
		return lobe.Eval(up, rayOut, inRev.Negate(), true).X * inRev.Dot(up)
	})
	if math.Abs(albedo-0.6) > 0.002 {
		t.Errorf("lambertian albedo %f, expected 0.6", albedo)
	}
	if e := lobe.Eval(up, rayOut, up, true); !e.IsZero() {
		t.Errorf("light arriving from below must not scatter, got %v", e)
	}
}

func TestFrDielectric(t *testing.T) {
	tests := []struct {
		name     string
		cos      float64
		etaI     float64
		etaT     float64
		expected float64
	}{
		{"normal incidence glass", 1, 1, 1.5, 0.04},
		{"matched indices", 0.5, 1.5, 1.5, 0},
		{"grazing", 0, 1, 1.5, 1},
		{"total internal reflection from inside", -0.1, 1, 1.5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrDielectric(tt.cos, tt.etaI, tt.etaT); math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("FrDielectric: got %f, expected %f", got, tt.expected)
			}
		})
	}

	if r := SchlickReflectance(1, 1.5); math.Abs(r-0.04) > 1e-12 {
		t.Errorf("SchlickReflectance at normal incidence: got %f", r)
	}
}
