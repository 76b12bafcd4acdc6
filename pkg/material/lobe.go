package material

import (
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// LobeKind discriminates the scattering components a principled material
// is assembled from
type LobeKind uint8

const (
	LobeDiffuse LobeKind = iota
	LobeFakeSubsurface
	LobeRetro
	LobeMicrofacetReflection
	LobeMicrofacetTransmission
	LobeLambertianTransmission
	LobeLambertian
)

func (k LobeKind) String() string {
	switch k {
	case LobeDiffuse:
		return "diffuse"
	case LobeFakeSubsurface:
		return "fake-subsurface"
	case LobeRetro:
		return "retro"
	case LobeMicrofacetReflection:
		return "microfacet-reflection"
	case LobeMicrofacetTransmission:
		return "microfacet-transmission"
	case LobeLambertianTransmission:
		return "lambertian-transmission"
	case LobeLambertian:
		return "lambertian"
	}
	return "unknown"
}

// Lobe is one scattering component. Only the fields its Kind reads are set.
//
// Direction conventions for every operation: rayOut points away from the
// surface toward the viewer, rayIn is the travel direction of the incoming
// light and so points toward the surface. normal is the unit shading normal
// on the side the ray arrived from; frontFace says whether that is the
// outside of the surface.
type Lobe struct {
	Kind         LobeKind
	Color        core.Vec3
	Roughness    float64
	Distribution TrowbridgeReitz
	Fresnel      DisneyFresnel
	EtaA, EtaB   float64 // outside and inside indices (transmission)
}

// NewLambertianLobe returns an ideal diffuse reflector with the given albedo
func NewLambertianLobe(albedo core.Vec3) *Lobe {
	return &Lobe{Kind: LobeLambertian, Color: albedo}
}

// Transmits reports whether the lobe scatters light through the surface
// rather than back to the side it arrived from
func (l *Lobe) Transmits() bool {
	return l.Kind == LobeMicrofacetTransmission || l.Kind == LobeLambertianTransmission
}

func cosineHemispherePdf(normal, rayIn core.Vec3) float64 {
	cos := normal.Dot(rayIn.Negate())
	if cos < 0 {
		return 0
	}
	return cos * core.InvPi
}

// Pdf returns the solid-angle density of sampling rayIn given rayOut
func (l *Lobe) Pdf(normal, rayOut, rayIn core.Vec3, frontFace bool) float64 {
	switch l.Kind {
	case LobeDiffuse, LobeFakeSubsurface, LobeRetro, LobeLambertian:
		return cosineHemispherePdf(normal, rayIn)
	case LobeLambertianTransmission:
		inRev := rayIn.Negate()
		if normal.Dot(inRev)*normal.Dot(rayOut) > 0 {
			return 0
		}
		return math.Abs(normal.Dot(inRev)) * core.InvPi
	case LobeMicrofacetReflection:
		return l.reflectionPdf(normal, rayOut, rayIn)
	case LobeMicrofacetTransmission:
		return l.transmissionPdf(normal, rayOut, rayIn, frontFace)
	}
	return 0
}

// Eval returns the BSDF value for the pair of directions
func (l *Lobe) Eval(normal, rayOut, rayIn core.Vec3, frontFace bool) core.Vec3 {
	switch l.Kind {
	case LobeDiffuse:
		fo := core.SchlickWeight(math.Abs(normal.Dot(rayOut)))
		fi := core.SchlickWeight(math.Abs(normal.Dot(rayIn)))
		return l.Color.Multiply(core.InvPi * (1 - fo/2) * (1 - fi/2))
	case LobeFakeSubsurface:
		return l.fakeSubsurface(normal, rayOut, rayIn)
	case LobeRetro:
		return l.retro(normal, rayOut, rayIn)
	case LobeLambertianTransmission:
		return l.Color.Multiply(core.InvPi)
	case LobeLambertian:
		if normal.Dot(rayIn) > 0 {
			return core.Vec3{}
		}
		return l.Color.Multiply(core.InvPi)
	case LobeMicrofacetReflection:
		return l.reflectionEval(normal, rayOut, rayIn)
	case LobeMicrofacetTransmission:
		return l.transmissionEval(normal, rayOut, rayIn, frontFace)
	}
	return core.Vec3{}
}

// Sample draws rayIn for rayOut and returns it with its pdf and BSDF value.
// A zero pdf marks a failed sample that must contribute nothing.
func (l *Lobe) Sample(normal, rayOut core.Vec3, sampler core.Sampler, frontFace bool) (rayIn core.Vec3, pdf float64, value core.Vec3) {
	switch l.Kind {
	case LobeDiffuse, LobeFakeSubsurface, LobeRetro, LobeLambertian:
		inRev, p := core.SampleCosineHemisphere(normal, sampler.Get2D())
		rayIn = inRev.Negate()
		return rayIn, p, l.Eval(normal, rayOut, rayIn, frontFace)

	case LobeLambertianTransmission:
		inRev, p := core.SampleCosineHemisphere(normal, sampler.Get2D())
		// Send the light in from the side opposite rayOut
		if normal.Dot(inRev)*normal.Dot(rayOut) > 0 {
			rayIn = inRev
		} else {
			rayIn = inRev.Negate()
		}
		return rayIn, p, l.Eval(normal, rayOut, rayIn, frontFace)

	case LobeMicrofacetReflection:
		if normal.Dot(rayOut) == 0 {
			return core.Vec3{}, 0, core.Vec3{}
		}
		wh := l.Distribution.SampleWh(normal, rayOut, sampler.Get2D())
		if rayOut.Dot(wh) < 0 {
			return core.Vec3{}, 0, core.Vec3{}
		}
		rayIn = core.Reflect(rayOut, wh)
		return rayIn, l.reflectionPdf(normal, rayOut, rayIn), l.reflectionEval(normal, rayOut, rayIn)

	case LobeMicrofacetTransmission:
		if normal.Dot(rayOut) == 0 {
			return core.Vec3{}, 0, core.Vec3{}
		}
		wh := l.Distribution.SampleWh(normal, rayOut, sampler.Get2D())
		if rayOut.Dot(wh) < 0 {
			return core.Vec3{}, 0, core.Vec3{}
		}
		eta := l.EtaA / l.EtaB
		if !frontFace {
			eta = l.EtaB / l.EtaA
		}
		refracted := core.Refract(rayOut.Negate(), wh, eta)
		if refracted.Length() < 1e-5 {
			return core.Vec3{}, 0, core.Vec3{}
		}
		rayIn = refracted.Negate()
		return rayIn, l.transmissionPdf(normal, rayOut, rayIn, frontFace), l.transmissionEval(normal, rayOut, rayIn, frontFace)
	}
	return core.Vec3{}, 0, core.Vec3{}
}

func halfVector(rayOut, inRev core.Vec3) (core.Vec3, bool) {
	wh := rayOut.Add(inRev)
	if wh.IsZero() {
		return core.Vec3{}, false
	}
	return wh.Normalize(), true
}

func (l *Lobe) fakeSubsurface(normal, rayOut, rayIn core.Vec3) core.Vec3 {
	inRev := rayIn.Negate()
	wh, ok := halfVector(rayOut, inRev)
	if !ok {
		return core.Vec3{}
	}
	cosD := rayOut.Dot(wh)
	cosO := math.Abs(normal.Dot(rayOut))
	cosI := math.Abs(normal.Dot(inRev))
	if cosO+cosI == 0 {
		return core.Vec3{}
	}
	fss90 := cosD * cosD * l.Roughness
	fo := core.SchlickWeight(cosO)
	fi := core.SchlickWeight(cosI)
	fss := core.Lerp(fo, 1, fss90) * core.Lerp(fi, 1, fss90)
	ss := 1.25 * (fss*(1/(cosO+cosI)-0.5) + 0.5)
	return l.Color.Multiply(core.InvPi * ss)
}

func (l *Lobe) retro(normal, rayOut, rayIn core.Vec3) core.Vec3 {
	inRev := rayIn.Negate()
	wh, ok := halfVector(rayOut, inRev)
	if !ok {
		return core.Vec3{}
	}
	cosD := rayOut.Dot(wh)
	fo := core.SchlickWeight(math.Abs(normal.Dot(rayOut)))
	fi := core.SchlickWeight(math.Abs(normal.Dot(inRev)))
	rr := 2 * l.Roughness * cosD * cosD
	return l.Color.Multiply(core.InvPi * rr * (fo + fi + fo*fi*(rr-1)))
}

func (l *Lobe) reflectionPdf(normal, rayOut, rayIn core.Vec3) float64 {
	inRev := rayIn.Negate()
	if normal.Dot(inRev)*normal.Dot(rayOut) < 0 {
		return 0
	}
	wh, ok := halfVector(rayOut, inRev)
	if !ok {
		return 0
	}
	cos := rayOut.Dot(wh)
	if cos <= 0 {
		return 0
	}
	return l.Distribution.Pdf(normal, rayOut, wh) / (4 * cos)
}

func (l *Lobe) reflectionEval(normal, rayOut, rayIn core.Vec3) core.Vec3 {
	inRev := rayIn.Negate()
	cosO := math.Abs(normal.Dot(rayOut))
	cosI := math.Abs(normal.Dot(inRev))
	if cosO == 0 || cosI == 0 {
		return core.Vec3{}
	}
	wh, ok := halfVector(rayOut, inRev)
	if !ok {
		return core.Vec3{}
	}
	// Keep wh on the normal's side so the Fresnel term sees a positive cosine
	if wh.Dot(normal) < 0 {
		wh = wh.Negate()
	}
	f := l.Fresnel.Evaluate(inRev.Dot(wh))
	scale := l.Distribution.D(normal, wh) * l.Distribution.G(normal, rayOut, inRev) / (4 * cosI * cosO)
	return l.Color.MultiplyVec(f).Multiply(scale)
}

// relativeEta returns the index ratio used to build the generalized half
// vector: inside over outside when rayOut leaves through the outside
func (l *Lobe) relativeEta(cosOut float64) float64 {
	if cosOut > 0 {
		return l.EtaB / l.EtaA
	}
	return l.EtaA / l.EtaB
}

func outsideNormal(normal core.Vec3, frontFace bool) core.Vec3 {
	if frontFace {
		return normal
	}
	return normal.Negate()
}

func (l *Lobe) transmissionPdf(normal, rayOut, rayIn core.Vec3, frontFace bool) float64 {
	outN := outsideNormal(normal, frontFace)
	inRev := rayIn.Negate()
	if outN.Dot(inRev)*outN.Dot(rayOut) > 0 {
		return 0
	}
	eta := l.relativeEta(outN.Dot(rayOut))
	wh := inRev.Multiply(eta).Add(rayOut)
	if wh.IsZero() {
		return 0
	}
	wh = wh.Normalize()

	denom := rayOut.Dot(wh) + eta*inRev.Dot(wh)
	if denom == 0 {
		return 0
	}
	dwhDwi := math.Abs(eta * eta * inRev.Dot(wh) / (denom * denom))
	return l.Distribution.Pdf(normal, rayOut, wh) * dwhDwi
}

func (l *Lobe) transmissionEval(normal, rayOut, rayIn core.Vec3, frontFace bool) core.Vec3 {
	outN := outsideNormal(normal, frontFace)
	inRev := rayIn.Negate()
	cosO := outN.Dot(rayOut)
	cosI := outN.Dot(inRev)
	if cosO == 0 || cosI == 0 {
		return core.Vec3{}
	}

	eta := l.relativeEta(cosO)
	wh := inRev.Multiply(eta).Add(rayOut)
	if wh.IsZero() {
		return core.Vec3{}
	}
	wh = wh.Normalize()
	if wh.Dot(outN) < 0 {
		wh = wh.Negate()
	}
	// Both directions on the same side of the microfacet is reflection, not transmission
	if rayOut.Dot(wh)*inRev.Dot(wh) > 0 {
		return core.Vec3{}
	}

	f := FrDielectric(rayOut.Dot(wh), l.EtaA, l.EtaB)
	denom := rayOut.Dot(wh) + eta*inRev.Dot(wh)
	factor := 1 / eta
	value := math.Abs(l.Distribution.D(normal, wh) * l.Distribution.G(normal, rayOut, inRev) * eta * eta *
		math.Abs(inRev.Dot(wh)) * math.Abs(rayOut.Dot(wh)) * factor * factor /
		(cosI * cosO * denom * denom))
	return l.Color.Multiply((1 - f) * value)
}
