package material

import (
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// FrDielectric returns the unpolarized Fresnel reflectance of a dielectric
// interface. cosThetaI is measured on the etaI side; a negative value means
// the ray arrives from the etaT side.
func FrDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = core.Clamp(cosThetaI, -1, 1)
	if cosThetaI <= 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = math.Abs(cosThetaI)
	}

	sinThetaI := math.Sqrt(math.Max(0, 1-cosThetaI*cosThetaI))
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		return 1 // total internal reflection
	}
	cosThetaT := math.Sqrt(math.Max(0, 1-sinThetaT*sinThetaT))

	rParl := (etaT*cosThetaI - etaI*cosThetaT) / (etaT*cosThetaI + etaI*cosThetaT)
	rPerp := (etaI*cosThetaI - etaT*cosThetaT) / (etaI*cosThetaI + etaT*cosThetaT)
	return (rParl*rParl + rPerp*rPerp) / 2
}

// SchlickR0 returns the normal-incidence reflectance ((n-1)/(n+1))²
func SchlickR0(ior float64) float64 {
	r := (ior - 1) / (ior + 1)
	return r * r
}

// SchlickReflectance approximates dielectric reflectance at the given cosine
func SchlickReflectance(cosTheta, ior float64) float64 {
	r0 := SchlickR0(ior)
	return r0 + (1-r0)*core.SchlickWeight(cosTheta)
}

// DisneyFresnel blends dielectric reflectance with a Schlick curve tinted by
// R0, by metallic
type DisneyFresnel struct {
	R0       core.Vec3
	Metallic float64
	IOR      float64
}

// Evaluate returns the reflectance for the cosine between the incident
// direction and the microfacet normal
func (f DisneyFresnel) Evaluate(cosI float64) core.Vec3 {
	dielectric := core.Splat(FrDielectric(cosI, 1, f.IOR))
	w := core.SchlickWeight(cosI)
	schlick := core.LerpVec(w, f.R0, core.Splat(1))
	return core.LerpVec(f.Metallic, dielectric, schlick)
}
