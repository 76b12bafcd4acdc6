package material

import (
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// alphaFloor keeps the distribution away from a delta lobe
const alphaFloor = 1e-3

// TrowbridgeReitz is the isotropic GGX microfacet distribution. Directions
// are world-space and measured against the shading normal passed to each call.
type TrowbridgeReitz struct {
	Alpha float64
}

// NewTrowbridgeReitz maps perceptual roughness to alpha = roughness²
func NewTrowbridgeReitz(roughness float64) TrowbridgeReitz {
	return TrowbridgeReitz{Alpha: math.Max(alphaFloor, roughness*roughness)}
}

func tan2Theta(w core.Vec3) float64 {
	cos2 := w.Z * w.Z
	return math.Max(0, 1-cos2) / cos2
}

// D returns the density of microfacets oriented along wh
func (d TrowbridgeReitz) D(normal, wh core.Vec3) float64 {
	local := core.ToLocal(normal, wh)
	if local.Z == 0 {
		return 0
	}
	t2 := tan2Theta(local)
	if math.IsInf(t2, 0) {
		return 0
	}
	cos4 := local.Z * local.Z * local.Z * local.Z
	e := t2 / (d.Alpha * d.Alpha)
	return 1 / (math.Pi * d.Alpha * d.Alpha * cos4 * (1 + e) * (1 + e))
}

// Lambda is the Smith auxiliary function for masking along w
func (d TrowbridgeReitz) Lambda(normal, w core.Vec3) float64 {
	local := core.ToLocal(normal, w)
	if local.Z == 0 {
		return 0
	}
	t2 := tan2Theta(local)
	if math.IsInf(t2, 0) {
		return 0
	}
	return (-1 + math.Sqrt(1+d.Alpha*d.Alpha*t2)) / 2
}

// G1 is the masking term for one direction
func (d TrowbridgeReitz) G1(normal, w core.Vec3) float64 {
	return 1 / (1 + d.Lambda(normal, w))
}

// G is the height-correlated masking-shadowing term
func (d TrowbridgeReitz) G(normal, wo, wi core.Vec3) float64 {
	return 1 / (1 + d.Lambda(normal, wo) + d.Lambda(normal, wi))
}

// Pdf returns the density of sampling wh given wo with visible-normal sampling
func (d TrowbridgeReitz) Pdf(normal, wo, wh core.Vec3) float64 {
	cosO := math.Abs(wo.Dot(normal))
	if cosO == 0 {
		return 0
	}
	return d.D(normal, wh) * d.G1(normal, wo) * math.Abs(wo.Dot(wh)) / cosO
}

// SampleWh draws a visible microfacet normal for wo
func (d TrowbridgeReitz) SampleWh(normal, wo core.Vec3, u core.Vec2) core.Vec3 {
	local := core.ToLocal(normal, wo)
	flip := local.Z < 0
	if flip {
		local = local.Negate()
	}

	// Stretch wo
	stretched := core.NewVec3(d.Alpha*local.X, d.Alpha*local.Y, local.Z).Normalize()

	// Sample the slope distribution for alpha = 1
	slopeX, slopeY := sampleSlopes11(stretched.Z, u.X, u.Y)

	// Rotate and unstretch
	cosPhi, sinPhi := phiOf(stretched)
	slopeX, slopeY = cosPhi*slopeX-sinPhi*slopeY, sinPhi*slopeX+cosPhi*slopeY
	slopeX *= d.Alpha
	slopeY *= d.Alpha

	wh := core.NewVec3(-slopeX, -slopeY, 1).Normalize()
	if flip {
		wh = wh.Negate()
	}
	return core.ToWorld(normal, wh)
}

func phiOf(w core.Vec3) (cosPhi, sinPhi float64) {
	sinTheta := math.Sqrt(math.Max(0, 1-w.Z*w.Z))
	if sinTheta == 0 {
		return 1, 0
	}
	return core.Clamp(w.X/sinTheta, -1, 1), core.Clamp(w.Y/sinTheta, -1, 1)
}

// sampleSlopes11 samples microfacet slopes for a unit-roughness distribution
// seen from a direction with the given cosine
func sampleSlopes11(cosTheta, u1, u2 float64) (slopeX, slopeY float64) {
	// Normal incidence
	if cosTheta > .9999 {
		r := math.Sqrt(u1 / (1 - u1))
		phi := 2 * math.Pi * u2
		return r * math.Cos(phi), r * math.Sin(phi)
	}

	cosTheta = math.Max(cosTheta, 1e-7)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	tanTheta := sinTheta / cosTheta
	a := 1 / tanTheta
	g1 := 2 / (1 + math.Sqrt(1+1/(a*a)))

	// Slope x
	A := 2*u1/g1 - 1
	tmp := math.Min(1/(A*A-1), 1e10)
	B := tanTheta
	D := math.Sqrt(math.Max(B*B*tmp*tmp-(A*A-B*B)*tmp, 0))
	slopeX1 := B*tmp - D
	slopeX2 := B*tmp + D
	if A < 0 || slopeX2 > 1/tanTheta {
		slopeX = slopeX1
	} else {
		slopeX = slopeX2
	}

	// Slope y
	S := 1.0
	if u2 > 0.5 {
		u2 = 2 * (u2 - 0.5)
	} else {
		S = -1
		u2 = 2 * (0.5 - u2)
	}
	z := (u2 * (u2*(u2*0.27385-0.73369) + 0.46341)) /
		(u2*(u2*(u2*0.093073+0.309420)-1.000000) + 0.597999)
	slopeY = S * z * math.Sqrt(1+slopeX*slopeX)
	return slopeX, slopeY
}
