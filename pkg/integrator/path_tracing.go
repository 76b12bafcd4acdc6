package integrator

import (
	"fmt"
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/material"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
)

// visibilityTolerance is how close the first hit toward a light sample must
// land to the sample for the sample to count as unoccluded
const visibilityTolerance = 1e-3

// totalInternalReflection is the refracted length below which refraction
// is treated as impossible
const totalInternalReflection = 1e-3

// degenerateNormal is the squared length below which an interpolated normal
// has no usable direction
const degenerateNormal = 1e-12

// PathTracer is a recursive unidirectional path tracer with area-light MIS.
// It owns its random stream and the bounce counter of the path in flight.
type PathTracer struct {
	scene    *scene.Scene
	settings Settings
	rng      *core.RNG
	bounces  int
	rays     uint64
}

// NewPathTracer creates a path tracer over a frozen scene
func NewPathTracer(s *scene.Scene, settings Settings, seed uint64) (*PathTracer, error) {
	if !s.Frozen() {
		return nil, core.ErrSceneNotFrozen
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &PathTracer{
		scene:    s,
		settings: settings,
		rng:      core.NewRNG(seed),
	}, nil
}

// SetSeed restarts the random stream
func (pt *PathTracer) SetSeed(seed uint64) {
	pt.rng.Seed(seed)
}

// RayCount returns how many scene queries this tracer has issued
func (pt *PathTracer) RayCount() uint64 {
	return pt.rays
}

// TraceRay returns the nearest scene hit
func (pt *PathTracer) TraceRay(origin, direction core.Vec3, time, tMin, tMax float64) (core.HitRecord, bool) {
	pt.rays++
	return pt.scene.TraceRay(origin, direction, time, tMin, tMax)
}

func (pt *PathTracer) trace(origin, direction core.Vec3, time float64) (core.HitRecord, bool) {
	return pt.TraceRay(origin, direction, time, scene.RayTMin, scene.RayTMax)
}

// SampleRayPathTrace returns one radiance estimate for the camera ray,
// clamped per channel to [0, MaxColor]. Rays that miss return black.
func (pt *PathTracer) SampleRayPathTrace(origin, direction core.Vec3, time float64) core.Vec3 {
	pt.bounces = 0
	direction = direction.Normalize()
	hit, ok := pt.trace(origin, direction, time)
	if !ok {
		return core.Vec3{}
	}
	color := pt.shade(hit, direction.Negate(), time)
	if !color.IsFinite() {
		return core.Vec3{}
	}
	return color.Clamp(0, pt.settings.MaxColor)
}

// shade returns the radiance leaving hit toward dirOut
func (pt *PathTracer) shade(hit core.HitRecord, dirOut core.Vec3, time float64) core.Vec3 {
	mat := pt.scene.Entity(hit.EntityID).Material
	normal, albedo, ok := pt.surface(hit, mat)
	if !ok {
		return core.Vec3{}
	}

	switch mat.Type {
	case material.Emission:
		return pt.shadeEmission(hit, normal, dirOut, mat)
	case material.Lambertian:
		lobe := material.NewLambertianLobe(albedo)
		return pt.shadeScatter(hit.Position, dirOut, normal, hit.FrontFace, lobe, 1, time)
	case material.Specular:
		return pt.shadeSpecular(hit.Position, dirOut, normal, albedo, time)
	case material.Transmissive:
		return pt.shadeTransmissive(hit.Position, dirOut, normal, albedo, mat.IOR, hit.FrontFace, time)
	case material.Principled:
		bsdf := material.NewPrincipledBSDF(mat, albedo)
		if bsdf.TotalWeight() <= 0 {
			return core.Vec3{}
		}
		lobe := bsdf.ChooseLobe(pt.rng.Get1D())
		return pt.shadeScatter(hit.Position, dirOut, normal, hit.FrontFace, lobe, bsdf.TotalWeight(), time)
	}
	panic(fmt.Sprintf("integrator: entity %d has unknown material type %s", hit.EntityID, mat.Type))
}

// surface returns the shading normal, after normal mapping, and the
// texture-modulated albedo. It reports false when the interpolated normal
// is degenerate; such a point contributes nothing.
func (pt *PathTracer) surface(hit core.HitRecord, mat material.Material) (normal, albedo core.Vec3, ok bool) {
	albedo = pt.scene.Texture(mat.AlbedoTexture).Sample(hit.TexCoord).XYZ().MultiplyVec(mat.Albedo)

	normal = hit.Normal
	if normal.LengthSquared() < degenerateNormal {
		return core.Vec3{}, albedo, false
	}
	if mat.NormalTexture != material.FlatNormalTextureIndex {
		local := pt.scene.Texture(mat.NormalTexture).Sample(hit.TexCoord).XYZ().Multiply(2).Subtract(core.Splat(1))
		bitangent := hit.Normal.Cross(hit.Tangent)
		mapped := hit.Tangent.Multiply(local.X).Add(bitangent.Multiply(local.Y)).Add(hit.Normal.Multiply(local.Z))
		if mapped.LengthSquared() > 1e-12 {
			mapped = mapped.Normalize()
			if mapped.Dot(hit.Normal) < 0 {
				mapped = mapped.Negate()
			}
			normal = mapped
		}
	}
	if !normal.IsNormalized(1e-3) {
		panic(fmt.Errorf("%w: shading normal %v on entity %d", core.ErrUnnormalized, normal, hit.EntityID))
	}
	return normal, albedo, true
}

// solidAnglePdf converts an area density at a light hit to solid angle
// around dir, using the face normal rather than the interpolated one.
// Grazing hits have no density.
func solidAnglePdf(areaPdf, dist2 float64, hit core.HitRecord, dir core.Vec3) float64 {
	cosLight := math.Abs(hit.GeometryNormal.Dot(dir))
	if cosLight == 0 {
		return 0
	}
	return areaPdf * dist2 / cosLight
}

// shadeEmission returns emission * strength * max(0, cos) measured against
// the side the face winding points to, so emitters are one-sided
func (pt *PathTracer) shadeEmission(hit core.HitRecord, normal, dirOut core.Vec3, mat material.Material) core.Vec3 {
	if !hit.FrontFace {
		normal = normal.Negate()
	}
	cos := normal.Dot(dirOut)
	if cos <= 0 {
		return core.Vec3{}
	}
	return mat.Radiance().Multiply(cos)
}

// shadeScatter shades a non-delta surface: a light sample and a BSDF sample
// combined with the power heuristic, plus one Russian roulette indirect
// bounce. The lobe value is multiplied by scale.
func (pt *PathTracer) shadeScatter(p, dirOut, normal core.Vec3, frontFace bool, lobe *material.Lobe, scale float64, time float64) core.Vec3 {
	radiance := pt.sampleLight(p, dirOut, normal, frontFace, lobe, scale, time)
	radiance = radiance.Add(pt.sampleBSDF(p, dirOut, normal, frontFace, lobe, scale, time))
	return radiance.Add(pt.sampleIndirect(p, dirOut, normal, frontFace, lobe, scale, time))
}

// sampleLight picks a point on a light proportionally to area and weights
// its contribution against the lobe's pdf for the same direction
func (pt *PathTracer) sampleLight(p, dirOut, normal core.Vec3, frontFace bool, lobe *material.Lobe, scale float64, time float64) core.Vec3 {
	ls, ok := pt.scene.Lights().Sample(pt.rng)
	if !ok {
		return core.Vec3{}
	}
	toLight := ls.Point.Subtract(p)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		return core.Vec3{}
	}
	dir := toLight.Divide(math.Sqrt(dist2))

	// Reflection lobes only see lights on the viewer's side, transmission
	// lobes only lights behind the surface
	cosHit := normal.Dot(dir)
	if (cosHit > 0) == lobe.Transmits() {
		return core.Vec3{}
	}
	cosHit = math.Abs(cosHit)

	hit, ok := pt.trace(p, dir, time)
	if !ok || hit.Position.Distance(ls.Point) >= visibilityTolerance {
		return core.Vec3{}
	}
	lightMat := pt.scene.Entity(hit.EntityID).Material
	if !lightMat.IsEmissive() {
		return core.Vec3{}
	}
	lightNormal, _, ok := pt.surface(hit, lightMat)
	if !ok {
		return core.Vec3{}
	}
	emitted := pt.shadeEmission(hit, lightNormal, dir.Negate(), lightMat)
	// Convert the area density to solid angle so both strategies share a measure
	lightPdf := solidAnglePdf(ls.PDF, dist2, hit, dir)
	if emitted.IsZero() || lightPdf == 0 {
		return core.Vec3{}
	}

	rayIn := dir.Negate()
	f := lobe.Eval(normal, dirOut, rayIn, frontFace).Multiply(scale)
	weight := core.PowerHeuristic(1, lightPdf, 1, lobe.Pdf(normal, dirOut, rayIn, frontFace))
	return emitted.MultiplyVec(f).Multiply(cosHit / lightPdf * weight)
}

// sampleBSDF samples the lobe and keeps the contribution only when the ray
// lands on an emitter
func (pt *PathTracer) sampleBSDF(p, dirOut, normal core.Vec3, frontFace bool, lobe *material.Lobe, scale float64, time float64) core.Vec3 {
	rayIn, pdf, f := lobe.Sample(normal, dirOut, pt.rng, frontFace)
	if !(pdf > 0) || f.IsZero() {
		return core.Vec3{}
	}
	dir := rayIn.Negate()
	hit, ok := pt.trace(p, dir, time)
	if !ok {
		return core.Vec3{}
	}
	hitMat := pt.scene.Entity(hit.EntityID).Material
	if !hitMat.IsEmissive() {
		return core.Vec3{}
	}
	emitted := pt.shade(hit, rayIn, time)
	if emitted.IsZero() {
		return core.Vec3{}
	}

	weight := 1.0
	if _, isLight := pt.scene.LightForEntity(hit.EntityID); isLight {
		if lightPdf := solidAnglePdf(pt.scene.Lights().PDF(), hit.T*hit.T, hit, dir); lightPdf > 0 {
			weight = core.PowerHeuristic(1, pdf, 1, lightPdf)
		}
	}
	return emitted.MultiplyVec(f).Multiply(scale * math.Abs(normal.Dot(dir)) / pdf * weight)
}

// sampleIndirect continues the path through a non-emissive surface with
// probability ProbRR while bounces remain
func (pt *PathTracer) sampleIndirect(p, dirOut, normal core.Vec3, frontFace bool, lobe *material.Lobe, scale float64, time float64) core.Vec3 {
	if pt.bounces >= pt.settings.NumBounces || pt.rng.Get1D() >= pt.settings.ProbRR {
		return core.Vec3{}
	}
	rayIn, pdf, f := lobe.Sample(normal, dirOut, pt.rng, frontFace)
	if !(pdf > 0) || f.IsZero() {
		return core.Vec3{}
	}
	dir := rayIn.Negate()
	hit, ok := pt.trace(p, dir, time)
	if !ok || pt.scene.Entity(hit.EntityID).Material.IsEmissive() {
		return core.Vec3{}
	}
	pt.bounces++
	incoming := pt.shade(hit, rayIn, time)
	return incoming.MultiplyVec(f).Multiply(scale * math.Abs(normal.Dot(dir)) / pdf / pt.settings.ProbRR)
}

// shadeSpecular follows the mirror direction. Delta bounces may go one past
// NumBounces so a path that just ran out can still reach a light.
func (pt *PathTracer) shadeSpecular(p, dirOut, normal, albedo core.Vec3, time float64) core.Vec3 {
	if pt.bounces >= pt.settings.NumBounces+1 {
		return core.Vec3{}
	}
	dir := core.Reflect(dirOut.Negate(), normal)
	return pt.followDelta(p, dir, albedo, time)
}

// shadeTransmissive chooses reflection with the Schlick reflectance and
// refraction otherwise
func (pt *PathTracer) shadeTransmissive(p, dirOut, normal, albedo core.Vec3, ior float64, frontFace bool, time float64) core.Vec3 {
	if pt.bounces >= pt.settings.NumBounces+1 {
		return core.Vec3{}
	}
	dirIn := dirOut.Negate()
	eta := 1 / ior
	if !frontFace {
		eta = ior
	}
	refracted := core.Refract(dirIn, normal, eta)

	reflectance := 1.0
	if refracted.Length() >= totalInternalReflection {
		reflectance = material.SchlickReflectance(-dirIn.Dot(normal), ior)
	}
	if pt.rng.Get1D() < reflectance {
		return pt.followDelta(p, core.Reflect(dirIn, normal), albedo, time)
	}
	return pt.followDelta(p, refracted.Normalize(), albedo, time)
}

func (pt *PathTracer) followDelta(p, dir, albedo core.Vec3, time float64) core.Vec3 {
	hit, ok := pt.trace(p, dir, time)
	if !ok {
		return core.Vec3{}
	}
	pt.bounces++
	return albedo.MultiplyVec(pt.shade(hit, dir.Negate(), time))
}
