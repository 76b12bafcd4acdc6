package material

import (
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

const maxLobes = 6

// reflectWeightFloor keeps the specular lobe selectable at full transmission
const reflectWeightFloor = 1e-3

// PrincipledBSDF is the weighted lobe mixture of a principled material at
// one shading point. Its value is Σ wᵢ·fᵢ.
//
// One lobe is chosen per sample with probability wᵢ/W and evaluated as
// W·fᵢ against that lobe's own pdf. The combined pdf Σ (wᵢ/W)·pᵢ is never
// formed, so MIS weights against light sampling use pᵢ alone. The
// estimator stays unbiased; only the MIS weights differ from the balance
// over the full mixture.
type PrincipledBSDF struct {
	lobes   [maxLobes]Lobe
	weights [maxLobes]float64
	count   int
	total   float64
}

// NewPrincipledBSDF assembles the lobes for m using the (texture-modulated)
// albedo color
func NewPrincipledBSDF(m Material, color core.Vec3) *PrincipledBSDF {
	b := &PrincipledBSDF{}

	diffuseWeight := (1 - m.Metallic) * (1 - m.SpecTrans)
	if diffuseWeight > 0 {
		if m.Thin {
			b.add(Lobe{Kind: LobeDiffuse, Color: color}, diffuseWeight*(1-m.Flatness)*(1-m.DiffTrans))
			b.add(Lobe{Kind: LobeFakeSubsurface, Color: color, Roughness: m.Roughness}, diffuseWeight*m.Flatness*(1-m.DiffTrans))
		} else {
			b.add(Lobe{Kind: LobeDiffuse, Color: color}, diffuseWeight)
		}
		b.add(Lobe{Kind: LobeRetro, Color: color, Roughness: m.Roughness}, diffuseWeight)
	}

	cSpec0 := core.LerpVec(m.Metallic, core.Splat(SchlickR0(m.IOR)), color)
	reflectWeight := math.Max(reflectWeightFloor, 1-m.SpecTrans)
	b.add(Lobe{
		Kind:         LobeMicrofacetReflection,
		Color:        core.Splat(1 / reflectWeight),
		Distribution: NewTrowbridgeReitz(m.Roughness),
		Fresnel:      DisneyFresnel{R0: cSpec0, Metallic: m.Metallic, IOR: m.IOR},
	}, reflectWeight)

	if m.SpecTrans > 0 {
		rough := m.Roughness
		if m.Thin {
			// Scale roughness by IOR (Burley 2015, figure 15)
			rough = (0.65*m.IOR - 0.35) * m.Roughness
		}
		b.add(Lobe{
			Kind:         LobeMicrofacetTransmission,
			Color:        color.Sqrt(),
			Distribution: NewTrowbridgeReitz(rough),
			EtaA:         1,
			EtaB:         m.IOR,
		}, m.SpecTrans)
	}

	if m.Thin {
		b.add(Lobe{Kind: LobeLambertianTransmission, Color: color}, m.DiffTrans)
	}
	return b
}

func (b *PrincipledBSDF) add(lobe Lobe, weight float64) {
	if b.count == maxLobes {
		return
	}
	b.lobes[b.count] = lobe
	b.weights[b.count] = weight
	b.count++
	b.total += weight
}

// LobeCount returns the number of assembled lobes, including zero-weight ones
func (b *PrincipledBSDF) LobeCount() int {
	return b.count
}

// Lobe returns lobe i and its mixture weight
func (b *PrincipledBSDF) Lobe(i int) (*Lobe, float64) {
	return &b.lobes[i], b.weights[i]
}

// TotalWeight returns W = Σ wᵢ
func (b *PrincipledBSDF) TotalWeight() float64 {
	return b.total
}

// ChooseLobe picks a lobe with probability wᵢ/W. Zero-weight lobes are never chosen.
func (b *PrincipledBSDF) ChooseLobe(u float64) *Lobe {
	target := u * b.total
	last := 0
	for i := 0; i < b.count; i++ {
		if b.weights[i] <= 0 {
			continue
		}
		last = i
		if target < b.weights[i] {
			return &b.lobes[i]
		}
		target -= b.weights[i]
	}
	return &b.lobes[last]
}

// Eval returns the mixture value Σ wᵢ·fᵢ
func (b *PrincipledBSDF) Eval(normal, rayOut, rayIn core.Vec3, frontFace bool) core.Vec3 {
	var sum core.Vec3
	for i := 0; i < b.count; i++ {
		if b.weights[i] > 0 {
			sum = sum.Add(b.lobes[i].Eval(normal, rayOut, rayIn, frontFace).Multiply(b.weights[i]))
		}
	}
	return sum
}
