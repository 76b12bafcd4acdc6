package geometry

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// Plane is an axis-aligned rectangle. Coordinates are named in a permuted
// order: Order[0] and Order[1] are the varying axes, Order[2] the fixed one.
type Plane struct {
	Min0, Max0 float64
	Min1, Max1 float64
	Fixed      float64
	Order      [3]int
}

// NewPlane creates a rectangle from ranges on two axes and a fixed coordinate
// on the third. order is a permutation of "xyz", e.g. "xzy" spans x and z at
// a constant y.
func NewPlane(min0, max0, min1, max1, fixed float64, order string) (*Plane, error) {
	if min0 > max0 || min1 > max1 {
		return nil, fmt.Errorf("%w: plane range [%g,%g]x[%g,%g] is inverted", core.ErrInvalidLight, min0, max0, min1, max1)
	}
	perm, err := parseAxisOrder(order)
	if err != nil {
		return nil, err
	}
	return &Plane{Min0: min0, Max0: max0, Min1: min1, Max1: max1, Fixed: fixed, Order: perm}, nil
}

func parseAxisOrder(order string) ([3]int, error) {
	var perm [3]int
	if len(order) != 3 {
		return perm, fmt.Errorf("%w: axis order %q", core.ErrInvalidLight, order)
	}
	used := [3]bool{}
	for i, c := range order {
		axis := int(c - 'x')
		if axis < 0 || axis > 2 || used[axis] {
			return perm, fmt.Errorf("%w: axis order %q", core.ErrInvalidLight, order)
		}
		used[axis] = true
		perm[i] = axis
	}
	return perm, nil
}

// Area returns the rectangle's area
func (p *Plane) Area() float64 {
	return (p.Max0 - p.Min0) * (p.Max1 - p.Min1)
}

// Sample returns a uniform point on the rectangle
func (p *Plane) Sample(sampler core.Sampler) core.Vec3 {
	s := sampler.Get2D()
	var coords [3]float64
	coords[p.Order[0]] = core.Lerp(s.X, p.Min0, p.Max0)
	coords[p.Order[1]] = core.Lerp(s.Y, p.Min1, p.Max1)
	coords[p.Order[2]] = p.Fixed
	return core.NewVec3(coords[0], coords[1], coords[2])
}

// Normal returns the unit axis perpendicular to the rectangle
func (p *Plane) Normal() core.Vec3 {
	return unitAxis(p.Order[2])
}

// Mesh tessellates the rectangle so it can also be traced. The front face
// points along normalSign times the fixed axis.
func (p *Plane) Mesh(normalSign float64) *Mesh {
	corner := p.point(p.Min0, p.Min1)
	edgeU := p.point(p.Max0, p.Min1).Subtract(corner)
	edgeV := p.point(p.Min0, p.Max1).Subtract(corner)
	if edgeU.Cross(edgeV).Dot(p.Normal().Multiply(normalSign)) < 0 {
		edgeU, edgeV = edgeV, edgeU
	}
	return NewQuadMesh(corner, edgeU, edgeV)
}

func (p *Plane) point(c0, c1 float64) core.Vec3 {
	var coords [3]float64
	coords[p.Order[0]] = c0
	coords[p.Order[1]] = c1
	coords[p.Order[2]] = p.Fixed
	return core.NewVec3(coords[0], coords[1], coords[2])
}
