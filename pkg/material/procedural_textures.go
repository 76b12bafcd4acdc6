package material

import (
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

func opaque(c core.Vec3) core.Vec4 {
	return core.NewVec4(c.X, c.Y, c.Z, 1)
}

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *ImageTexture {
	pixels := make([]core.Vec4, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			checkX := x / checkSize
			checkY := y / checkSize

			color := color1
			if (checkX+checkY)%2 != 0 {
				color = color2
			}
			pixels[y*width+x] = opaque(color)
		}
	}

	tex, _ := NewImageTexture(width, height, pixels)
	return tex
}

// NewRippleNormalTexture creates a tangent-space normal map of concentric
// ripples around the texture center, encoded as (n+1)/2
func NewRippleNormalTexture(size int, frequency, amplitude float64) *ImageTexture {
	pixels := make([]core.Vec4, size*size)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x)+0.5)/float64(size) - 0.5
			dy := 0.5 - (float64(y)+0.5)/float64(size)
			r := math.Hypot(dx, dy)

			// Slope of amplitude*sin(2π f r) along the radius
			slope := amplitude * 2 * math.Pi * frequency * math.Cos(2*math.Pi*frequency*r)
			n := core.NewVec3(0, 0, 1)
			if r > 0 {
				n = core.NewVec3(-slope*dx/r, -slope*dy/r, 1).Normalize()
			}
			pixels[y*size+x] = opaque(n.Add(core.Splat(1)).Multiply(0.5))
		}
	}

	tex, _ := NewImageTexture(size, size, pixels)
	return tex
}
