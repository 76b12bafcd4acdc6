package material

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// SolidTexture returns the same color everywhere
type SolidTexture struct {
	Color core.Vec4
}

// NewSolidTexture creates an opaque single-color texture
func NewSolidTexture(color core.Vec3) *SolidTexture {
	return &SolidTexture{Color: core.NewVec4(color.X, color.Y, color.Z, 1)}
}

// Sample returns the solid color regardless of UV
func (s *SolidTexture) Sample(uv core.Vec2) core.Vec4 {
	return s.Color
}

// WhiteTexture is the default albedo texture
func WhiteTexture() *SolidTexture {
	return NewSolidTexture(core.Splat(1))
}

// FlatNormalTexture is the default normal texture: tangent-space (0, 0, 1)
// encoded as (0.5, 0.5, 1)
func FlatNormalTexture() *SolidTexture {
	return NewSolidTexture(core.NewVec3(0.5, 0.5, 1))
}

// ImageTexture provides color from a 2D RGBA image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec4 // Row-major: Pixels[y*Width + x], row 0 at the top
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec4) (*ImageTexture, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %dx%d with %d pixels", core.ErrInvalidTexture, width, height, len(pixels))
	}
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

// Sample samples the texture at given UV coordinates using nearest-neighbor filtering
func (t *ImageTexture) Sample(uv core.Vec2) core.Vec4 {
	// Wrap UV coordinates to [0, 1]
	u := uv.X - float64(int(uv.X))
	v := uv.Y - float64(int(uv.Y))
	if u < 0 {
		u += 1.0
	}
	if v < 0 {
		v += 1.0
	}

	// V=0 is bottom, V=1 is top (flip V for image coordinates where origin is top-left)
	x := core.Clamp(int(u*float64(t.Width)), 0, t.Width-1)
	y := core.Clamp(int((1.0-v)*float64(t.Height)), 0, t.Height-1)

	return t.Pixels[y*t.Width+x]
}
