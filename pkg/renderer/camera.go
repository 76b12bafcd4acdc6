package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
)

// Camera generates primary rays for an image of the given size
type Camera struct {
	params        scene.CameraParams
	width, height int
	halfHeight    float64 // half the image plane height at unit distance
	halfWidth     float64
}

// NewCamera validates the camera parameters for a width x height image
func NewCamera(params scene.CameraParams, width, height int) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", core.ErrInvalidConfig, width, height)
	}
	if !(params.FOV > 0 && params.FOV < 180) {
		return nil, fmt.Errorf("%w: fov %g must be in (0, 180) degrees", core.ErrInvalidConfig, params.FOV)
	}
	if params.Aperture < 0 || params.Shutter < 0 {
		return nil, fmt.Errorf("%w: aperture %g and shutter %g must not be negative", core.ErrInvalidConfig, params.Aperture, params.Shutter)
	}
	if params.Aperture > 0 && !(params.FocalLength > 0) {
		return nil, fmt.Errorf("%w: focal length %g with aperture %g", core.ErrInvalidConfig, params.FocalLength, params.Aperture)
	}
	if !(params.Gamma > 0) {
		return nil, fmt.Errorf("%w: gamma %g must be positive", core.ErrInvalidConfig, params.Gamma)
	}
	if _, ok := params.Transform.Inverse(); !ok {
		return nil, fmt.Errorf("%w: camera transform is singular", core.ErrInvalidConfig)
	}

	halfHeight := math.Tan(params.FOV * math.Pi / 360)
	return &Camera{
		params:     params,
		width:      width,
		height:     height,
		halfHeight: halfHeight,
		halfWidth:  halfHeight * float64(width) / float64(height),
	}, nil
}

// Params returns the camera parameters
func (c *Camera) Params() scene.CameraParams {
	return c.params
}

// Ray returns a world-space ray through the continuous pixel position
// (px, py), where (0, 0) is the top-left corner of the image. The sampler
// drives the lens position and the shutter time.
func (c *Camera) Ray(px, py float64, sampler core.Sampler) (origin, direction core.Vec3, time float64) {
	sx := (2*px/float64(c.width) - 1) * c.halfWidth
	sy := (1 - 2*py/float64(c.height)) * c.halfHeight

	origin = core.Vec3{}
	direction = core.NewVec3(sx, sy, -1)
	if c.params.Aperture > 0 {
		focus := direction.Multiply(c.params.FocalLength)
		lens := core.SamplePointInUnitDisk(sampler.Get2D()).Multiply(c.params.Aperture)
		origin = core.NewVec3(lens.X, lens.Y, 0)
		direction = focus.Subtract(origin)
	}
	if c.params.Shutter > 0 {
		time = sampler.Get1D() * c.params.Shutter
	}

	origin = c.params.Transform.TransformPoint(origin)
	direction = c.params.Transform.TransformDirection(direction).Normalize()
	return origin, direction, time
}

// PixelRay jitters a ray uniformly inside pixel (x, y)
func (c *Camera) PixelRay(x, y int, sampler core.Sampler) (origin, direction core.Vec3, time float64) {
	jitter := sampler.Get2D()
	return c.Ray(float64(x)+jitter.X, float64(y)+jitter.Y, sampler)
}
